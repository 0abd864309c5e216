package middleware

import (
	"context"
	"errors"
	"net/http"

	"deals-app/internal/domain/deals"

	"github.com/gin-gonic/gin"
)

// MerchantLookup resolves the approved merchant account of a user.
type MerchantLookup func(ctx context.Context, userID uint) (uint, error)

// RequireApprovedMerchant lets through users with an approved merchant
// account and exposes its id as "merchant_id".
func RequireApprovedMerchant(lookup MerchantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		merchantID, err := lookup(c.Request.Context(), userID)
		switch {
		case err == nil:
		case errors.Is(err, deals.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Merchant account required"})
			return
		case errors.Is(err, deals.ErrMerchantNotReady):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Merchant account is awaiting approval"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load merchant"})
			return
		}

		c.Set("merchant_id", merchantID)
		c.Next()
	}
}
