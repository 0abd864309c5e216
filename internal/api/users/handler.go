package users

import (
	"context"
	"net/http"

	"deals-app/internal/domain/access"
	"deals-app/internal/domain/plans"
	"deals-app/internal/domain/users"
	"deals-app/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserReader interface {
	GetByID(ctx context.Context, id uint) (*users.User, error)
}

type Handler struct {
	users   UserReader
	catalog cache.CatalogSource
	logger  *zap.Logger
}

func NewHandler(users UserReader, catalog cache.CatalogSource, logger *zap.Logger) *Handler {
	return &Handler{users: users, catalog: catalog, logger: logger}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := MeResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		MembershipType: user.MembershipType,
	}

	// Plan resolution is informational here; a catalog outage still returns the profile.
	catalog, err := h.catalog.Snapshot(ctx, plans.TypeUser)
	if err != nil {
		h.logger.Warn("Plan catalog unavailable for profile", zap.Uint("user_id", userID), zap.Error(err))
	} else if p := access.MatchPlan(user.MembershipType, catalog); p != nil {
		resp.Plan = &PlanDTO{
			Key:      p.Key,
			Name:     p.DisplayName,
			Priority: p.Priority,
			Price:    p.Price,
			Currency: p.Currency,
		}
	}

	c.JSON(http.StatusOK, resp)
}
