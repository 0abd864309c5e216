package deals

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"deals-app/internal/domain/deals"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ------------------------------
// POST /merchants
// ------------------------------
func (h *Handler) ApplyMerchant(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req ApplyMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetMerchantByUser(ctx, userID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Merchant application already exists"})
		return
	} else if !errors.Is(err, deals.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check merchant"})
		return
	}

	m := deals.Merchant{
		UserID:       userID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		Category:     req.Category,
		Phone:        req.Phone,
		PlanType:     strings.TrimSpace(req.PlanType),
		Status:       deals.MerchantPending,
	}
	if err := h.repo.CreateMerchant(ctx, &m); err != nil {
		h.logger.Error("Failed to create merchant", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create merchant"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// ------------------------------
// GET /merchants/me
// ------------------------------
func (h *Handler) GetMyMerchant(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	m, err := h.repo.GetMerchantByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No merchant account"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// ApprovedMerchantID backs the merchant guard middleware.
func (h *Handler) ApprovedMerchantID(ctx context.Context, userID uint) (uint, error) {
	m, err := h.repo.GetMerchantByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if m.Status != deals.MerchantApproved {
		return 0, deals.ErrMerchantNotReady
	}
	return m.ID, nil
}

// ------------------------------
// POST /admin/merchants/:id/approve|reject
// ------------------------------
func (h *Handler) ApproveMerchant(c *gin.Context) { h.reviewMerchant(c, true) }

func (h *Handler) RejectMerchant(c *gin.Context) { h.reviewMerchant(c, false) }

func (h *Handler) reviewMerchant(c *gin.Context, approve bool) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m, err := h.repo.GetMerchant(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
		return
	}
	if err := m.Review(approve); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.SaveMerchant(ctx, m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update merchant"})
		return
	}
	h.logger.Info("Merchant reviewed", zap.Uint("merchant_id", m.ID), zap.String("status", m.Status))
	c.JSON(http.StatusOK, m)
}
