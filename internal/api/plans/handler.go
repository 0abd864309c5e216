package plans

import (
	"context"
	"net/http"

	"deals-app/internal/domain/plans"
	"deals-app/internal/infra/cache"
	stripeinfra "deals-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	stripeapi "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

type Handler struct {
	repo        Repository
	invalidator cache.CatalogInvalidator
	logger      *zap.Logger

	// Stripe access, swapped out in tests.
	stripeKey  string
	productID  string
	listPrices func() ([]*stripeapi.Price, error)
}

func NewHandler(repo Repository, invalidator cache.CatalogInvalidator, logger *zap.Logger, stripeKey, productID string) *Handler {
	if invalidator == nil {
		invalidator = cache.NopInvalidator{}
	}
	return &Handler{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
		stripeKey:   stripeKey,
		productID:   productID,
		listPrices:  stripeinfra.ListRecurringPrices,
	}
}

func toPlanDTO(p plans.Plan) PlanDTO {
	return PlanDTO{
		Key:      p.Key,
		Name:     p.DisplayName,
		Type:     p.Type,
		Priority: p.Priority,
		Price:    p.Price,
		Currency: p.Currency,
		IsActive: p.IsActive,
	}
}

// GET /plans?type=user|merchant
func (h *Handler) ListPlans(c *gin.Context) {
	planType := c.DefaultQuery("type", plans.TypeUser)
	if err := plans.ValidateType(planType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.repo.ListActive(c.Request.Context(), planType)
	if err != nil {
		h.logger.Error("Failed to load plans", zap.String("type", planType), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	out := make([]PlanDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toPlanDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

// POST /admin/plans
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := plans.Plan{
		Key:         plans.NormalizeKey(req.Key),
		DisplayName: req.DisplayName,
		Type:        req.Type,
		Priority:    req.Priority,
		Price:       req.Price,
		Currency:    req.Currency,
		IsActive:    true,
	}
	if p.Type == "" {
		p.Type = plans.TypeUser
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := plans.ValidatePlan(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetByKey(ctx, p.Type, p.Key); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Plan key already exists"})
		return
	} else if !isNotFound(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check plan"})
		return
	}

	if err := h.repo.Create(ctx, &p); err != nil {
		h.logger.Error("Failed to create plan", zap.String("key", p.Key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}

	h.AfterCatalogWrite(ctx, p.Type)
	c.JSON(http.StatusCreated, toPlanDTO(p))
}

// PUT /admin/plans/:type/:key
func (h *Handler) UpdatePlan(c *gin.Context) {
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	p, err := h.repo.GetByKey(ctx, c.Param("type"), c.Param("key"))
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := plans.ValidatePlan(p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.Save(ctx, p); err != nil {
		h.logger.Error("Failed to update plan", zap.String("key", p.Key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}

	h.AfterCatalogWrite(ctx, p.Type)
	c.JSON(http.StatusOK, toPlanDTO(*p))
}

// POST /admin/sync-plans
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if h.stripeKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}
	stripeapi.Key = h.stripeKey

	prices, err := h.listPrices()
	if err != nil {
		h.logger.Error("Failed to fetch Stripe prices", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch Stripe prices"})
		return
	}

	ctx := c.Request.Context()
	res := SyncResult{Skipped: map[string]int{}}
	touched := map[string]bool{}

	for _, sp := range prices {
		outcome, err := h.ApplyPrice(ctx, sp)
		if err != nil {
			h.logger.Error("Failed to apply Stripe price", zap.String("price_id", sp.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store plan", "details": err.Error()})
			return
		}
		switch {
		case outcome.Skipped != "":
			res.Skipped[outcome.Skipped]++
			continue
		case outcome.Created:
			res.Created++
		default:
			res.Updated++
		}
		touched[outcome.PlanType] = true
		res.Synced++
	}

	for planType := range touched {
		h.AfterCatalogWrite(ctx, planType)
	}

	h.logger.Info("Stripe plan sync finished",
		zap.Int("synced", res.Synced),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	c.JSON(http.StatusOK, res)
}

// AfterCatalogWrite drops cached snapshots and warns when the catalog of
// planType no longer satisfies its invariants.
func (h *Handler) AfterCatalogWrite(ctx context.Context, planType string) {
	if err := h.invalidator.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}

	catalog, err := h.repo.Snapshot(ctx, planType)
	if err != nil {
		return
	}
	if err := catalog.Validate(); err != nil {
		h.logger.Warn("Plan catalog invariant violated",
			zap.String("type", planType),
			zap.Error(err),
		)
	}
}
