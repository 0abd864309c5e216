package deals

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"deals-app/internal/domain/access"
	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/plans"
	"deals-app/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	repo    Repository
	catalog cache.CatalogSource
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(repo Repository, catalog cache.CatalogSource, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, catalog: catalog, logger: logger, now: time.Now}
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ------------------------------
// GET /deals
// ------------------------------
func (h *Handler) ListDeals(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	if n, err := h.repo.ExpireDeals(ctx, now); err != nil {
		h.logger.Warn("Failed to expire deals", zap.Error(err))
	} else if n > 0 {
		h.logger.Info("Deals expired", zap.Int64("count", n))
	}

	list, err := h.repo.ListActiveDeals(ctx, now)
	if err != nil {
		h.logger.Error("Failed to load deals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deals"})
		return
	}

	out := make([]DealDTO, 0, len(list))
	for _, d := range list {
		out = append(out, BuildDealDTO(d))
	}
	c.JSON(http.StatusOK, out)
}

// ------------------------------
// GET /deals/:id
// ------------------------------
func (h *Handler) GetDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.repo.GetDeal(c.Request.Context(), id)
	if err != nil || d.Status != deals.StatusActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
		return
	}
	c.JSON(http.StatusOK, BuildDealDTO(*d))
}

// ------------------------------
// POST /deals  (approved merchants)
// ------------------------------
func (h *Handler) CreateDeal(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StartsAt != nil && req.ExpiresAt != nil && !req.ExpiresAt.After(*req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be after starts_at"})
		return
	}

	merchantID := c.GetUint("merchant_id")
	if merchantID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Merchant account required"})
		return
	}

	audience := req.Audience
	if audience == "" {
		audience = plans.TypeUser
	}

	d := deals.Deal{
		MerchantID:          merchantID,
		Title:               req.Title,
		Description:         req.Description,
		Discount:            req.Discount,
		Audience:            audience,
		MinRequiredPriority: req.MinRequiredPriority,
		Status:              deals.StatusDraft,
		StartsAt:            req.StartsAt,
		ExpiresAt:           req.ExpiresAt,
	}
	if err := d.Transition(deals.StatusPending); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.repo.CreateDeal(ctx, &d); err != nil {
		h.logger.Error("Failed to create deal", zap.Uint("merchant_id", merchantID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deal"})
		return
	}

	resp := gin.H{"deal": BuildDealDTO(d)}

	// A threshold no active plan reaches makes the deal unredeemable.
	if catalog, err := h.catalog.Snapshot(ctx, audience); err == nil {
		if len(access.SuggestUpgrades(catalog, d.MinRequiredPriority)) == 0 {
			resp["warning"] = "No active plan currently reaches this deal's required level"
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// ------------------------------
// POST /deals/:id/redeem
// ------------------------------
func (h *Handler) RedeemDeal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	dealID, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := h.now()

	deal, err := h.repo.GetDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deal"})
		return
	}
	if deal.Status == deals.StatusActive && deal.IsExpired(now) {
		h.markExpired(ctx, deal)
		c.JSON(http.StatusGone, gin.H{"error": "This deal has expired"})
		return
	}
	if !deal.IsRedeemable(now) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal not available"})
		return
	}

	designation, status, msg := h.designationFor(c, userID, deal.Audience)
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	redeemed, err := h.repo.HasRedeemed(ctx, deal.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check redemptions"})
		return
	}
	if redeemed {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already redeemed this deal"})
		return
	}

	catalog, err := h.catalog.Snapshot(ctx, deal.Audience)
	if err != nil {
		h.logger.Error("Failed to load plan catalog", zap.String("audience", deal.Audience), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	res, err := h.resolve(designation, catalog, deal)
	if err != nil {
		h.logger.Error("Redemption check rejected its input",
			zap.Uint("deal_id", deal.ID),
			zap.Int("min_required_priority", deal.MinRequiredPriority),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Deal is misconfigured"})
		return
	}

	if res.Unmatched() {
		h.logger.Warn("Unmapped membership designation",
			zap.Uint("user_id", userID),
			zap.String("designation", designation),
			zap.String("audience", deal.Audience),
		)
	}

	if !res.Allowed {
		if len(res.UpgradeOptions) == 0 {
			h.logger.Error("No active plan clears deal threshold",
				zap.Uint("deal_id", deal.ID),
				zap.Int("min_required_priority", deal.MinRequiredPriority),
				zap.String("audience", deal.Audience),
			)
		}
		c.JSON(http.StatusForbidden, RedeemDeniedResponse{
			Error:          "Your plan does not include this deal",
			Message:        UpgradeMessage(res.UpgradeOptions),
			CurrentPlan:    BuildMatchedPlanDTO(res.MatchedPlan),
			RequiredLevel:  deal.MinRequiredPriority,
			UpgradeOptions: BuildUpgradeOptions(res.UpgradeOptions),
		})
		return
	}

	red := deals.Redemption{
		DealID: deal.ID,
		UserID: userID,
		Code:   NewRedemptionCode(),
	}
	if res.MatchedPlan != nil {
		key := res.MatchedPlan.Key
		red.PlanKey = &key
	}
	if err := h.repo.CreateRedemption(ctx, &red); err != nil {
		if errors.Is(err, deals.ErrAlreadyRedeemed) {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already redeemed this deal"})
			return
		}
		h.logger.Error("Failed to store redemption", zap.Uint("deal_id", deal.ID), zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem deal"})
		return
	}

	h.logger.Info("Deal redeemed",
		zap.Uint("deal_id", deal.ID),
		zap.Uint("user_id", userID),
		zap.Stringp("plan_key", red.PlanKey),
	)
	c.JSON(http.StatusOK, RedeemResponse{
		Message:        "Deal redeemed successfully",
		RedemptionCode: red.Code,
		MatchedPlan:    BuildMatchedPlanDTO(res.MatchedPlan),
	})
}

// resolve runs the access check. A blank designation never reaches the
// resolver: it is denied with the full upgrade list, like an unmapped one.
func (h *Handler) resolve(designation string, catalog plans.Catalog, deal *deals.Deal) (access.Result, error) {
	if isBlank(designation) {
		if deal.MinRequiredPriority < 0 {
			return access.Result{}, access.ErrInvalidInput
		}
		return access.Result{UpgradeOptions: access.SuggestUpgrades(catalog, deal.MinRequiredPriority)}, nil
	}
	return access.CanRedeem(designation, catalog, deal.MinRequiredPriority)
}

// designationFor returns the caller's designation for the deal's audience.
// A non-zero status means the request was already rejected.
func (h *Handler) designationFor(c *gin.Context, userID uint, audience string) (string, int, string) {
	ctx := c.Request.Context()
	switch audience {
	case plans.TypeMerchant:
		m, err := h.repo.GetMerchantByUser(ctx, userID)
		if err != nil || m.Status != deals.MerchantApproved {
			return "", http.StatusForbidden, "This deal is reserved for approved merchants"
		}
		return m.PlanType, 0, ""
	default:
		u, err := h.repo.GetUser(ctx, userID)
		if err != nil {
			return "", http.StatusUnauthorized, "User not found"
		}
		return u.MembershipType, 0, ""
	}
}

// ------------------------------
// GET /redemptions
// ------------------------------
func (h *Handler) ListMyRedemptions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	list, err := h.repo.ListRedemptions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load redemptions"})
		return
	}
	out := make([]RedemptionDTO, 0, len(list))
	for _, r := range list {
		out = append(out, BuildRedemptionDTO(r))
	}
	c.JSON(http.StatusOK, out)
}

// ------------------------------
// POST /admin/deals/:id/approve|reject
// ------------------------------
func (h *Handler) ApproveDeal(c *gin.Context) { h.reviewDeal(c, deals.StatusActive) }

func (h *Handler) RejectDeal(c *gin.Context) { h.reviewDeal(c, deals.StatusRejected) }

func (h *Handler) reviewDeal(c *gin.Context, next string) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.repo.GetDeal(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
		return
	}
	if err := d.Transition(next); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	// approved after its window closed
	if d.Status == deals.StatusActive && d.IsExpired(h.now()) {
		_ = d.Transition(deals.StatusExpired)
	}
	if err := h.repo.SaveDeal(ctx, d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deal"})
		return
	}
	c.JSON(http.StatusOK, BuildDealDTO(*d))
}

func (h *Handler) markExpired(ctx context.Context, d *deals.Deal) {
	if err := d.Transition(deals.StatusExpired); err != nil {
		return
	}
	if err := h.repo.SaveDeal(ctx, d); err != nil {
		h.logger.Warn("Failed to mark deal expired", zap.Uint("deal_id", d.ID), zap.Error(err))
	}
}
