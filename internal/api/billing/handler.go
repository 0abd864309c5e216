package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"deals-app/internal/domain/billing"
	"deals-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"go.uber.org/zap"
)

// PlanLookup finds a catalog plan by audience and key.
type PlanLookup interface {
	GetByKey(ctx context.Context, planType, key string) (*plans.Plan, error)
}

type Handler struct {
	repo      Repository
	plans     PlanLookup
	stripeKey string
	appURL    string
	logger    *zap.Logger

	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewHandler(repo Repository, plans PlanLookup, stripeKey, appURL string, logger *zap.Logger) *Handler {
	return &Handler{
		repo:       repo,
		plans:      plans,
		stripeKey:  stripeKey,
		appURL:     strings.TrimRight(appURL, "/"),
		logger:     logger,
		newSession: checkoutsession.New,
	}
}

// POST /upgrade-checkout
func (h *Handler) CreateUpgradeCheckout(c *gin.Context) {
	var body struct {
		PlanKey string `json:"plan_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan_key"})
		return
	}

	if h.stripeKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}
	stripe.Key = h.stripeKey

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.repo.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	// allow-list: only active, Stripe-backed user plans can be bought
	plan, err := h.plans.GetByKey(ctx, plans.TypeUser, plans.NormalizeKey(body.PlanKey))
	if err != nil || !plan.IsActive || plan.StripePriceID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(h.appURL + "/account?upgraded=1"),
		CancelURL:     stripe.String(h.appURL + "/account?canceled=1"),
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(*plan.StripePriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(fmt.Sprint(user.ID)),
	}
	params.AddMetadata("user_id", fmt.Sprint(user.ID))
	params.AddMetadata("plan_key", plan.Key)

	s, err := h.newSession(params)
	if err != nil {
		h.logger.Error("Failed to create checkout session", zap.Uint("user_id", user.ID), zap.String("plan_key", plan.Key), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// CompleteCheckout applies a paid upgrade session: the member's designation
// becomes the purchased plan key. Replayed sessions are ignored.
func (h *Handler) CompleteCheckout(ctx context.Context, s *stripe.CheckoutSession) error {
	if s == nil || s.ID == "" {
		return errors.New("billing: checkout session missing id")
	}
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		h.logger.Info("Checkout session not paid yet", zap.String("session_id", s.ID), zap.String("status", string(s.PaymentStatus)))
		return nil
	}

	userID, err := strconv.ParseUint(s.Metadata["user_id"], 10, 64)
	planKey := s.Metadata["plan_key"]
	if err != nil || userID == 0 || planKey == "" {
		// Not one of ours; acknowledge so Stripe stops retrying.
		h.logger.Warn("Checkout session without upgrade metadata", zap.String("session_id", s.ID))
		return nil
	}

	p := billing.Payment{
		UserID:          uint(userID),
		PlanKey:         planKey,
		StripeSessionID: s.ID,
		Amount:          float64(s.AmountTotal) / 100.0,
		Currency:        strings.ToUpper(string(s.Currency)),
		Status:          billing.StatusPaid,
	}
	if s.Subscription != nil && s.Subscription.ID != "" {
		subID := s.Subscription.ID
		p.StripeSubscriptionID = &subID
	}
	if err := h.repo.RecordUpgrade(ctx, &p); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return nil
		}
		return err
	}

	h.logger.Info("Membership upgraded", zap.Uint64("user_id", userID), zap.String("plan_key", planKey))
	return nil
}

// CancelSubscription takes an ended upgrade subscription's access away by
// restoring the designation the member held before the checkout.
func (h *Handler) CancelSubscription(ctx context.Context, sub *stripe.Subscription) error {
	if sub == nil || sub.ID == "" {
		return nil
	}

	p, err := h.repo.RevertUpgrade(ctx, sub.ID)
	if errors.Is(err, ErrNoActiveUpgrade) {
		h.logger.Info("No upgrade to revert", zap.String("subscription_id", sub.ID))
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.Info("Membership upgrade ended",
		zap.Uint("user_id", p.UserID),
		zap.String("plan_key", p.PlanKey),
		zap.String("restored", p.PreviousMembershipType),
	)
	return nil
}

// GET /payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments, err := h.repo.ListPayments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	if payments == nil {
		payments = []billing.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
