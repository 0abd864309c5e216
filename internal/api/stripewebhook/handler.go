package stripewebhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	plansapi "deals-app/internal/api/plans"
	stripeinfra "deals-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
)

const maxBodyBytes = 65536

// PlanWriter is the part of the plans handler the webhook drives.
type PlanWriter interface {
	ApplyPrice(ctx context.Context, sp *stripe.Price) (plansapi.PriceOutcome, error)
	DeactivatePrice(ctx context.Context, priceID string) (string, error)
	AfterCatalogWrite(ctx context.Context, planType string)
}

// UpgradeApplier applies paid upgrade checkouts and takes them back when
// the subscription ends.
type UpgradeApplier interface {
	CompleteCheckout(ctx context.Context, s *stripe.CheckoutSession) error
	CancelSubscription(ctx context.Context, sub *stripe.Subscription) error
}

type Handler struct {
	plans          PlanWriter
	upgrades       UpgradeApplier
	stripeKey      string
	endpointSecret string
	logger         *zap.Logger

	// fetchPrice reloads a price with its product expanded.
	fetchPrice func(id string) (*stripe.Price, error)
}

func NewHandler(plans PlanWriter, upgrades UpgradeApplier, stripeKey, endpointSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		plans:          plans,
		upgrades:       upgrades,
		stripeKey:      stripeKey,
		endpointSecret: endpointSecret,
		logger:         logger,
		fetchPrice:     stripeinfra.GetPrice,
	}
}

// StripeWebhook keeps the plan catalog in step with price changes made in
// the Stripe dashboard, applies paid upgrade checkouts and reverts them when
// the subscription ends.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.stripeKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_SECRET_KEY not configured"})
		return
	}
	if h.endpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}
	stripe.Key = h.stripeKey

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.logger.Warn("❌ Stripe signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		if err := h.upgrades.CompleteCheckout(c.Request.Context(), &session); err != nil {
			h.logger.Error("Failed to complete checkout", zap.String("event_id", event.ID), zap.String("session_id", session.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	case "customer.subscription.deleted", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil || sub.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		if event.Type == "customer.subscription.updated" && !subscriptionEnded(sub.Status) {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		if err := h.upgrades.CancelSubscription(c.Request.Context(), &sub); err != nil {
			h.logger.Error("Failed to end upgrade", zap.String("event_id", event.ID), zap.String("subscription_id", sub.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	case "price.created", "price.updated":
		var sp stripe.Price
		if err := json.Unmarshal(event.Data.Raw, &sp); err != nil || sp.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse price"})
			return
		}
		if err := h.handlePriceChanged(c.Request.Context(), &sp); err != nil {
			// 500 makes Stripe retry.
			h.logger.Error("Failed to apply price event", zap.String("event_id", event.ID), zap.String("price_id", sp.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	case "price.deleted":
		var sp stripe.Price
		if err := json.Unmarshal(event.Data.Raw, &sp); err != nil || sp.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse price"})
			return
		}
		if err := h.deactivate(c.Request.Context(), sp.ID); err != nil {
			h.logger.Error("Failed to apply price event", zap.String("event_id", event.ID), zap.String("price_id", sp.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

// subscriptionEnded reports whether Stripe will not collect on the
// subscription again.
func subscriptionEnded(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusCanceled,
		stripe.SubscriptionStatusUnpaid,
		stripe.SubscriptionStatusIncompleteExpired:
		return true
	}
	return false
}

func (h *Handler) handlePriceChanged(ctx context.Context, sp *stripe.Price) error {
	if !sp.Active {
		return h.deactivate(ctx, sp.ID)
	}

	full, err := h.fetchPrice(sp.ID)
	if err != nil {
		return err
	}
	outcome, err := h.plans.ApplyPrice(ctx, full)
	if err != nil {
		return err
	}
	if outcome.Skipped != "" {
		h.logger.Info("Stripe price ignored", zap.String("price_id", sp.ID), zap.String("reason", outcome.Skipped))
		return nil
	}
	h.plans.AfterCatalogWrite(ctx, outcome.PlanType)
	h.logger.Info("Plan updated from Stripe", zap.String("price_id", sp.ID), zap.Bool("created", outcome.Created))
	return nil
}

func (h *Handler) deactivate(ctx context.Context, priceID string) error {
	planType, err := h.plans.DeactivatePrice(ctx, priceID)
	if err != nil {
		return err
	}
	if planType != "" {
		h.plans.AfterCatalogWrite(ctx, planType)
		h.logger.Info("Plan deactivated from Stripe", zap.String("price_id", priceID))
	}
	return nil
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
