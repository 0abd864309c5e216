package plans

import (
	"context"
	"fmt"

	stripeinfra "deals-app/internal/infra/stripe"

	stripeapi "github.com/stripe/stripe-go/v75"
)

// PriceOutcome describes what ApplyPrice did with one Stripe price.
type PriceOutcome struct {
	PlanType string
	Created  bool
	// Skipped holds the skip reason when the price maps to no plan.
	Skipped string
}

// ApplyPrice upserts the plan a Stripe price describes. The plan is found by
// price id first, then by type and key. The cache is not invalidated here.
func (h *Handler) ApplyPrice(ctx context.Context, sp *stripeapi.Price) (PriceOutcome, error) {
	incoming, reason, ok := stripeinfra.PlanFromPrice(sp, h.productID)
	if !ok {
		return PriceOutcome{Skipped: reason}, nil
	}
	out := PriceOutcome{PlanType: incoming.Type}

	existing, err := h.repo.GetByStripePriceID(ctx, *incoming.StripePriceID)
	if err != nil && isNotFound(err) {
		existing, err = h.repo.GetByKey(ctx, incoming.Type, incoming.Key)
	}

	switch {
	case err == nil:
		existing.DisplayName = incoming.DisplayName
		existing.Price = incoming.Price
		existing.Currency = incoming.Currency
		existing.StripePriceID = incoming.StripePriceID
		existing.IsActive = true
		if incoming.Priority > 0 {
			existing.Priority = incoming.Priority
		}
		if err := h.repo.Save(ctx, existing); err != nil {
			return out, fmt.Errorf("update plan %s: %w", existing.Key, err)
		}
	case isNotFound(err):
		if err := h.repo.Create(ctx, &incoming); err != nil {
			return out, fmt.Errorf("create plan %s: %w", incoming.Key, err)
		}
		out.Created = true
	default:
		return out, fmt.Errorf("load plan %s: %w", incoming.Key, err)
	}
	return out, nil
}

// DeactivatePrice marks the plan linked to priceID inactive. It reports the
// plan type touched, or "" when no plan uses the price.
func (h *Handler) DeactivatePrice(ctx context.Context, priceID string) (string, error) {
	p, err := h.repo.GetByStripePriceID(ctx, priceID)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if !p.IsActive {
		return p.Type, nil
	}
	p.IsActive = false
	if err := h.repo.Save(ctx, p); err != nil {
		return "", fmt.Errorf("deactivate plan %s: %w", p.Key, err)
	}
	return p.Type, nil
}
