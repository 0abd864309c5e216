package deals

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("deals: not found")
	ErrInvalidTransition = errors.New("deals: invalid status transition")
	ErrAlreadyRedeemed   = errors.New("deals: already redeemed")
	ErrMerchantNotReady  = errors.New("deals: merchant not approved")
)

var transitions = map[string][]string{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusActive, StatusRejected},
	StatusActive:  {StatusExpired},
}

// Transition moves a deal to next if the lifecycle allows it.
func (d *Deal) Transition(next string) error {
	for _, allowed := range transitions[d.Status] {
		if allowed == next {
			d.Status = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
}

// IsRedeemable reports whether the deal is active and inside its window at now.
func (d *Deal) IsRedeemable(now time.Time) bool {
	if d.Status != StatusActive {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.ExpiresAt != nil && !now.Before(*d.ExpiresAt) {
		return false
	}
	return true
}

// IsExpired reports whether an active deal ran past its expiry at now.
func (d *Deal) IsExpired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// Review applies an admin decision to a pending merchant.
func (m *Merchant) Review(approve bool) error {
	if m.Status != MerchantPending {
		return fmt.Errorf("%w: merchant is %s", ErrInvalidTransition, m.Status)
	}
	if approve {
		m.Status = MerchantApproved
	} else {
		m.Status = MerchantRejected
	}
	return nil
}
