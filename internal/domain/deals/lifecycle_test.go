package deals

import (
	"errors"
	"testing"
	"time"
)

func TestDealTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{from: StatusDraft, to: StatusPending, ok: true},
		{from: StatusPending, to: StatusActive, ok: true},
		{from: StatusPending, to: StatusRejected, ok: true},
		{from: StatusActive, to: StatusExpired, ok: true},
		{from: StatusRejected, to: StatusActive, ok: false},
		{from: StatusActive, to: StatusPending, ok: false},
		{from: StatusExpired, to: StatusActive, ok: false},
	}

	for _, tt := range tests {
		d := &Deal{Status: tt.from}
		err := d.Transition(tt.to)
		if tt.ok {
			if err != nil || d.Status != tt.to {
				t.Fatalf("%s -> %s: unexpected error %v (status %s)", tt.from, tt.to, err, d.Status)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tt.from, tt.to, err)
		}
		if d.Status != tt.from {
			t.Fatalf("%s -> %s: status changed on failure", tt.from, tt.to)
		}
	}
}

func TestDealIsRedeemable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(&Deal{Status: StatusActive}).IsRedeemable(now) {
		t.Fatalf("open-ended active deal should be redeemable")
	}
	if (&Deal{Status: StatusPending}).IsRedeemable(now) {
		t.Fatalf("pending deal should not be redeemable")
	}
	if (&Deal{Status: StatusActive, StartsAt: &future}).IsRedeemable(now) {
		t.Fatalf("deal before its start should not be redeemable")
	}
	expired := &Deal{Status: StatusActive, ExpiresAt: &past}
	if expired.IsRedeemable(now) || !expired.IsExpired(now) {
		t.Fatalf("deal past expiry should be expired and not redeemable")
	}
	if !(&Deal{Status: StatusActive, StartsAt: &past, ExpiresAt: &future}).IsRedeemable(now) {
		t.Fatalf("deal inside its window should be redeemable")
	}
}

func TestMerchantReview(t *testing.T) {
	m := &Merchant{Status: MerchantPending}
	if err := m.Review(true); err != nil || m.Status != MerchantApproved {
		t.Fatalf("approve failed: %v (%s)", err, m.Status)
	}
	if err := m.Review(false); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second review should fail, got %v", err)
	}

	m = &Merchant{Status: MerchantPending}
	if err := m.Review(false); err != nil || m.Status != MerchantRejected {
		t.Fatalf("reject failed: %v (%s)", err, m.Status)
	}
}
