package billing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"deals-app/internal/domain/billing"
	"deals-app/internal/domain/plans"
	"deals-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

type memRepo struct {
	users    map[uint]*users.User
	payments []billing.Payment
}

func (r *memRepo) GetUser(_ context.Context, id uint) (*users.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (r *memRepo) RecordUpgrade(_ context.Context, p *billing.Payment) error {
	for _, existing := range r.payments {
		if existing.StripeSessionID == p.StripeSessionID {
			return ErrDuplicatePayment
		}
	}
	u := r.users[p.UserID]
	p.PreviousMembershipType = u.MembershipType
	r.payments = append(r.payments, *p)
	u.MembershipType = p.PlanKey
	return nil
}

func (r *memRepo) RevertUpgrade(_ context.Context, subscriptionID string) (*billing.Payment, error) {
	for i := len(r.payments) - 1; i >= 0; i-- {
		p := &r.payments[i]
		if p.StripeSubscriptionID == nil || *p.StripeSubscriptionID != subscriptionID || p.Status != billing.StatusPaid {
			continue
		}
		p.Status = billing.StatusCanceled
		if u := r.users[p.UserID]; u.MembershipType == p.PlanKey {
			u.MembershipType = p.PreviousMembershipType
		}
		out := *p
		return &out, nil
	}
	return nil, ErrNoActiveUpgrade
}

func (r *memRepo) ListPayments(_ context.Context, userID uint) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type planTable []plans.Plan

func (t planTable) GetByKey(_ context.Context, planType, key string) (*plans.Plan, error) {
	for _, p := range t {
		if p.Type == planType && p.Key == key {
			cp := p
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func priceID(s string) *string { return &s }

func fixtures() (*memRepo, planTable) {
	repo := &memRepo{users: map[uint]*users.User{
		3: {ID: 3, Email: "esi@example.com", MembershipType: "silver"},
	}}
	table := planTable{
		{Key: "gold", Type: plans.TypeUser, Priority: 3, IsActive: true, StripePriceID: priceID("price_gold")},
		{Key: "legacy", Type: plans.TypeUser, Priority: 1, IsActive: false, StripePriceID: priceID("price_legacy")},
		{Key: "manual", Type: plans.TypeUser, Priority: 2, IsActive: true},
	}
	return repo, table
}

func TestCreateUpgradeCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, table := fixtures()
	h := NewHandler(repo, table, "sk_test", "https://deals.example.com/", zap.NewNop())

	var got *stripe.CheckoutSessionParams
	h.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = p
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.test/s1"}, nil
	}

	r := gin.New()
	r.POST("/upgrade-checkout", func(c *gin.Context) {
		c.Set("user_id", uint(3))
		c.Next()
	}, h.CreateUpgradeCheckout)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upgrade-checkout", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"plan_key":"Gold"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"url":"https://checkout.stripe.test/s1"}`, w.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, "price_gold", *got.LineItems[0].Price)
	assert.Equal(t, "gold", got.Metadata["plan_key"])
	assert.Equal(t, "3", got.Metadata["user_id"])
	assert.Equal(t, "https://deals.example.com/account?upgraded=1", *got.SuccessURL)

	assert.Equal(t, http.StatusBadRequest, post(`{"plan_key":"legacy"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"plan_key":"manual"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
}

func TestCompleteCheckout(t *testing.T) {
	repo, table := fixtures()
	h := NewHandler(repo, table, "sk_test", "", zap.NewNop())
	ctx := context.Background()

	paid := &stripe.CheckoutSession{
		ID:            "cs_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   15000,
		Currency:      "ghs",
		Metadata:      map[string]string{"user_id": "3", "plan_key": "gold"},
	}
	require.NoError(t, h.CompleteCheckout(ctx, paid))
	assert.Equal(t, "gold", repo.users[3].MembershipType)
	require.Len(t, repo.payments, 1)
	assert.Equal(t, 150.0, repo.payments[0].Amount)
	assert.Equal(t, "GHS", repo.payments[0].Currency)

	// replay
	require.NoError(t, h.CompleteCheckout(ctx, paid))
	assert.Len(t, repo.payments, 1)

	unpaid := &stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		Metadata: map[string]string{"user_id": "3", "plan_key": "platinum"}}
	require.NoError(t, h.CompleteCheckout(ctx, unpaid))
	assert.Equal(t, "gold", repo.users[3].MembershipType)

	foreign := &stripe.CheckoutSession{ID: "cs_3", PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid}
	require.NoError(t, h.CompleteCheckout(ctx, foreign))
	assert.Len(t, repo.payments, 1)

	assert.Error(t, h.CompleteCheckout(ctx, &stripe.CheckoutSession{}))
}

func TestCancelSubscription(t *testing.T) {
	repo, table := fixtures()
	h := NewHandler(repo, table, "sk_test", "", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h.CompleteCheckout(ctx, &stripe.CheckoutSession{
		ID:            "cs_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Subscription:  &stripe.Subscription{ID: "sub_1"},
		Metadata:      map[string]string{"user_id": "3", "plan_key": "gold"},
	}))
	require.Len(t, repo.payments, 1)
	require.NotNil(t, repo.payments[0].StripeSubscriptionID)
	assert.Equal(t, "sub_1", *repo.payments[0].StripeSubscriptionID)
	assert.Equal(t, "silver", repo.payments[0].PreviousMembershipType)
	assert.Equal(t, "gold", repo.users[3].MembershipType)

	require.NoError(t, h.CancelSubscription(ctx, &stripe.Subscription{ID: "sub_1", Status: stripe.SubscriptionStatusCanceled}))
	assert.Equal(t, "silver", repo.users[3].MembershipType)
	assert.Equal(t, billing.StatusCanceled, repo.payments[0].Status)

	// a second delivery finds nothing left to revert
	require.NoError(t, h.CancelSubscription(ctx, &stripe.Subscription{ID: "sub_1"}))
	assert.Equal(t, "silver", repo.users[3].MembershipType)

	require.NoError(t, h.CancelSubscription(ctx, &stripe.Subscription{ID: "sub_unknown"}))
	require.NoError(t, h.CancelSubscription(ctx, nil))
}

func TestCancelSubscription_KeepsLaterDesignation(t *testing.T) {
	repo, table := fixtures()
	h := NewHandler(repo, table, "sk_test", "", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h.CompleteCheckout(ctx, &stripe.CheckoutSession{
		ID:            "cs_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Subscription:  &stripe.Subscription{ID: "sub_1"},
		Metadata:      map[string]string{"user_id": "3", "plan_key": "gold"},
	}))
	// an admin moved the member on after the upgrade
	repo.users[3].MembershipType = "platinum"

	require.NoError(t, h.CancelSubscription(ctx, &stripe.Subscription{ID: "sub_1"}))
	assert.Equal(t, "platinum", repo.users[3].MembershipType)
	assert.Equal(t, billing.StatusCanceled, repo.payments[0].Status)
}
