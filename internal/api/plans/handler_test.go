package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"deals-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	plans []plans.Plan
}

func (r *fakeRepo) Snapshot(_ context.Context, planType string) (plans.Catalog, error) {
	return plans.Catalog(r.plans).OfType(planType), nil
}

func (r *fakeRepo) ListActive(_ context.Context, planType string) ([]plans.Plan, error) {
	var out []plans.Plan
	for _, p := range r.plans {
		if p.Type == planType && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *fakeRepo) GetByKey(_ context.Context, planType, key string) (*plans.Plan, error) {
	for _, p := range r.plans {
		if p.Type == planType && p.Key == key {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetByStripePriceID(_ context.Context, priceID string) (*plans.Plan, error) {
	for _, p := range r.plans {
		if p.StripePriceID != nil && *p.StripePriceID == priceID {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) Create(_ context.Context, p *plans.Plan) error {
	p.ID = uint(len(r.plans) + 1)
	r.plans = append(r.plans, *p)
	return nil
}

func (r *fakeRepo) Save(_ context.Context, p *plans.Plan) error {
	for i := range r.plans {
		if r.plans[i].ID == p.ID {
			r.plans[i] = *p
			return nil
		}
	}
	return errors.New("not stored")
}

type countingInvalidator struct{ calls int }

func (i *countingInvalidator) Invalidate(context.Context) error {
	i.calls++
	return nil
}

func seededRepo() *fakeRepo {
	return &fakeRepo{plans: []plans.Plan{
		{ID: 1, Key: "silver", DisplayName: "Silver", Type: plans.TypeUser, Priority: 2, Price: 50, Currency: "GHS", IsActive: true},
		{ID: 2, Key: "gold", DisplayName: "Gold", Type: plans.TypeUser, Priority: 3, Price: 150, Currency: "GHS", IsActive: true},
		{ID: 3, Key: "legacy", DisplayName: "Legacy", Type: plans.TypeUser, Priority: 1, Price: 0, Currency: "GHS", IsActive: false},
		{ID: 4, Key: "starter", DisplayName: "Starter", Type: plans.TypeMerchant, Priority: 1, Price: 20, Currency: "GHS", IsActive: true},
	}}
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/plans", h.ListPlans)
	r.POST("/admin/plans", h.CreatePlan)
	r.PUT("/admin/plans/:type/:key", h.UpdatePlan)
	r.POST("/admin/sync-plans", h.SyncPlansFromStripe)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPlans(t *testing.T) {
	h := NewHandler(seededRepo(), nil, zap.NewNop(), "", "")
	r := newRouter(h)

	w := do(r, http.MethodGet, "/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []PlanDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "silver", got[0].Key)
	assert.Equal(t, "Gold", got[1].Name)

	w = do(r, http.MethodGet, "/plans?type=merchant", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "starter", got[0].Key)

	w = do(r, http.MethodGet, "/plans?type=vip", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), plans.ErrUnknownType.Error())
}

func TestCreatePlan(t *testing.T) {
	repo := seededRepo()
	inv := &countingInvalidator{}
	r := newRouter(NewHandler(repo, inv, zap.NewNop(), "", ""))

	w := do(r, http.MethodPost, "/admin/plans", gin.H{
		"key": "Platinum Plus", "display_name": "Platinum Plus", "priority": 5, "price": 450, "currency": "GHS",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored, err := repo.GetByKey(context.Background(), plans.TypeUser, "platinum_plus")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 5, stored.Priority)
	assert.Equal(t, 1, inv.calls)

	w = do(r, http.MethodPost, "/admin/plans", gin.H{
		"key": "gold", "display_name": "Gold again", "currency": "GHS",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/admin/plans", gin.H{
		"key": "bronze", "display_name": "Bronze", "currency": "CEDI",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/admin/plans", gin.H{
		"key": "bronze", "display_name": "Bronze", "type": "vip", "currency": "GHS",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), plans.ErrUnknownType.Error())
}

func TestUpdatePlan(t *testing.T) {
	repo := seededRepo()
	inv := &countingInvalidator{}
	r := newRouter(NewHandler(repo, inv, zap.NewNop(), "", ""))

	w := do(r, http.MethodPut, "/admin/plans/user/gold", gin.H{"price": 175, "is_active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := repo.GetByKey(context.Background(), plans.TypeUser, "gold")
	require.NoError(t, err)
	assert.Equal(t, 175.0, stored.Price)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 1, inv.calls)

	w = do(r, http.MethodPut, "/admin/plans/user/diamond", gin.H{"price": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/admin/plans/user/gold", gin.H{"priority": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncPlansFromStripe(t *testing.T) {
	repo := seededRepo()
	inv := &countingInvalidator{}
	h := NewHandler(repo, inv, zap.NewNop(), "sk_test", "prod_members")
	h.listPrices = func() ([]*stripeapi.Price, error) {
		product := &stripeapi.Product{ID: "prod_members", Active: true, Name: "Members"}
		return []*stripeapi.Price{
			{ID: "price_gold", Active: true, Currency: "ghs", UnitAmount: 16000, Product: product,
				Metadata: map[string]string{"plan_key": "gold", "priority": "3"}},
			{ID: "price_platinum", Active: true, Currency: "ghs", UnitAmount: 30000, Product: product,
				Metadata: map[string]string{"plan_key": "platinum", "priority": "4"}},
			{ID: "price_hidden", Active: true, Currency: "ghs", UnitAmount: 100, Product: product,
				Metadata: map[string]string{"plan_key": "secret", "visible": "false"}},
		}, nil
	}
	r := newRouter(h)

	w := do(r, http.MethodPost, "/admin/sync-plans", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res SyncResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped["hidden"])

	gold, err := repo.GetByKey(context.Background(), plans.TypeUser, "gold")
	require.NoError(t, err)
	assert.Equal(t, 160.0, gold.Price)
	require.NotNil(t, gold.StripePriceID)
	assert.Equal(t, "price_gold", *gold.StripePriceID)

	_, err = repo.GetByStripePriceID(context.Background(), "price_platinum")
	assert.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestSyncPlansFromStripe_NoKey(t *testing.T) {
	r := newRouter(NewHandler(seededRepo(), nil, zap.NewNop(), "", ""))
	w := do(r, http.MethodPost, "/admin/sync-plans", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
