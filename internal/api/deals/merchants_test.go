package deals

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"deals-app/internal/domain/deals"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMerchant(t *testing.T) {
	h, repo := setup(t, tierCatalog())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(5))
		c.Next()
	})
	r.POST("/merchants", h.ApplyMerchant)

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/merchants",
			bytes.NewBufferString(`{"business_name":" Kofi's Kitchen ","plan_type":"Partner"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusCreated, post().Code)
	require.Len(t, repo.merchants, 1)
	m := repo.merchants[1]
	assert.Equal(t, "Kofi's Kitchen", m.BusinessName)
	assert.Equal(t, "Partner", m.PlanType)
	assert.Equal(t, deals.MerchantPending, m.Status)

	assert.Equal(t, http.StatusConflict, post().Code)
}

func TestReviewMerchantAndGuardLookup(t *testing.T) {
	h, repo := setup(t, tierCatalog())
	repo.merchants[1] = &deals.Merchant{ID: 1, UserID: 5, Status: deals.MerchantPending}

	_, err := h.ApprovedMerchantID(context.Background(), 5)
	assert.ErrorIs(t, err, deals.ErrMerchantNotReady)
	_, err = h.ApprovedMerchantID(context.Background(), 99)
	assert.ErrorIs(t, err, deals.ErrNotFound)

	r := gin.New()
	r.POST("/admin/merchants/:id/approve", h.ApproveMerchant)
	r.POST("/admin/merchants/:id/reject", h.RejectMerchant)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/merchants/1/approve", nil))
	require.Equal(t, http.StatusOK, w.Code)

	id, err := h.ApprovedMerchantID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/merchants/1/reject", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/merchants/9/approve", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
