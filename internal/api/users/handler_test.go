package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"deals-app/internal/domain/plans"
	"deals-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type oneUser struct{ u users.User }

func (o oneUser) GetByID(_ context.Context, id uint) (*users.User, error) {
	if id != o.u.ID {
		return nil, errors.New("not found")
	}
	cp := o.u
	return &cp, nil
}

type catalogFunc func(ctx context.Context, planType string) (plans.Catalog, error)

func (f catalogFunc) Snapshot(ctx context.Context, planType string) (plans.Catalog, error) {
	return f(ctx, planType)
}

func getMe(t *testing.T, h *Handler, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, h.GetCurrentUser)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	return w
}

func TestGetCurrentUser(t *testing.T) {
	catalog := catalogFunc(func(context.Context, string) (plans.Catalog, error) {
		return plans.Catalog{
			{Key: "gold", DisplayName: "Gold", Type: plans.TypeUser, Priority: 3, Price: 150, Currency: "GHS", IsActive: true},
		}, nil
	})

	t.Run("matched", func(t *testing.T) {
		h := NewHandler(oneUser{users.User{ID: 4, Name: "Kwame", MembershipType: "Gold Member"}}, catalog, zap.NewNop())
		w := getMe(t, h, 4)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Plan)
		assert.Equal(t, "gold", resp.Plan.Key)
		assert.Equal(t, "Gold Member", resp.MembershipType)
	})

	t.Run("unmapped", func(t *testing.T) {
		h := NewHandler(oneUser{users.User{ID: 4, MembershipType: "bronze"}}, catalog, zap.NewNop())
		w := getMe(t, h, 4)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"plan":null`)
	})

	t.Run("catalog down", func(t *testing.T) {
		down := catalogFunc(func(context.Context, string) (plans.Catalog, error) { return nil, errors.New("down") })
		h := NewHandler(oneUser{users.User{ID: 4, MembershipType: "gold"}}, down, zap.NewNop())
		assert.Equal(t, http.StatusOK, getMe(t, h, 4).Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := NewHandler(oneUser{users.User{ID: 4}}, catalog, zap.NewNop())
		assert.Equal(t, http.StatusNotFound, getMe(t, h, 9).Code)
	})
}
