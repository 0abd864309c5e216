package plans

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOfType(t *testing.T) {
	c := Catalog{
		{Key: "silver", Type: TypeUser},
		{Key: "starter", Type: TypeMerchant},
		{Key: "gold", Type: TypeUser},
	}

	users := c.OfType(TypeUser)
	require.Len(t, users, 2)
	assert.Equal(t, "silver", users[0].Key)
	assert.Equal(t, "gold", users[1].Key)

	assert.Empty(t, c.OfType("unknown"))
}

func TestCatalogFind(t *testing.T) {
	c := Catalog{{Key: "silver", Priority: 2}}
	p := c.Find("silver")
	require.NotNil(t, p)
	p.Priority = 7
	assert.Equal(t, 2, c[0].Priority)
	assert.Nil(t, c.Find("Silver"))
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Catalog
		want error
	}{
		{
			name: "healthy",
			c:    Catalog{{Key: "silver", Priority: 2}, {Key: "gold", Priority: 3}},
		},
		{
			name: "single plan",
			c:    Catalog{{Key: "silver", Priority: 0}},
		},
		{
			name: "duplicate key",
			c:    Catalog{{Key: "gold", Priority: 2}, {Key: "gold", Priority: 3}},
			want: ErrDuplicateKey,
		},
		{
			name: "empty key",
			c:    Catalog{{Key: " ", Priority: 2}},
			want: ErrEmptyKey,
		},
		{
			name: "all zero priorities",
			c:    Catalog{{Key: "silver"}, {Key: "gold"}, {Key: "platinum"}},
			want: ErrDegeneratePriorities,
		},
		{
			name: "same key different type",
			c:    Catalog{{Key: "gold", Type: TypeUser, Priority: 1}, {Key: "gold", Type: TypeMerchant, Priority: 2}},
		},
	}

	for _, tt := range tests {
		err := tt.c.Validate()
		if tt.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestValidatePlan(t *testing.T) {
	ok := &Plan{Key: "gold", DisplayName: "Gold", Type: TypeUser, Priority: 3, Price: 150, Currency: "GHS"}
	require.NoError(t, ValidatePlan(ok))

	bad := *ok
	bad.Key = "Gold"
	assert.ErrorIs(t, ValidatePlan(&bad), ErrInvalidPlan)

	bad = *ok
	bad.Type = "vip"
	assert.ErrorIs(t, ValidatePlan(&bad), ErrInvalidPlan)
	assert.ErrorIs(t, ValidatePlan(&bad), ErrUnknownType)

	bad = *ok
	bad.Currency = "CEDI"
	assert.ErrorIs(t, ValidatePlan(&bad), ErrInvalidPlan)

	assert.ErrorIs(t, ValidatePlan(nil), ErrInvalidPlan)
}

func TestValidateType(t *testing.T) {
	assert.NoError(t, ValidateType(TypeUser))
	assert.NoError(t, ValidateType(TypeMerchant))
	assert.ErrorIs(t, ValidateType("vip"), ErrUnknownType)
	assert.ErrorIs(t, ValidateType(""), ErrUnknownType)
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Gold", want: "gold"},
		{in: "  Platinum Plus ", want: "platinum_plus"},
		{in: "silver-member", want: "silver_member"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
