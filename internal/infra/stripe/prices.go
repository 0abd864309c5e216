package stripe

import (
	"strconv"
	"strings"

	"deals-app/internal/domain/plans"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
)

// Skip reasons reported by the plan sync.
const (
	SkipInactive     = "inactive"
	SkipOtherProduct = "other_product"
	SkipHidden       = "hidden"
	SkipNoPlanKey    = "no_plan_key"
	SkipBadPriority  = "bad_priority"
	SkipBadType      = "bad_type"
)

// ListRecurringPrices pages through active recurring prices with their
// product expanded. The caller must have set stripe.Key.
func ListRecurringPrices() ([]*stripeapi.Price, error) {
	params := &stripeapi.PriceListParams{}
	params.Active = stripeapi.Bool(true)
	params.Type = stripeapi.String("recurring")
	params.AddExpand("data.product")

	it := price.List(params)
	var out []*stripeapi.Price
	for it.Next() {
		out = append(out, it.Price())
	}
	return out, it.Err()
}

// GetPrice fetches one price with its product expanded, as webhook payloads
// only carry the product id.
func GetPrice(id string) (*stripeapi.Price, error) {
	params := &stripeapi.PriceParams{}
	params.AddExpand("product")
	return price.Get(id, params)
}

// PlanFromPrice maps a Stripe price onto a catalog plan.
// Metadata: plan_key (required), priority (int), plan_type (user|merchant,
// default user), visible=false hides the price. Display name falls back to
// the product name.
func PlanFromPrice(p *stripeapi.Price, productID string) (plans.Plan, string, bool) {
	if p == nil || !p.Active || p.Product == nil || !p.Product.Active {
		return plans.Plan{}, SkipInactive, false
	}
	if productID != "" && p.Product.ID != productID {
		return plans.Plan{}, SkipOtherProduct, false
	}

	md := p.Metadata
	if md == nil {
		md = map[string]string{}
	}
	if md["visible"] == "false" {
		return plans.Plan{}, SkipHidden, false
	}

	key := plans.NormalizeKey(md["plan_key"])
	if key == "" {
		return plans.Plan{}, SkipNoPlanKey, false
	}

	priority := 0
	if raw := strings.TrimSpace(md["priority"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return plans.Plan{}, SkipBadPriority, false
		}
		priority = n
	}

	planType := strings.ToLower(strings.TrimSpace(md["plan_type"]))
	if planType == "" {
		planType = plans.TypeUser
	}
	if !plans.IsValidType(planType) {
		return plans.Plan{}, SkipBadType, false
	}

	name := p.Product.Name
	if v := strings.TrimSpace(p.Nickname); v != "" {
		name = v
	}

	priceID := p.ID
	return plans.Plan{
		Key:           key,
		DisplayName:   name,
		Type:          planType,
		Priority:      priority,
		Price:         float64(p.UnitAmount) / 100.0,
		Currency:      strings.ToUpper(string(p.Currency)),
		IsActive:      true,
		StripePriceID: &priceID,
	}, "", true
}
