package deals

import (
	"fmt"
	"strconv"
	"strings"

	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/plans"
)

// FallbackDenialMessage is shown when no active plan clears the deal.
const FallbackDenialMessage = "This deal is not available on your current plan. Please contact support."

// UpgradeMessage turns the first upgrade option into the prompt shown to
// the member, or the support fallback when there is none.
func UpgradeMessage(options []plans.Plan) string {
	if len(options) == 0 {
		return FallbackDenialMessage
	}
	p := options[0]
	return fmt.Sprintf("Upgrade to %s plan (%s %s) to redeem this exclusive deal!",
		p.DisplayName, strings.ToUpper(p.Currency), formatPrice(p.Price))
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func BuildMatchedPlanDTO(p *plans.Plan) *MatchedPlanDTO {
	if p == nil {
		return nil
	}
	return &MatchedPlanDTO{Key: p.Key, Name: p.DisplayName, Priority: p.Priority}
}

func BuildUpgradeOptions(options []plans.Plan) []UpgradeOptionDTO {
	out := make([]UpgradeOptionDTO, 0, len(options))
	for _, p := range options {
		out = append(out, UpgradeOptionDTO{
			Key:      p.Key,
			Name:     p.DisplayName,
			Priority: p.Priority,
			Price:    p.Price,
			Currency: p.Currency,
		})
	}
	return out
}

func BuildDealDTO(d deals.Deal) DealDTO {
	var merchantName *string
	if d.Merchant != nil {
		merchantName = &d.Merchant.BusinessName
	}
	return DealDTO{
		ID:                  d.ID,
		Title:               d.Title,
		Description:         d.Description,
		Discount:            d.Discount,
		Audience:            d.Audience,
		MinRequiredPriority: d.MinRequiredPriority,
		Status:              d.Status,
		MerchantName:        merchantName,
		StartsAt:            d.StartsAt,
		ExpiresAt:           d.ExpiresAt,
	}
}

func BuildRedemptionDTO(r deals.Redemption) RedemptionDTO {
	var title *string
	if r.Deal != nil {
		title = &r.Deal.Title
	}
	return RedemptionDTO{
		Code:      r.Code,
		DealID:    r.DealID,
		DealTitle: title,
		PlanKey:   r.PlanKey,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04"),
	}
}
