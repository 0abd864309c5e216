package deals

import "time"

// ---------- requests

type ApplyMerchantRequest struct {
	BusinessName string `json:"business_name" binding:"required,max=200"`
	Category     string `json:"category" binding:"max=100"`
	Phone        string `json:"phone" binding:"max=30"`
	PlanType     string `json:"plan_type" binding:"max=50"`
}

type CreateDealRequest struct {
	Title               string     `json:"title" binding:"required,max=200"`
	Description         string     `json:"description"`
	Discount            string     `json:"discount" binding:"max=100"`
	Audience            string     `json:"audience" binding:"omitempty,oneof=user merchant"`
	MinRequiredPriority int        `json:"min_required_priority" binding:"gte=0"`
	StartsAt            *time.Time `json:"starts_at"`
	ExpiresAt           *time.Time `json:"expires_at"`
}

// ---------- responses

type UpgradeOptionDTO struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Priority int     `json:"priority"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type MatchedPlanDTO struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

type RedeemResponse struct {
	Message        string          `json:"message"`
	RedemptionCode string          `json:"redemption_code"`
	MatchedPlan    *MatchedPlanDTO `json:"matched_plan"`
}

type RedeemDeniedResponse struct {
	Error          string             `json:"error"`
	Message        string             `json:"message"`
	CurrentPlan    *MatchedPlanDTO    `json:"current_plan"`
	RequiredLevel  int                `json:"required_priority"`
	UpgradeOptions []UpgradeOptionDTO `json:"upgrade_options"`
}

type DealDTO struct {
	ID                  uint       `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Discount            string     `json:"discount"`
	Audience            string     `json:"audience"`
	MinRequiredPriority int        `json:"min_required_priority"`
	Status              string     `json:"status"`
	MerchantName        *string    `json:"merchant_name,omitempty"`
	StartsAt            *time.Time `json:"starts_at,omitempty"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
}

type RedemptionDTO struct {
	Code      string  `json:"code"`
	DealID    uint    `json:"deal_id"`
	DealTitle *string `json:"deal_title,omitempty"`
	PlanKey   *string `json:"plan_key,omitempty"`
	CreatedAt string  `json:"created_at"`
}
