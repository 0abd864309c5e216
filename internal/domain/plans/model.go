package plans

import "time"

type Plan struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Key           string  `gorm:"column:plan_key;not null;uniqueIndex:idx_plans_type_key" json:"key" validate:"required,lowercase,max=50"`
	DisplayName   string  `gorm:"column:display_name;not null" json:"display_name" validate:"required,max=100"`
	Type          string  `gorm:"column:plan_type;not null;uniqueIndex:idx_plans_type_key" json:"type" validate:"required,oneof=user merchant"`
	Priority      int     `gorm:"not null;index" json:"priority" validate:"gte=0"`
	Price         float64 `gorm:"not null" json:"price" validate:"gte=0"`
	Currency      string  `gorm:"size:3;not null" json:"currency" validate:"required,len=3"`
	IsActive      bool    `gorm:"column:is_active;not null" json:"is_active"`
	StripePriceID *string `gorm:"column:stripe_price_id;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
