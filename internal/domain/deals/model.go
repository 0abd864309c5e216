package deals

import (
	"time"

	"deals-app/internal/domain/users"
)

// Merchant (business partner) statuses
const (
	MerchantPending  = "pending"
	MerchantApproved = "approved"
	MerchantRejected = "rejected"
)

// Deal lifecycle: draft -> pending -> active -> expired | rejected
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

type Merchant struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;uniqueIndex" json:"user_id"`
	User         *users.User `json:"-"`
	BusinessName string      `gorm:"not null" json:"business_name"`
	Category     string      `json:"category"`
	Phone        string      `json:"phone"`
	// Merchant plan designation, resolved against the merchant catalog.
	PlanType  string    `gorm:"column:plan_type" json:"plan_type"`
	Status    string    `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Deal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MerchantID  uint      `gorm:"not null;index" json:"merchant_id"`
	Merchant    *Merchant `json:"merchant,omitempty"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Discount    string    `json:"discount"`

	// Audience picks the plan catalog this deal is checked against.
	Audience            string `gorm:"not null;default:'user'" json:"audience"`
	MinRequiredPriority int    `gorm:"column:min_required_priority;not null;default:0" json:"min_required_priority"`

	Status    string     `gorm:"not null;default:'pending';index" json:"status"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Redemption struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	DealID uint   `gorm:"not null;uniqueIndex:idx_redemptions_deal_user" json:"deal_id"`
	Deal   *Deal  `json:"deal,omitempty"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_redemptions_deal_user" json:"user_id"`
	Code   string `gorm:"not null;uniqueIndex" json:"code"`
	// Plan the member was matched to at redemption time, for reporting.
	PlanKey   *string   `gorm:"column:plan_key" json:"plan_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
