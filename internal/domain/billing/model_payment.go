package billing

import (
	"time"

	"deals-app/internal/domain/users"
)

const (
	StatusPaid     = "paid"
	StatusCanceled = "canceled"
)

// Payment is one completed plan upgrade checkout. PreviousMembershipType
// holds the designation the member had before the upgrade, restored when
// the subscription ends.
type Payment struct {
	ID                     uint        `gorm:"primaryKey" json:"id"`
	UserID                 uint        `gorm:"not null;index" json:"user_id"`
	User                   *users.User `json:"-"`
	PlanKey                string      `gorm:"column:plan_key;not null" json:"plan_key"`
	PreviousMembershipType string      `gorm:"column:previous_membership_type" json:"-"`
	StripeSessionID        string      `gorm:"uniqueIndex" json:"-"`
	StripeSubscriptionID   *string     `gorm:"index" json:"-"`
	Amount                 float64     `json:"amount"`
	Currency               string      `gorm:"size:3" json:"currency"`
	Status                 string      `gorm:"not null" json:"status"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"-"`
}
