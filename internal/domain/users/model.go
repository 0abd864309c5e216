package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"not null;uniqueIndex:idx_users_email"`
	Password string `gorm:"not null"`
	Role     string `gorm:"not null;default:'user'"`

	// Membership designation as captured at signup or by an admin.
	// Free-form: "platinum_plus", "Gold", "silver" all occur.
	MembershipType string `gorm:"column:membership_type;not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
