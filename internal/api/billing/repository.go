package billing

import (
	"context"
	"errors"

	"deals-app/internal/domain/billing"
	"deals-app/internal/domain/users"

	"gorm.io/gorm"
)

var (
	ErrDuplicatePayment = errors.New("billing: payment already recorded")
	ErrNoActiveUpgrade  = errors.New("billing: no active upgrade for subscription")
)

type Repository interface {
	GetUser(ctx context.Context, id uint) (*users.User, error)
	// RecordUpgrade stores the payment and switches the designation in one
	// transaction. A replayed session returns ErrDuplicatePayment.
	RecordUpgrade(ctx context.Context, p *billing.Payment) error
	// RevertUpgrade marks the paid upgrade behind subscriptionID canceled and
	// restores the member's previous designation, unless the designation has
	// moved on since. Returns ErrNoActiveUpgrade when nothing is paid.
	RevertUpgrade(ctx context.Context, subscriptionID string) (*billing.Payment, error)
	ListPayments(ctx context.Context, userID uint) ([]billing.Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUser(ctx context.Context, id uint) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) RecordUpgrade(ctx context.Context, p *billing.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u users.User
		if err := tx.Select("membership_type").First(&u, p.UserID).Error; err != nil {
			return err
		}
		p.PreviousMembershipType = u.MembershipType

		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePayment
			}
			return err
		}
		return tx.Model(&users.User{}).
			Where("id = ?", p.UserID).
			Update("membership_type", p.PlanKey).Error
	})
}

func (r *gormRepository) RevertUpgrade(ctx context.Context, subscriptionID string) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("stripe_subscription_id = ? AND status = ?", subscriptionID, billing.StatusPaid).
			Order("created_at DESC").
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveUpgrade
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&p).Update("status", billing.StatusCanceled).Error; err != nil {
			return err
		}
		return tx.Model(&users.User{}).
			Where("id = ? AND membership_type = ?", p.UserID, p.PlanKey).
			Update("membership_type", p.PreviousMembershipType).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListPayments(ctx context.Context, userID uint) ([]billing.Payment, error) {
	var out []billing.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
