package deals

import (
	"context"
	"errors"
	"time"

	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/users"

	"gorm.io/gorm"
)

// Repository provides the DB operations used by the deal, merchant and
// redemption handlers.
type Repository interface {
	GetUser(ctx context.Context, userID uint) (*users.User, error)

	GetMerchant(ctx context.Context, merchantID uint) (*deals.Merchant, error)
	GetMerchantByUser(ctx context.Context, userID uint) (*deals.Merchant, error)
	CreateMerchant(ctx context.Context, m *deals.Merchant) error
	SaveMerchant(ctx context.Context, m *deals.Merchant) error

	GetDeal(ctx context.Context, dealID uint) (*deals.Deal, error)
	CreateDeal(ctx context.Context, d *deals.Deal) error
	SaveDeal(ctx context.Context, d *deals.Deal) error
	ListActiveDeals(ctx context.Context, now time.Time) ([]deals.Deal, error)
	// ExpireDeals moves active deals whose expiry is at or before now to
	// expired and returns how many changed.
	ExpireDeals(ctx context.Context, now time.Time) (int64, error)

	HasRedeemed(ctx context.Context, dealID, userID uint) (bool, error)
	CreateRedemption(ctx context.Context, r *deals.Redemption) error
	ListRedemptions(ctx context.Context, userID uint) ([]deals.Redemption, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a deals repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUser(ctx context.Context, userID uint) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormRepository) GetMerchant(ctx context.Context, merchantID uint) (*deals.Merchant, error) {
	var m deals.Merchant
	if err := r.db.WithContext(ctx).First(&m, merchantID).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *gormRepository) GetMerchantByUser(ctx context.Context, userID uint) (*deals.Merchant, error) {
	var m deals.Merchant
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *gormRepository) CreateMerchant(ctx context.Context, m *deals.Merchant) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) SaveMerchant(ctx context.Context, m *deals.Merchant) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormRepository) GetDeal(ctx context.Context, dealID uint) (*deals.Deal, error) {
	var d deals.Deal
	if err := r.db.WithContext(ctx).Preload("Merchant").First(&d, dealID).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *gormRepository) CreateDeal(ctx context.Context, d *deals.Deal) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *gormRepository) SaveDeal(ctx context.Context, d *deals.Deal) error {
	return r.db.WithContext(ctx).Omit("Merchant").Save(d).Error
}

func (r *gormRepository) ListActiveDeals(ctx context.Context, now time.Time) ([]deals.Deal, error) {
	var out []deals.Deal
	err := r.db.WithContext(ctx).
		Preload("Merchant").
		Where("status = ?", deals.StatusActive).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("min_required_priority ASC, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *gormRepository) ExpireDeals(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&deals.Deal{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", deals.StatusActive, now).
		Update("status", deals.StatusExpired)
	return res.RowsAffected, res.Error
}

func (r *gormRepository) HasRedeemed(ctx context.Context, dealID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&deals.Redemption{}).
		Where("deal_id = ? AND user_id = ?", dealID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *gormRepository) CreateRedemption(ctx context.Context, red *deals.Redemption) error {
	err := r.db.WithContext(ctx).Create(red).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return deals.ErrAlreadyRedeemed
	}
	return err
}

func (r *gormRepository) ListRedemptions(ctx context.Context, userID uint) ([]deals.Redemption, error) {
	var out []deals.Redemption
	err := r.db.WithContext(ctx).
		Preload("Deal").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deals.ErrNotFound
	}
	return err
}
