package admin

import (
	"context"

	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/users"

	"gorm.io/gorm"
)

// DesignationCount is one distinct stored membership designation.
type DesignationCount struct {
	MembershipType string
	Count          int64
}

type StatusCount struct {
	Status string
	Count  int64
}

type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountRedemptions(ctx context.Context) (int64, error)
	MerchantsByStatus(ctx context.Context) ([]StatusCount, error)
	DealsByStatus(ctx context.Context) ([]StatusCount, error)
	Designations(ctx context.Context) ([]DesignationCount, error)
	ListUsers(ctx context.Context) ([]users.User, error)
	ListMerchants(ctx context.Context, status string) ([]deals.Merchant, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&users.User{}).Count(&n).Error
	return n, err
}

func (r *gormRepository) CountRedemptions(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&deals.Redemption{}).Count(&n).Error
	return n, err
}

func (r *gormRepository) MerchantsByStatus(ctx context.Context) ([]StatusCount, error) {
	var out []StatusCount
	err := r.db.WithContext(ctx).
		Model(&deals.Merchant{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&out).Error
	return out, err
}

func (r *gormRepository) DealsByStatus(ctx context.Context) ([]StatusCount, error) {
	var out []StatusCount
	err := r.db.WithContext(ctx).
		Model(&deals.Deal{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&out).Error
	return out, err
}

func (r *gormRepository) Designations(ctx context.Context) ([]DesignationCount, error) {
	var out []DesignationCount
	err := r.db.WithContext(ctx).
		Model(&users.User{}).
		Select("membership_type, COUNT(id) AS count").
		Group("membership_type").
		Order("count DESC").
		Scan(&out).Error
	return out, err
}

func (r *gormRepository) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormRepository) ListMerchants(ctx context.Context, status string) ([]deals.Merchant, error) {
	var out []deals.Merchant
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&out).Error
	return out, err
}
