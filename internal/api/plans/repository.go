package plans

import (
	"context"
	"errors"

	"deals-app/internal/domain/plans"

	"gorm.io/gorm"
)

// Repository provides the plan catalog queries used by the handlers and
// by redemption.
type Repository interface {
	Snapshot(ctx context.Context, planType string) (plans.Catalog, error)
	ListActive(ctx context.Context, planType string) ([]plans.Plan, error)
	GetByKey(ctx context.Context, planType, key string) (*plans.Plan, error)
	GetByStripePriceID(ctx context.Context, priceID string) (*plans.Plan, error)
	Create(ctx context.Context, p *plans.Plan) error
	Save(ctx context.Context, p *plans.Plan) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a plan repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Snapshot reads every plan of a type, inactive ones included, in a single
// query so the resolver sees one coherent result set.
func (r *gormRepository) Snapshot(ctx context.Context, planType string) (plans.Catalog, error) {
	var out []plans.Plan
	err := r.db.WithContext(ctx).
		Where("plan_type = ?", planType).
		Order("priority ASC, plan_key ASC").
		Find(&out).Error
	return plans.Catalog(out), err
}

func (r *gormRepository) ListActive(ctx context.Context, planType string) ([]plans.Plan, error) {
	var out []plans.Plan
	err := r.db.WithContext(ctx).
		Where("plan_type = ? AND is_active = ?", planType, true).
		Order("priority ASC, price ASC").
		Find(&out).Error
	return out, err
}

func (r *gormRepository) GetByKey(ctx context.Context, planType, key string) (*plans.Plan, error) {
	var p plans.Plan
	if err := r.db.WithContext(ctx).Where("plan_type = ? AND plan_key = ?", planType, key).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetByStripePriceID(ctx context.Context, priceID string) (*plans.Plan, error) {
	var p plans.Plan
	if err := r.db.WithContext(ctx).Where("stripe_price_id = ?", priceID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Create(ctx context.Context, p *plans.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) Save(ctx context.Context, p *plans.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
