package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"deals-app/internal/domain/plans"

	"go.uber.org/zap"
)

// CatalogSource hands out a coherent plan catalog for one audience.
type CatalogSource interface {
	Snapshot(ctx context.Context, planType string) (plans.Catalog, error)
}

// CatalogInvalidator drops cached snapshots after catalog writes.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

const catalogKeyPrefix = "catalog:plans:"

func catalogKey(planType string) string {
	return catalogKeyPrefix + planType
}

// CachedCatalog serves snapshots from a Store and falls back to the
// underlying source on any cache failure.
type CachedCatalog struct {
	source CatalogSource
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(source CatalogSource, store Store, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{source: source, store: store, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) Snapshot(ctx context.Context, planType string) (plans.Catalog, error) {
	key := catalogKey(planType)

	raw, err := c.store.Get(ctx, key)
	if err == nil {
		var catalog plans.Catalog
		jerr := json.Unmarshal([]byte(raw), &catalog)
		if jerr == nil {
			return catalog, nil
		}
		c.logger.Warn("Discarding unreadable catalog snapshot", zap.String("key", key), zap.Error(jerr))
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("Catalog cache read failed, using database", zap.String("key", key), zap.Error(err))
	}

	catalog, err := c.source.Snapshot(ctx, planType)
	if err != nil {
		return nil, err
	}

	if buf, jerr := json.Marshal(catalog); jerr == nil {
		if serr := c.store.Set(ctx, key, string(buf), c.ttl); serr != nil {
			c.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return catalog, nil
}

func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, catalogKey(plans.TypeUser), catalogKey(plans.TypeMerchant))
}

// NopInvalidator is used when the catalog is served straight from the database.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context) error { return nil }
