package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

const (
	productsKey   = "catalog:products"
	generationKey = "catalog:products:gen"
)

// Store is the key-value surface ProductCache needs. *RedisClient satisfies it.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	SetIfUnchanged(ctx context.Context, guardKey string, guard int64, key string, value []byte, ttl time.Duration) (bool, error)
}

// ProductCache keeps the hydrated product list so repeated listings skip the
// aggregation query.
//
// Every Invalidate bumps a generation counter. A reader takes Generation
// before loading from storage and hands it to SetAll, which refuses the write
// if a writer invalidated in between. That keeps a snapshot taken before a
// write from being cached after it.
type ProductCache struct {
	store Store
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(store Store, ttl time.Duration) *ProductCache {
	return &ProductCache{store: store, ttl: ttl}
}

// GetAll returns the cached list, or ErrMiss.
func (c *ProductCache) GetAll(ctx context.Context) ([]models.Product, error) {
	raw, err := c.store.Get(ctx, productsKey)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached products: %w", err)
	}
	return products, nil
}

// Generation returns the current invalidation generation, 0 if none yet.
func (c *ProductCache) Generation(ctx context.Context) (int64, error) {
	raw, err := c.store.Get(ctx, generationKey)
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product cache generation %q: %w", raw, err)
	}
	return gen, nil
}

// SetAll caches products that were loaded under generation gen. It reports
// false, without writing, when the cache was invalidated since.
func (c *ProductCache) SetAll(ctx context.Context, gen int64, products []models.Product) (bool, error) {
	raw, err := json.Marshal(products)
	if err != nil {
		return false, fmt.Errorf("failed to marshal products: %w", err)
	}
	return c.store.SetIfUnchanged(ctx, generationKey, gen, productsKey, raw, c.ttl)
}

// Invalidate bumps the generation, then drops the cached list.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	var incrErr error
	if _, err := c.store.Incr(ctx, generationKey); err != nil {
		incrErr = fmt.Errorf("failed to bump product cache generation: %w", err)
	}
	return errors.Join(incrErr, c.store.Delete(ctx, productsKey))
}
