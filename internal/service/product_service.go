package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
)

// ProductRepository is the storage surface ProductService depends on.
type ProductRepository interface {
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	AddPriceTiers(ctx context.Context, productID int64, tiers []models.PriceTierRequest) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// ProductCache holds the hydrated product list between writes. SetAll takes
// the Generation observed before the list was loaded and skips the write if
// an Invalidate happened since.
type ProductCache interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	Generation(ctx context.Context) (int64, error)
	SetAll(ctx context.Context, gen int64, products []models.Product) (bool, error)
	Invalidate(ctx context.Context) error
}

// ProductService handles product operations. The cache is optional.
type ProductService struct {
	repo  ProductRepository
	cache ProductCache
}

// NewProductService constructs a ProductService. Pass a nil cache to disable caching.
func NewProductService(repo ProductRepository, cache ProductCache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

// CreateProduct creates a product together with its price tiers.
func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	return p, nil
}

// AddPriceTiers appends tiers to an existing product.
func (s *ProductService) AddPriceTiers(ctx context.Context, productID int64, tiers []models.PriceTierRequest) (*models.Product, error) {
	p, err := s.repo.AddPriceTiers(ctx, productID, tiers)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	return p, nil
}

// GetProduct returns a single hydrated product.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts returns every hydrated product, from cache when possible.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	cacheable := s.cache != nil
	var gen int64
	if cacheable {
		products, err := s.cache.GetAll(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("product cache read failed")
		}
		// Taken before the storage read so a concurrent write is detected.
		if gen, err = s.cache.Generation(ctx); err != nil {
			log.Warn().Err(err).Msg("product cache generation read failed")
			cacheable = false
		}
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		stored, err := s.cache.SetAll(ctx, gen, products)
		if err != nil {
			log.Warn().Err(err).Msg("product cache write failed")
		} else if !stored {
			log.Debug().Msg("product list changed during read, not cached")
		}
	}
	return products, nil
}

// RefreshCache reloads the product list from storage into the cache and
// returns the number of products cached. It is a no-op without a cache, and
// caches nothing if a write invalidated the cache during the reload.
func (s *ProductService) RefreshCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read product cache generation: %w", err)
	}
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	stored, err := s.cache.SetAll(ctx, gen, products)
	if err != nil {
		return 0, fmt.Errorf("failed to write product cache: %w", err)
	}
	if !stored {
		return 0, nil
	}
	return len(products), nil
}

func invalidate(ctx context.Context, c ProductCache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("product cache invalidation failed")
	}
}
