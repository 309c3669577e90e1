package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// ImageRepository is the storage surface ImageService depends on.
type ImageRepository interface {
	Create(ctx context.Context, productID int64, path string) (*models.ImageRef, error)
	GetAll(ctx context.Context) ([]models.ImageRef, error)
}

// ProductExistenceChecker reports whether a product exists.
type ProductExistenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ImageService handles product image uploads.
type ImageService struct {
	products ProductExistenceChecker
	images   ImageRepository
	store    ImageStore
	cache    ProductCache
	maxBytes int64
}

// NewImageService constructs an ImageService. maxBytes <= 0 disables the size limit.
func NewImageService(products ProductExistenceChecker, images ImageRepository, store ImageStore, cache ProductCache, maxBytes int64) *ImageService {
	return &ImageService{
		products: products,
		images:   images,
		store:    store,
		cache:    cache,
		maxBytes: maxBytes,
	}
}

// UploadImage stores data for productID and records its path.
func (s *ImageService) UploadImage(ctx context.Context, productID int64, data []byte) (*models.ImageRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is required", utils.ErrValidation)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", utils.ErrValidation, s.maxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: unsupported image type %s", utils.ErrValidation, mt.String())
	}

	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
	}

	path, err := s.store.Save(ctx, data, mt.String(), mt.Extension())
	if err != nil {
		return nil, err
	}

	img, err := s.images.Create(ctx, productID, path)
	if err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			log.Warn().Err(delErr).Str("path", path).Msg("failed to remove orphaned image")
		}
		return nil, err
	}

	invalidate(ctx, s.cache)
	log.Info().Int64("product_id", productID).Str("path", path).Msg("image stored")
	return img, nil
}

// ListImages returns every image reference.
func (s *ImageService) ListImages(ctx context.Context) ([]models.ImageRef, error) {
	return s.images.GetAll(ctx)
}
