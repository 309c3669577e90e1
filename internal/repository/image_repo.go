package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// pqForeignKeyViolation is the SQLSTATE raised when a child row names a missing parent.
const pqForeignKeyViolation = "23503"

// ImageRepository handles data access for product image references.
type ImageRepository struct {
	db *sqlx.DB
}

// NewImageRepository creates a new ImageRepository.
func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create records an image path for productID.
func (r *ImageRepository) Create(ctx context.Context, productID int64, path string) (*models.ImageRef, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: image path is required", utils.ErrValidation)
	}

	const q = `INSERT INTO images (product_id, image_path) VALUES ($1, $2) RETURNING id`
	img := &models.ImageRef{ProductID: productID, ImagePath: path}
	if err := r.db.QueryRowxContext(ctx, q, productID, path).Scan(&img.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return img, nil
}

// GetAll returns every image reference ordered by id.
func (r *ImageRepository) GetAll(ctx context.Context) ([]models.ImageRef, error) {
	const q = `SELECT id, product_id, image_path FROM images ORDER BY id`
	images := make([]models.ImageRef, 0)
	if err := r.db.SelectContext(ctx, &images, q); err != nil {
		return nil, err
	}
	return images, nil
}
