package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CategoryRepository handles data access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and returns it with its generated id.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrValidation)
	}

	const q = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	c := &models.Category{Name: name}
	if err := r.db.QueryRowxContext(ctx, q, name).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// GetAll returns every category ordered by id.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	const q = `SELECT id, name FROM categories ORDER BY id`
	categories := make([]models.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}

// Update replaces the whole category row.
func (r *CategoryRepository) Update(ctx context.Context, id int64, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrValidation)
	}

	const q = `UPDATE categories SET name = $2 WHERE id = $1 RETURNING id, name`
	var c models.Category
	if err := r.db.GetContext(ctx, &c, q, id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %d", utils.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}
