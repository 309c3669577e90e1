package service

import (
	"context"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// CategoryRepository is the storage surface CategoryService depends on.
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id int64, name string) (*models.Category, error)
}

// CategoryService handles category operations.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategory creates a category.
func (s *CategoryService) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	return s.repo.Create(ctx, req.Name)
}

// ListCategories returns every category.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

// ReplaceCategory overwrites the category row identified by id.
func (s *CategoryService) ReplaceCategory(ctx context.Context, id int64, req *models.CategoryRequest) (*models.Category, error) {
	return s.repo.Update(ctx, id, req.Name)
}
