package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CategoryService is the category surface used by CategoryHandler.
type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ReplaceCategory(ctx context.Context, id int64, req *models.CategoryRequest) (*models.Category, error)
}

// CategoryHandler handles category HTTP endpoints.
type CategoryHandler struct {
	categoryService CategoryService
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ReplaceCategory handles PUT /categories/:id
func (h *CategoryHandler) ReplaceCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	category, err := h.categoryService.ReplaceCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}
