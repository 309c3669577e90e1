package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// ProductService is the product surface used by ProductHandler.
type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	AddPriceTiers(ctx context.Context, productID int64, tiers []models.PriceTierRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// ProductHandler handles product HTTP endpoints.
type ProductHandler struct {
	productService ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// AddPriceTiers handles POST /products/:id/prices
func (h *ProductHandler) AddPriceTiers(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var tiers []models.PriceTierRequest
	if err := c.ShouldBindJSON(&tiers); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.AddPriceTiers(c.Request.Context(), id, tiers)
	if err != nil {
		respondError(c, err, "Failed to add price tiers")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return 0, false
	}
	return id, true
}
