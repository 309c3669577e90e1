package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// ImageService is the image surface used by ImageHandler.
type ImageService interface {
	UploadImage(ctx context.Context, productID int64, data []byte) (*models.ImageRef, error)
	ListImages(ctx context.Context) ([]models.ImageRef, error)
}

// ImageHandler handles image upload endpoints.
type ImageHandler struct {
	imageService ImageService
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(imageService ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// UploadImage handles POST /images (multipart: "image" file, "product_id" field).
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if c.ContentType() != "multipart/form-data" {
		utils.Error(c, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "Invalid Content-Type. Expected multipart/form-data")
		return
	}

	productID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("product_id")), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required and must be an integer")
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read image")
		return
	}

	img, err := h.imageService.UploadImage(c.Request.Context(), productID, data)
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}
	c.JSON(http.StatusCreated, img)
}

// ListImages handles GET /images
func (h *ImageHandler) ListImages(c *gin.Context) {
	images, err := h.imageService.ListImages(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve images")
		return
	}
	c.JSON(http.StatusOK, images)
}
