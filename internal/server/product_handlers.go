package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/cache"
	"github.com/graylock-sec/graylock/internal/models"
)

const productsCacheKey = "content:products:list"

// CreateProductRequest represents an admin product creation request
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required,slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock" binding:"omitempty,gte=0"`
	ImageURL    string  `json:"image_url"`
	CategoryID  string  `json:"category_id"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Slug        *string  `json:"slug" binding:"omitempty,slug"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url"`
	CategoryID  *string  `json:"category_id"`
}

// @Router /api/products [get]
// @Success 200 {array} models.Product
func (s *Server) listProducts(c *gin.Context) {
	products, err := cache.GetOrLoadJSON(s.cache, c.Request.Context(), productsCacheKey, time.Minute,
		func(ctx context.Context) ([]models.Product, error) {
			var out []models.Product
			err := s.db.Preload("Category").Order("created_at DESC").Find(&out).Error
			return out, err
		})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// @Router /api/products/{slug} [get]
// @Param slug path string true "Product slug"
// @Success 200 {object} models.Product
func (s *Server) getProductBySlug(c *gin.Context) {
	var product models.Product
	if err := s.db.Where("slug = ?", c.Param("slug")).Preload("Category").First(&product).Error; err != nil {
		s.respondStoreError(c, err, "Product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Router /api/admin/products [get]
// @Success 200 {array} models.Product
func (s *Server) adminListProducts(c *gin.Context) {
	var products []models.Product
	if err := s.db.Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// adminCreateProduct is create-only: a taken slug is a 409, never an
// upsert (unlike categories).
//
// @Router /api/admin/products [post]
// @Param request body CreateProductRequest true "Create product request"
// @Success 201 {object} models.Product
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
func (s *Server) adminCreateProduct(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid price is required"})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}

	if err := s.db.Create(&product).Error; err != nil {
		s.respondStoreError(c, err, "Product")
		return
	}

	s.cache.Invalidate(c.Request.Context(), productsCacheKey)

	sess, _ := GetSession(c)
	s.logger.Info().
		Str("product_id", product.ID).
		Str("slug", product.Slug).
		Str("created_by", sess.UserID).
		Msg("Product created")

	c.JSON(http.StatusCreated, product)
}

// @Router /api/admin/products/{id} [patch]
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Update product request"
// @Success 200 {object} models.Product
func (s *Server) adminUpdateProduct(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid price is required"})
		return
	}

	var product models.Product
	if err := models.FindByID(s.db, c.Param("id"), &product); err != nil {
		s.respondStoreError(c, err, "Product")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			s.respondStoreError(c, err, "Product")
			return
		}
	}

	s.cache.Invalidate(c.Request.Context(), productsCacheKey)

	c.JSON(http.StatusOK, product)
}

// @Router /api/admin/products/{id} [delete]
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteProduct(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var product models.Product
	if err := models.FindByID(s.db, c.Param("id"), &product); err != nil {
		s.respondStoreError(c, err, "Product")
		return
	}

	if err := s.db.Delete(&product).Error; err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("Failed to delete product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	s.cache.Invalidate(c.Request.Context(), productsCacheKey)

	s.logger.Info().Str("product_id", product.ID).Msg("Product deleted")

	c.Status(http.StatusNoContent)
}
