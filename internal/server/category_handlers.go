package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/models"
)

// UpsertCategoryRequest represents a category create-or-update request
type UpsertCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required,slug"`
	Description string `json:"description"`
}

// @Router /api/categories [get]
// @Success 200 {array} models.Category
func (s *Server) listCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Router /api/admin/categories [get]
// @Success 200 {array} models.Category
func (s *Server) adminListCategories(c *gin.Context) {
	s.listCategories(c)
}

// adminUpsertCategory creates a category, or updates the existing one
// when the slug is already taken. Categories deliberately upsert where
// products conflict; the divergence is per-resource policy.
//
// @Router /api/admin/categories [post]
// @Param request body UpsertCategoryRequest true "Upsert category request"
// @Success 200 {object} models.Category
// @Success 201 {object} models.Category
// @Failure 400 {object} map[string]interface{}
func (s *Server) adminUpsertCategory(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Category
	err := s.db.Where("slug = ?", req.Slug).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			s.respondStoreError(c, err, "Category")
			return
		}

		s.logger.Info().Str("category_id", existing.ID).Str("slug", existing.Slug).Msg("Category updated")
		c.JSON(http.StatusOK, existing)

	case errors.Is(err, gorm.ErrRecordNotFound):
		category := models.Category{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		}
		if err := s.db.Create(&category).Error; err != nil {
			s.respondStoreError(c, err, "Category")
			return
		}

		s.logger.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
		c.JSON(http.StatusCreated, category)

	default:
		s.logger.Error().Err(err).Msg("Failed to look up category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// @Router /api/admin/categories/{id} [delete]
// @Param id path string true "Category ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteCategory(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var category models.Category
	if err := models.FindByID(s.db, c.Param("id"), &category); err != nil {
		s.respondStoreError(c, err, "Category")
		return
	}

	if err := s.db.Delete(&category).Error; err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID).Msg("Failed to delete category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	s.logger.Info().Str("category_id", category.ID).Msg("Category deleted")

	c.Status(http.StatusNoContent)
}
