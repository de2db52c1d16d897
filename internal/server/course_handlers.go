package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/models"
)

// CreateCourseRequest represents an admin course creation request
type CreateCourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Slug        string  `json:"slug" binding:"required,slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Published   bool    `json:"published"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug" binding:"omitempty,slug"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Published   *bool    `json:"published"`
}

// @Router /api/courses [get]
// @Success 200 {array} models.Course
func (s *Server) listPublishedCourses(c *gin.Context) {
	var courses []models.Course
	if err := s.db.Where("published = ?", true).Order("created_at DESC").Find(&courses).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list courses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Router /api/courses/{slug} [get]
// @Param slug path string true "Course slug"
// @Success 200 {object} models.Course
func (s *Server) getCourseBySlug(c *gin.Context) {
	var course models.Course
	if err := s.db.Where("slug = ? AND published = ?", c.Param("slug"), true).First(&course).Error; err != nil {
		s.respondStoreError(c, err, "Course")
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Router /api/admin/courses [get]
// @Success 200 {array} models.Course
func (s *Server) adminListCourses(c *gin.Context) {
	var courses []models.Course
	if err := s.db.Order("created_at DESC").Find(&courses).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list courses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Router /api/admin/courses [post]
// @Param request body CreateCourseRequest true "Create course request"
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
func (s *Server) adminCreateCourse(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid price is required"})
		return
	}

	course := models.Course{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Published:   req.Published,
	}

	if err := s.db.Create(&course).Error; err != nil {
		s.respondStoreError(c, err, "Course")
		return
	}

	s.logger.Info().Str("course_id", course.ID).Str("slug", course.Slug).Msg("Course created")

	c.JSON(http.StatusCreated, course)
}

// @Router /api/admin/courses/{id} [patch]
// @Param id path string true "Course ID"
// @Param request body UpdateCourseRequest true "Update course request"
// @Success 200 {object} models.Course
func (s *Server) adminUpdateCourse(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid price is required"})
		return
	}

	var course models.Course
	if err := models.FindByID(s.db, c.Param("id"), &course); err != nil {
		s.respondStoreError(c, err, "Course")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
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
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) > 0 {
		if err := s.db.Model(&course).Updates(updates).Error; err != nil {
			s.respondStoreError(c, err, "Course")
			return
		}
	}

	c.JSON(http.StatusOK, course)
}

// @Router /api/admin/courses/{id} [delete]
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteCourse(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var course models.Course
	if err := models.FindByID(s.db, c.Param("id"), &course); err != nil {
		s.respondStoreError(c, err, "Course")
		return
	}

	if err := s.db.Delete(&course).Error; err != nil {
		s.logger.Error().Err(err).Str("course_id", course.ID).Msg("Failed to delete course")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	s.logger.Info().Str("course_id", course.ID).Msg("Course deleted")

	c.Status(http.StatusNoContent)
}
