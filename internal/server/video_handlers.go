package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/models"
)

// CreateVideoRequest represents an admin video creation request
type CreateVideoRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required,slug"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" binding:"required,url"`
	DurationSec int    `json:"duration_sec" binding:"omitempty,gte=0"`
	Published   bool   `json:"published"`
}

// UpdateVideoRequest represents a partial video update
type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug" binding:"omitempty,slug"`
	Description *string `json:"description"`
	VideoURL    *string `json:"video_url" binding:"omitempty,url"`
	DurationSec *int    `json:"duration_sec" binding:"omitempty,gte=0"`
	Published   *bool   `json:"published"`
}

// @Router /api/videos [get]
// @Success 200 {array} models.Video
func (s *Server) listPublishedVideos(c *gin.Context) {
	var videos []models.Video
	if err := s.db.Where("published = ?", true).Order("created_at DESC").Find(&videos).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// @Router /api/videos/{slug} [get]
// @Param slug path string true "Video slug"
// @Success 200 {object} models.Video
func (s *Server) getVideoBySlug(c *gin.Context) {
	var video models.Video
	if err := s.db.Where("slug = ? AND published = ?", c.Param("slug"), true).First(&video).Error; err != nil {
		s.respondStoreError(c, err, "Video")
		return
	}

	c.JSON(http.StatusOK, video)
}

// @Router /api/admin/videos [get]
// @Success 200 {array} models.Video
func (s *Server) adminListVideos(c *gin.Context) {
	var videos []models.Video
	if err := s.db.Order("created_at DESC").Find(&videos).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// @Router /api/admin/videos [post]
// @Param request body CreateVideoRequest true "Create video request"
// @Success 201 {object} models.Video
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
func (s *Server) adminCreateVideo(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := models.Video{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		DurationSec: req.DurationSec,
		Published:   req.Published,
	}

	if err := s.db.Create(&video).Error; err != nil {
		s.respondStoreError(c, err, "Video")
		return
	}

	s.logger.Info().Str("video_id", video.ID).Str("slug", video.Slug).Msg("Video created")

	c.JSON(http.StatusCreated, video)
}

// @Router /api/admin/videos/{id} [patch]
// @Param id path string true "Video ID"
// @Param request body UpdateVideoRequest true "Update video request"
// @Success 200 {object} models.Video
func (s *Server) adminUpdateVideo(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var video models.Video
	if err := models.FindByID(s.db, c.Param("id"), &video); err != nil {
		s.respondStoreError(c, err, "Video")
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
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.DurationSec != nil {
		updates["duration_sec"] = *req.DurationSec
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) > 0 {
		if err := s.db.Model(&video).Updates(updates).Error; err != nil {
			s.respondStoreError(c, err, "Video")
			return
		}
	}

	c.JSON(http.StatusOK, video)
}

// @Router /api/admin/videos/{id} [delete]
// @Param id path string true "Video ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteVideo(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var video models.Video
	if err := models.FindByID(s.db, c.Param("id"), &video); err != nil {
		s.respondStoreError(c, err, "Video")
		return
	}

	if err := s.db.Delete(&video).Error; err != nil {
		s.logger.Error().Err(err).Str("video_id", video.ID).Msg("Failed to delete video")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}

	s.logger.Info().Str("video_id", video.ID).Msg("Video deleted")

	c.Status(http.StatusNoContent)
}
