package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/models"
)

// @Router /api/gallery [get]
// @Success 200 {array} models.GalleryImage
func (s *Server) listGalleryImages(c *gin.Context) {
	var images []models.GalleryImage
	if err := s.db.Order("created_at DESC").Find(&images).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list gallery images")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, images)
}

// adminUploadGalleryImage accepts a multipart upload and stores the
// file on disk before the row, so a failed write never leaves a row
// pointing at nothing.
//
// @Router /api/admin/gallery [post]
// @Accept multipart/form-data
// @Param file formData file true "Image file"
// @Param title formData string false "Image title"
// @Success 201 {object} models.GalleryImage
// @Failure 400 {object} map[string]interface{}
func (s *Server) adminUploadGalleryImage(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	name, contentType, size, err := s.uploads.Save(fh)
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", fh.Filename).Msg("Upload rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
		return
	}

	image := models.GalleryImage{
		Title:       c.PostForm("title"),
		FilePath:    name,
		ContentType: contentType,
		SizeBytes:   size,
	}

	if err := s.db.Create(&image).Error; err != nil {
		// Roll the file back so disk and store stay in sync
		_ = s.uploads.Remove(name)
		s.logger.Error().Err(err).Msg("Failed to create gallery image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	sess, _ := GetSession(c)
	s.logger.Info().
		Str("image_id", image.ID).
		Str("file", name).
		Int64("size_bytes", size).
		Str("uploaded_by", sess.UserID).
		Msg("Gallery image uploaded")

	c.JSON(http.StatusCreated, image)
}

// @Router /api/admin/gallery/{id} [delete]
// @Param id path string true "Image ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteGalleryImage(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var image models.GalleryImage
	if err := models.FindByID(s.db, c.Param("id"), &image); err != nil {
		s.respondStoreError(c, err, "Image")
		return
	}

	if err := s.db.Delete(&image).Error; err != nil {
		s.logger.Error().Err(err).Str("image_id", image.ID).Msg("Failed to delete gallery image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	// File removal is best-effort after the row is gone
	if err := s.uploads.Remove(image.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("file", image.FilePath).Msg("Failed to remove uploaded file")
	}

	s.logger.Info().Str("image_id", image.ID).Msg("Gallery image deleted")

	c.Status(http.StatusNoContent)
}
