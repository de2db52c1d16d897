package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/models"
	"github.com/graylock-sec/graylock/internal/tasks"
)

// CreateCommentRequest represents a public comment submission
type CreateCommentRequest struct {
	ArticleID  string `json:"article_id" binding:"required"`
	AuthorName string `json:"author_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Body       string `json:"body" binding:"required,max=4000"`
}

// createComment accepts a reader comment; it stays hidden until an
// admin approves it.
//
// @Router /api/comments [post]
// @Param request body CreateCommentRequest true "Comment submission"
// @Success 201 {object} models.Comment
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
func (s *Server) createComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Comments only attach to published articles
	var article models.Article
	if err := s.db.Where("id = ? AND published = ?", req.ArticleID, true).First(&article).Error; err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	comment := models.Comment{
		ArticleID:  article.ID,
		AuthorName: req.AuthorName,
		Email:      req.Email,
		Body:       req.Body,
	}

	if err := s.db.Create(&comment).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if task, err := tasks.NewCommentNotificationTask(comment.ID); err == nil {
		if _, err := s.asynqClient.Enqueue(task); err != nil {
			s.logger.Warn().Err(err).Str("comment_id", comment.ID).Msg("Failed to enqueue comment notification")
		}
	}

	s.logger.Info().
		Str("comment_id", comment.ID).
		Str("article_id", article.ID).
		Msg("Comment submitted for moderation")

	c.JSON(http.StatusCreated, comment)
}

// @Router /api/admin/comments [get]
// @Success 200 {array} models.Comment
func (s *Server) adminListComments(c *gin.Context) {
	query := s.db.Order("created_at DESC")
	if c.Query("pending") == "true" {
		query = query.Where("approved = ?", false)
	}

	var comments []models.Comment
	if err := query.Find(&comments).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// @Router /api/admin/comments/{id}/approve [post]
// @Param id path string true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminApproveComment(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var comment models.Comment
	if err := models.FindByID(s.db, c.Param("id"), &comment); err != nil {
		s.respondStoreError(c, err, "Comment")
		return
	}

	if err := s.db.Model(&comment).Update("approved", true).Error; err != nil {
		s.logger.Error().Err(err).Str("comment_id", comment.ID).Msg("Failed to approve comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve comment"})
		return
	}
	comment.Approved = true

	sess, _ := GetSession(c)
	s.logger.Info().
		Str("comment_id", comment.ID).
		Str("approved_by", sess.UserID).
		Msg("Comment approved")

	c.JSON(http.StatusOK, comment)
}

// @Router /api/admin/comments/{id} [delete]
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteComment(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var comment models.Comment
	if err := models.FindByID(s.db, c.Param("id"), &comment); err != nil {
		s.respondStoreError(c, err, "Comment")
		return
	}

	if err := s.db.Delete(&comment).Error; err != nil {
		s.logger.Error().Err(err).Str("comment_id", comment.ID).Msg("Failed to delete comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	s.logger.Info().Str("comment_id", comment.ID).Msg("Comment deleted")

	c.Status(http.StatusNoContent)
}
