package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/cache"
	"github.com/graylock-sec/graylock/internal/models"
)

const articlesCacheKey = "content:articles:published"

// CreateArticleRequest represents an admin article creation request
type CreateArticleRequest struct {
	Title      string `json:"title" binding:"required"`
	Slug       string `json:"slug" binding:"required,slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	CoverURL   string `json:"cover_url"`
	Published  bool   `json:"published"`
	CategoryID string `json:"category_id"`
}

// UpdateArticleRequest represents a partial article update.
// Pointer fields distinguish "not sent" from zero values.
type UpdateArticleRequest struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug" binding:"omitempty,slug"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CoverURL   *string `json:"cover_url"`
	Published  *bool   `json:"published"`
	CategoryID *string `json:"category_id"`
}

// @Router /api/articles [get]
// @Success 200 {array} models.Article
func (s *Server) listPublishedArticles(c *gin.Context) {
	articles, err := cache.GetOrLoadJSON(s.cache, c.Request.Context(), articlesCacheKey, time.Minute,
		func(ctx context.Context) ([]models.Article, error) {
			var out []models.Article
			err := s.db.Where("published = ?", true).
				Preload("Category").
				Order("created_at DESC").
				Find(&out).Error
			return out, err
		})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list articles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, articles)
}

// @Router /api/articles/{slug} [get]
// @Param slug path string true "Article slug"
// @Success 200 {object} models.Article
func (s *Server) getArticleBySlug(c *gin.Context) {
	var article models.Article
	err := s.db.Where("slug = ? AND published = ?", c.Param("slug"), true).
		Preload("Category").
		Preload("Comments", "approved = ?", true).
		First(&article).Error
	if err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	c.JSON(http.StatusOK, article)
}

// @Router /api/admin/articles [get]
// @Success 200 {array} models.Article
func (s *Server) adminListArticles(c *gin.Context) {
	var articles []models.Article
	if err := s.db.Preload("Category").Order("created_at DESC").Find(&articles).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list articles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, articles)
}

// @Router /api/admin/articles/{id} [get]
// @Param id path string true "Article ID"
// @Success 200 {object} models.Article
func (s *Server) adminGetArticle(c *gin.Context) {
	var article models.Article
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &article, "Category", "Comments"); err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	c.JSON(http.StatusOK, article)
}

// @Router /api/admin/articles [post]
// @Param request body CreateArticleRequest true "Create article request"
// @Success 201 {object} models.Article
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
func (s *Server) adminCreateArticle(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, _ := GetSession(c)
	article := models.Article{
		Title:      req.Title,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverURL:   req.CoverURL,
		Published:  req.Published,
		CategoryID: req.CategoryID,
		AuthorID:   sess.UserID,
	}

	if err := s.db.Create(&article).Error; err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	s.cache.Invalidate(c.Request.Context(), articlesCacheKey)

	s.logger.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("created_by", sess.UserID).
		Msg("Article created")

	c.JSON(http.StatusCreated, article)
}

// @Router /api/admin/articles/{id} [patch]
// @Param id path string true "Article ID"
// @Param request body UpdateArticleRequest true "Update article request"
// @Success 200 {object} models.Article
func (s *Server) adminUpdateArticle(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var article models.Article
	if err := models.FindByID(s.db, c.Param("id"), &article); err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Excerpt != nil {
		updates["excerpt"] = *req.Excerpt
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&article).Updates(updates).Error; err != nil {
			s.respondStoreError(c, err, "Article")
			return
		}
	}

	s.cache.Invalidate(c.Request.Context(), articlesCacheKey)

	c.JSON(http.StatusOK, article)
}

// @Router /api/admin/articles/{id} [delete]
// @Param id path string true "Article ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminDeleteArticle(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var article models.Article
	if err := models.FindByID(s.db, c.Param("id"), &article); err != nil {
		s.respondStoreError(c, err, "Article")
		return
	}

	if err := s.db.Delete(&article).Error; err != nil {
		s.logger.Error().Err(err).Str("article_id", article.ID).Msg("Failed to delete article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
		return
	}

	s.cache.Invalidate(c.Request.Context(), articlesCacheKey)

	s.logger.Info().Str("article_id", article.ID).Msg("Article deleted")

	c.Status(http.StatusNoContent)
}
