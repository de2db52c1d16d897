package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graylock-sec/graylock/internal/models"
)

func TestListPublishedArticles_HidesDrafts(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	seedArticle(t, s, "published-post", true)
	seedArticle(t, s, "draft-post", false)

	w := doJSON(t, s, http.MethodGet, "/api/articles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []models.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "published-post", out[0].Slug)
}

func TestGetArticleBySlug_OnlyApprovedComments(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	article := seedArticle(t, s, "supply-chain-audit", true)

	require.NoError(t, s.db.Create(&models.Comment{
		ArticleID: article.ID, AuthorName: "Approved", Email: "a@example.com", Body: "x", Approved: true,
	}).Error)
	require.NoError(t, s.db.Create(&models.Comment{
		ArticleID: article.ID, AuthorName: "Pending", Email: "p@example.com", Body: "y",
	}).Error)

	w := doJSON(t, s, http.MethodGet, "/api/articles/supply-chain-audit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var out models.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "Approved", out.Comments[0].AuthorName)
}

func TestGetArticleBySlug_DraftIsNotFound(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	seedArticle(t, s, "unreleased-advisory", false)

	w := doJSON(t, s, http.MethodGet, "/api/articles/unreleased-advisory", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateArticle_RecordsAuthor(t *testing.T) {
	s := newTestServer(t)
	token := setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/admin/articles", map[string]interface{}{
		"title":     "Phishing Kits in 2026",
		"slug":      "phishing-kits-2026",
		"content":   "...",
		"published": true,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var root models.User
	require.NoError(t, s.db.First(&root, "email = ?", "root@graylock.example").Error)

	var stored models.Article
	require.NoError(t, s.db.First(&stored, "slug = ?", "phishing-kits-2026").Error)
	assert.Equal(t, root.ID, stored.AuthorID)
}

func TestAdminUpdateArticle_PublishFlagOnly(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)
	article := seedArticle(t, s, "edr-evasion-review", false)

	w := doJSON(t, s, http.MethodPatch, "/api/admin/articles/"+article.ID, map[string]interface{}{
		"published": true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Article
	require.NoError(t, s.db.First(&stored, "id = ?", article.ID).Error)
	assert.True(t, stored.Published)
	assert.Equal(t, article.Title, stored.Title)
}

func TestAdminDeleteArticle(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)
	article := seedArticle(t, s, "old-post", true)

	w := doJSON(t, s, http.MethodDelete, "/api/admin/articles/"+article.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/admin/articles/"+article.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
