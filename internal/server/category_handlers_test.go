package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graylock-sec/graylock/internal/models"
)

func TestAdminUpsertCategory_CreateThenUpdate(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	w := doJSON(t, s, http.MethodPost, "/api/admin/categories", map[string]interface{}{
		"name": "Hardware",
		"slug": "hardware",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	createdID := decodeBody(t, w)["id"]
	require.NotEmpty(t, createdID)

	// Same slug again updates in place instead of conflicting
	w = doJSON(t, s, http.MethodPost, "/api/admin/categories", map[string]interface{}{
		"name":        "Hardware & Gadgets",
		"slug":        "hardware",
		"description": "Physical security tooling",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, createdID, decodeBody(t, w)["id"])

	var count int64
	require.NoError(t, s.db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var cat models.Category
	require.NoError(t, s.db.First(&cat, "slug = ?", "hardware").Error)
	assert.Equal(t, "Hardware & Gadgets", cat.Name)
	assert.Equal(t, "Physical security tooling", cat.Description)
}

func TestAdminUpsertCategory_RejectsBadSlug(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	w := doJSON(t, s, http.MethodPost, "/api/admin/categories", map[string]interface{}{
		"name": "Bad Slug",
		"slug": "Not A Slug!",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDeleteCategory(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	cat := &models.Category{Name: "Training", Slug: "training"}
	require.NoError(t, s.db.Create(cat).Error)

	w := doJSON(t, s, http.MethodDelete, "/api/admin/categories/"+cat.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/admin/categories/"+cat.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategories_PublicAndSorted(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	for _, name := range []string{"Zines", "Appsec", "Malware"} {
		require.NoError(t, s.db.Create(&models.Category{Name: name, Slug: strings.ToLower(name)}).Error)
	}

	w := doJSON(t, s, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "Appsec", out[0].Name)
	assert.Equal(t, "Malware", out[1].Name)
	assert.Equal(t, "Zines", out[2].Name)
}
