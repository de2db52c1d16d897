package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graylock-sec/graylock/internal/models"
)

func TestSetup_OnlyRunsOnce(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/setup", map[string]interface{}{
		"email":    "second@graylock.example",
		"password": "correct-horse-battery",
		"name":     "Second",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Setup already completed", decodeBody(t, w)["error"])
}

func TestSetup_RejectsShortPassword(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/setup", map[string]interface{}{
		"email":    "root@graylock.example",
		"password": "short",
		"name":     "Root",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "root@graylock.example",
		"password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, models.RoleSuperAdmin, resp.User.Role)

	// Session cookie is set alongside the token
	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "graylock_session" && cookie.Value != "" {
			found = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, found, "expected session cookie in response")
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "root@graylock.example",
		"password": "definitely-not-right",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "nobody@graylock.example",
		"password": "definitely-not-right",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestGetCurrentUser(t *testing.T) {
	s := newTestServer(t)
	token := setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root@graylock.example", decodeBody(t, w)["email"])

	w = doJSON(t, s, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCreateUser(t *testing.T) {
	s := newTestServer(t)
	token := setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/admin/users", map[string]interface{}{
		"email":    "editor@graylock.example",
		"name":     "Editor",
		"password": "editor-password-123",
		"role":     "ADMIN",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "ADMIN", body["role"])
	assert.NotContains(t, body, "password_hash")

	// Duplicate email conflicts
	w = doJSON(t, s, http.MethodPost, "/api/admin/users", map[string]interface{}{
		"email":    "editor@graylock.example",
		"name":     "Editor Again",
		"password": "editor-password-123",
		"role":     "ADMIN",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminCreateUser_RejectsUnknownRole(t *testing.T) {
	s := newTestServer(t)
	token := setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/admin/users", map[string]interface{}{
		"email":    "weird@graylock.example",
		"name":     "Weird",
		"password": "weird-password-123",
		"role":     "ROOT",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	s := newTestServer(t)
	superToken := setupSuperAdmin(t, s)
	tokenForRole(t, s, "victim@graylock.example", models.RoleUser)

	var victim models.User
	require.NoError(t, s.db.First(&victim, "email = ?", "victim@graylock.example").Error)

	w := doJSON(t, s, http.MethodDelete, "/api/admin/users/"+victim.ID, nil, superToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/admin/users/"+victim.ID, nil, superToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeleteUser_PlainAdminDenied(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	adminToken := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)
	tokenForRole(t, s, "other@graylock.example", models.RoleUser)

	var other models.User
	require.NoError(t, s.db.First(&other, "email = ?", "other@graylock.example").Error)

	w := doJSON(t, s, http.MethodDelete, "/api/admin/users/"+other.ID, nil, adminToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, w)["error"])
}

func TestAdminDeleteUser_CannotDeleteSelf(t *testing.T) {
	s := newTestServer(t)
	superToken := setupSuperAdmin(t, s)

	var root models.User
	require.NoError(t, s.db.First(&root, "email = ?", "root@graylock.example").Error)

	w := doJSON(t, s, http.MethodDelete, "/api/admin/users/"+root.ID, nil, superToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete yourself", decodeBody(t, w)["error"])
}
