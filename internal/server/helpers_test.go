package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/graylock-sec/graylock/internal/auth"
	"github.com/graylock-sec/graylock/internal/config"
	"github.com/graylock-sec/graylock/internal/models"
)

// newTestServer builds a server against a throwaway sqlite database.
// Redis is pointed at a closed port: the cache degrades to direct
// loads and task enqueues log a warning, so no external services are
// needed.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Addr:           ":0",
			AllowedOrigins: []string{"http://localhost"},
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			URL:    filepath.Join(t.TempDir(), "test.sqlite"),
		},
		Redis: config.RedisConfig{
			Address: "localhost:1",
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Auth:    config.AuthConfig{TokenTTLHours: 1},
		Uploads: config.UploadsConfig{
			Dir:       filepath.Join(t.TempDir(), "uploads"),
			MaxSizeMB: 1,
		},
		Orders: config.OrdersConfig{PendingMaxAgeHours: 48},
	}

	s, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	return s
}

// ginTestContext wraps a recorder and request in a bare gin context,
// for calling handler methods directly without the router
func ginTestContext(w *httptest.ResponseRecorder, req *http.Request) (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, e := gin.CreateTestContext(w)
	c.Request = req
	return c, e
}

// doJSON performs a JSON request against the server's router
func doJSON(t *testing.T, s *Server, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a response body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// setupSuperAdmin runs first-run setup and returns the session token
func setupSuperAdmin(t *testing.T, s *Server) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/setup", map[string]interface{}{
		"email":    "root@graylock.example",
		"password": "correct-horse-battery",
		"name":     "Root",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// tokenForRole creates a user with the given role directly in the
// store and returns a valid session token for it. Requires setup to
// have run so the JWT secret exists.
func tokenForRole(t *testing.T, s *Server, email string, role models.Role) string {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: hash, Name: "Test", Role: role}
	require.NoError(t, s.db.Create(user).Error)

	token, err := auth.GenerateToken(user.ID, user.Email, string(user.Role), time.Hour)
	require.NoError(t, err)
	return token
}
