package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/models"
)

// SessionCookie is the name of the cookie carrying the session token
const SessionCookie = "graylock_session"

const bearerPrefix = "Bearer "

// Session represents the authenticated identity for one request.
// Immutable once resolved; never cached across requests.
type Session struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

// Resolver turns inbound request credentials into a Session.
// It is the single entry point every guard goes through.
type Resolver struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewResolver creates a session resolver backed by the given store
func NewResolver(db *gorm.DB, log zerolog.Logger) *Resolver {
	return &Resolver{db: db, log: log}
}

// Resolve returns the authenticated session for the request, or nil.
//
// Fail-closed: every failure mode (missing or malformed credential,
// bad signature, expired token, store error, deleted user) yields nil.
// A provider or store outage must deny admin access, never grant it.
func (r *Resolver) Resolve(c *gin.Context) *Session {
	token := extractCredential(c)
	if token == "" {
		return nil
	}

	claims, err := ValidateToken(token)
	if err != nil {
		r.log.Debug().Err(err).Msg("Session token rejected")
		return nil
	}

	// The token only identifies the user; role is re-read from the
	// store so revocations and demotions apply on the next request.
	var user models.User
	if err := r.db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			r.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Session lookup failed")
		}
		return nil
	}

	return &Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   models.ParseRole(string(user.Role)),
	}
}

// extractCredential pulls the session token from the request, trying
// the Authorization header first, then the session cookie. Malformed
// material is treated as "no credential", not an error.
func extractCredential(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, bearerPrefix) {
			return strings.TrimPrefix(h, bearerPrefix)
		}
		return ""
	}

	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie
}
