package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graylock-sec/graylock/internal/auth"
)

// adminLoginPath is the only admin page reachable without a session.
// Matched exactly, never as a prefix, so no other page rides along.
const adminLoginPath = "/admin/login"

const sessionKey = "session"

func setSession(c *gin.Context, sess *auth.Session) {
	c.Set(sessionKey, sess)
}

// GetSession returns the resolved session stored by a guard, if any
func GetSession(c *gin.Context) (*auth.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sess, ok := v.(*auth.Session)
	return sess, ok
}

// checkAdmin is the single guard algorithm: resolve the session, then
// evaluate the admin capability. Each of the three call sites below
// invokes it independently so bypassing one layer never disables the
// others.
func (s *Server) checkAdmin(c *gin.Context) auth.Decision {
	sess := s.resolver.Resolve(c)
	decision := auth.Authorize(sess, auth.CapabilityAdmin)
	if decision.Allow {
		setSession(c, sess)
	} else {
		// The reason stays in the log; clients always see the same
		// opaque denial regardless of cause.
		s.logger.Debug().
			Str("reason", string(decision.Reason)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Admin access denied")
	}
	return decision
}

// adminAPIGuard protects the /api/admin group. Denials are a 401 with
// an opaque body; no retry, the client must re-authenticate.
func (s *Server) adminAPIGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if decision := s.checkAdmin(c); !decision.Allow {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// adminPageGuard protects the /admin page shell, redirecting denied
// requests to the login page instead of returning JSON.
func (s *Server) adminPageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Without this exact-match exception no denied request could
		// ever reach the login form.
		if c.Request.URL.Path == adminLoginPath {
			c.Next()
			return
		}

		if decision := s.checkAdmin(c); !decision.Allow {
			c.Redirect(http.StatusSeeOther, adminLoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAdmin is the in-handler guard layer used by every mutating
// admin handler. It re-runs the full check rather than trusting the
// group middleware.
func (s *Server) requireAdmin(c *gin.Context) bool {
	if decision := s.checkAdmin(c); !decision.Allow {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}
