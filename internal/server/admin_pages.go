package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The admin UI is a separate SPA; these handlers only serve a minimal
// shell so the page-level guard has real routes to protect.

const adminLoginHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Graylock Admin - Sign in</title></head>
<body>
<main id="admin-login" data-endpoint="/api/auth/login"></main>
<script src="/admin/assets/login.js" defer></script>
</body>
</html>`

const adminShellHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Graylock Admin</title></head>
<body>
<main id="admin-app" data-api="/api/admin"></main>
<script src="/admin/assets/app.js" defer></script>
</body>
</html>`

// adminLoginPage is reachable without a session; the page guard
// allowlists exactly this path.
func (s *Server) adminLoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(adminLoginHTML))
}

// adminShellPage serves the guarded admin shell for the dashboard and
// every section path.
func (s *Server) adminShellPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(adminShellHTML))
}
