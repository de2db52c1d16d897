package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// isConflict reports whether a store error is a uniqueness violation.
// GORM's error translation covers the postgres driver; the raw sqlite
// message is checked as well since the sqlite driver predates
// TranslateError support for some constraint shapes.
func isConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// respondStoreError maps a store error to the HTTP taxonomy: 404 for
// missing records, 409 for uniqueness conflicts, 500 for everything
// else. Internal detail never reaches the client.
func (s *Server) respondStoreError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case isConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": resource + " already exists"})
	default:
		s.logger.Error().Err(err).Str("resource", resource).Msg("Store operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
