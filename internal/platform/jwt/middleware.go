package jwtauth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextAccountID is the gin context key under which AuthRequired stores the
// authenticated account id.
const ContextAccountID = "accountID"

// AuthRequired returns a Gin middleware that validates bearer tokens and
// restricts access to authenticated accounts. The validator is injected so
// the middleware carries no configuration of its own.
func AuthRequired(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		accountID, err := validator.ValidateToken(tokenStr)
		if err != nil {
			// Expired and invalid tokens log differently but the client sees
			// one generic rejection.
			slog.Warn("token validation failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextAccountID, accountID)
		c.Next()
	}
}

// AccountID extracts the authenticated account id set by AuthRequired.
func AccountID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextAccountID)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}
