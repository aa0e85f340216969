package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfwise/core/internal/pkg/jwt"
	"github.com/pdfwise/core/internal/pkg/response"
)

const ContextKeyUserID = "user_id"

// Auth returns a middleware that enforces bearer token authentication. The
// session provider issuing tokens is an external collaborator; this side
// only validates the signature and extracts the user id.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.UserID == "" {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// IsAuthenticated reports whether the request carries a valid identity.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return NormalizeToken(header)
	}
	if token := c.Query("token"); token != "" {
		return NormalizeToken(token)
	}
	return ""
}

// NormalizeToken strips an optional "Bearer " prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	return token
}
