package middleware

import (
	"net/http"
	"strings"

	"cloud-kitchen-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "session_id"

type AuthMiddleware struct {
	sessions *auth.SessionManager
	admin    *auth.AdminAuthenticator
}

func NewAuthMiddleware(sessions *auth.SessionManager, admin *auth.AdminAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, admin: admin}
}

// SessionRequired validates the session bearer token and stores the session id
// in the context.
func (a *AuthMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Session token required",
			})
			return
		}

		claims, err := a.sessions.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired session",
			})
			return
		}

		c.Set(sessionIDKey, claims.SessionID)
		c.Next()
	}
}

// AdminRequired checks HTTP basic credentials against the configured admin.
func (a *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !a.admin.Authenticate(username, password) {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Admin credentials required",
			})
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetSessionID returns the session id set by SessionRequired.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
