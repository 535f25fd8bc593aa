package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/shared/auth"
	"hirepath-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	userRoleKey  = "userRole"
)

// publicPrefixes lists routes reachable without a session.
var publicPrefixes = []string{
	"/api/v1/auth/",
	"/api/v1/health",
	"/api/v1/payments/webhook",
	"/metrics",
}

// Auth validates the bearer JWT and stores identity in context.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		// Published job listings are browsable anonymously.
		if c.Request.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/jobs") {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Sub)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(userNameKey, claims.Name)
		}
		c.Set(userRoleKey, string(rbac.ParseRole(claims.Role)))
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the session role grants the permission.
func RequirePermission(p rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := RoleFromContext(c)
		if !rbac.Allowed(role, p) {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware. The
// second result is false for unauthenticated requests.
func UserIDFromContext(c *gin.Context) (string, bool) {
	if c == nil {
		return "", false
	}
	val, _ := c.Get(userIDKey)
	id, ok := val.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// RoleFromContext fetches the role set by the auth middleware. The second
// result is false for unauthenticated requests.
func RoleFromContext(c *gin.Context) (rbac.Role, bool) {
	if c == nil {
		return "", false
	}
	val, _ := c.Get(userRoleKey)
	raw, ok := val.(string)
	if !ok || raw == "" {
		return "", false
	}
	return rbac.ParseRole(raw), true
}
