package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tienda-backoffice/internal/auth"
)

// Context keys set by Authenticate.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRoles    = "roles"
)

// Authenticate checks the bearer token and stores the caller's identity in
// the request context. Missing or invalid credentials are always 401.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required", "kind": "unauthorized"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header must start with Bearer", "kind": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "kind": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRoles, claims.Roles)
		c.Next()
	}
}

// RequireCapability gates a route on the permission map. A session that
// exists but lacks the capability gets 403, never 401 - callers rely on
// the distinction.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(CtxRoles)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "kind": "unauthorized"})
			c.Abort()
			return
		}
		roles, _ := raw.([]string)
		if !auth.Authorize(roles, capability) {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing capability: " + capability, "kind": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID extracts the authenticated user's id from the context.
func UserID(c *gin.Context) uint {
	return c.MustGet(CtxUserID).(uint)
}
