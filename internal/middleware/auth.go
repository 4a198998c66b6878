package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teamforge/backend/internal/auth"
	"github.com/teamforge/backend/pkg/response"
)

// Context keys are defined once in the auth package; these aliases keep the
// middleware call sites readable.
const (
	ContextUserID     = auth.ContextUserID
	ContextUserEmail  = auth.ContextUserEmail
	ContextSuperAdmin = auth.ContextSuperAdmin
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextSuperAdmin, claims.IsSuperAdmin)
		c.Next()
	}
}

// RequireSuperAdmin allows only requests whose identity carries the platform
// super-admin flag. This flag is orthogonal to workspace roles and never
// consulted inside a tenant.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextSuperAdmin) {
			response.Forbidden(c, "super admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
