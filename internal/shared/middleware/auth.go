package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/pkg/jwt"
)

// ContextKeyRole is where the authenticated workflow role is stored on the
// gin context.
const ContextKeyRole = "role"

// AuthMiddleware - Middleware xác thực JWT token. Tokens carry the workflow
// role picked at sign-in; there are no per-user accounts.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := parts[1]

		// 3. Verify và parse JWT
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// 4. Extract role từ claims
		role := model.Role(claims.Role)
		if !role.IsValid() {
			c.JSON(401, gin.H{"error": "unknown role in token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyRole, role)
		c.Next()
	}
}

// RequireRole restricts a route group to specific workflow roles. Must run
// after AuthMiddleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := RoleFromContext(c)
		if !exists {
			c.JSON(403, gin.H{"error": "access denied: no role"})
			c.Abort()
			return
		}

		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}

		c.JSON(403, gin.H{"error": "access denied: role " + string(current) + " not allowed"})
		c.Abort()
	}
}

// RoleFromContext returns the authenticated role set by AuthMiddleware.
func RoleFromContext(c *gin.Context) (model.Role, bool) {
	v, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok
}
