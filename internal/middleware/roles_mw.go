package middleware

import (
	"net/http"

	"mess_finder/internal/guard"
	"mess_finder/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles.
// It runs after JWTAuthMiddleware when one group needs a narrower role set.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok || !guard.RoleAllowed(userRole, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// OwnerMiddleware checks if the user is a mess owner
func OwnerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleOwner)
}
