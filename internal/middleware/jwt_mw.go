package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"mess_finder/internal/guard"
	"mess_finder/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	AuthRoleKey      = "authRole"
	AuthPrincipalKey = "authPrincipal"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// JWTAuthMiddleware creates a middleware for JWT authentication. The token is
// evaluated by guard.Evaluate against the allowed roles (any role when empty);
// a non-nil denylist rejects revoked tokens.
func JWTAuthMiddleware(verifier guard.Verifier, denylist repository.TokenDenylist, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := BearerToken(authHeader)
		if authHeader != "" && tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		decision := guard.Evaluate(verifier, tokenString, time.Now(), allowedRoles...)
		if decision.Outcome != guard.Authorized {
			c.AbortWithStatusJSON(decision.Status(), gin.H{"error": decision.Message()})
			return
		}

		p := decision.Principal
		if denylist != nil && p.TokenID != "" {
			revoked, err := denylist.IsRevoked(c.Request.Context(), p.TokenID)
			if err != nil {
				log.Error().Err(err).Msg("failed to check token denylist")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
		}

		// Set user information in context
		c.Set(AuthRoleKey, p.Role)
		c.Set(AuthPrincipalKey, p)

		c.Next()
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (*guard.Principal, error) {
	val, exists := c.Get(AuthPrincipalKey)
	if !exists {
		return nil, errors.New("principal not found in context")
	}
	p, ok := val.(*guard.Principal)
	if !ok {
		return nil, errors.New("invalid principal type in context")
	}
	return p, nil
}
