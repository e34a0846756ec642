package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"travelmatch/internal/service"
)

const (
	// ContextHostID is the gin context key holding the acting host's ID.
	ContextHostID = "host_id"

	// ContextRole is the gin context key holding the token role.
	ContextRole = "role"
)

// AuthRequired validates the bearer token and resolves the acting host.
// Ownership is re-verified against current rows by the services; the token
// is trusted for identity only.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &service.Claims{}, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(*service.Claims)
		if !ok || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set(ContextHostID, claims.Subject)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// AdminRequired ensures the token carries the admin role. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != service.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// HostID returns the acting host ID resolved by AuthRequired.
func HostID(c *gin.Context) string {
	id, _ := c.Get(ContextHostID)
	s, _ := id.(string)
	return s
}
