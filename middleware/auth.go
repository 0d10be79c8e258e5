package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clubvoice/utils"
)

// JWTAuthMiddleware guards the dashboard/API group. It expects a
// Bearer token and exposes the actor, role and club scope to handlers.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		actor, role, clubID, err := utils.ExtractActorFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("actor", actor)
		c.Set("role", role)
		c.Set("clubID", clubID)
		c.Next()
	}
}

// RequireRole rejects actors whose role does not match any of the
// allowed ones.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
