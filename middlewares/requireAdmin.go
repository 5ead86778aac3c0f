package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/models"
)

// RequireAdmin must run after RequireAuth
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, exists := CurrentUser(ctx)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		if claims.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		ctx.Next()
	}
}
