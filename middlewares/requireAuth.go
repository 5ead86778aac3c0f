package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/utils"
)

// UserKey is the gin context key holding the *utils.Claims of the caller
const UserKey = "user"

// TokenCookie is the name of the auth cookie
const TokenCookie = "token"

func tokenFromRequest(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := ctx.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFromRequest(ctx)
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := utils.ParseJWT(token, initializers.Env.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		ctx.Set(UserKey, claims)
		ctx.Next()
	}
}

// OptionalAuth attaches the caller's claims when a valid token is present and never rejects
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := tokenFromRequest(ctx); token != "" {
			if claims, err := utils.ParseJWT(token, initializers.Env.JWTSecret); err == nil {
				ctx.Set(UserKey, claims)
			}
		}
		ctx.Next()
	}
}

// CurrentUser returns the claims set by RequireAuth or OptionalAuth
func CurrentUser(ctx *gin.Context) (*utils.Claims, bool) {
	value, exists := ctx.Get(UserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}
