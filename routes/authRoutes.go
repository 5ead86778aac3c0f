package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/middlewares"
)

func AuthRoutes(api *gin.RouterGroup, limit gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", limit, controllers.Register)
		auth.POST("/login", limit, controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.GET("/me", middlewares.RequireAuth(), controllers.Me)
		auth.POST("/forgot-password", limit, controllers.SendPasswordResetLink)
		auth.POST("/reset-password/:resetToken", limit, controllers.ResetPassword)
	}
}

func EmailRoutes(api *gin.RouterGroup, limit gin.HandlerFunc) {
	email := api.Group("/email", limit)
	{
		email.POST("/send-verification", controllers.SendVerification)
		email.POST("/verify-code", controllers.VerifyCode)
	}
}
