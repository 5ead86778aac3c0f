package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/middlewares"
)

func OrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	{
		orders.POST("", middlewares.OptionalAuth(), controllers.CreateOrder)
		orders.GET("/mine", middlewares.RequireAuth(), controllers.GetMyOrders)
		orders.GET("/:id", middlewares.RequireAuth(), controllers.GetOrder)
	}
}

func CheckoutRoutes(api *gin.RouterGroup) {
	checkout := api.Group("/checkout")
	{
		checkout.POST("/create-session", middlewares.OptionalAuth(), controllers.CreateCheckoutSession)
		checkout.GET("/session/:id", controllers.GetCheckoutSession)
		checkout.POST("/create-payment-intent", controllers.CreatePaymentIntent)
		checkout.POST("/webhook", controllers.StripeWebhook)

		checkout.POST("/paystack/initialize", middlewares.OptionalAuth(), controllers.InitializePaystack)
		checkout.POST("/paystack/webhook", controllers.PaystackWebhook)
		checkout.GET("/paystack/verify/:reference", controllers.VerifyPaystack)
	}
}
