package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/middlewares"
)

func CartRoutes(api *gin.RouterGroup) {
	cart := api.Group("/cart", middlewares.RequireAuth())
	{
		cart.GET("", controllers.GetCart)
		cart.POST("", controllers.AddToCart)
		cart.PUT("/:cartItemId", controllers.UpdateCartItem)
		cart.DELETE("/:cartItemId", controllers.RemoveCartItem)
		cart.DELETE("", controllers.ClearCart)
	}
}
