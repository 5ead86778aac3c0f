package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/middlewares"
)

func ProductRoutes(api *gin.RouterGroup) {
	products := api.Group("/products")
	{
		products.GET("", controllers.GetProducts)
		products.GET("/:id", controllers.GetProduct)

		admin := products.Group("", middlewares.RequireAuth(), middlewares.RequireAdmin())
		admin.POST("", controllers.CreateProduct)
		admin.PUT("/:id", controllers.UpdateProduct)
		admin.DELETE("/:id", controllers.DeleteProduct)
	}

	api.POST("/upload/image", middlewares.RequireAuth(), middlewares.RequireAdmin(), controllers.UploadImage)
	api.GET("/currencies", controllers.GetCurrencies)
}
