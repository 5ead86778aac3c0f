package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/middlewares"
)

func DefaultRoutes(server *gin.Engine, api *gin.RouterGroup) {
	server.GET("/", controllers.GetHome)
	api.GET("/health", controllers.Health)

	debug := api.Group("/debug", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		debug.GET("/schema", controllers.DebugSchema)
		debug.GET("/db-info", controllers.DebugDBInfo)
	}
}

// RegisterRoutes mounts every API route under /api. uploadsDir is served at
// /uploads when files are stored locally.
func RegisterRoutes(server *gin.Engine, limit gin.HandlerFunc, uploadsDir string) {
	api := server.Group("/api")

	DefaultRoutes(server, api)
	AuthRoutes(api, limit)
	EmailRoutes(api, limit)
	ProductRoutes(api)
	CartRoutes(api)
	OrderRoutes(api)
	CheckoutRoutes(api)

	if uploadsDir != "" {
		server.Static("/uploads", uploadsDir)
	}
}
