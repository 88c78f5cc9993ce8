package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/middleware"
)

// RegisterRoutes registra todas las rutas; las de administración solo si hay secreto configurado
func RegisterRoutes(router *gin.Engine, adminSecret string) {
	router.GET("/", middleware.RenderPage)
	router.GET("/health", middleware.Health)
	router.GET("/ws", middleware.StreamTrackers)

	api := router.Group("/api")
	{
		api.GET("/trackers", middleware.GetTrackers)
		api.GET("/trackers/:id", middleware.GetTracker)
		api.GET("/trackers/:id/history", middleware.GetTrackerHistory)
	}

	if adminSecret == "" {
		return
	}

	// Rutas de admin
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(adminSecret))
	{
		admin.POST("/trackers/:id/refresh", middleware.RefreshTracker)
	}
}
