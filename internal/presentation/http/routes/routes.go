// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/container"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/handlers"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(appContainer *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	eventHandlers := handlers.NewEventHandlers(appContainer.EventIngestionService, appContainer.Logger, appContainer.PerfTracker)
	sessionHandlers := handlers.NewSessionHandlers(appContainer.SessionService, appContainer.Logger, appContainer.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(appContainer.AnalyticsProvider, appContainer.Logger, appContainer.PerfTracker)
	activityHandlers := handlers.NewActivityHandlers(appContainer.Broadcaster, appContainer.Logger)
	healthHandlers := handlers.NewHealthHandlers(appContainer)

	// API routes with tenant middleware
	api := r.Group("/api/v1")
	api.Use(middleware.TenantMiddleware(appContainer.TenantManager, appContainer.PerfTracker))
	{
		api.GET("/health", healthHandlers.GetHealth)
		api.GET("/health/db", healthHandlers.GetDBHealth)

		// Capture endpoints hit by embedded viewers
		api.POST("/scan-events", eventHandlers.PostScanEvents)
		api.POST("/scan-sessions", sessionHandlers.PostScanSessions)

		// Dashboard read endpoints
		analytics := api.Group("/analytics")
		analytics.Use(middleware.DashboardAuthMiddleware())
		{
			analytics.GET("/scans/:scanId/heatmap", analyticsHandlers.GetHeatmap)
			analytics.GET("/scans/:scanId/summary", analyticsHandlers.GetSummary)
			analytics.GET("/scans/:scanId/tags", analyticsHandlers.GetTags)
			analytics.GET("/scans/:scanId/sessions", analyticsHandlers.GetSessions)
		}
	}

	// Live activity feed; the browser WebSocket API cannot set custom
	// headers, so tenant detection falls back to the query param here.
	ws := r.Group("/ws")
	ws.Use(middleware.TenantMiddleware(appContainer.TenantManager, appContainer.PerfTracker))
	{
		ws.GET("/activity", activityHandlers.GetActivityFeed)
	}

	return r
}
