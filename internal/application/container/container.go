// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/judsonfisher/elias-immersive-platform/internal/application/services"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/manager"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/messaging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Write-side services (stateless singletons)
	SessionService        *services.SessionService
	EventIngestionService *services.EventIngestionService

	// Read-side services (stateless singletons)
	HeatmapService    *services.HeatmapService
	SummaryService    *services.SummaryService
	AnalyticsProvider services.Provider

	// Infrastructure Dependencies
	TenantManager *tenant.Manager
	CacheManager  *manager.Manager
	Broadcaster   *messaging.ActivityBroadcaster
	PerfTracker   *performance.Tracker
	Logger        *logging.ChanneledLogger
}

// NewContainer creates and wires all singleton services
func NewContainer(tenantManager *tenant.Manager, cacheManager *manager.Manager, logger *logging.ChanneledLogger) *Container {
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	broadcaster := messaging.NewActivityBroadcaster(logger)

	heatmapService := services.NewHeatmapService(logger, perfTracker)
	summaryService := services.NewSummaryService(logger, perfTracker)

	return &Container{
		SessionService:        services.NewSessionService(logger, perfTracker),
		EventIngestionService: services.NewEventIngestionService(logger, perfTracker, broadcaster),

		HeatmapService:    heatmapService,
		SummaryService:    summaryService,
		AnalyticsProvider: services.NewProvider(heatmapService, summaryService),

		TenantManager: tenantManager,
		CacheManager:  cacheManager,
		Broadcaster:   broadcaster,
		PerfTracker:   perfTracker,
		Logger:        logger,
	}
}
