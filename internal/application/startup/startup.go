// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/container"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/server"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Initialize performs the complete multi-tenant startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Channeled logging comes up first so every later phase logs
	// through it.
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	logger.Startup().Info("Initializing tenant system")
	tenantManager := tenant.NewManager(logger)

	// Step 2: Load tenant registry to discover all tenants
	logger.Startup().Info("Loading tenant registry")
	registry, err := tenant.LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to load tenant registry: %w", err)
	}

	if len(registry.Tenants) == 0 {
		logger.Startup().Info("No tenants found in registry, creating default tenant")
		if err := tenant.RegisterTenant("default"); err != nil {
			return fmt.Errorf("failed to register default tenant: %w", err)
		}
		registry, err = tenant.LoadTenantRegistry()
		if err != nil {
			return fmt.Errorf("failed to reload registry: %w", err)
		}
	}

	logger.Startup().Info("Tenant registry loaded", "tenantCount", len(registry.Tenants))

	// Step 3: Pre-activate inactive tenants only
	activationStart := time.Now()
	logger.Startup().Info("Starting tenant pre-activation")
	if err := tenantManager.PreActivateAllTenants(); err != nil {
		logger.LogStartupPhase("tenant-activation", time.Since(activationStart), false)
		return fmt.Errorf("tenant pre-activation failed: %w", err)
	}
	logger.LogStartupPhase("tenant-activation", time.Since(activationStart), true)

	// Step 4: Validate tenant activation
	if err := tenantManager.ValidatePreActivation(); err != nil {
		return fmt.Errorf("tenant validation failed: %w", err)
	}

	activeCount, err := tenantManager.GetActiveTenantCount()
	if err != nil {
		return fmt.Errorf("failed to get active tenant count: %w", err)
	}
	logger.Startup().Info("Active tenant connections verified", "activeTenants", activeCount)

	// Step 5: Initialize per-tenant caches
	logger.Startup().Info("Initializing cache system")
	cacheManager := tenantManager.GetCacheManager()

	for tenantID, tenantInfo := range registry.Tenants {
		if tenantInfo.Status == "active" {
			cacheManager.InitializeTenant(tenantID)
		}
	}

	// Step 6: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container")
	appContainer := container.NewContainer(tenantManager, cacheManager, logger)
	logger.Startup().Info("Dependency injection container created with singleton services",
		"analyticsMode", config.AnalyticsMode,
		"mockProvider", appContainer.AnalyticsProvider.IsMock())

	// Step 7: Start the cache purge worker
	go runCachePurge(ctx, appContainer)

	// Step 8: Start HTTP server
	logger.Startup().Info("Starting HTTP server")

	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("HTTP server listening", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"activeTenants", activeCount,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped")
	}

	if err := tenantManager.Close(); err != nil {
		logger.Shutdown().Error("Error closing tenant manager", "error", err.Error())
	} else {
		logger.Shutdown().Info("Tenant manager closed")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// runCachePurge drops expired heatmap snapshots on an interval so tenants
// with sporadic traffic do not hold stale data in memory.
func runCachePurge(ctx context.Context, appContainer *container.Container) {
	ticker := time.NewTicker(config.HeatmapTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry := appContainer.TenantManager.GetDetector().GetRegistry()
			for tenantID := range registry.Tenants {
				purged := appContainer.CacheManager.PurgeExpired(tenantID)
				if purged > 0 {
					appContainer.Logger.Cache().Debug("Purged expired heatmap snapshots",
						"tenantId", tenantID, "count", purged)
				}
			}
		}
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
