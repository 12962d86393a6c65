package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/container"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// HealthHandlers exposes liveness and diagnostic endpoints.
type HealthHandlers struct {
	container *container.Container
}

// NewHealthHandlers creates health handlers backed by the app container.
func NewHealthHandlers(appContainer *container.Container) *HealthHandlers {
	return &HealthHandlers{container: appContainer}
}

// GetHealth handles GET /api/v1/health.
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	activeTenants, err := h.container.TenantManager.GetActiveTenantCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"analyticsMode": config.AnalyticsMode,
		"activeTenants": activeTenants,
	})
}

// GetDBHealth handles GET /api/v1/health/db. It pings the requesting
// tenant's database so operators can tell connection pool problems apart
// from application faults.
func (h *HealthHandlers) GetDBHealth(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "tenant context not found"})
		return
	}

	if err := tenantCtx.Database.Conn.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "error",
			"tenantId": tenantCtx.TenantID,
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"tenantId": tenantCtx.TenantID,
		"database": tenantCtx.GetDatabaseInfo(),
	})
}
