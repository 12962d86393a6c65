package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/services"
	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
)

// AnalyticsHandlers serves the dashboard read endpoints through the
// configured analytics provider.
type AnalyticsHandlers struct {
	provider    services.Provider
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies.
func NewAnalyticsHandlers(provider services.Provider, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		provider:    provider,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetHeatmap handles GET /api/v1/analytics/scans/:scanId/heatmap.
func (h *AnalyticsHandlers) GetHeatmap(c *gin.Context) {
	tenantCtx, scanID, timeRange, ok := h.readScanQuery(c)
	if !ok {
		return
	}

	heatmap, err := h.provider.GetHeatmap(tenantCtx, scanID, timeRange)
	if err != nil {
		h.respondError(c, tenantCtx, scanID, err)
		return
	}
	h.respond(c, heatmap)
}

// GetSummary handles GET /api/v1/analytics/scans/:scanId/summary. The
// engine works on explicit date bounds; the time range query param is the
// HTTP convenience layer over them.
func (h *AnalyticsHandlers) GetSummary(c *gin.Context) {
	tenantCtx, scanID, timeRange, ok := h.readScanQuery(c)
	if !ok {
		return
	}

	endDate := time.Now().UTC()
	var startDate time.Time
	if windowStart, bounded := timeRange.WindowStart(endDate); bounded {
		startDate = windowStart
	}

	summary, err := h.provider.GetAnalyticsSummary(tenantCtx, scanID, startDate, endDate)
	if err != nil {
		h.respondError(c, tenantCtx, scanID, err)
		return
	}
	h.respond(c, summary)
}

// GetTags handles GET /api/v1/analytics/scans/:scanId/tags.
func (h *AnalyticsHandlers) GetTags(c *gin.Context) {
	tenantCtx, scanID, _, ok := h.readScanQuery(c)
	if !ok {
		return
	}

	tags, err := h.provider.GetTags(tenantCtx, scanID)
	if err != nil {
		h.respondError(c, tenantCtx, scanID, err)
		return
	}
	h.respond(c, tags)
}

// GetSessions handles GET /api/v1/analytics/scans/:scanId/sessions.
func (h *AnalyticsHandlers) GetSessions(c *gin.Context) {
	tenantCtx, scanID, timeRange, ok := h.readScanQuery(c)
	if !ok {
		return
	}

	sessions, err := h.provider.GetSessions(tenantCtx, scanID, timeRange)
	if err != nil {
		h.respondError(c, tenantCtx, scanID, err)
		return
	}
	h.respond(c, sessions)
}

func (h *AnalyticsHandlers) readScanQuery(c *gin.Context) (*tenant.Context, string, analytics.TimeRange, bool) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return nil, "", "", false
	}

	scanID := c.Param("scanId")
	if scanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scanId is required"})
		return nil, "", "", false
	}

	return tenantCtx, scanID, analytics.ParseTimeRange(c.Query("timeRange")), true
}

// respond writes the payload, flagging synthesized data so dashboards can
// show a sample-data badge.
func (h *AnalyticsHandlers) respond(c *gin.Context, payload any) {
	if h.provider.IsMock() {
		c.Header("X-Sample-Data", "true")
	}
	c.JSON(http.StatusOK, payload)
}

func (h *AnalyticsHandlers) respondError(c *gin.Context, tenantCtx *tenant.Context, scanID string, err error) {
	if errors.Is(err, analytics.ErrScanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}
	h.logger.Analytics().Error("Analytics query failed",
		"tenantId", tenantCtx.TenantID, "scanId", scanID, "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
}
