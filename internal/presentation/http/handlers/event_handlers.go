// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/services"
	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
)

// EventHandlers processes interaction event ingestion requests.
type EventHandlers struct {
	ingestionService *services.EventIngestionService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewEventHandlers creates event ingestion handlers with injected dependencies.
func NewEventHandlers(ingestionService *services.EventIngestionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		ingestionService: ingestionService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// PostScanEvents handles POST /api/v1/scan-events.
//
// The body is read raw and parsed manually because unload-time batches
// arrive via navigator.sendBeacon, which sends text/plain and would be
// rejected by content-type negotiating binders.
func (h *EventHandlers) PostScanEvents(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var req services.EventBatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	count, err := h.ingestionService.IngestBatch(tenantCtx, &req)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid session"})
		case errors.Is(err, analytics.ErrEmptyBatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch must contain at least one event"})
		case errors.Is(err, analytics.ErrBatchTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch exceeds maximum size"})
		default:
			h.logger.Ingest().Error("Event ingestion failed",
				"tenantId", tenantCtx.TenantID, "sessionId", req.SessionID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest events"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}
