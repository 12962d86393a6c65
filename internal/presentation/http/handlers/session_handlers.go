package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/application/services"
	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
)

// sessionRequest is the tagged union posted to the session endpoint. The
// action field selects the operation; the remaining fields are read
// per-action.
type sessionRequest struct {
	Action     string `json:"action"`
	SessionID  string `json:"sessionId"`
	ScanID     string `json:"scanId"`
	VisitorID  string `json:"visitorId"`
	Device     string `json:"deviceType"`
	EntryPoint string `json:"entryPoint"`
}

// SessionHandlers processes session lifecycle requests.
type SessionHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewSessionHandlers creates session handlers with injected dependencies.
func NewSessionHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostScanSessions handles POST /api/v1/scan-sessions.
func (h *SessionHandlers) PostScanSessions(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	switch services.SessionAction(req.Action) {
	case services.ActionStart:
		session, err := h.sessionService.StartSession(tenantCtx, &services.StartSessionRequest{
			ScanID:     req.ScanID,
			VisitorID:  req.VisitorID,
			Device:     req.Device,
			EntryPoint: req.EntryPoint,
		})
		if err != nil {
			if errors.Is(err, analytics.ErrScanNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			h.logger.Session().Error("Session start failed",
				"tenantId", tenantCtx.TenantID, "scanId", req.ScanID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": session.ID})

	case services.ActionHeartbeat:
		duration, err := h.sessionService.Heartbeat(tenantCtx, req.SessionID)
		h.respondLifecycle(c, tenantCtx.TenantID, req.SessionID, duration, err)

	case services.ActionEnd:
		duration, err := h.sessionService.EndSession(tenantCtx, req.SessionID)
		h.respondLifecycle(c, tenantCtx.TenantID, req.SessionID, duration, err)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

func (h *SessionHandlers) respondLifecycle(c *gin.Context, tenantID, sessionID string, duration int, err error) {
	if err != nil {
		if errors.Is(err, analytics.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		h.logger.Session().Error("Session update failed",
			"tenantId", tenantID, "sessionId", sessionID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "duration": duration})
}
