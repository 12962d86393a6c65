package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/messaging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/presentation/http/middleware"
)

// ActivityHandlers upgrades dashboard connections onto the live activity feed.
type ActivityHandlers struct {
	broadcaster *messaging.ActivityBroadcaster
	logger      *logging.ChanneledLogger
	upgrader    websocket.Upgrader
}

// NewActivityHandlers creates the websocket activity handlers.
func NewActivityHandlers(broadcaster *messaging.ActivityBroadcaster, logger *logging.ChanneledLogger) *ActivityHandlers {
	return &ActivityHandlers{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS layer; the
			// upgrade itself accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetActivityFeed handles GET /ws/activity.
func (h *ActivityHandlers) GetActivityFeed(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Live().Warn("Websocket upgrade failed",
			"tenantId", tenantCtx.TenantID, "error", err.Error())
		return
	}

	h.broadcaster.AddClient(tenantCtx.TenantID, conn)
}
