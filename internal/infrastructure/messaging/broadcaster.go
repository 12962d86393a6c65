// Package messaging provides the websocket activity feed broadcaster.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// ActivityEvent is the payload pushed to dashboard clients whenever a batch
// of interaction events is accepted for a scan.
type ActivityEvent struct {
	ScanID     string    `json:"scanId"`
	SessionID  string    `json:"sessionId"`
	EventCount int       `json:"eventCount"`
	Timestamp  time.Time `json:"timestamp"`
}

// ActivityBroadcaster manages tenant-scoped websocket connections for the
// live activity feed.
type ActivityBroadcaster struct {
	tenantClients map[string]map[*client]struct{} // tenantId -> clients
	mu            sync.Mutex
	logger        *logging.ChanneledLogger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

var (
	globalBroadcaster *ActivityBroadcaster
	once              sync.Once
)

// NewActivityBroadcaster creates the singleton ActivityBroadcaster instance.
func NewActivityBroadcaster(logger *logging.ChanneledLogger) *ActivityBroadcaster {
	once.Do(func() {
		globalBroadcaster = &ActivityBroadcaster{
			tenantClients: make(map[string]map[*client]struct{}),
			logger:        logger,
		}
	})
	return globalBroadcaster
}

// AddClient registers a websocket connection under a tenant and starts its
// write pump. The connection is closed and unregistered when the pump exits.
func (b *ActivityBroadcaster) AddClient(tenantID string, conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, config.ActivityClientBuffer),
	}

	b.mu.Lock()
	if b.tenantClients[tenantID] == nil {
		b.tenantClients[tenantID] = make(map[*client]struct{})
	}
	b.tenantClients[tenantID][c] = struct{}{}
	count := len(b.tenantClients[tenantID])
	b.mu.Unlock()

	b.logger.Live().Debug("Activity client registered", "tenantId", tenantID, "clientCount", count)

	go b.writePump(tenantID, c)
	go b.readPump(tenantID, c)
}

// writePump drains the client's send channel onto the wire.
func (b *ActivityBroadcaster) writePump(tenantID string, c *client) {
	defer func() {
		b.removeClient(tenantID, c)
		c.conn.Close()
	}()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(config.ActivityWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			b.logger.Live().Debug("Activity client write failed", "tenantId", tenantID, "error", err.Error())
			return
		}
	}
}

// readPump discards inbound frames; its job is to notice closed connections.
func (b *ActivityBroadcaster) readPump(tenantID string, c *client) {
	defer func() {
		b.removeClient(tenantID, c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *ActivityBroadcaster) removeClient(tenantID string, c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, exists := b.tenantClients[tenantID]; exists {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(b.tenantClients, tenantID)
		}
	}
}

// Broadcast pushes an activity event to every client of the tenant. Slow
// clients whose buffers are full are skipped rather than blocking ingestion.
func (b *ActivityBroadcaster) Broadcast(tenantID string, event ActivityEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Live().Error("Failed to marshal activity event", "tenantId", tenantID, "error", err.Error())
		return
	}

	b.mu.Lock()
	clients := b.tenantClients[tenantID]
	delivered := 0
	for c := range clients {
		select {
		case c.send <- payload:
			delivered++
		default:
			// Buffer full, drop for this client
		}
	}
	b.mu.Unlock()

	if delivered > 0 {
		b.logger.LogLiveEvent("scan_activity", tenantID, event.SessionID, delivered)
	}
}

// GetClientCount returns the connection count for a tenant.
func (b *ActivityBroadcaster) GetClientCount(tenantID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tenantClients[tenantID])
}
