package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// AgentConfig configures a capture agent.
type AgentConfig struct {
	ScanID     string
	VisitorID  string // generated when empty
	Device     string
	EntryPoint string

	HeartbeatInterval time.Duration // default 30s
	Logger            *slog.Logger
	Now               func() time.Time
}

// Agent wires a viewer, the classifier and the batching transport into one
// capture loop per walkthrough.
type Agent struct {
	cfg        AgentConfig
	viewer     Viewer
	classifier *Classifier
	batcher    *Batcher
	sessions   SessionTransport
	sessionID  string
}

// NewAgent creates a capture agent for one walkthrough.
func NewAgent(cfg AgentConfig, viewer Viewer, sender Sender, sessions SessionTransport) *Agent {
	if cfg.VisitorID == "" {
		cfg.VisitorID = NewVisitorID()
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Agent{
		cfg:        cfg,
		viewer:     viewer,
		classifier: NewClassifier(cfg.Now),
		batcher:    NewBatcher(sender, cfg.ScanID),
		sessions:   sessions,
	}
}

// SessionID returns the server-assigned session id, empty before Run has
// opened the session.
func (a *Agent) SessionID() string {
	return a.sessionID
}

// Run opens a session and captures viewer activity until the context ends,
// then drains the buffer and closes the session over the beacon path.
func (a *Agent) Run(ctx context.Context) error {
	sessionID, err := a.sessions.Start(ctx, &StartRequest{
		ScanID:     a.cfg.ScanID,
		VisitorID:  a.cfg.VisitorID,
		Device:     a.cfg.Device,
		EntryPoint: a.cfg.EntryPoint,
	})
	if err != nil {
		return fmt.Errorf("failed to open capture session: %w", err)
	}
	a.sessionID = sessionID
	a.batcher.SetSessionID(sessionID)
	a.cfg.Logger.Debug("capture session opened", "scanId", a.cfg.ScanID, "sessionId", sessionID)

	flushTicker := time.NewTicker(config.FlushInterval)
	defer flushTicker.Stop()
	heartbeatTicker := time.NewTicker(a.cfg.HeartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil

		case pose, ok := <-a.viewer.Poses():
			if !ok {
				a.shutdown()
				return nil
			}
			for _, event := range a.classifier.Pose(pose) {
				a.buffer(ctx, event)
			}

		case click := <-a.viewer.TagClicks():
			a.buffer(ctx, a.classifier.TagClick(click))

		case enter := <-a.viewer.SweepEnters():
			a.buffer(ctx, a.classifier.SweepEnter(enter))

		case zoom := <-a.viewer.Zooms():
			a.buffer(ctx, a.classifier.Zoom(zoom))

		case <-flushTicker.C:
			a.flush(ctx)

		case <-heartbeatTicker.C:
			if err := a.sessions.Heartbeat(ctx, a.sessionID); err != nil {
				a.cfg.Logger.Warn("session heartbeat failed", "sessionId", a.sessionID, "error", err)
			}
		}
	}
}

func (a *Agent) buffer(ctx context.Context, event *analytics.InteractionEvent) {
	if a.batcher.Add(event) {
		a.flush(ctx)
	}
}

func (a *Agent) flush(ctx context.Context) {
	if err := a.batcher.Flush(ctx); err != nil {
		a.cfg.Logger.Warn("event batch flush failed, batch requeued",
			"sessionId", a.sessionID, "pending", a.batcher.Pending(), "error", err)
	}
}

func (a *Agent) shutdown() {
	a.batcher.FinalFlush()
	a.sessions.BeaconEnd(a.sessionID)
	if err := a.viewer.Close(); err != nil {
		a.cfg.Logger.Debug("viewer close failed", "error", err)
	}
	a.cfg.Logger.Debug("capture session closed",
		"sessionId", a.sessionID, "droppedEvents", a.batcher.Dropped())
}
