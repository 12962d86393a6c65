// Package services contains the application's stateless singleton services.
package services

import (
	"fmt"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/security"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
)

// SessionAction is the tagged-union discriminator on session requests.
type SessionAction string

const (
	ActionStart     SessionAction = "start"
	ActionHeartbeat SessionAction = "heartbeat"
	ActionEnd       SessionAction = "end"
)

// StartSessionRequest carries the fields needed to open a walkthrough session.
type StartSessionRequest struct {
	ScanID     string `json:"scanId"`
	VisitorID  string `json:"visitorId"`
	Device     string `json:"deviceType"`
	EntryPoint string `json:"entryPoint"`
}

// SessionService manages the walkthrough session lifecycle.
type SessionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a session service with injected dependencies.
func NewSessionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// StartSession verifies the target scan and creates a new session record.
func (s *SessionService) StartSession(tenantCtx *tenant.Context, req *StartSessionRequest) (*analytics.Session, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("session:start", tenantCtx.TenantID)
	defer marker.Complete()

	exists, err := tenantCtx.ScanRepo().Exists(req.ScanID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to look up scan: %w", err)
	}
	if !exists {
		marker.SetSuccess(false)
		return nil, analytics.ErrScanNotFound
	}

	entryPoint := req.EntryPoint
	if entryPoint == "" {
		entryPoint = "Direct"
	}

	session := &analytics.Session{
		ID:         security.GenerateULID(),
		ScanID:     req.ScanID,
		VisitorID:  req.VisitorID,
		Device:     req.Device,
		EntryPoint: entryPoint,
		StartedAt:  time.Now().UTC(),
	}

	if err := tenantCtx.SessionRepo().Create(session); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	marker.SetSuccess(true)
	s.logger.Session().Info("Session started",
		"tenantId", tenantCtx.TenantID,
		"sessionId", session.ID,
		"scanId", session.ScanID,
		"device", session.Device,
		"duration", time.Since(start))

	return session, nil
}

// Heartbeat refreshes the running duration of an open session and returns
// the elapsed whole seconds since it started.
func (s *SessionService) Heartbeat(tenantCtx *tenant.Context, sessionID string) (int, error) {
	marker := s.perfTracker.StartOperation("session:heartbeat", tenantCtx.TenantID)
	defer marker.Complete()

	session, err := tenantCtx.SessionRepo().FindByID(sessionID)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		marker.SetSuccess(false)
		return 0, analytics.ErrSessionNotFound
	}

	duration := elapsedSeconds(session.StartedAt, time.Now().UTC())
	if err := tenantCtx.SessionRepo().UpdateDuration(sessionID, duration); err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to update session duration: %w", err)
	}

	marker.SetSuccess(true)
	return duration, nil
}

// EndSession closes a session, stamping its final duration and end time.
// Ending an already ended session refreshes the record and is not an error,
// since unload beacons and explicit ends can both arrive.
func (s *SessionService) EndSession(tenantCtx *tenant.Context, sessionID string) (int, error) {
	marker := s.perfTracker.StartOperation("session:end", tenantCtx.TenantID)
	defer marker.Complete()

	session, err := tenantCtx.SessionRepo().FindByID(sessionID)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		marker.SetSuccess(false)
		return 0, analytics.ErrSessionNotFound
	}

	now := time.Now().UTC()
	duration := elapsedSeconds(session.StartedAt, now)
	if err := tenantCtx.SessionRepo().End(sessionID, duration, now); err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to end session: %w", err)
	}

	marker.SetSuccess(true)
	s.logger.Session().Info("Session ended",
		"tenantId", tenantCtx.TenantID,
		"sessionId", sessionID,
		"duration", duration)

	return duration, nil
}

// elapsedSeconds returns whole seconds between two instants, floored.
func elapsedSeconds(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / time.Second)
}
