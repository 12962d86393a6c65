package services

import (
	"fmt"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/messaging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// EventBatchRequest is the wire shape of an ingested batch. The scan id is
// carried alongside the session id so the server can reject batches whose
// session belongs to a different scan.
type EventBatchRequest struct {
	ScanID    string                        `json:"scanId"`
	SessionID string                        `json:"sessionId"`
	Events    []*analytics.InteractionEvent `json:"events"`
}

// EventIngestionService accepts classified interaction event batches,
// persists them verbatim and maintains the session and tag rollup counters.
type EventIngestionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	broadcaster *messaging.ActivityBroadcaster
}

// NewEventIngestionService creates an ingestion service with injected dependencies.
func NewEventIngestionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, broadcaster *messaging.ActivityBroadcaster) *EventIngestionService {
	return &EventIngestionService{
		logger:      logger,
		perfTracker: perfTracker,
		broadcaster: broadcaster,
	}
}

// IngestBatch validates and persists a batch of events. Delivery is
// at-least-once: clients may resend a batch after a transport failure, so
// duplicates are tolerated rather than rejected.
func (s *EventIngestionService) IngestBatch(tenantCtx *tenant.Context, req *EventBatchRequest) (int, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("ingest:batch", tenantCtx.TenantID)
	defer marker.Complete()

	if len(req.Events) == 0 {
		marker.SetSuccess(false)
		return 0, analytics.ErrEmptyBatch
	}
	if len(req.Events) > config.MaxIngestBatchSize {
		marker.SetSuccess(false)
		return 0, analytics.ErrBatchTooLarge
	}

	session, err := tenantCtx.SessionRepo().FindByID(req.SessionID)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil || session.ScanID != req.ScanID {
		marker.SetSuccess(false)
		return 0, analytics.ErrInvalidSession
	}

	now := time.Now().UTC()
	moves, zooms := 0, 0
	for _, event := range req.Events {
		event.SessionID = req.SessionID
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		if !event.Type.IsValid() {
			marker.SetSuccess(false)
			return 0, fmt.Errorf("unknown event type %q", event.Type)
		}

		switch event.Type {
		case analytics.EventMove:
			moves++
		case analytics.EventZoom:
			zooms++
		}
	}

	if err := tenantCtx.EventRepo().CreateBatch(req.Events); err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to insert event batch: %w", err)
	}

	if moves > 0 || zooms > 0 {
		if err := tenantCtx.SessionRepo().IncrementCounters(req.SessionID, moves, zooms); err != nil {
			marker.SetError(err)
			return 0, fmt.Errorf("failed to update session counters: %w", err)
		}
	}

	if err := s.applyTagRollups(tenantCtx, req.ScanID, req.Events); err != nil {
		marker.SetError(err)
		return 0, err
	}

	marker.SetSuccess(true)
	marker.AddMetadata("eventCount", len(req.Events))
	s.logger.Ingest().Info("Event batch accepted",
		"tenantId", tenantCtx.TenantID,
		"sessionId", req.SessionID,
		"scanId", session.ScanID,
		"count", len(req.Events),
		"moves", moves,
		"zooms", zooms,
		"duration", time.Since(start))

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tenantCtx.TenantID, messaging.ActivityEvent{
			ScanID:     session.ScanID,
			SessionID:  req.SessionID,
			EventCount: len(req.Events),
			Timestamp:  now,
		})
	}

	return len(req.Events), nil
}

// applyTagRollups bumps tag click counters for TAG_CLICK events and
// accumulates dwell seconds onto tags for DWELL events that carry a tag.
func (s *EventIngestionService) applyTagRollups(tenantCtx *tenant.Context, scanID string, events []*analytics.InteractionEvent) error {
	tagRepo := tenantCtx.TagRepo()

	for _, event := range events {
		if event.TargetID == nil {
			continue
		}

		switch event.Type {
		case analytics.EventTagClick:
			if err := tagRepo.IncrementClicks(*event.TargetID, scanID); err != nil {
				return fmt.Errorf("failed to increment tag clicks: %w", err)
			}
		case analytics.EventDwell:
			if event.Duration != nil && *event.Duration > 0 {
				if err := tagRepo.AddDwellTime(*event.TargetID, scanID, int(*event.Duration)); err != nil {
					return fmt.Errorf("failed to add tag dwell time: %w", err)
				}
			}
		}
	}
	return nil
}
