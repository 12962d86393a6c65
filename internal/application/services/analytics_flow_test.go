package services

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/manager"
	infradb "github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/database"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTenantContext builds a tenant context over an in-memory database
// with the full schema applied. The single connection keeps every statement
// on the same in-memory instance.
func newTestTenantContext(t *testing.T) *tenant.Context {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, infradb.NewTableCreator().CreateSchema(conn))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		DefaultLevel: slog.LevelError,
	})
	require.NoError(t, err)

	cacheManager := manager.NewManager(logger)
	cacheManager.InitializeTenant("tenant-a")

	return &tenant.Context{
		TenantID:     "tenant-a",
		Database:     &tenant.Database{Conn: conn, TenantID: "tenant-a"},
		Status:       "active",
		CacheManager: cacheManager,
		Logger:       logger,
	}
}

func seedScan(t *testing.T, tenantCtx *tenant.Context, id string) {
	t.Helper()
	_, err := tenantCtx.Database.Conn.Exec(
		`INSERT INTO scans (id, name, created_at) VALUES (?, ?, ?)`,
		id, "Test Walkthrough", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
}

func seedTag(t *testing.T, tenantCtx *tenant.Context, scanID, tagID, label string) {
	t.Helper()
	_, err := tenantCtx.Database.Conn.Exec(
		`INSERT INTO scan_tags (id, scan_id, tag_id, label, category, position_x, position_y, position_z)
		 VALUES (?, ?, ?, ?, ?, 0, 0, 0)`,
		scanID+"-"+tagID, scanID, tagID, label, "Navigation")
	require.NoError(t, err)
}

func moveEvent(x, z float64) *analytics.InteractionEvent {
	event := &analytics.InteractionEvent{Type: analytics.EventMove, Timestamp: time.Now().UTC()}
	event.SetPosition(analytics.Position{X: x, Y: 1.5, Z: z})
	return event
}

func tagClickEvent(tagID string) *analytics.InteractionEvent {
	return &analytics.InteractionEvent{
		Type:      analytics.EventTagClick,
		TargetID:  &tagID,
		Timestamp: time.Now().UTC(),
	}
}

func TestIngestBatchRollsUpCounters(t *testing.T) {
	tenantCtx := newTestTenantContext(t)
	seedScan(t, tenantCtx, "scan-1")
	seedTag(t, tenantCtx, "scan-1", "mp-tag-1", "Main Entrance")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	sessionSvc := NewSessionService(tenantCtx.Logger, perfTracker)
	ingestSvc := NewEventIngestionService(tenantCtx.Logger, perfTracker, nil)

	session, err := sessionSvc.StartSession(tenantCtx, &StartSessionRequest{
		ScanID: "scan-1", VisitorID: "v1", Device: "Desktop",
	})
	require.NoError(t, err)

	events := []*analytics.InteractionEvent{
		moveEvent(0, 0),
		moveEvent(1, 1),
		moveEvent(2, 2),
		tagClickEvent("mp-tag-1"),
		tagClickEvent("mp-tag-1"),
		{Type: analytics.EventZoom, Timestamp: time.Now().UTC()},
	}
	count, err := ingestSvc.IngestBatch(tenantCtx, &EventBatchRequest{
		ScanID: "scan-1", SessionID: session.ID, Events: events,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	stored, err := tenantCtx.SessionRepo().FindByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.TotalMoves)
	assert.Equal(t, 1, stored.TotalZooms)

	tags, err := tenantCtx.TagRepo().FindByScan("scan-1")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 2, tags[0].ClickCount, "each tag click bumps the rollup once")
}

func TestIngestBatchRejectsScanMismatch(t *testing.T) {
	tenantCtx := newTestTenantContext(t)
	seedScan(t, tenantCtx, "scan-1")
	seedScan(t, tenantCtx, "scan-2")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	sessionSvc := NewSessionService(tenantCtx.Logger, perfTracker)
	ingestSvc := NewEventIngestionService(tenantCtx.Logger, perfTracker, nil)

	session, err := sessionSvc.StartSession(tenantCtx, &StartSessionRequest{
		ScanID: "scan-1", VisitorID: "v1", Device: "Desktop",
	})
	require.NoError(t, err)

	count, err := ingestSvc.IngestBatch(tenantCtx, &EventBatchRequest{
		ScanID: "scan-2", SessionID: session.ID,
		Events: []*analytics.InteractionEvent{moveEvent(0, 0)},
	})
	assert.ErrorIs(t, err, analytics.ErrInvalidSession)
	assert.Equal(t, 0, count)

	var eventRows int
	require.NoError(t, tenantCtx.Database.Conn.QueryRow(`SELECT COUNT(*) FROM scan_events`).Scan(&eventRows))
	assert.Equal(t, 0, eventRows, "a rejected batch must persist nothing")
}

func TestSessionLifecycleEndToEnd(t *testing.T) {
	tenantCtx := newTestTenantContext(t)
	seedScan(t, tenantCtx, "scan-1")
	seedTag(t, tenantCtx, "scan-1", "mp-tag-1", "Main Entrance")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	sessionSvc := NewSessionService(tenantCtx.Logger, perfTracker)
	ingestSvc := NewEventIngestionService(tenantCtx.Logger, perfTracker, nil)
	summarySvc := NewSummaryService(tenantCtx.Logger, perfTracker)

	session, err := sessionSvc.StartSession(tenantCtx, &StartSessionRequest{
		ScanID: "scan-1", VisitorID: "v1", Device: "Mobile",
	})
	require.NoError(t, err)

	_, err = ingestSvc.IngestBatch(tenantCtx, &EventBatchRequest{
		ScanID: "scan-1", SessionID: session.ID,
		Events: []*analytics.InteractionEvent{
			moveEvent(0, 0),
			moveEvent(1, 0),
			moveEvent(2, 0),
			tagClickEvent("mp-tag-1"),
			tagClickEvent("mp-tag-1"),
		},
	})
	require.NoError(t, err)

	duration, err := sessionSvc.EndSession(tenantCtx, session.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, duration, 0)

	stored, err := tenantCtx.SessionRepo().FindByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.EndedAt, "ending a session stamps its end time")
	assert.Equal(t, 3, stored.TotalMoves)
	assert.Equal(t, 0, stored.TotalZooms)

	summary, err := summarySvc.GetSummary(tenantCtx, "scan-1", time.Time{}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 1, summary.UniqueVisitors)
	assert.Equal(t, 2, summary.TotalTagClicks)
	assert.Equal(t, analytics.DeviceStat{Count: 1, Percentage: 100}, summary.DeviceBreakdown["Mobile"])
}

func TestGetHeatmapServesCachedSnapshot(t *testing.T) {
	tenantCtx := newTestTenantContext(t)
	seedScan(t, tenantCtx, "scan-1")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	sessionSvc := NewSessionService(tenantCtx.Logger, perfTracker)
	ingestSvc := NewEventIngestionService(tenantCtx.Logger, perfTracker, nil)
	heatmapSvc := NewHeatmapService(tenantCtx.Logger, perfTracker)

	session, err := sessionSvc.StartSession(tenantCtx, &StartSessionRequest{
		ScanID: "scan-1", VisitorID: "v1", Device: "Desktop",
	})
	require.NoError(t, err)

	_, err = ingestSvc.IngestBatch(tenantCtx, &EventBatchRequest{
		ScanID: "scan-1", SessionID: session.ID,
		Events: []*analytics.InteractionEvent{moveEvent(0, 0), moveEvent(10, 10)},
	})
	require.NoError(t, err)

	first, err := heatmapSvc.GetHeatmap(tenantCtx, "scan-1", analytics.RangeWeek)
	require.NoError(t, err)
	require.NotEmpty(t, first.Points)

	second, err := heatmapSvc.GetHeatmap(tenantCtx, "scan-1", analytics.RangeWeek)
	require.NoError(t, err)
	assert.Same(t, first, second, "a fresh snapshot is served from cache, not recomputed")
}

func TestGetHeatmapCachesEmptyResult(t *testing.T) {
	tenantCtx := newTestTenantContext(t)
	seedScan(t, tenantCtx, "scan-1")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	heatmapSvc := NewHeatmapService(tenantCtx.Logger, perfTracker)

	first, err := heatmapSvc.GetHeatmap(tenantCtx, "scan-1", analytics.RangeWeek)
	require.NoError(t, err)
	assert.Empty(t, first.Points)

	second, err := heatmapSvc.GetHeatmap(tenantCtx, "scan-1", analytics.RangeWeek)
	require.NoError(t, err)
	assert.Same(t, first, second, "an empty result is cached like any other")
}
