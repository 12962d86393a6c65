package stores

import (
	"testing"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(scanID string, timeRange analytics.TimeRange, age, ttl time.Duration) *types.HeatmapSnapshot {
	return &types.HeatmapSnapshot{
		Data: &analytics.Heatmap{
			ID:        "heatmap-" + scanID + "-" + string(timeRange),
			ScanID:    scanID,
			TimeRange: timeRange,
		},
		ComputedAt: time.Now().UTC().Add(-age),
		TTL:        ttl,
	}
}

func TestAnalyticsStoreRoundTrip(t *testing.T) {
	store := NewAnalyticsStore()
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeWeek, 0, time.Hour))

	got, hit := store.GetHeatmapSnapshot("tenant-a", "scan-1", analytics.RangeWeek)
	require.True(t, hit)
	assert.Equal(t, "scan-1", got.Data.ScanID)

	_, hit = store.GetHeatmapSnapshot("tenant-a", "scan-1", analytics.RangeDay)
	assert.False(t, hit, "windows are cached independently")
}

func TestAnalyticsStoreTenantIsolation(t *testing.T) {
	store := NewAnalyticsStore()
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeWeek, 0, time.Hour))

	_, hit := store.GetHeatmapSnapshot("tenant-b", "scan-1", analytics.RangeWeek)
	assert.False(t, hit)
}

func TestAnalyticsStoreExpiry(t *testing.T) {
	store := NewAnalyticsStore()
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeWeek, 2*time.Hour, time.Hour))

	_, hit := store.GetHeatmapSnapshot("tenant-a", "scan-1", analytics.RangeWeek)
	assert.False(t, hit, "expired snapshots read as misses")
}

func TestAnalyticsStoreInvalidateScan(t *testing.T) {
	store := NewAnalyticsStore()
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeWeek, 0, time.Hour))
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeMonth, 0, time.Hour))
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-2", analytics.RangeWeek, 0, time.Hour))

	store.InvalidateScan("tenant-a", "scan-1")

	_, hit := store.GetHeatmapSnapshot("tenant-a", "scan-1", analytics.RangeWeek)
	assert.False(t, hit)
	_, hit = store.GetHeatmapSnapshot("tenant-a", "scan-1", analytics.RangeMonth)
	assert.False(t, hit)
	_, hit = store.GetHeatmapSnapshot("tenant-a", "scan-2", analytics.RangeWeek)
	assert.True(t, hit, "other scans stay cached")
}

func TestAnalyticsStorePurgeExpired(t *testing.T) {
	store := NewAnalyticsStore()
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-1", analytics.RangeWeek, 2*time.Hour, time.Hour))
	store.SetHeatmapSnapshot("tenant-a", snapshot("scan-2", analytics.RangeWeek, 0, time.Hour))

	assert.Equal(t, 1, store.PurgeExpired("tenant-a"))
	assert.Equal(t, 0, store.PurgeExpired("tenant-a"))

	_, hit := store.GetHeatmapSnapshot("tenant-a", "scan-2", analytics.RangeWeek)
	assert.True(t, hit)
}
