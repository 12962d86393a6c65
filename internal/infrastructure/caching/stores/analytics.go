// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/types"
)

// AnalyticsStore implements heatmap snapshot caching with tenant isolation
type AnalyticsStore struct {
	tenantCaches map[string]*types.TenantAnalyticsCache
	mu           sync.RWMutex
}

// NewAnalyticsStore creates a new analytics cache store
func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{
		tenantCaches: make(map[string]*types.TenantAnalyticsCache),
	}
}

// InitializeTenant creates cache structures for a tenant
func (as *AnalyticsStore) InitializeTenant(tenantID string) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.tenantCaches[tenantID] == nil {
		as.tenantCaches[tenantID] = &types.TenantAnalyticsCache{
			HeatmapSnapshots: make(map[string]*types.HeatmapSnapshot),
			LastUpdated:      time.Now().UTC(),
		}
	}
}

// GetTenantCache safely retrieves a tenant's analytics cache
func (as *AnalyticsStore) GetTenantCache(tenantID string) (*types.TenantAnalyticsCache, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	cache, exists := as.tenantCaches[tenantID]
	return cache, exists
}

// GetHeatmapSnapshot retrieves a cached heatmap if present and not expired.
func (as *AnalyticsStore) GetHeatmapSnapshot(tenantID, scanID string, timeRange analytics.TimeRange) (*types.HeatmapSnapshot, bool) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	snapshot, exists := cache.HeatmapSnapshots[snapshotKey(scanID, timeRange)]
	if !exists || snapshot.Expired() {
		return nil, false
	}

	return snapshot, true
}

// SetHeatmapSnapshot stores a computed heatmap. Empty heatmaps are cached
// like any other result so repeated misses do not recompute.
func (as *AnalyticsStore) SetHeatmapSnapshot(tenantID string, snapshot *types.HeatmapSnapshot) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		as.InitializeTenant(tenantID)
		cache, _ = as.GetTenantCache(tenantID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.HeatmapSnapshots[snapshotKey(snapshot.Data.ScanID, snapshot.Data.TimeRange)] = snapshot
	cache.LastUpdated = time.Now().UTC()
}

// InvalidateScan removes all cached snapshots for one scan.
func (as *AnalyticsStore) InvalidateScan(tenantID, scanID string) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	for _, tr := range []analytics.TimeRange{analytics.RangeDay, analytics.RangeWeek, analytics.RangeMonth, analytics.RangeAll} {
		delete(cache.HeatmapSnapshots, snapshotKey(scanID, tr))
	}
	cache.LastUpdated = time.Now().UTC()
}

// PurgeExpired removes expired snapshots for a tenant.
func (as *AnalyticsStore) PurgeExpired(tenantID string) int {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return 0
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	removed := 0
	for key, snapshot := range cache.HeatmapSnapshots {
		if snapshot.Expired() {
			delete(cache.HeatmapSnapshots, key)
			removed++
		}
	}
	if removed > 0 {
		cache.LastUpdated = time.Now().UTC()
	}
	return removed
}

// GetCacheSummary returns cache status for diagnostics
func (as *AnalyticsStore) GetCacheSummary(tenantID string) map[string]any {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return map[string]any{"exists": false}
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	return map[string]any{
		"exists":      true,
		"snapshots":   len(cache.HeatmapSnapshots),
		"lastUpdated": cache.LastUpdated,
	}
}

func snapshotKey(scanID string, timeRange analytics.TimeRange) string {
	return scanID + ":" + string(timeRange)
}
