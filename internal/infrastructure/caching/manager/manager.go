// Package manager provides centralized cache operations with proper tenant isolation
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/stores"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/types"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Manager provides centralized cache operations with proper tenant isolation
// by delegating to specialized stores.
type Manager struct {
	Mu             sync.RWMutex
	LastAccessed   map[string]time.Time
	analyticsStore *stores.AnalyticsStore
	logger         *logging.ChanneledLogger
}

func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"analytics"})
	}

	return &Manager{
		LastAccessed:   make(map[string]time.Time),
		analyticsStore: stores.NewAnalyticsStore(),
		logger:         logger,
	}
}

func (m *Manager) GetTenantAnalyticsCache(tenantID string) (*types.TenantAnalyticsCache, error) {
	cache, exists := m.analyticsStore.GetTenantCache(tenantID)
	if !exists {
		return nil, fmt.Errorf("tenant %s analytics cache not initialized", tenantID)
	}
	return cache, nil
}

func (m *Manager) updateTenantAccessTime(tenantID string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.LastAccessed[tenantID] = time.Now().UTC()
}

func (m *Manager) InitializeTenant(tenantID string) {
	start := time.Now()
	if m.logger != nil {
		m.logger.Cache().Debug("Initializing tenant cache", "tenantId", tenantID)
	}

	m.analyticsStore.InitializeTenant(tenantID)
	m.updateTenantAccessTime(tenantID)

	if m.logger != nil {
		m.logger.Cache().Info("Tenant cache initialized", "tenantId", tenantID, "duration", time.Since(start))
	}
}

// GetHeatmapSnapshot returns a cached heatmap for the scan and window, if fresh.
func (m *Manager) GetHeatmapSnapshot(tenantID, scanID string, timeRange analytics.TimeRange) (*analytics.Heatmap, bool) {
	start := time.Now()
	snapshot, hit := m.analyticsStore.GetHeatmapSnapshot(tenantID, scanID, timeRange)
	m.updateTenantAccessTime(tenantID)

	if m.logger != nil {
		m.logger.LogCacheOperation("get_heatmap", scanID+":"+string(timeRange), hit, time.Since(start), tenantID)
	}

	if !hit {
		return nil, false
	}
	return snapshot.Data, true
}

// SetHeatmapSnapshot caches a computed heatmap with the configured TTL.
func (m *Manager) SetHeatmapSnapshot(tenantID string, heatmap *analytics.Heatmap) {
	m.analyticsStore.SetHeatmapSnapshot(tenantID, &types.HeatmapSnapshot{
		Data:       heatmap,
		ComputedAt: time.Now().UTC(),
		TTL:        config.HeatmapTTL,
	})
	m.updateTenantAccessTime(tenantID)
}

// InvalidateScanHeatmaps drops cached snapshots for one scan across all windows.
func (m *Manager) InvalidateScanHeatmaps(tenantID, scanID string) {
	m.analyticsStore.InvalidateScan(tenantID, scanID)
}

// PurgeExpired removes expired snapshots for a tenant and returns the count.
func (m *Manager) PurgeExpired(tenantID string) int {
	return m.analyticsStore.PurgeExpired(tenantID)
}

// GetCacheSummary returns cache status for diagnostics
func (m *Manager) GetCacheSummary(tenantID string) map[string]any {
	return m.analyticsStore.GetCacheSummary(tenantID)
}
