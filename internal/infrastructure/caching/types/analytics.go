// Package types defines cache data structures for multi-tenant analytics processing.
package types

import (
	"sync"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
)

// HeatmapSnapshot is a computed heatmap held in cache until its TTL lapses.
type HeatmapSnapshot struct {
	Data       *analytics.Heatmap `json:"data"`
	ComputedAt time.Time          `json:"computedAt"`
	TTL        time.Duration      `json:"ttl"`
}

// Expired reports whether the snapshot has outlived its TTL.
func (s *HeatmapSnapshot) Expired() bool {
	return time.Since(s.ComputedAt) > s.TTL
}

// TenantAnalyticsCache holds all cached analytics state for one tenant.
// Snapshots are keyed "scanID:timeRange".
type TenantAnalyticsCache struct {
	Mu               sync.RWMutex
	HeatmapSnapshots map[string]*HeatmapSnapshot
	LastUpdated      time.Time
}
