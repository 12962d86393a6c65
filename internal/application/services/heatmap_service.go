package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// HeatmapService computes spatial aggregations of visitor activity with a
// cache-first read path.
type HeatmapService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewHeatmapService creates a heatmap service with injected dependencies.
func NewHeatmapService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *HeatmapService {
	return &HeatmapService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetHeatmap returns the heatmap for a scan and window, serving from the
// tenant cache when a fresh snapshot exists. Empty results are cached like
// any other so repeated misses do not recompute.
func (s *HeatmapService) GetHeatmap(tenantCtx *tenant.Context, scanID string, timeRange analytics.TimeRange) (*analytics.Heatmap, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:heatmap", tenantCtx.TenantID)
	defer marker.Complete()

	if cached, hit := tenantCtx.CacheManager.GetHeatmapSnapshot(tenantCtx.TenantID, scanID, timeRange); hit {
		marker.AddCacheHit()
		marker.SetSuccess(true)
		return cached, nil
	}
	marker.AddCacheMiss()

	exists, err := tenantCtx.ScanRepo().Exists(scanID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to look up scan: %w", err)
	}
	if !exists {
		marker.SetSuccess(false)
		return nil, analytics.ErrScanNotFound
	}

	var since *time.Time
	if windowStart, bounded := timeRange.WindowStart(time.Now().UTC()); bounded {
		since = &windowStart
	}

	events, err := tenantCtx.EventRepo().FindPositional(scanID, since)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load positional events: %w", err)
	}

	heatmap := s.computeHeatmap(scanID, timeRange, events)
	tenantCtx.CacheManager.SetHeatmapSnapshot(tenantCtx.TenantID, heatmap)

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Heatmap computed",
		"tenantId", tenantCtx.TenantID,
		"scanId", scanID,
		"timeRange", string(timeRange),
		"events", len(events),
		"points", len(heatmap.Points),
		"peakZones", len(heatmap.PeakZones),
		"duration", time.Since(start))

	return heatmap, nil
}

// computeHeatmap buckets positional events into a square grid over the scan's
// bounding box. MOVE events weigh 1; DWELL events weigh their duration in
// seconds (at least 1). Cell weights are normalized against the hottest cell
// so the maximum intensity is exactly 1.0.
func (s *HeatmapService) computeHeatmap(scanID string, timeRange analytics.TimeRange, events []*analytics.InteractionEvent) *analytics.Heatmap {
	heatmap := &analytics.Heatmap{
		ID:          fmt.Sprintf("heatmap-%s-%s", scanID, timeRange),
		ScanID:      scanID,
		TimeRange:   timeRange,
		Points:      []analytics.HeatmapPoint{},
		PeakZones:   []analytics.PeakZone{},
		GeneratedAt: time.Now().UTC(),
	}

	if len(events) == 0 {
		return heatmap
	}

	// Bounding box over the floor plane. The viewer's Z axis maps onto the
	// heatmap's Y axis.
	minX, maxX := *events[0].PositionX, *events[0].PositionX
	minZ, maxZ := *events[0].PositionZ, *events[0].PositionZ
	for _, event := range events[1:] {
		x, z := *event.PositionX, *event.PositionZ
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if z < minZ {
			minZ = z
		}
		if z > maxZ {
			maxZ = z
		}
	}

	gridSize := config.HeatmapGridSize
	grid := make([]float64, gridSize*gridSize)
	spanX := maxX - minX
	spanZ := maxZ - minZ

	for _, event := range events {
		col := bucketIndex(*event.PositionX, minX, spanX, gridSize)
		row := bucketIndex(*event.PositionZ, minZ, spanZ, gridSize)

		weight := 1.0
		if event.Type == analytics.EventDwell {
			weight = 1.0
			if event.Duration != nil && *event.Duration > 1.0 {
				weight = *event.Duration
			}
		}
		grid[row*gridSize+col] += weight
	}

	maxWeight := 0.0
	for _, w := range grid {
		if w > maxWeight {
			maxWeight = w
		}
	}

	cellPercent := 100.0 / float64(gridSize)
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			weight := grid[row*gridSize+col]
			if weight == 0 {
				continue
			}
			heatmap.Points = append(heatmap.Points, analytics.HeatmapPoint{
				X:         (float64(col) + 0.5) * cellPercent,
				Y:         (float64(row) + 0.5) * cellPercent,
				Intensity: weight / maxWeight,
			})
		}
	}

	heatmap.PeakZones = s.findPeakZones(heatmap.Points, minX, minZ, spanX, spanZ)
	return heatmap
}

// findPeakZones labels cells above the peak threshold in descending
// intensity order. Cell centers are projected back into world space and the
// radius is the cell's world size along the longer bounding box axis, so a
// zone marker covers its whole cell inside the viewer.
func (s *HeatmapService) findPeakZones(points []analytics.HeatmapPoint, minX, minZ, spanX, spanZ float64) []analytics.PeakZone {
	var hot []analytics.HeatmapPoint
	for _, p := range points {
		if p.Intensity > config.PeakZoneThreshold {
			hot = append(hot, p)
		}
	}

	sort.Slice(hot, func(i, j int) bool {
		return hot[i].Intensity > hot[j].Intensity
	})

	// Zero-range axes are widened to 1 world unit, matching the bucketing.
	if spanX <= 0 {
		spanX = 1
	}
	if spanZ <= 0 {
		spanZ = 1
	}
	radius := math.Max(spanX, spanZ) / float64(config.HeatmapGridSize)

	zones := make([]analytics.PeakZone, 0, len(hot))
	for i, p := range hot {
		zones = append(zones, analytics.PeakZone{
			Label: fmt.Sprintf("Zone %d", i+1),
			Position: analytics.Position{
				X: minX + p.X/100*spanX,
				Y: 0,
				Z: minZ + p.Y/100*spanZ,
			},
			Radius:    radius,
			Intensity: p.Intensity,
		})
	}
	return zones
}

// bucketIndex maps a coordinate into a grid column, clamping the upper edge
// into the last cell. A degenerate span puts everything in cell zero.
func bucketIndex(value, min, span float64, gridSize int) int {
	if span <= 0 {
		return 0
	}
	idx := int((value - min) / span * float64(gridSize))
	if idx >= gridSize {
		idx = gridSize - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
