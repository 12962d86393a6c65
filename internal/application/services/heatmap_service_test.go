package services

import (
	"testing"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positional(eventType analytics.EventType, x, z float64, duration *float64) *analytics.InteractionEvent {
	event := &analytics.InteractionEvent{
		Type:     eventType,
		Duration: duration,
	}
	event.SetPosition(analytics.Position{X: x, Y: 1.5, Z: z})
	return event
}

func TestComputeHeatmapEmpty(t *testing.T) {
	s := &HeatmapService{}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, nil)

	assert.Equal(t, "heatmap-scan-1-WEEK", heatmap.ID)
	assert.Empty(t, heatmap.Points)
	assert.Empty(t, heatmap.PeakZones)
	assert.NotNil(t, heatmap.Points, "empty heatmap serializes as [] not null")
}

func TestComputeHeatmapNormalizesToHottestCell(t *testing.T) {
	s := &HeatmapService{}

	// Three events in one corner, one in the opposite corner.
	events := []*analytics.InteractionEvent{
		positional(analytics.EventMove, 0, 0, nil),
		positional(analytics.EventMove, 0.1, 0.1, nil),
		positional(analytics.EventMove, 0.2, 0.2, nil),
		positional(analytics.EventMove, 10, 10, nil),
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	require.Len(t, heatmap.Points, 2)

	var maxIntensity float64
	for _, p := range heatmap.Points {
		if p.Intensity > maxIntensity {
			maxIntensity = p.Intensity
		}
	}
	assert.Equal(t, 1.0, maxIntensity, "hottest cell must normalize to exactly 1.0")
}

func TestComputeHeatmapWeightsDwellByDuration(t *testing.T) {
	s := &HeatmapService{}

	longDwell := 10.0
	events := []*analytics.InteractionEvent{
		positional(analytics.EventDwell, 0, 0, &longDwell),
		positional(analytics.EventMove, 10, 10, nil),
		positional(analytics.EventMove, 10.1, 10.1, nil),
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	require.Len(t, heatmap.Points, 2)

	// The dwell cell carries weight 10, the move cell weight 2.
	var dwellCell, moveCell analytics.HeatmapPoint
	for _, p := range heatmap.Points {
		if p.X < 50 {
			dwellCell = p
		} else {
			moveCell = p
		}
	}
	assert.Equal(t, 1.0, dwellCell.Intensity)
	assert.InDelta(t, 0.2, moveCell.Intensity, 0.001)
}

func TestComputeHeatmapDwellMinimumWeight(t *testing.T) {
	s := &HeatmapService{}

	tinyDwell := 0.25
	events := []*analytics.InteractionEvent{
		positional(analytics.EventDwell, 0, 0, &tinyDwell),
		positional(analytics.EventMove, 10, 10, nil),
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	require.Len(t, heatmap.Points, 2)
	for _, p := range heatmap.Points {
		assert.Equal(t, 1.0, p.Intensity, "a sub-second dwell still counts as one visit")
	}
}

func TestComputeHeatmapDegenerateBoundingBox(t *testing.T) {
	s := &HeatmapService{}

	events := []*analytics.InteractionEvent{
		positional(analytics.EventMove, 3, 7, nil),
		positional(analytics.EventMove, 3, 7, nil),
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	require.Len(t, heatmap.Points, 1)
	assert.Equal(t, 1.0, heatmap.Points[0].Intensity)
}

func TestComputeHeatmapPeakZoneOrdering(t *testing.T) {
	s := &HeatmapService{}

	// Cell A: 10 events, cell B: 9, cell C: 5. With max 10 the
	// intensities are 1.0, 0.9 and 0.5; only the first two pass 0.7.
	var events []*analytics.InteractionEvent
	for i := 0; i < 10; i++ {
		events = append(events, positional(analytics.EventMove, 0, 0, nil))
	}
	for i := 0; i < 9; i++ {
		events = append(events, positional(analytics.EventMove, 10, 10, nil))
	}
	for i := 0; i < 5; i++ {
		events = append(events, positional(analytics.EventMove, 0, 10, nil))
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)

	require.Len(t, heatmap.PeakZones, 2)
	assert.Equal(t, "Zone 1", heatmap.PeakZones[0].Label)
	assert.Equal(t, 1.0, heatmap.PeakZones[0].Intensity)
	assert.Equal(t, "Zone 2", heatmap.PeakZones[1].Label)
	assert.InDelta(t, 0.9, heatmap.PeakZones[1].Intensity, 0.001)
}

func TestFindPeakZonesBackProjectsToWorldSpace(t *testing.T) {
	s := &HeatmapService{}

	// One 10-unit bounding box with hot cells in opposite corners.
	var events []*analytics.InteractionEvent
	for i := 0; i < 10; i++ {
		events = append(events, positional(analytics.EventMove, 0, 0, nil))
	}
	for i := 0; i < 9; i++ {
		events = append(events, positional(analytics.EventMove, 10, 10, nil))
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	require.Len(t, heatmap.PeakZones, 2)

	// 10 world units across 20 cells puts cell centers at 0.25 and 9.75
	// and gives every zone a half-unit radius.
	zone1 := heatmap.PeakZones[0]
	assert.InDelta(t, 0.25, zone1.Position.X, 0.001)
	assert.Equal(t, 0.0, zone1.Position.Y)
	assert.InDelta(t, 0.25, zone1.Position.Z, 0.001)
	assert.InDelta(t, 0.5, zone1.Radius, 0.001)

	zone2 := heatmap.PeakZones[1]
	assert.InDelta(t, 9.75, zone2.Position.X, 0.001)
	assert.InDelta(t, 9.75, zone2.Position.Z, 0.001)
	assert.InDelta(t, 0.5, zone2.Radius, 0.001)
}

func TestComputeHeatmapPointsArePercentages(t *testing.T) {
	s := &HeatmapService{}

	events := []*analytics.InteractionEvent{
		positional(analytics.EventMove, -10, -10, nil),
		positional(analytics.EventMove, 10, 10, nil),
	}

	heatmap := s.computeHeatmap("scan-1", analytics.RangeWeek, events)
	for _, p := range heatmap.Points {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, 100.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 100.0)
	}
}

func TestBucketIndexClampsUpperEdge(t *testing.T) {
	assert.Equal(t, 19, bucketIndex(10, 0, 10, 20), "max coordinate lands in the last cell")
	assert.Equal(t, 0, bucketIndex(0, 0, 10, 20))
	assert.Equal(t, 0, bucketIndex(5, 5, 0, 20), "degenerate span maps everything to cell zero")
}
