package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRandIsDeterministic(t *testing.T) {
	a := newMockRand("scan-1tags")
	b := newMockRand("scan-1tags")

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestMockRandStaysInUnitInterval(t *testing.T) {
	r := newMockRand("any-seed")
	for i := 0; i < 1000; i++ {
		v := r.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestMockRandDiffersAcrossSeeds(t *testing.T) {
	a := newMockRand("scan-1")
	b := newMockRand("scan-2")
	assert.NotEqual(t, a.Next(), b.Next())
}

func TestGenerateMockTagsIsDeterministic(t *testing.T) {
	first := generateMockTags("scan-abc")
	second := generateMockTags("scan-abc")
	assert.Equal(t, first, second)
}

func TestGenerateMockTagsShape(t *testing.T) {
	tags := generateMockTags("scan-abc")

	require.GreaterOrEqual(t, len(tags), 5)
	require.LessOrEqual(t, len(tags), 10)

	for i, tag := range tags {
		assert.Equal(t, fmt.Sprintf("mp-tag-%d", i), tag.TagID)
		assert.Equal(t, mockTagTemplates[i].label, tag.Label)
		assert.Equal(t, mockTagTemplates[i].category, tag.Category)
		assert.GreaterOrEqual(t, tag.Position.X, -10.0)
		assert.LessOrEqual(t, tag.Position.X, 10.0)
		assert.GreaterOrEqual(t, tag.Position.Y, 0.0)
		assert.LessOrEqual(t, tag.Position.Y, 5.0)
		assert.GreaterOrEqual(t, tag.ClickCount, 5)
		assert.LessOrEqual(t, tag.ClickCount, 200)
		assert.GreaterOrEqual(t, tag.DwellTime, 30)
		assert.LessOrEqual(t, tag.DwellTime, 600)
	}
}

func TestGenerateMockSessionsIsDeterministic(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	first := generateMockSessions("scan-abc", start, end)
	second := generateMockSessions("scan-abc", start, end)
	assert.Equal(t, first, second)
}

func TestGenerateMockSessionsShape(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	sessions := generateMockSessions("scan-abc", start, end)

	require.GreaterOrEqual(t, len(sessions), 14, "at least two sessions per day")
	require.LessOrEqual(t, len(sessions), 56, "at most eight sessions per day")

	for i, session := range sessions {
		assert.False(t, session.StartedAt.Before(start))
		assert.False(t, session.StartedAt.After(end))
		assert.GreaterOrEqual(t, session.Duration, 30)
		assert.LessOrEqual(t, session.Duration, 900)
		assert.Contains(t, mockDevices, session.Device)
		assert.Equal(t, "Direct", session.EntryPoint)
		require.NotNil(t, session.EndedAt)
		assert.Equal(t, session.StartedAt.Add(time.Duration(session.Duration)*time.Second), *session.EndedAt)

		if i > 0 {
			assert.False(t, session.StartedAt.Before(sessions[i-1].StartedAt), "sessions are sorted by start time")
		}
	}
}

func TestGenerateMockHeatmapIsDeterministic(t *testing.T) {
	first := generateMockHeatmap("scan-abc", analytics.RangeWeek)
	second := generateMockHeatmap("scan-abc", analytics.RangeWeek)

	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, first.PeakZones, second.PeakZones)
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerateMockHeatmapShape(t *testing.T) {
	heatmap := generateMockHeatmap("scan-abc", analytics.RangeMonth)

	assert.Equal(t, "heatmap-scan-abc-MONTH", heatmap.ID)
	assert.Equal(t, analytics.RangeMonth, heatmap.TimeRange)

	// 50..200 base points plus 15 per hotspot cluster
	require.GreaterOrEqual(t, len(heatmap.Points), 50+2*15)
	require.LessOrEqual(t, len(heatmap.Points), 200+5*15)

	require.GreaterOrEqual(t, len(heatmap.PeakZones), 2)
	require.LessOrEqual(t, len(heatmap.PeakZones), 5)
	for i, zone := range heatmap.PeakZones {
		assert.Equal(t, mockZoneLabels[i%len(mockZoneLabels)], zone.Label)
		assert.GreaterOrEqual(t, zone.Position.X, -10.0)
		assert.LessOrEqual(t, zone.Position.X, 10.0)
		assert.GreaterOrEqual(t, zone.Radius, 2.0)
		assert.LessOrEqual(t, zone.Radius, 5.0)
		assert.GreaterOrEqual(t, zone.Intensity, 0.6)
		assert.LessOrEqual(t, zone.Intensity, 1.0)
	}
}

func TestMockHeatmapVariesByTimeRange(t *testing.T) {
	week := generateMockHeatmap("scan-abc", analytics.RangeWeek)
	month := generateMockHeatmap("scan-abc", analytics.RangeMonth)
	assert.NotEqual(t, week.Points, month.Points)
}

func TestMockProviderSummary(t *testing.T) {
	provider := NewMockProvider()

	end := time.Date(2026, 2, 8, 15, 30, 0, 0, time.UTC)
	summary, err := provider.GetAnalyticsSummary(nil, "scan-abc", end.AddDate(0, 0, -7), end)
	require.NoError(t, err)

	assert.Greater(t, summary.TotalSessions, 0)
	assert.Greater(t, summary.UniqueVisitors, 0)
	assert.LessOrEqual(t, summary.UniqueVisitors, summary.TotalSessions)
	assert.Greater(t, summary.TotalTagClicks, 0)
	assert.LessOrEqual(t, len(summary.TopTags), 5)
	assert.True(t, provider.IsMock())
}

func TestMockProviderSummaryStableWithinDay(t *testing.T) {
	provider := NewMockProvider()

	morning := time.Date(2026, 2, 8, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 2, 8, 22, 45, 0, 0, time.UTC)

	first, err := provider.GetAnalyticsSummary(nil, "scan-abc", morning.AddDate(0, 0, -7), morning)
	require.NoError(t, err)
	second, err := provider.GetAnalyticsSummary(nil, "scan-abc", evening.AddDate(0, 0, -7), evening)
	require.NoError(t, err)

	assert.Equal(t, first, second, "sample data must not shift with the wall clock within a day")
}

func TestMockWindowIsDayAligned(t *testing.T) {
	morning := time.Date(2026, 2, 8, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)

	startA, endA := mockWindow(analytics.RangeWeek, morning)
	startB, endB := mockWindow(analytics.RangeWeek, evening)

	assert.Equal(t, startA, startB)
	assert.Equal(t, endA, endB)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), endA)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), startA)
}
