package services

import (
	"testing"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summarySession(visitor, device string, startedAt time.Time, duration int) *analytics.Session {
	return &analytics.Session{
		VisitorID: visitor,
		Device:    device,
		StartedAt: startedAt,
		Duration:  duration,
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := buildSummary(nil, nil)

	assert.Equal(t, 0, summary.TotalSessions)
	assert.Equal(t, 0, summary.UniqueVisitors)
	assert.Equal(t, 0.0, summary.AvgDuration)
	assert.Empty(t, summary.DeviceBreakdown)
	assert.Empty(t, summary.SessionsOverTime)
	assert.Empty(t, summary.TopTags)
}

func TestBuildSummaryTotals(t *testing.T) {
	day1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	sessions := []*analytics.Session{
		summarySession("v1", "Desktop", day1, 60),
		summarySession("v1", "Desktop", day1.Add(time.Hour), 120),
		summarySession("v2", "Mobile", day2, 90),
		summarySession("v3", "Desktop", day2, 30),
	}

	summary := buildSummary(sessions, nil)

	assert.Equal(t, 4, summary.TotalSessions)
	assert.Equal(t, 3, summary.UniqueVisitors)
	assert.Equal(t, 75.0, summary.AvgDuration)
	assert.Equal(t, analytics.DeviceStat{Count: 3, Percentage: 75}, summary.DeviceBreakdown["Desktop"])
	assert.Equal(t, analytics.DeviceStat{Count: 1, Percentage: 25}, summary.DeviceBreakdown["Mobile"])
}

func TestBuildSummarySessionsOverTimeSorted(t *testing.T) {
	day1 := time.Date(2026, 2, 1, 23, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 2, 0, 30, 0, 0, time.UTC)
	day3 := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

	// Deliberately out of order.
	sessions := []*analytics.Session{
		summarySession("v1", "Desktop", day3, 10),
		summarySession("v2", "Desktop", day1, 10),
		summarySession("v3", "Desktop", day2, 10),
		summarySession("v4", "Desktop", day2, 10),
	}

	summary := buildSummary(sessions, nil)

	require.Len(t, summary.SessionsOverTime, 3)
	assert.Equal(t, analytics.DailyCount{Date: "2026-02-01", Count: 1}, summary.SessionsOverTime[0])
	assert.Equal(t, analytics.DailyCount{Date: "2026-02-02", Count: 2}, summary.SessionsOverTime[1])
	assert.Equal(t, analytics.DailyCount{Date: "2026-02-03", Count: 1}, summary.SessionsOverTime[2])
}

func TestBuildSummaryTopTags(t *testing.T) {
	var tags []*analytics.Tag
	for i := 0; i < 12; i++ {
		tags = append(tags, &analytics.Tag{
			Label:      mockTagTemplates[i].label,
			ClickCount: i * 10,
			DwellTime:  i,
		})
	}

	summary := buildSummary(nil, tags)

	assert.Equal(t, 660, summary.TotalTagClicks, "total counts every tag, not just the top ten")
	require.Len(t, summary.TopTags, 10)
	assert.Equal(t, "Storage Room", summary.TopTags[0].Label)
	assert.Equal(t, 110, summary.TopTags[0].Clicks)
	for i := 1; i < len(summary.TopTags); i++ {
		assert.GreaterOrEqual(t, summary.TopTags[i-1].Clicks, summary.TopTags[i].Clicks)
	}
}

func TestBuildSummaryUnknownDevice(t *testing.T) {
	sessions := []*analytics.Session{
		summarySession("v1", "", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), 60),
	}

	summary := buildSummary(sessions, nil)
	assert.Equal(t, analytics.DeviceStat{Count: 1, Percentage: 100}, summary.DeviceBreakdown["Unknown"])
}

func TestElapsedSeconds(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 90, elapsedSeconds(base, base.Add(90*time.Second)))
	assert.Equal(t, 90, elapsedSeconds(base, base.Add(90*time.Second+800*time.Millisecond)), "partial seconds floor")
	assert.Equal(t, 0, elapsedSeconds(base, base.Add(-time.Second)), "clock skew clamps to zero")
}
