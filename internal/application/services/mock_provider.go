package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
)

// MockProvider synthesizes plausible analytics without touching the database.
// Output is fully deterministic for a given scan and window so demo
// dashboards render identical data across requests and restarts.
type MockProvider struct{}

// NewMockProvider creates the deterministic analytics provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) IsMock() bool {
	return true
}

func (p *MockProvider) GetTags(_ *tenant.Context, scanID string) ([]*analytics.Tag, error) {
	return generateMockTags(scanID), nil
}

func (p *MockProvider) GetSessions(_ *tenant.Context, scanID string, timeRange analytics.TimeRange) ([]*analytics.Session, error) {
	start, end := mockWindow(timeRange, time.Now().UTC())
	return generateMockSessions(scanID, start, end), nil
}

func (p *MockProvider) GetHeatmap(_ *tenant.Context, scanID string, timeRange analytics.TimeRange) (*analytics.Heatmap, error) {
	return generateMockHeatmap(scanID, timeRange), nil
}

func (p *MockProvider) GetAnalyticsSummary(_ *tenant.Context, scanID string, startDate, endDate time.Time) (*analytics.Summary, error) {
	// Day alignment keeps sample data identical across requests within the
	// same day even when callers pass wall-clock bounds.
	start := startDate.UTC().Truncate(24 * time.Hour)
	end := endDate.UTC().Truncate(24 * time.Hour)
	if !end.After(start) {
		end = start.Add(24 * time.Hour)
	}

	sessions := generateMockSessions(scanID, start, end)
	tags := generateMockTags(scanID)

	summary := buildSummary(sessions, tags)
	if len(summary.TopTags) > 5 {
		summary.TopTags = summary.TopTags[:5]
	}
	return summary, nil
}

// mockWindow maps a time range onto day-aligned bounds. Both ends are
// aligned so the seeded stream, and with it every generated session, is
// identical for a whole day instead of shifting per request.
func mockWindow(timeRange analytics.TimeRange, now time.Time) (time.Time, time.Time) {
	days := 7
	switch timeRange {
	case analytics.RangeDay:
		days = 1
	case analytics.RangeMonth:
		days = 30
	case analytics.RangeAll:
		days = 90
	}
	end := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return end.AddDate(0, 0, -days), end
}

// mockRand is a linear congruential generator seeded from a string. The hash
// step and the modulus follow the widely used 31-bit LCG so a given seed
// always yields the same stream.
type mockRand struct {
	hash int32
}

func newMockRand(seed string) *mockRand {
	var hash int32
	for _, ch := range seed {
		hash = hash<<5 - hash + int32(ch)
	}
	return &mockRand{hash: hash}
}

// Next returns the next value in [0, 1). The multiply is done in float64 on
// purpose; the stream is defined by that arithmetic, not by exact integer
// math, and changing it would change every seeded output.
func (r *mockRand) Next() float64 {
	h := math.Trunc(float64(r.hash)*1103515245 + 12345)
	m := math.Mod(h, 4294967296)
	r.hash = int32(uint32(int64(m)) & 0x7fffffff)
	return float64(r.hash) / 2147483647
}

func randomBetween(r *mockRand, min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

var mockTagTemplates = []struct {
	label    string
	category string
}{
	{"Main Entrance", "Navigation"},
	{"Reception Desk", "Navigation"},
	{"Conference Room A", "Navigation"},
	{"Kitchen Area", "Navigation"},
	{"Product Display", "Point of Interest"},
	{"Emergency Exit", "Safety"},
	{"Restrooms", "Navigation"},
	{"Stage Area", "Point of Interest"},
	{"VIP Lounge", "Point of Interest"},
	{"Bar Counter", "Point of Interest"},
	{"Outdoor Patio", "Navigation"},
	{"Storage Room", "Utility"},
}

func generateMockTags(scanID string) []*analytics.Tag {
	rand := newMockRand(scanID + "tags")
	count := randomBetween(rand, 5, 10)

	tags := make([]*analytics.Tag, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, &analytics.Tag{
			ID:       fmt.Sprintf("tag-%s-%d", scanID, i),
			TagID:    fmt.Sprintf("mp-tag-%d", i),
			ScanID:   scanID,
			Label:    mockTagTemplates[i].label,
			Category: mockTagTemplates[i].category,
			Position: analytics.Position{
				X: rand.Next()*20 - 10,
				Y: rand.Next() * 5,
				Z: rand.Next()*20 - 10,
			},
			ClickCount: randomBetween(rand, 5, 200),
			DwellTime:  randomBetween(rand, 30, 600),
		})
	}
	return tags
}

var mockDevices = []string{"Desktop", "Mobile", "Tablet"}

func generateMockSessions(scanID string, startDate, endDate time.Time) []*analytics.Session {
	rand := newMockRand(scanID + startDate.UTC().Format("2006-01-02T15:04:05.000Z"))
	dayCount := int(math.Ceil(endDate.Sub(startDate).Hours() / 24))
	sessionCount := randomBetween(rand, dayCount*2, dayCount*8)

	sessions := make([]*analytics.Session, 0, sessionCount)
	for i := 0; i < sessionCount; i++ {
		sessionStart := startDate.Add(time.Duration(rand.Next() * float64(endDate.Sub(startDate))))
		duration := randomBetween(rand, 30, 900)
		sessionEnd := sessionStart.Add(time.Duration(duration) * time.Second)

		// The event stream itself is not returned but its draws feed the
		// move and zoom counters, keeping the sequence stable.
		eventCount := randomBetween(rand, 3, 20)
		moves, zooms := 0, 0
		for j := 0; j < eventCount; j++ {
			eventType := mockEventTypes[randomBetween(rand, 0, len(mockEventTypes)-1)]
			if eventType == analytics.EventMove || eventType == analytics.EventDwell {
				rand.Next()
				rand.Next()
				rand.Next()
			}
			if eventType == analytics.EventTagClick {
				randomBetween(rand, 0, 9)
			}
			if eventType == analytics.EventDwell {
				randomBetween(rand, 5, 60)
			}

			switch eventType {
			case analytics.EventMove:
				moves++
			case analytics.EventZoom:
				zooms++
			}
		}

		visitorN := int(math.Floor(rand.Next()*float64(sessionCount)*0.7)) + 1
		device := mockDevices[randomBetween(rand, 0, len(mockDevices)-1)]

		sessions = append(sessions, &analytics.Session{
			ID:         fmt.Sprintf("session-%s-%d", scanID, i),
			ScanID:     scanID,
			VisitorID:  fmt.Sprintf("visitor-%d", visitorN),
			Device:     device,
			EntryPoint: "Direct",
			StartedAt:  sessionStart,
			EndedAt:    &sessionEnd,
			Duration:   duration,
			TotalMoves: moves,
			TotalZooms: zooms,
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

var mockEventTypes = []analytics.EventType{
	analytics.EventMove,
	analytics.EventZoom,
	analytics.EventTagClick,
	analytics.EventHotspotClick,
	analytics.EventDwell,
}

var mockZoneLabels = []string{
	"Main Entrance",
	"Product Display",
	"Stage Area",
	"Bar Counter",
	"VIP Section",
}

func generateMockHeatmap(scanID string, timeRange analytics.TimeRange) *analytics.Heatmap {
	rand := newMockRand(scanID + string(timeRange))

	pointCount := randomBetween(rand, 50, 200)
	points := make([]analytics.HeatmapPoint, 0, pointCount)
	for i := 0; i < pointCount; i++ {
		// Multiplying two draws clusters intensities toward the low end.
		points = append(points, analytics.HeatmapPoint{
			X:         rand.Next() * 100,
			Y:         rand.Next() * 100,
			Intensity: rand.Next() * rand.Next(),
		})
	}

	hotspotCount := randomBetween(rand, 2, 5)
	for i := 0; i < hotspotCount; i++ {
		cx := rand.Next()*80 + 10
		cy := rand.Next()*80 + 10
		for j := 0; j < 15; j++ {
			points = append(points, analytics.HeatmapPoint{
				X:         cx + (rand.Next()-0.5)*15,
				Y:         cy + (rand.Next()-0.5)*15,
				Intensity: 0.6 + rand.Next()*0.4,
			})
		}
	}

	zones := make([]analytics.PeakZone, 0, hotspotCount)
	for i := 0; i < hotspotCount; i++ {
		position := analytics.Position{
			X: rand.Next()*20 - 10,
			Y: rand.Next() * 3,
			Z: rand.Next()*20 - 10,
		}
		radius := float64(randomBetween(rand, 2, 5))

		zones = append(zones, analytics.PeakZone{
			Label:     mockZoneLabels[i%len(mockZoneLabels)],
			Position:  position,
			Radius:    radius,
			Intensity: 0.6 + rand.Next()*0.4,
		})
	}

	return &analytics.Heatmap{
		ID:          fmt.Sprintf("heatmap-%s-%s", scanID, timeRange),
		ScanID:      scanID,
		TimeRange:   timeRange,
		Points:      points,
		PeakZones:   zones,
		GeneratedAt: time.Now().UTC(),
	}
}
