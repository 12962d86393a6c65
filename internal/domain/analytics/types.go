// Package analytics defines the core domain model for visitor interaction
// tracking inside 3D scan walkthroughs.
package analytics

import "time"

// Position is a point in viewer space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EventType classifies a visitor interaction.
type EventType string

const (
	EventMove         EventType = "MOVE"
	EventTagClick     EventType = "TAG_CLICK"
	EventHotspotClick EventType = "HOTSPOT_CLICK"
	EventDwell        EventType = "DWELL"
	EventZoom         EventType = "ZOOM"
	EventScanStart    EventType = "SCAN_START"
	EventScanEnd      EventType = "SCAN_END"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventMove, EventTagClick, EventHotspotClick, EventDwell, EventZoom, EventScanStart, EventScanEnd:
		return true
	}
	return false
}

// InteractionEvent is a single classified visitor interaction. Coordinates
// travel flattened on the wire so a batch row maps one-to-one onto the
// event table.
type InteractionEvent struct {
	ID        string         `json:"id,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Type      EventType      `json:"type"`
	PositionX *float64       `json:"positionX,omitempty"`
	PositionY *float64       `json:"positionY,omitempty"`
	PositionZ *float64       `json:"positionZ,omitempty"`
	TargetID  *string        `json:"targetId,omitempty"`
	Duration  *float64       `json:"duration,omitempty"` // seconds, DWELL only
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SetPosition attaches a world position to the event.
func (e *InteractionEvent) SetPosition(p Position) {
	e.PositionX, e.PositionY, e.PositionZ = &p.X, &p.Y, &p.Z
}

// HasPosition reports whether the event carries full world coordinates.
func (e *InteractionEvent) HasPosition() bool {
	return e.PositionX != nil && e.PositionY != nil && e.PositionZ != nil
}

// Session is one visitor's walkthrough of a scan.
type Session struct {
	ID         string     `json:"id"`
	ScanID     string     `json:"scanId"`
	VisitorID  string     `json:"visitorId"`
	Device     string     `json:"deviceType"`
	EntryPoint string     `json:"entryPoint"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	Duration   int        `json:"duration"` // seconds
	TotalMoves int        `json:"totalMoves"`
	TotalZooms int        `json:"totalZooms"`
}

// Scan is a 3D walkthrough space belonging to a tenant property.
type Scan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tag is an annotated point of interest inside a scan. TagID is the
// viewer's identifier, the one click events reference; ID is the row key.
type Tag struct {
	ID         string   `json:"id"`
	ScanID     string   `json:"scanId"`
	TagID      string   `json:"tagId"`
	Label      string   `json:"label"`
	Category   string   `json:"category,omitempty"`
	Position   Position `json:"position"`
	ClickCount int      `json:"totalClicks"`
	DwellTime  int      `json:"totalDwellTime"` // seconds
}

// TimeRange selects the aggregation window for analytics queries.
type TimeRange string

const (
	RangeDay   TimeRange = "DAY"
	RangeWeek  TimeRange = "WEEK"
	RangeMonth TimeRange = "MONTH"
	RangeAll   TimeRange = "ALL"
)

// ParseTimeRange maps a query string value to a TimeRange, defaulting to WEEK.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case RangeDay, RangeWeek, RangeMonth, RangeAll:
		return TimeRange(s)
	}
	return RangeWeek
}

// WindowStart returns the lower bound of the range relative to now.
// The second return is false for ALL, meaning no lower bound.
func (tr TimeRange) WindowStart(now time.Time) (time.Time, bool) {
	switch tr {
	case RangeDay:
		return now.Add(-24 * time.Hour), true
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case RangeMonth:
		return now.Add(-30 * 24 * time.Hour), true
	}
	return time.Time{}, false
}

// HeatmapPoint is a single weighted cell of a rendered heatmap. X and Y are
// percentages of the scan footprint (0..100); Intensity is normalized 0..1.
type HeatmapPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"`
}

// PeakZone is a labeled high-traffic region of a heatmap, located in world
// space so dashboards can place a marker inside the 3D viewer.
type PeakZone struct {
	Label     string   `json:"label"`
	Position  Position `json:"position"`
	Radius    float64  `json:"radius"`
	Intensity float64  `json:"intensity"`
}

// Heatmap is a rendered spatial aggregation of visitor activity.
type Heatmap struct {
	ID          string         `json:"id"`
	ScanID      string         `json:"scanId"`
	TimeRange   TimeRange      `json:"timeRange"`
	Points      []HeatmapPoint `json:"points"`
	PeakZones   []PeakZone     `json:"peakZones"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// DailyCount is the number of sessions started on a single UTC date.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// TagStat is an aggregate entry for a scan tag.
type TagStat struct {
	Label     string `json:"label"`
	Clicks    int    `json:"clicks"`
	DwellTime int    `json:"dwellTime"`
}

// DeviceStat is one device class's share of a scan's sessions.
type DeviceStat struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// Summary is the uncached per-scan analytics rollup.
type Summary struct {
	TotalSessions    int                   `json:"totalSessions"`
	UniqueVisitors   int                   `json:"totalUniqueVisitors"`
	AvgDuration      float64               `json:"avgSessionDuration"`
	TotalTagClicks   int                   `json:"totalTagClicks"`
	DeviceBreakdown  map[string]DeviceStat `json:"deviceBreakdown"`
	SessionsOverTime []DailyCount          `json:"sessionsOverTime"`
	TopTags          []TagStat             `json:"topTags"`
}
