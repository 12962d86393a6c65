package capture

import (
	"math"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Classifier turns raw viewer signals into interaction events, discarding
// camera jitter and throttling high-frequency updates. It is not safe for
// concurrent use; the agent feeds it from a single goroutine.
type Classifier struct {
	now func() time.Time

	lastPosition *analytics.Position
	lastMoveAt   time.Time
	lastZoomAt   time.Time

	dwellAnchor *analytics.Position
	dwellStart  time.Time
}

// NewClassifier creates a classifier with an injectable clock.
func NewClassifier(now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now}
}

// Pose classifies a camera update. Movement below the distance threshold is
// jitter and produces nothing. Significant movement first settles any
// pending dwell, then emits a throttled MOVE. The dwell anchor resets to
// the new position either way.
func (c *Classifier) Pose(pose Pose) []*analytics.InteractionEvent {
	now := c.now()
	pos := pose.Position

	distance := math.Inf(1)
	if c.lastPosition != nil {
		distance = euclidean(*c.lastPosition, pos)
	}

	var events []*analytics.InteractionEvent
	if distance > config.MoveDistanceThreshold {
		if c.dwellAnchor != nil && now.Sub(c.dwellStart) > config.DwellThreshold {
			duration := now.Sub(c.dwellStart).Seconds()
			dwell := &analytics.InteractionEvent{
				Type:      analytics.EventDwell,
				Duration:  &duration,
				Timestamp: now,
			}
			dwell.SetPosition(*c.dwellAnchor)
			events = append(events, dwell)
		}

		if now.Sub(c.lastMoveAt) > config.MoveThrottleInterval {
			move := &analytics.InteractionEvent{
				Type:      analytics.EventMove,
				Timestamp: now,
			}
			move.SetPosition(pos)
			events = append(events, move)
			c.lastMoveAt = now
		}

		c.dwellStart = now
		anchor := pos
		c.dwellAnchor = &anchor
	}

	current := pos
	c.lastPosition = &current
	return events
}

// TagClick classifies a point-of-interest click, carrying the last known
// camera position.
func (c *Classifier) TagClick(click TagClick) *analytics.InteractionEvent {
	tagID := click.TagID
	event := &analytics.InteractionEvent{
		Type:      analytics.EventTagClick,
		TargetID:  &tagID,
		Timestamp: c.now(),
	}
	c.attachLastPosition(event)
	return event
}

// SweepEnter classifies a navigation hop between sweep points.
func (c *Classifier) SweepEnter(enter SweepEnter) *analytics.InteractionEvent {
	target := enter.To
	event := &analytics.InteractionEvent{
		Type:      analytics.EventHotspotClick,
		TargetID:  &target,
		Metadata:  map[string]any{"fromSweep": enter.From},
		Timestamp: c.now(),
	}
	c.attachLastPosition(event)
	return event
}

// Zoom classifies a zoom update, throttled to the same interval as MOVE.
func (c *Classifier) Zoom(zoom ZoomChange) *analytics.InteractionEvent {
	now := c.now()
	if now.Sub(c.lastZoomAt) <= config.MoveThrottleInterval {
		return nil
	}
	c.lastZoomAt = now

	event := &analytics.InteractionEvent{
		Type:      analytics.EventZoom,
		Metadata:  map[string]any{"level": zoom.Level},
		Timestamp: now,
	}
	c.attachLastPosition(event)
	return event
}

func (c *Classifier) attachLastPosition(event *analytics.InteractionEvent) {
	if c.lastPosition != nil {
		event.SetPosition(*c.lastPosition)
	}
}

func euclidean(a, b analytics.Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
