package capture

import (
	"testing"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func pose(x, y, z float64) Pose {
	return Pose{Position: analytics.Position{X: x, Y: y, Z: z}}
}

func TestClassifierFirstPoseEmitsMove(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	events := c.Pose(pose(1, 0, 1))
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventMove, events[0].Type)
	assert.Equal(t, 1.0, *events[0].PositionX)
}

func TestClassifierDiscardsJitter(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	c.Pose(pose(0, 0, 0))
	clock.Advance(time.Second)

	// 0.3 units is under the 0.5 distance threshold
	events := c.Pose(pose(0.3, 0, 0))
	assert.Empty(t, events)
}

func TestClassifierThrottlesMoves(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	c.Pose(pose(0, 0, 0))

	clock.Advance(100 * time.Millisecond)
	events := c.Pose(pose(1, 0, 0))
	assert.Empty(t, events, "second move within throttle window should be suppressed")

	clock.Advance(600 * time.Millisecond)
	events = c.Pose(pose(2, 0, 0))
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventMove, events[0].Type)
}

func TestClassifierEmitsDwellBeforeMove(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	c.Pose(pose(0, 0, 0))

	// Sit still past the dwell threshold, then move significantly.
	clock.Advance(4 * time.Second)
	events := c.Pose(pose(5, 0, 0))

	require.Len(t, events, 2)
	assert.Equal(t, analytics.EventDwell, events[0].Type)
	assert.Equal(t, analytics.EventMove, events[1].Type)

	require.NotNil(t, events[0].Duration)
	assert.InDelta(t, 4.0, *events[0].Duration, 0.001)
	assert.Equal(t, 0.0, *events[0].PositionX, "dwell is reported at the anchor position")
	assert.Equal(t, 5.0, *events[1].PositionX)
}

func TestClassifierResetsAnchorWithoutMove(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	c.Pose(pose(0, 0, 0))

	// Move inside the throttle window: no MOVE, but the anchor must reset.
	clock.Advance(400 * time.Millisecond)
	events := c.Pose(pose(1, 0, 0))
	assert.Empty(t, events)

	// Dwell at the new anchor, then move again.
	clock.Advance(4 * time.Second)
	events = c.Pose(pose(6, 0, 0))
	require.Len(t, events, 2)
	assert.Equal(t, analytics.EventDwell, events[0].Type)
	assert.Equal(t, 1.0, *events[0].PositionX, "anchor should have moved to the throttled position")
	assert.InDelta(t, 4.0, *events[0].Duration, 0.001)
}

func TestClassifierTagClickCarriesLastPosition(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	event := c.TagClick(TagClick{TagID: "tag-1"})
	assert.Nil(t, event.PositionX, "no pose seen yet")

	c.Pose(pose(2, 1, 3))
	event = c.TagClick(TagClick{TagID: "tag-1"})
	require.True(t, event.HasPosition())
	assert.Equal(t, analytics.EventTagClick, event.Type)
	assert.Equal(t, "tag-1", *event.TargetID)
	assert.Equal(t, 3.0, *event.PositionZ)
}

func TestClassifierSweepEnterMetadata(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	event := c.SweepEnter(SweepEnter{From: "sweep-a", To: "sweep-b"})
	assert.Equal(t, analytics.EventHotspotClick, event.Type)
	assert.Equal(t, "sweep-b", *event.TargetID)
	assert.Equal(t, "sweep-a", event.Metadata["fromSweep"])
}

func TestClassifierThrottlesZooms(t *testing.T) {
	clock := newFakeClock()
	c := NewClassifier(clock.Now)

	clock.Advance(time.Second)
	event := c.Zoom(ZoomChange{Level: 1.5})
	require.NotNil(t, event)
	assert.Equal(t, analytics.EventZoom, event.Type)

	clock.Advance(100 * time.Millisecond)
	assert.Nil(t, c.Zoom(ZoomChange{Level: 1.6}))

	clock.Advance(600 * time.Millisecond)
	assert.NotNil(t, c.Zoom(ZoomChange{Level: 1.7}))
}
