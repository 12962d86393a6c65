package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	assert.Equal(t, RangeDay, ParseTimeRange("DAY"))
	assert.Equal(t, RangeAll, ParseTimeRange("ALL"))
	assert.Equal(t, RangeWeek, ParseTimeRange(""), "missing value defaults to WEEK")
	assert.Equal(t, RangeWeek, ParseTimeRange("week"), "matching is case sensitive")
	assert.Equal(t, RangeWeek, ParseTimeRange("YEAR"))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	start, bounded := RangeDay.WindowStart(now)
	assert.True(t, bounded)
	assert.Equal(t, now.Add(-24*time.Hour), start)

	start, bounded = RangeMonth.WindowStart(now)
	assert.True(t, bounded)
	assert.Equal(t, now.Add(-30*24*time.Hour), start)

	_, bounded = RangeAll.WindowStart(now)
	assert.False(t, bounded, "ALL has no lower bound")
}

func TestInteractionEventWireShape(t *testing.T) {
	payload := `{
		"type": "TAG_CLICK",
		"timestamp": "2026-02-08T10:15:00Z",
		"positionX": 1.5,
		"positionY": 0.2,
		"positionZ": -3.75,
		"targetId": "mp-tag-3"
	}`

	var event InteractionEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))

	assert.Equal(t, EventTagClick, event.Type)
	require.True(t, event.HasPosition())
	assert.Equal(t, 1.5, *event.PositionX)
	assert.Equal(t, 0.2, *event.PositionY)
	assert.Equal(t, -3.75, *event.PositionZ)
	require.NotNil(t, event.TargetID)
	assert.Equal(t, "mp-tag-3", *event.TargetID)
}

func TestInteractionEventOmitsUnsetCoordinates(t *testing.T) {
	event := InteractionEvent{Type: EventZoom, Timestamp: time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)}

	raw, err := json.Marshal(&event)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "positionX")
	assert.NotContains(t, string(raw), "targetId")
	assert.NotContains(t, string(raw), "duration")
}

func TestEventTypeIsValid(t *testing.T) {
	assert.True(t, EventMove.IsValid())
	assert.True(t, EventDwell.IsValid())
	assert.False(t, EventType("CLICK").IsValid())
	assert.False(t, EventType("move").IsValid())
	assert.False(t, EventType("").IsValid())
}
