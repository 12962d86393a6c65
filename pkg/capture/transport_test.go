package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent     []*Batch
	beaconed []*Batch
	failNext bool
}

func (f *fakeSender) Send(_ context.Context, batch *Batch) error {
	if f.failNext {
		f.failNext = false
		return errors.New("connection refused")
	}
	f.sent = append(f.sent, batch)
	return nil
}

func (f *fakeSender) Beacon(batch *Batch) {
	f.beaconed = append(f.beaconed, batch)
}

func event(id string) *analytics.InteractionEvent {
	return &analytics.InteractionEvent{ID: id, Type: analytics.EventMove}
}

func TestBatcherHoldsEventsUntilSessionKnown(t *testing.T) {
	sender := &fakeSender{}
	b := NewBatcher(sender, "scan-1")

	b.Add(event("e1"))
	require.NoError(t, b.Flush(context.Background()))
	assert.Empty(t, sender.sent, "nothing should ship before the session id is set")
	assert.Equal(t, 1, b.Pending())

	b.SetSessionID("s1")
	require.NoError(t, b.Flush(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "s1", sender.sent[0].SessionID)
	assert.Equal(t, "scan-1", sender.sent[0].ScanID, "batches carry the scan for the ownership check")
	assert.Equal(t, 0, b.Pending())
}

func TestBatcherSignalsFlushAtBatchSize(t *testing.T) {
	b := NewBatcher(&fakeSender{}, "scan-1")
	b.SetSessionID("s1")

	for i := 0; i < config.MaxBatchSize-1; i++ {
		assert.False(t, b.Add(event(fmt.Sprintf("e%d", i))))
	}
	assert.True(t, b.Add(event("last")))
}

func TestBatcherFlushTakesAtMostOneBatch(t *testing.T) {
	sender := &fakeSender{}
	b := NewBatcher(sender, "scan-1")
	b.SetSessionID("s1")

	for i := 0; i < config.MaxBatchSize+10; i++ {
		b.Add(event(fmt.Sprintf("e%d", i)))
	}

	require.NoError(t, b.Flush(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Len(t, sender.sent[0].Events, config.MaxBatchSize)
	assert.Equal(t, 10, b.Pending())
}

func TestBatcherRequeuesFailedBatchAtFront(t *testing.T) {
	sender := &fakeSender{failNext: true}
	b := NewBatcher(sender, "scan-1")
	b.SetSessionID("s1")

	b.Add(event("first"))
	b.Add(event("second"))

	require.Error(t, b.Flush(context.Background()))
	assert.Equal(t, 2, b.Pending())

	require.NoError(t, b.Flush(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "first", sender.sent[0].Events[0].ID, "retry must preserve order")
	assert.Equal(t, "second", sender.sent[0].Events[1].ID)
}

func TestBatcherDropsOldestOnOverflow(t *testing.T) {
	b := NewBatcher(&fakeSender{}, "scan-1")
	b.SetSessionID("s1")

	total := config.MaxBufferedEvents + 25
	for i := 0; i < total; i++ {
		b.Add(event(fmt.Sprintf("e%d", i)))
	}

	assert.Equal(t, config.MaxBufferedEvents, b.Pending())
	assert.Equal(t, 25, b.Dropped())
}

func TestBatcherFinalFlushBeaconsInChunks(t *testing.T) {
	sender := &fakeSender{}
	b := NewBatcher(sender, "scan-1")
	b.SetSessionID("s1")

	total := config.MaxBatchSize*2 + 5
	for i := 0; i < total; i++ {
		b.Add(event(fmt.Sprintf("e%d", i)))
	}

	b.FinalFlush()
	require.Len(t, sender.beaconed, 3)
	assert.Len(t, sender.beaconed[0].Events, config.MaxBatchSize)
	assert.Len(t, sender.beaconed[2].Events, 5)
	assert.Equal(t, 0, b.Pending())
	assert.Empty(t, sender.sent)
}
