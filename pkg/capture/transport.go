package capture

import (
	"context"
	"sync"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Batcher buffers classified events and ships them in bounded batches.
// Delivery is at-least-once: failed batches are requeued at the front so
// ordering survives retries.
type Batcher struct {
	mu        sync.Mutex
	buffer    []*analytics.InteractionEvent
	sessionID string
	dropped   int

	scanID string
	sender Sender
}

// NewBatcher creates a batcher shipping one scan's events over the given
// sender.
func NewBatcher(sender Sender, scanID string) *Batcher {
	return &Batcher{sender: sender, scanID: scanID}
}

// SetSessionID unblocks flushing. Events captured before the session opens
// stay buffered until the id is known.
func (b *Batcher) SetSessionID(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionID = sessionID
}

// Add buffers an event and reports whether the buffer reached the batch
// size, signaling the caller to flush immediately.
func (b *Batcher) Add(event *analytics.InteractionEvent) bool {
	if event == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = append(b.buffer, event)

	// Backlog cap: when the server is unreachable for a long stretch the
	// oldest events are the least valuable, so they go first.
	if len(b.buffer) > config.MaxBufferedEvents {
		overflow := len(b.buffer) - config.MaxBufferedEvents
		b.buffer = b.buffer[overflow:]
		b.dropped += overflow
	}

	return len(b.buffer) >= config.MaxBatchSize
}

// Flush sends up to one batch off the front of the buffer. A send failure
// requeues the batch at the front for the next attempt.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.sessionID == "" || len(b.buffer) == 0 {
		b.mu.Unlock()
		return nil
	}

	n := len(b.buffer)
	if n > config.MaxBatchSize {
		n = config.MaxBatchSize
	}
	batch := &Batch{
		ScanID:    b.scanID,
		SessionID: b.sessionID,
		Events:    b.buffer[:n:n],
	}
	b.buffer = b.buffer[n:]
	b.mu.Unlock()

	if err := b.sender.Send(ctx, batch); err != nil {
		b.mu.Lock()
		b.buffer = append(batch.Events, b.buffer...)
		b.mu.Unlock()
		return err
	}
	return nil
}

// FinalFlush drains the remaining buffer over the beacon path. Used on
// shutdown when there is no opportunity to retry.
func (b *Batcher) FinalFlush() {
	b.mu.Lock()
	if b.sessionID == "" || len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	sessionID := b.sessionID
	remaining := b.buffer
	b.buffer = nil
	b.mu.Unlock()

	// Chunked so a long backlog still fits the server's batch limit.
	for len(remaining) > 0 {
		n := len(remaining)
		if n > config.MaxBatchSize {
			n = config.MaxBatchSize
		}
		b.sender.Beacon(&Batch{ScanID: b.scanID, SessionID: sessionID, Events: remaining[:n:n]})
		remaining = remaining[n:]
	}
}

// Pending returns the number of buffered events.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}

// Dropped returns how many events were discarded to the backlog cap.
func (b *Batcher) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
