package services

import (
	"testing"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
	"github.com/stretchr/testify/assert"
)

func ingestionFixture() (*EventIngestionService, *tenant.Context) {
	svc := NewEventIngestionService(nil, performance.NewTracker(performance.DefaultTrackerConfig()), nil)
	return svc, &tenant.Context{TenantID: "tenant-a"}
}

func TestIngestBatchRejectsEmptyBatch(t *testing.T) {
	svc, tenantCtx := ingestionFixture()

	count, err := svc.IngestBatch(tenantCtx, &EventBatchRequest{SessionID: "s1"})

	assert.ErrorIs(t, err, analytics.ErrEmptyBatch)
	assert.Equal(t, 0, count)
}

func TestIngestBatchRejectsOversizedBatch(t *testing.T) {
	svc, tenantCtx := ingestionFixture()

	events := make([]*analytics.InteractionEvent, config.MaxIngestBatchSize+1)
	for i := range events {
		events[i] = &analytics.InteractionEvent{Type: analytics.EventMove}
	}

	count, err := svc.IngestBatch(tenantCtx, &EventBatchRequest{SessionID: "s1", Events: events})

	assert.ErrorIs(t, err, analytics.ErrBatchTooLarge)
	assert.Equal(t, 0, count)
}
