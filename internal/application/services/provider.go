package services

import (
	"fmt"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Provider is the read-side analytics surface. The live implementation
// queries tenant databases; the mock implementation synthesizes deterministic
// data for demos and development. Handlers depend only on this interface so
// the two are interchangeable per deployment.
type Provider interface {
	GetAnalyticsSummary(tenantCtx *tenant.Context, scanID string, startDate, endDate time.Time) (*analytics.Summary, error)
	GetHeatmap(tenantCtx *tenant.Context, scanID string, timeRange analytics.TimeRange) (*analytics.Heatmap, error)
	GetTags(tenantCtx *tenant.Context, scanID string) ([]*analytics.Tag, error)
	GetSessions(tenantCtx *tenant.Context, scanID string, timeRange analytics.TimeRange) ([]*analytics.Session, error)
	IsMock() bool
}

// NewProvider selects the analytics provider for the configured mode.
func NewProvider(heatmaps *HeatmapService, summaries *SummaryService) Provider {
	if config.AnalyticsMode == "mock" {
		return NewMockProvider()
	}
	return &LiveProvider{
		heatmaps:  heatmaps,
		summaries: summaries,
	}
}

// LiveProvider serves analytics from the tenant's database.
type LiveProvider struct {
	heatmaps  *HeatmapService
	summaries *SummaryService
}

func (p *LiveProvider) GetAnalyticsSummary(tenantCtx *tenant.Context, scanID string, startDate, endDate time.Time) (*analytics.Summary, error) {
	return p.summaries.GetSummary(tenantCtx, scanID, startDate, endDate)
}

func (p *LiveProvider) GetHeatmap(tenantCtx *tenant.Context, scanID string, timeRange analytics.TimeRange) (*analytics.Heatmap, error) {
	return p.heatmaps.GetHeatmap(tenantCtx, scanID, timeRange)
}

func (p *LiveProvider) GetTags(tenantCtx *tenant.Context, scanID string) ([]*analytics.Tag, error) {
	exists, err := tenantCtx.ScanRepo().Exists(scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up scan: %w", err)
	}
	if !exists {
		return nil, analytics.ErrScanNotFound
	}
	return tenantCtx.TagRepo().FindByScan(scanID)
}

func (p *LiveProvider) GetSessions(tenantCtx *tenant.Context, scanID string, timeRange analytics.TimeRange) ([]*analytics.Session, error) {
	exists, err := tenantCtx.ScanRepo().Exists(scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up scan: %w", err)
	}
	if !exists {
		return nil, analytics.ErrScanNotFound
	}

	var since *time.Time
	if windowStart, bounded := timeRange.WindowStart(time.Now().UTC()); bounded {
		since = &windowStart
	}
	return tenantCtx.SessionRepo().FindByScan(scanID, since, nil)
}

func (p *LiveProvider) IsMock() bool {
	return false
}
