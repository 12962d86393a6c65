package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/performance"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/tenant"
)

// SummaryService builds per-scan engagement summaries. Summaries are always
// computed fresh; sessions mutate constantly and a stale total is worse than
// the query cost.
type SummaryService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSummaryService creates a summary service with injected dependencies.
func NewSummaryService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SummaryService {
	return &SummaryService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetSummary aggregates the scan's sessions started within the inclusive
// date range into totals, device breakdown, daily session counts and the
// top tags by clicks. A zero startDate leaves the lower bound open.
func (s *SummaryService) GetSummary(tenantCtx *tenant.Context, scanID string, startDate, endDate time.Time) (*analytics.Summary, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:summary", tenantCtx.TenantID)
	defer marker.Complete()

	exists, err := tenantCtx.ScanRepo().Exists(scanID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to look up scan: %w", err)
	}
	if !exists {
		marker.SetSuccess(false)
		return nil, analytics.ErrScanNotFound
	}

	var since, until *time.Time
	if !startDate.IsZero() {
		since = &startDate
	}
	if !endDate.IsZero() {
		until = &endDate
	}

	sessions, err := tenantCtx.SessionRepo().FindByScan(scanID, since, until)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	tags, err := tenantCtx.TagRepo().FindByScan(scanID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	summary := buildSummary(sessions, tags)

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Summary computed",
		"tenantId", tenantCtx.TenantID,
		"scanId", scanID,
		"startDate", startDate,
		"endDate", endDate,
		"sessions", summary.TotalSessions,
		"duration", time.Since(start))

	return summary, nil
}

func buildSummary(sessions []*analytics.Session, tags []*analytics.Tag) *analytics.Summary {
	summary := &analytics.Summary{
		DeviceBreakdown:  make(map[string]analytics.DeviceStat),
		SessionsOverTime: []analytics.DailyCount{},
		TopTags:          []analytics.TagStat{},
	}

	summary.TotalSessions = len(sessions)

	visitors := make(map[string]struct{})
	deviceCounts := make(map[string]int)
	dailyCounts := make(map[string]int)
	totalDuration := 0

	for _, session := range sessions {
		if session.VisitorID != "" {
			visitors[session.VisitorID] = struct{}{}
		}
		totalDuration += session.Duration

		device := session.Device
		if device == "" {
			device = "Unknown"
		}
		deviceCounts[device]++

		dailyCounts[session.StartedAt.UTC().Format("2006-01-02")]++
	}

	summary.UniqueVisitors = len(visitors)
	if summary.TotalSessions > 0 {
		summary.AvgDuration = math.Round(float64(totalDuration) / float64(summary.TotalSessions))
	}

	// Device shares carry the raw count and a whole percentage of total
	// sessions.
	for device, count := range deviceCounts {
		summary.DeviceBreakdown[device] = analytics.DeviceStat{
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(summary.TotalSessions) * 100)),
		}
	}

	dates := make([]string, 0, len(dailyCounts))
	for date := range dailyCounts {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		summary.SessionsOverTime = append(summary.SessionsOverTime, analytics.DailyCount{
			Date:  date,
			Count: dailyCounts[date],
		})
	}

	for _, tag := range tags {
		summary.TotalTagClicks += tag.ClickCount
	}

	sorted := make([]*analytics.Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClickCount > sorted[j].ClickCount
	})
	for i, tag := range sorted {
		if i >= 10 {
			break
		}
		summary.TopTags = append(summary.TopTags, analytics.TagStat{
			Label:     tag.Label,
			Clicks:    tag.ClickCount,
			DwellTime: tag.DwellTime,
		})
	}

	return summary
}
