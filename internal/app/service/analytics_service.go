package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/monitoring"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	analyticsCachePrefix = "analytics:"
	chartsCachePrefix    = "charts:"

	defaultWindowDays     = 30
	maxWindowYears        = 5
	topToolsChartSize     = 10
	defaultRealtimeLimit  = 60
	defaultErrorPageSize  = 50
	maxErrorPageSize      = 500
	dashboardRecentErrors = 10

	metricResponseTime = "response_time_ms"
	metricErrorRate    = "error_rate"
	metricToolFailure  = "tool_failure_rate"
)

// MetricsSource is the in-process collector the analytics service reads from
type MetricsSource interface {
	Current() model.MetricSnapshot
	Recent(limit int) []model.MetricSnapshot
	Uptime() time.Duration
}

// AlertNotifier receives every alert right after it is stored
type AlertNotifier interface {
	NotifyAlert(alert model.Alert)
}

type AnalyticsOptions struct {
	DefaultWindowDays    int
	ResponseTimeBaseline float64
	ErrorRateBaseline    float64
	MinimumSeverity      model.AlertSeverity
	CacheTTL             time.Duration
	ChartTTL             time.Duration
}

type AnalyticsService interface {
	RecordUsage(ctx context.Context, slug string, input UsageInput) error
	GetAnalyticsSummary(ctx context.Context, filter AnalyticsFilter) (*AnalyticsSummary, error)
	GenerateCharts(ctx context.Context, filter AnalyticsFilter) ([]Chart, error)
	ExportAnalytics(ctx context.Context, filter AnalyticsFilter) (*bytes.Buffer, error)

	EvaluateAlerts(ctx context.Context) ([]model.Alert, error)
	ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id, acknowledgedBy string) (*model.Alert, error)
	ResolveAlert(ctx context.Context, id string) (*model.Alert, error)

	GetSystemPerformanceMetrics(ctx context.Context) PerformanceMetrics
	GetSystemHealthDashboard(ctx context.Context) (*SystemHealthDashboard, error)
	GetRealTimeMetrics(limit int) []model.MetricSnapshot

	LogError(ctx context.Context, message string, err error, fields map[string]interface{}) *model.ErrorLog
	LogErrorWithLevel(ctx context.Context, level model.ErrorLevel, message string, err error, fields map[string]interface{}) *model.ErrorLog
	GetErrorLogs(ctx context.Context, query ErrorLogQuery) (*ErrorLogPage, error)
	ResolveError(ctx context.Context, id string) (*model.ErrorLog, error)
}

type analyticsService struct {
	baseService
	toolRepo     repository.ToolRepository
	usageRepo    repository.UsageRepository
	alertRepo    repository.AlertRepository
	errorLogRepo repository.ErrorLogRepository
	metrics      MetricsSource
	notifier     AlertNotifier
	opts         AnalyticsOptions
}

func NewAnalyticsService(
	toolRepo repository.ToolRepository,
	usageRepo repository.UsageRepository,
	alertRepo repository.AlertRepository,
	errorLogRepo repository.ErrorLogRepository,
	metrics MetricsSource,
	notifier AlertNotifier,
	c *cache.Cache,
	opts AnalyticsOptions,
) AnalyticsService {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = defaultWindowDays
	}
	if opts.MinimumSeverity.Rank() == 0 {
		opts.MinimumSeverity = model.SeverityMedium
	}
	return &analyticsService{
		baseService:  newBaseService(c, opts.CacheTTL),
		toolRepo:     toolRepo,
		usageRepo:    usageRepo,
		alertRepo:    alertRepo,
		errorLogRepo: errorLogRepo,
		metrics:      metrics,
		notifier:     notifier,
		opts:         opts,
	}
}

// RecordUsage 프론트엔드가 보낸 도구 사용 이벤트 저장
func (s *analyticsService) RecordUsage(ctx context.Context, slug string, input UsageInput) error {
	if err := ValidateRequired(map[string]interface{}{"slug": slug}); err != nil {
		return err
	}

	tool, err := s.toolRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundError(apperrors.ToolNotFound, "tool not found", slug)
		}
		return apperrors.Classify(err, "find tool")
	}
	if !tool.IsActive {
		return apperrors.Validation(apperrors.ToolInactive, "usage cannot be recorded for an inactive tool",
			map[string]string{"slug": "inactive"})
	}
	if input.DurationMs < 0 {
		return apperrors.Validation(apperrors.ValidationInvalidRange, "duration_ms must not be negative",
			map[string]string{"duration_ms": "negative"})
	}

	success := true
	if input.Success != nil {
		success = *input.Success
	}
	stat := &model.ToolUsageStat{
		ToolID:     tool.ID,
		Action:     input.Action,
		Locale:     input.Locale,
		DurationMs: input.DurationMs,
		Success:    success,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.usageRepo.Create(ctx, stat); err != nil {
		return apperrors.Classify(err, "record tool usage")
	}

	monitoring.RecordToolUsage(tool.Slug, success)
	return nil
}

// resolveWindow applies the default window; the returned end is exclusive
func (s *analyticsService) resolveWindow(filter AnalyticsFilter) (time.Time, time.Time, Period, error) {
	period, err := ParsePeriod(string(filter.Period))
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}

	end := s.now().UTC()
	if filter.End != nil {
		end = filter.End.UTC()
	}
	start := end.AddDate(0, 0, -s.opts.DefaultWindowDays)
	if filter.Start != nil {
		start = filter.Start.UTC()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, "", apperrors.Validation(apperrors.AnalyticsInvalidRange,
			"start must be before end", map[string]string{"start": "after end"})
	}
	if start.Before(end.AddDate(-maxWindowYears, 0, 0)) {
		return time.Time{}, time.Time{}, "", apperrors.Validation(apperrors.AnalyticsInvalidRange,
			fmt.Sprintf("range must not exceed %d years", maxWindowYears), map[string]string{"start": "too far before end"})
	}
	return start, end, period, nil
}

func filterKey(filter AnalyticsFilter, start, end time.Time, period Period) string {
	return fmt.Sprintf("%d:%d:%s:t=%s:g=%s:i=%t",
		start.Unix(), end.Unix(), period,
		joinIDs(uniqueSorted(filter.ToolIDs)), joinIDs(uniqueSorted(filter.TagIDs)),
		filter.IncludeInactive)
}

// GetAnalyticsSummary 기간별 사용량 요약 (캐시)
func (s *analyticsService) GetAnalyticsSummary(ctx context.Context, filter AnalyticsFilter) (*AnalyticsSummary, error) {
	start, end, period, err := s.resolveWindow(filter)
	if err != nil {
		return nil, err
	}
	key := analyticsCachePrefix + filterKey(filter, start, end, period)
	return getCached(ctx, &s.baseService, key, 0, func(ctx context.Context) (*AnalyticsSummary, error) {
		return s.buildSummary(ctx, filter, start, end, period)
	})
}

func (s *analyticsService) usageQuery(filter AnalyticsFilter, start, end time.Time) repository.UsageQuery {
	return repository.UsageQuery{
		Start:           start,
		End:             end,
		ToolIDs:         uniqueSorted(filter.ToolIDs),
		TagIDs:          uniqueSorted(filter.TagIDs),
		IncludeInactive: filter.IncludeInactive,
	}
}

func (s *analyticsService) buildSummary(ctx context.Context, filter AnalyticsFilter, start, end time.Time, period Period) (*AnalyticsSummary, error) {
	q := s.usageQuery(filter, start, end)

	events, err := s.usageRepo.FindEvents(ctx, q)
	if err != nil {
		return nil, apperrors.Classify(err, "load usage events")
	}
	counts, err := s.usageRepo.CountByTool(ctx, q)
	if err != nil {
		return nil, apperrors.Classify(err, "count usage by tool")
	}

	total := len(events)
	summary := &AnalyticsSummary{
		Start:       start,
		End:         end,
		Period:      period,
		TotalUsage:  total,
		UniqueTools: len(counts),
		Tools:       make([]ToolBreakdown, 0, len(counts)),
		GeneratedAt: s.now().UTC(),
	}

	for _, c := range counts {
		pct := 0.0
		if total > 0 {
			pct = round2(float64(c.Count) / float64(total) * 100)
		}
		summary.Tools = append(summary.Tools, ToolBreakdown{
			ToolID:     c.ToolID,
			ToolSlug:   c.ToolSlug,
			ToolName:   c.ToolName,
			Count:      c.Count,
			Percentage: pct,
		})
	}
	sort.SliceStable(summary.Tools, func(i, j int) bool {
		if summary.Tools[i].Count != summary.Tools[j].Count {
			return summary.Tools[i].Count > summary.Tools[j].Count
		}
		return summary.Tools[i].ToolID < summary.Tools[j].ToolID
	})

	// end 는 exclusive 이므로 마지막 버킷은 end 직전 시각 기준
	last := end.Add(-time.Nanosecond)
	starts, buckets := bucketEvents(events, period, start, last)
	summary.Series = make([]SeriesPoint, len(starts))
	for i := range starts {
		summary.Series[i] = SeriesPoint{PeriodStart: starts[i], Count: buckets[i]}
	}

	_, daily := bucketEvents(events, PeriodDay, start, last)
	_, weekly := bucketEvents(events, PeriodWeek, start, last)
	_, monthly := bucketEvents(events, PeriodMonth, start, last)
	summary.Growth = CalculateGrowthRates(GrowthSeries{Daily: daily, Weekly: weekly, Monthly: monthly})

	return summary, nil
}

// GenerateCharts 대시보드 차트 데이터 생성
func (s *analyticsService) GenerateCharts(ctx context.Context, filter AnalyticsFilter) ([]Chart, error) {
	start, end, period, err := s.resolveWindow(filter)
	if err != nil {
		return nil, err
	}
	key := chartsCachePrefix + filterKey(filter, start, end, period)
	return getCached(ctx, &s.baseService, key, s.opts.ChartTTL, func(ctx context.Context) ([]Chart, error) {
		summary, err := s.GetAnalyticsSummary(ctx, filter)
		if err != nil {
			return nil, err
		}
		byTag, err := s.usageRepo.CountByTag(ctx, s.usageQuery(filter, start, end))
		if err != nil {
			return nil, apperrors.Classify(err, "count usage by tag")
		}
		return buildCharts(summary, byTag), nil
	})
}

func buildCharts(summary *AnalyticsSummary, byTag []repository.TagUsageCount) []Chart {
	overTime := Chart{ID: "usage_over_time", Title: "Usage over time", Type: ChartLine,
		Labels: make([]string, 0, len(summary.Series)), Data: make([]float64, 0, len(summary.Series))}
	for _, p := range summary.Series {
		overTime.Labels = append(overTime.Labels, periodLabel(p.PeriodStart, summary.Period))
		overTime.Data = append(overTime.Data, float64(p.Count))
	}

	topTools := Chart{ID: "top_tools", Title: "Top tools", Type: ChartBar, Labels: []string{}, Data: []float64{}}
	for i, t := range summary.Tools {
		if i == topToolsChartSize {
			break
		}
		topTools.Labels = append(topTools.Labels, t.ToolSlug)
		topTools.Data = append(topTools.Data, float64(t.Count))
	}

	tags := append([]repository.TagUsageCount(nil), byTag...)
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].TagID < tags[j].TagID
	})
	byTagChart := Chart{ID: "usage_by_tag", Title: "Usage by tag", Type: ChartPie, Labels: []string{}, Data: []float64{}}
	for _, t := range tags {
		byTagChart.Labels = append(byTagChart.Labels, t.TagSlug)
		byTagChart.Data = append(byTagChart.Data, float64(t.Count))
	}

	return []Chart{overTime, topTools, byTagChart}
}

func periodLabel(t time.Time, p Period) string {
	switch p {
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case PeriodYear:
		return strconv.Itoa(t.Year())
	default:
		return t.Format("2006-01-02")
	}
}

// ExportAnalytics 요약을 xlsx 로 내보내기 (Summary / Usage / Tools 시트)
func (s *analyticsService) ExportAnalytics(ctx context.Context, filter AnalyticsFilter) (*bytes.Buffer, error) {
	summary, err := s.GetAnalyticsSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, apperrors.Unknown(err)
	}
	summaryRows := [][]interface{}{
		{"metric", "value"},
		{"start", summary.Start.Format(time.RFC3339)},
		{"end", summary.End.Format(time.RFC3339)},
		{"period", string(summary.Period)},
		{"total_usage", summary.TotalUsage},
		{"unique_tools", summary.UniqueTools},
		{"daily_growth", summary.Growth.DailyGrowth},
		{"weekly_growth", summary.Growth.WeeklyGrowth},
		{"monthly_growth", summary.Growth.MonthlyGrowth},
		{"unbounded_growth", strings.Join(summary.Growth.Unbounded, ",")},
	}
	if err := writeSheet(f, "Summary", summaryRows); err != nil {
		return nil, err
	}

	usageRows := [][]interface{}{{"period_start", "count"}}
	for _, p := range summary.Series {
		usageRows = append(usageRows, []interface{}{periodLabel(p.PeriodStart, summary.Period), p.Count})
	}
	if err := writeSheet(f, "Usage", usageRows); err != nil {
		return nil, err
	}

	toolRows := [][]interface{}{{"tool_id", "slug", "name", "count", "percentage"}}
	for _, t := range summary.Tools {
		toolRows = append(toolRows, []interface{}{t.ToolID, t.ToolSlug, t.ToolName, t.Count, t.Percentage})
	}
	if err := writeSheet(f, "Tools", toolRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Unknown(err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return apperrors.Unknown(err)
		}
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.Unknown(err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return apperrors.Unknown(err)
		}
	}
	return nil
}

type alertCandidate struct {
	metric   string
	baseline float64
	observed float64
}

// EvaluateAlerts 현재 지표를 기준값과 비교해 새 알림 생성.
// 같은 지표에 미해결 알림이 있으면 새로 만들지 않음.
func (s *analyticsService) EvaluateAlerts(ctx context.Context) ([]model.Alert, error) {
	now := s.now().UTC()
	var candidates []alertCandidate

	if s.metrics != nil {
		snap := s.metrics.Current()
		if snap.RequestCount > 0 {
			if s.opts.ResponseTimeBaseline > 0 {
				candidates = append(candidates, alertCandidate{metricResponseTime, s.opts.ResponseTimeBaseline, snap.AvgResponseTimeMs})
			}
			candidates = append(candidates, alertCandidate{metricErrorRate, s.opts.ErrorRateBaseline, snap.ErrorRate})
		}
	}

	recent, recentN, err := s.usageRepo.FailureRate(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		return nil, apperrors.Classify(err, "tool failure rate")
	}
	trailing, trailingN, err := s.usageRepo.FailureRate(ctx, now.AddDate(0, 0, -8), now.Add(-24*time.Hour))
	if err != nil {
		return nil, apperrors.Classify(err, "tool failure rate baseline")
	}
	if recentN > 0 && trailingN > 0 {
		candidates = append(candidates, alertCandidate{metricToolFailure, trailing, recent})
	}

	raised := []model.Alert{}
	for _, c := range candidates {
		severity := CalculateAlertSeverity(c.metric, c.baseline, c.observed)
		if severity.Rank() < s.opts.MinimumSeverity.Rank() {
			continue
		}
		open, err := s.alertRepo.HasUnresolved(ctx, c.metric)
		if err != nil {
			return raised, apperrors.Classify(err, "check open alerts")
		}
		if open {
			continue
		}

		alert := model.Alert{
			ID:         uuid.New().String(),
			MetricName: c.metric,
			Severity:   severity,
			Baseline:   c.baseline,
			Observed:   c.observed,
			Message:    fmt.Sprintf("%s is %.4g against a baseline of %.4g", c.metric, c.observed, c.baseline),
			CreatedAt:  now,
		}
		if err := s.alertRepo.Create(ctx, &alert); err != nil {
			return raised, apperrors.Classify(err, "create alert")
		}
		raised = append(raised, alert)

		monitoring.RecordAlert(alert.MetricName, string(alert.Severity))
		logger.Warn("Alert raised", map[string]interface{}{
			"alert_id": alert.ID,
			"metric":   alert.MetricName,
			"severity": alert.Severity,
			"baseline": alert.Baseline,
			"observed": alert.Observed,
		})
		if s.notifier != nil {
			s.notifier.NotifyAlert(alert)
		}
	}
	return raised, nil
}

func (s *analyticsService) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]model.Alert, error) {
	if filter.Severity != "" {
		if _, ok := model.ParseSeverity(string(filter.Severity)); !ok {
			return nil, apperrors.Validation(apperrors.ValidationInvalidInput,
				"severity must be one of low, medium, high, critical", map[string]string{"severity": "invalid"})
		}
	}
	alerts, err := s.alertRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperrors.Classify(err, "list alerts")
	}
	return alerts, nil
}

func (s *analyticsService) findAlert(ctx context.Context, id string) (*model.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError(apperrors.AlertNotFound, "alert not found", id)
		}
		return nil, apperrors.Classify(err, "find alert")
	}
	return alert, nil
}

// AcknowledgeAlert 이미 확인/해결된 알림은 그대로 반환
func (s *analyticsService) AcknowledgeAlert(ctx context.Context, id, acknowledgedBy string) (*model.Alert, error) {
	if err := ValidateRequired(map[string]interface{}{"id": id, "acknowledged_by": acknowledgedBy}); err != nil {
		return nil, err
	}
	alert, err := s.findAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.State() != model.AlertOpen {
		return alert, nil
	}

	now := s.now().UTC()
	alert.Acknowledged = true
	alert.AcknowledgedBy = acknowledgedBy
	alert.AcknowledgedAt = &now
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, apperrors.Classify(err, "acknowledge alert")
	}

	logger.Info("Alert acknowledged", map[string]interface{}{"alert_id": id, "by": acknowledgedBy})
	return alert, nil
}

func (s *analyticsService) ResolveAlert(ctx context.Context, id string) (*model.Alert, error) {
	alert, err := s.findAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return alert, nil
	}

	now := s.now().UTC()
	alert.Resolved = true
	alert.ResolvedAt = &now
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, apperrors.Classify(err, "resolve alert")
	}

	logger.Info("Alert resolved", map[string]interface{}{"alert_id": id, "metric": alert.MetricName})
	return alert, nil
}

func (s *analyticsService) GetSystemPerformanceMetrics(ctx context.Context) PerformanceMetrics {
	if s.metrics == nil {
		return PerformanceMetrics{MetricSnapshot: model.MetricSnapshot{CapturedAt: s.now().UTC()}}
	}
	return PerformanceMetrics{
		MetricSnapshot: s.metrics.Current(),
		UptimeSeconds:  s.metrics.Uptime().Seconds(),
	}
}

// GetSystemHealthDashboard 활성 알림 중 critical 이 있으면 critical, 하나라도 있으면 degraded
func (s *analyticsService) GetSystemHealthDashboard(ctx context.Context) (*SystemHealthDashboard, error) {
	unresolved := false
	active, err := s.alertRepo.FindAll(ctx, repository.AlertFilter{Resolved: &unresolved})
	if err != nil {
		return nil, apperrors.Classify(err, "load active alerts")
	}
	unresolvedErrors, err := s.errorLogRepo.CountUnresolved(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "count unresolved errors")
	}
	recent, _, err := s.errorLogRepo.FindAll(ctx, repository.ErrorLogFilter{Limit: dashboardRecentErrors})
	if err != nil {
		return nil, apperrors.Classify(err, "load recent errors")
	}

	dashboard := &SystemHealthDashboard{
		Status:           HealthHealthy,
		Performance:      s.GetSystemPerformanceMetrics(ctx),
		ActiveAlerts:     active,
		AlertsBySeverity: map[string]int{},
		UnresolvedErrors: unresolvedErrors,
		RecentErrors:     recent,
		GeneratedAt:      s.now().UTC(),
	}
	if s.cache != nil {
		dashboard.Cache = s.cache.Stats(ctx)
	}

	for _, a := range active {
		dashboard.AlertsBySeverity[string(a.Severity)]++
		if a.Severity == model.SeverityCritical {
			dashboard.Status = HealthCritical
		} else if dashboard.Status == HealthHealthy {
			dashboard.Status = HealthDegraded
		}
	}
	return dashboard, nil
}

// GetRealTimeMetrics 최근 스냅샷 (최신순)
func (s *analyticsService) GetRealTimeMetrics(limit int) []model.MetricSnapshot {
	if s.metrics == nil {
		return []model.MetricSnapshot{}
	}
	if limit <= 0 {
		limit = defaultRealtimeLimit
	}
	return s.metrics.Recent(limit)
}

func (s *analyticsService) LogError(ctx context.Context, message string, err error, fields map[string]interface{}) *model.ErrorLog {
	return s.LogErrorWithLevel(ctx, model.ErrorLevelError, message, err, fields)
}

// LogErrorWithLevel 에러 기록. 저장 실패는 로그만 남기고 nil 반환 (호출자에게 전파하지 않음)
func (s *analyticsService) LogErrorWithLevel(ctx context.Context, level model.ErrorLevel, message string, err error, fields map[string]interface{}) (entry *model.ErrorLog) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Error logging panicked", fmt.Errorf("%v", r), map[string]interface{}{"message": message})
			entry = nil
		}
	}()

	switch level {
	case model.ErrorLevelWarning, model.ErrorLevelError, model.ErrorLevelCritical:
	default:
		level = model.ErrorLevelError
	}
	if strings.TrimSpace(message) == "" {
		if err != nil {
			message = err.Error()
		} else {
			message = "unknown error"
		}
	}

	rest := make(map[string]interface{}, len(fields))
	stack := ""
	for k, v := range fields {
		if k == "stack" {
			if str, ok := v.(string); ok {
				stack = str
				continue
			}
		}
		rest[k] = v
	}
	if stack == "" && err != nil {
		stack = err.Error()
	}

	encoded := ""
	if len(rest) > 0 {
		if b, jsonErr := json.Marshal(rest); jsonErr == nil {
			encoded = string(b)
		} else {
			encoded = fmt.Sprintf("%v", rest)
		}
	}

	record := &model.ErrorLog{
		ID:        uuid.New().String(),
		Message:   message,
		Stack:     stack,
		Context:   encoded,
		Level:     level,
		CreatedAt: s.now().UTC(),
	}

	logger.Error(message, err, map[string]interface{}{"error_log_id": record.ID, "level": level})
	if createErr := s.errorLogRepo.Create(ctx, record); createErr != nil {
		logger.Error("Failed to persist error log", createErr, map[string]interface{}{"message": message})
		return nil
	}
	return record
}

func (s *analyticsService) GetErrorLogs(ctx context.Context, query ErrorLogQuery) (*ErrorLogPage, error) {
	filter := repository.ErrorLogFilter{Resolved: query.Resolved, Offset: query.Offset}

	if query.Level != "" {
		switch level := model.ErrorLevel(query.Level); level {
		case model.ErrorLevelWarning, model.ErrorLevelError, model.ErrorLevelCritical:
			filter.Level = level
		default:
			return nil, apperrors.Validation(apperrors.ValidationInvalidInput,
				"level must be one of warning, error, critical", map[string]string{"level": "invalid"})
		}
	}
	if query.Start != nil {
		filter.Start = query.Start.UTC()
	}
	if query.End != nil {
		filter.End = query.End.UTC()
	}
	if query.Start != nil && query.End != nil && query.Start.After(*query.End) {
		return nil, apperrors.Validation(apperrors.AnalyticsInvalidRange,
			"start must not be after end", map[string]string{"start": "after end"})
	}
	if query.Offset < 0 {
		filter.Offset = 0
	}

	filter.Limit = query.Limit
	if filter.Limit <= 0 {
		filter.Limit = defaultErrorPageSize
	}
	if filter.Limit > maxErrorPageSize {
		filter.Limit = maxErrorPageSize
	}

	items, total, err := s.errorLogRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperrors.Classify(err, "list error logs")
	}
	return &ErrorLogPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *analyticsService) ResolveError(ctx context.Context, id string) (*model.ErrorLog, error) {
	entry, err := s.errorLogRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError(apperrors.ErrorLogNotFound, "error log not found", id)
		}
		return nil, apperrors.Classify(err, "find error log")
	}
	if entry.Resolved {
		return entry, nil
	}

	now := s.now().UTC()
	entry.Resolved = true
	entry.ResolvedAt = &now
	if err := s.errorLogRepo.Save(ctx, entry); err != nil {
		return nil, apperrors.Classify(err, "resolve error log")
	}
	return entry, nil
}
