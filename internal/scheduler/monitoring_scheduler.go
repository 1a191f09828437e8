package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 30 * time.Second

type SnapshotCapturer interface {
	Capture() model.MetricSnapshot
}

type SnapshotBroadcaster interface {
	BroadcastSnapshot(snapshot model.MetricSnapshot)
}

type AlertEvaluator interface {
	EvaluateAlerts(ctx context.Context) ([]model.Alert, error)
}

type CacheSweeper interface {
	Sweep(ctx context.Context) int
}

type Intervals struct {
	Snapshot time.Duration
	Alerts   time.Duration
	Sweep    time.Duration
}

// MonitoringScheduler 스냅샷 수집, 알림 평가, 캐시 정리 주기 작업
type MonitoringScheduler struct {
	cron        *cron.Cron
	intervals   Intervals
	collector   SnapshotCapturer
	broadcaster SnapshotBroadcaster
	evaluator   AlertEvaluator
	sweeper     CacheSweeper
}

// NewMonitoringScheduler broadcaster 와 sweeper 는 nil 가능
func NewMonitoringScheduler(
	intervals Intervals,
	collector SnapshotCapturer,
	broadcaster SnapshotBroadcaster,
	evaluator AlertEvaluator,
	sweeper CacheSweeper,
) *MonitoringScheduler {
	return &MonitoringScheduler{
		// 이전 실행이 끝나지 않았으면 건너뜀, 패닉은 복구
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		intervals:   intervals,
		collector:   collector,
		broadcaster: broadcaster,
		evaluator:   evaluator,
		sweeper:     sweeper,
	}
}

// Start 스케줄러 시작
func (s *MonitoringScheduler) Start() error {
	jobs := []struct {
		name     string
		interval time.Duration
		run      func()
	}{
		{"snapshot", s.intervals.Snapshot, s.captureSnapshot},
		{"alerts", s.intervals.Alerts, s.evaluateAlerts},
		{"cache_sweep", s.intervals.Sweep, s.sweepCache},
	}

	for _, job := range jobs {
		if job.interval <= 0 {
			return fmt.Errorf("scheduler job %s: interval must be positive, got %s", job.name, job.interval)
		}
		spec := "@every " + job.interval.String()
		if _, err := s.cron.AddFunc(spec, job.run); err != nil {
			logger.Error("Failed to add cron job", err, map[string]interface{}{
				"job":  job.name,
				"spec": spec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Monitoring scheduler started", map[string]interface{}{
		"snapshot_interval": s.intervals.Snapshot.String(),
		"alert_interval":    s.intervals.Alerts.String(),
		"sweep_interval":    s.intervals.Sweep.String(),
	})
	return nil
}

// Stop 실행 중인 작업이 끝날 때까지 대기
func (s *MonitoringScheduler) Stop() {
	logger.Info("Stopping monitoring scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Monitoring scheduler stopped")
}

func (s *MonitoringScheduler) captureSnapshot() {
	snapshot := s.collector.Capture()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSnapshot(snapshot)
	}
	logger.Debug("Metric snapshot captured", map[string]interface{}{
		"request_count": snapshot.RequestCount,
		"error_rate":    snapshot.ErrorRate,
	})
}

func (s *MonitoringScheduler) evaluateAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	raised, err := s.evaluator.EvaluateAlerts(ctx)
	if err != nil {
		logger.Error("Scheduled alert evaluation failed", err)
		return
	}
	if len(raised) > 0 {
		logger.Info("Scheduled alert evaluation raised alerts", map[string]interface{}{
			"count": len(raised),
		})
	}
}

func (s *MonitoringScheduler) sweepCache() {
	if s.sweeper == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if removed := s.sweeper.Sweep(ctx); removed > 0 {
		logger.Debug("Expired cache entries swept", map[string]interface{}{
			"removed": removed,
		})
	}
}
