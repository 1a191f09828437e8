package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollector struct{ captures atomic.Int32 }

func (f *fakeCollector) Capture() model.MetricSnapshot {
	n := f.captures.Add(1)
	return model.MetricSnapshot{RequestCount: int64(n)}
}

type fakeBroadcaster struct{ last atomic.Int64 }

func (f *fakeBroadcaster) BroadcastSnapshot(s model.MetricSnapshot) { f.last.Store(s.RequestCount) }

type fakeEvaluator struct {
	calls atomic.Int32
	err   error
}

func (f *fakeEvaluator) EvaluateAlerts(ctx context.Context) ([]model.Alert, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	return nil, f.err
}

type fakeSweeper struct{ calls atomic.Int32 }

func (f *fakeSweeper) Sweep(context.Context) int {
	f.calls.Add(1)
	return 2
}

func TestMonitoringScheduler_Jobs(t *testing.T) {
	collector := &fakeCollector{}
	broadcaster := &fakeBroadcaster{}
	evaluator := &fakeEvaluator{err: errors.New("store down")}
	sweeper := &fakeSweeper{}
	s := NewMonitoringScheduler(Intervals{}, collector, broadcaster, evaluator, sweeper)

	s.captureSnapshot()
	s.captureSnapshot()
	assert.Equal(t, int64(2), broadcaster.last.Load())

	// 평가 실패는 로그만 남김
	assert.NotPanics(t, s.evaluateAlerts)
	assert.Equal(t, int32(1), evaluator.calls.Load())

	s.sweepCache()
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestMonitoringScheduler_NilOptionalCollaborators(t *testing.T) {
	s := NewMonitoringScheduler(Intervals{}, &fakeCollector{}, nil, &fakeEvaluator{}, nil)
	assert.NotPanics(t, s.captureSnapshot)
	assert.NotPanics(t, s.sweepCache)
}

func TestMonitoringScheduler_StartRejectsZeroInterval(t *testing.T) {
	s := NewMonitoringScheduler(Intervals{Snapshot: time.Second}, &fakeCollector{}, nil, &fakeEvaluator{}, nil)
	assert.Error(t, s.Start())
}

func TestMonitoringScheduler_StartRunsJobs(t *testing.T) {
	collector := &fakeCollector{}
	s := NewMonitoringScheduler(
		Intervals{Snapshot: time.Second, Alerts: time.Hour, Sweep: time.Hour},
		collector, nil, &fakeEvaluator{}, &fakeSweeper{},
	)
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return collector.captures.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
