package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingWorker stands in for the refresh workers and counts runs
type countingWorker struct {
	*BaseWorker
	runs    int32
	runFunc func(ctx context.Context) error
}

func newCountingWorker(name string, interval time.Duration, enabled bool) *countingWorker {
	return &countingWorker{
		BaseWorker: NewBaseWorker(name, interval, enabled),
	}
}

func (w *countingWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&w.runs, 1)
	if w.runFunc != nil {
		return w.runFunc(ctx)
	}
	return nil
}

func (w *countingWorker) Runs() int {
	return int(atomic.LoadInt32(&w.runs))
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler := NewScheduler()

	insights := newCountingWorker("insight_refresh", 100*time.Millisecond, true)
	scheduler.RegisterWorker(insights)

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	time.Sleep(250 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
	assert.False(t, scheduler.IsRunning())

	// one immediate run plus at least one tick
	assert.GreaterOrEqual(t, insights.Runs(), 2)
}

func TestSchedulerWaitsForSlowWorker(t *testing.T) {
	scheduler := NewScheduler()

	news := newCountingWorker("news_refresh", 100*time.Millisecond, true)
	news.runFunc = func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	}
	scheduler.RegisterWorker(news)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(150 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
}

func TestSchedulerContextCancellation(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newCountingWorker("focus_score", 100*time.Millisecond, true))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	cancel()
	time.Sleep(200 * time.Millisecond)

	// Stop after the context already ended the workers
	require.NoError(t, scheduler.Stop())
}

func TestSchedulerSkipsDisabledWorker(t *testing.T) {
	scheduler := NewScheduler()

	news := newCountingWorker("news_refresh", 100*time.Millisecond, true)
	insights := newCountingWorker("insight_refresh", 100*time.Millisecond, false)
	scheduler.RegisterWorker(news)
	scheduler.RegisterWorker(insights)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(250 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	assert.Greater(t, news.Runs(), 0)
	assert.Equal(t, 0, insights.Runs())
}

func TestSchedulerRunsAllWorkers(t *testing.T) {
	scheduler := NewScheduler()

	insights := newCountingWorker("insight_refresh", 100*time.Millisecond, true)
	news := newCountingWorker("news_refresh", 100*time.Millisecond, true)
	score := newCountingWorker("focus_score", 100*time.Millisecond, true)
	scheduler.RegisterWorker(insights)
	scheduler.RegisterWorker(news)
	scheduler.RegisterWorker(score)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(250 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	assert.Greater(t, insights.Runs(), 0)
	assert.Greater(t, news.Runs(), 0)
	assert.Greater(t, score.Runs(), 0)
}

func TestSchedulerCannotStartTwice(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newCountingWorker("focus_score", 100*time.Millisecond, true))

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))
	assert.Error(t, scheduler.Start(ctx))

	scheduler.Stop()
}

func TestSchedulerListsWorkers(t *testing.T) {
	scheduler := NewScheduler()

	scheduler.RegisterWorker(newCountingWorker("insight_refresh", 100*time.Millisecond, true))
	scheduler.RegisterWorker(newCountingWorker("news_refresh", 200*time.Millisecond, false))

	registered := scheduler.GetWorkers()
	require.Len(t, registered, 2)
	assert.Equal(t, "insight_refresh", registered[0].Name())
	assert.Equal(t, "news_refresh", registered[1].Name())
}
