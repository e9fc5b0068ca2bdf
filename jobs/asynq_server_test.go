package jobs

import (
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/snapshot"
	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/transfer"
)

func newTestWorker(t *testing.T, interval time.Duration) *Worker {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := store.New()
	registry := schema.NewRegistry()
	processor := NewSnapshotProcessor(
		slog.New(slog.DiscardHandler),
		transfer.NewService(st, registry),
		snapshot.NewStore(rdb, "margindesk:snapshot", 0),
		st,
	)
	worker, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Logger:    slog.New(slog.DiscardHandler),
		Processor: processor,
		Interval:  interval,
	})
	require.NoError(t, err)
	return worker
}

func TestNewWorkerRejectsNonPositiveInterval(t *testing.T) {
	mr := miniredis.RunT(t)
	_, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Logger:    slog.New(slog.DiscardHandler),
		Processor: NewSnapshotProcessor(slog.New(slog.DiscardHandler), nil, nil, nil),
		Interval:  0,
	})
	require.Error(t, err)
}

func TestRestartReplacesSchedule(t *testing.T) {
	worker := newTestWorker(t, 30*time.Second)
	old := worker.scheduler

	require.NoError(t, worker.Restart(60*time.Second))

	require.NotSame(t, old, worker.scheduler)
	require.Equal(t, 60*time.Second, worker.Interval())
}

func TestRestartRejectsNonPositiveInterval(t *testing.T) {
	worker := newTestWorker(t, 30*time.Second)
	old := worker.scheduler

	require.Error(t, worker.Restart(0))
	require.Error(t, worker.Restart(-time.Second))

	// The active schedule is untouched by a rejected restart.
	require.Same(t, old, worker.scheduler)
	require.Equal(t, 30*time.Second, worker.Interval())
}

func TestRestartWhileRunningSwapsScheduler(t *testing.T) {
	worker := newTestWorker(t, 30*time.Second)

	require.NoError(t, worker.scheduler.Start())
	worker.mu.Lock()
	worker.running = true
	worker.mu.Unlock()
	t.Cleanup(func() {
		worker.mu.Lock()
		defer worker.mu.Unlock()
		if worker.running {
			worker.scheduler.Shutdown()
			worker.running = false
		}
	})

	old := worker.scheduler
	require.NoError(t, worker.Restart(10*time.Second))

	// The old scheduler was shut down and replaced; exactly one schedule is
	// active, carrying the new interval.
	require.NotSame(t, old, worker.scheduler)
	require.Equal(t, 10*time.Second, worker.Interval())

	// A rejected restart while running leaves the replacement untouched.
	replacement := worker.scheduler
	require.Error(t, worker.Restart(0))
	require.Same(t, replacement, worker.scheduler)
}
