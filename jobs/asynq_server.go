package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server and the autosave scheduler. The scheduler is
// replaceable at runtime so a settings change can adjust the save interval
// without restarting the process.
type Worker struct {
	mu        sync.Mutex
	redisOpts asynq.RedisClientOpt
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	interval  time.Duration
	logger    *slog.Logger
	running   bool
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Processor *SnapshotProcessor
	Interval  time.Duration
}

// NewWorker constructs a Worker with the autosave schedule registered at the
// given interval.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSnapshot, cfg.Processor.HandleSnapshotTask)

	w := &Worker{
		redisOpts: cfg.RedisOpts,
		server:    srv,
		mux:       mux,
		logger:    cfg.Logger,
	}
	scheduler, err := w.newScheduler(cfg.Interval)
	if err != nil {
		return nil, err
	}
	w.scheduler = scheduler
	w.interval = cfg.Interval
	return w, nil
}

// Interval reports the currently registered autosave interval.
func (w *Worker) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

func (w *Worker) newScheduler(interval time.Duration) (*asynq.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("jobs: non-positive autosave interval %s", interval)
	}
	scheduler := asynq.NewScheduler(w.redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	spec := "@every " + interval.String()
	if _, err := scheduler.Register(spec, NewSnapshotTask(), asynq.Queue(QueueDefault)); err != nil {
		return nil, fmt.Errorf("jobs: register autosave schedule: %w", err)
	}
	return scheduler, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	w.mu.Lock()
	if err := w.scheduler.Start(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.running = true
	w.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.shutdown()
		return err
	}
}

// Restart replaces the autosave schedule with a new interval. The old
// scheduler is shut down before the replacement starts, so at most one
// schedule is ever active.
func (w *Worker) Restart(interval time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	scheduler, err := w.newScheduler(interval)
	if err != nil {
		return err
	}
	if w.running {
		w.scheduler.Shutdown()
		if err := scheduler.Start(); err != nil {
			return err
		}
	}
	w.scheduler = scheduler
	w.interval = interval
	w.logger.Info("autosave schedule restarted", slog.Duration("interval", interval))
	return nil
}

func (w *Worker) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.scheduler.Shutdown()
		w.running = false
	}
	w.server.Shutdown()
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueSnapshot enqueues an immediate snapshot task.
func (c *Client) EnqueueSnapshot(ctx context.Context) error {
	_, err := c.client.EnqueueContext(ctx, NewSnapshotTask(), asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector *asynq.Inspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	pending := 0
	queueName := QueueDefault
	if info != nil {
		pending = int(info.Pending)
		queueName = info.Queue
	}
	_, _ = w.Write([]byte(`{"queue":"` + queueName + `","pending":` + strconv.Itoa(pending) + `}`))
}
