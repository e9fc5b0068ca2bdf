package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/margindesk/margindesk/internal/snapshot"
	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/transfer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSnapshot is the task type for persisting a state snapshot.
	TaskTypeSnapshot = "autosave:snapshot"
)

// NewSnapshotTask constructs a snapshot task. The payload is empty; the
// processor always exports current state.
func NewSnapshotTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSnapshot, nil)
}

// SnapshotProcessor exports application state and writes it to the snapshot
// store.
type SnapshotProcessor struct {
	logger    *slog.Logger
	service   *transfer.Service
	snapshots *snapshot.Store
	store     *store.Store
}

// NewSnapshotProcessor constructs a snapshot processor.
func NewSnapshotProcessor(logger *slog.Logger, service *transfer.Service, snapshots *snapshot.Store, st *store.Store) *SnapshotProcessor {
	return &SnapshotProcessor{logger: logger, service: service, snapshots: snapshots, store: st}
}

// HandleSnapshotTask processes TaskTypeSnapshot tasks.
func (p *SnapshotProcessor) HandleSnapshotTask(ctx context.Context, t *asynq.Task) error {
	doc := p.service.Export()
	if err := p.snapshots.Save(ctx, doc); err != nil {
		p.logger.Error("save snapshot", slog.Any("error", err))
		return err
	}
	p.store.Touch()
	p.logger.Info("snapshot saved",
		slog.Int("products", len(doc.Products)),
		slog.Int("sales", len(doc.Sales)))
	return nil
}
