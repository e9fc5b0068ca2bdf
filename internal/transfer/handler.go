package transfer

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/margindesk/margindesk/internal/platform/httpx"
	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/table"
)

// maxImportBytes caps uploaded documents.
const maxImportBytes = 8 << 20

// SnapshotEnqueuer hands an immediate snapshot request to the job queue.
type SnapshotEnqueuer interface {
	EnqueueSnapshot(ctx context.Context) error
}

// Handler wires HTTP endpoints for export, import and data management.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	store        *store.Store
	materializer *table.Materializer
	snapshots    SnapshotEnqueuer
}

// NewHandler constructs the transfer handler. snapshots may be nil when the
// job queue is not running.
func NewHandler(logger *slog.Logger, service *Service, st *store.Store, materializer *table.Materializer, snapshots SnapshotEnqueuer) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		store:        st,
		materializer: materializer,
		snapshots:    snapshots,
	}
}

// MountRoutes registers transfer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/export", h.handleExport)
	r.Post("/import", h.handleImport)
	r.Get("/export/columns", h.handleExportColumns)
	r.Post("/import/columns", h.handleImportColumns)
	r.Get("/export/inventory.csv", h.handleExportCSV)
	r.Post("/data/reset", h.handleReset)
	r.Post("/data/save", h.handleSaveNow)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="margindesk-export.json"`)
	httpx.JSON(w, http.StatusOK, h.service.Export())
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpx.BadRequest(w, "unreadable request body")
		return
	}
	if err := h.service.Import(body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportColumns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="margindesk-columns.json"`)
	httpx.JSON(w, http.StatusOK, h.service.ExportColumns())
}

func (h *Handler) handleImportColumns(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpx.BadRequest(w, "unreadable request body")
		return
	}
	if err := h.service.ImportColumns(body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := WriteInventoryCSV(w, h.materializer); err != nil {
		h.logger.Error("stream inventory csv", slog.Any("error", err))
	}
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.store.LoadSampleData()
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleSaveNow(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Snapshots Unavailable", "job queue is not configured")
		return
	}
	if err := h.snapshots.EnqueueSnapshot(r.Context()); err != nil {
		h.logger.Error("enqueue snapshot", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
