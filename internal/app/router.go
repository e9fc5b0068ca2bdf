package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/table"
	"github.com/margindesk/margindesk/internal/transfer"
	"github.com/margindesk/margindesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	TableHandler    *table.Handler
	StoreHandler    *store.Handler
	SchemaHandler   *schema.Handler
	TransferHandler *transfer.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.TableHandler.MountRoutes(r)
	params.StoreHandler.MountRoutes(r)
	params.SchemaHandler.MountRoutes(r)
	params.TransferHandler.MountRoutes(r)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
