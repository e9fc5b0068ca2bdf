package table

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/margindesk/margindesk/internal/platform/httpx"
	"github.com/margindesk/margindesk/internal/schema"
)

// Handler wires HTTP endpoints for rendered table views and summaries.
type Handler struct {
	logger       *slog.Logger
	materializer *Materializer
	printer      *message.Printer
}

// NewHandler constructs the table handler. Summary display strings are
// localized for the Russian UI.
func NewHandler(logger *slog.Logger, materializer *Materializer) *Handler {
	return &Handler{
		logger:       logger,
		materializer: materializer,
		printer:      message.NewPrinter(language.Russian),
	}
}

// MountRoutes registers table routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tables/margin/summary", h.handleMarginSummary)
	r.Get("/tables/sales/summary", h.handleSalesSummary)
	r.Get("/tables/{table}", h.handleTable)
	r.Get("/stats", h.handleStats)
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	table := schema.TableName(chi.URLParam(r, "table"))
	view, err := h.materializer.Render(table)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownTable) {
			httpx.NotFound(w, "unknown table "+string(table))
			return
		}
		h.logger.Error("render table", slog.String("table", string(table)), slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type marginSummaryResponse struct {
	MarginSummary
	Display map[string]string `json:"display"`
}

func (h *Handler) handleMarginSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.materializer.MarginSummary()
	httpx.JSON(w, http.StatusOK, marginSummaryResponse{
		MarginSummary: summary,
		Display: map[string]string{
			"totalMarginCny": h.printer.Sprintf("¥%.2f", summary.TotalMarginCNY),
			"totalMarginUsd": h.printer.Sprintf("$%.2f", summary.TotalMarginUSD),
			"totalMarginRub": h.printer.Sprintf("₽%.2f", summary.TotalMarginRUB),
		},
	})
}

type salesSummaryResponse struct {
	SalesSummary
	Display map[string]string `json:"display"`
}

func (h *Handler) handleSalesSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.materializer.SalesSummary()
	httpx.JSON(w, http.StatusOK, salesSummaryResponse{
		SalesSummary: summary,
		Display: map[string]string{
			"totalAmount": h.printer.Sprintf("¥%.2f", summary.TotalAmount),
			"todayAmount": h.printer.Sprintf("¥%.2f", summary.TodayAmount),
		},
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.materializer.GlobalStats())
}
