package schema

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/margindesk/margindesk/internal/platform/httpx"
)

// Handler wires HTTP endpoints for column configuration.
type Handler struct {
	logger    *slog.Logger
	registry  *Registry
	validator *validator.Validate
}

// NewHandler constructs the column handler.
func NewHandler(logger *slog.Logger, registry *Registry) *Handler {
	return &Handler{logger: logger, registry: registry, validator: validator.New()}
}

// MountRoutes registers column routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/columns", func(r chi.Router) {
		r.Get("/templates", h.handleTemplates)
		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleAdd)
			r.Post("/reorder", h.handleReorder)
			r.Post("/reset", h.handleReset)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleRemove)
			r.Post("/{id}/duplicate", h.handleDuplicate)
			r.Put("/{id}/visibility", h.handleVisibility)
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.BadRequest(w, "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.BadRequest(w, err.Error())
		return false
	}
	return true
}

func tableParam(r *http.Request) TableName {
	return TableName(chi.URLParam(r, "table"))
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Templates())
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	columns, err := h.registry.List(tableParam(r))
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, columns)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if !h.decode(w, r, &req) {
		return
	}
	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	column, err := h.registry.Add(tableParam(r), ColumnDefinition{
		ID:           req.ID,
		Name:         req.Name,
		Type:         req.Type,
		Required:     req.Required,
		Visible:      visible,
		Width:        req.Width,
		Symbol:       req.Symbol,
		Formula:      req.Formula,
		Options:      req.Options,
		DefaultValue: req.DefaultValue,
		Source:       req.Source,
	})
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, column)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req columnPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	column, err := h.registry.Update(tableParam(r), chi.URLParam(r, "id"), ColumnPatch{
		Name:         req.Name,
		Type:         req.Type,
		Required:     req.Required,
		Visible:      req.Visible,
		Width:        req.Width,
		Symbol:       req.Symbol,
		Formula:      req.Formula,
		Options:      req.Options,
		DefaultValue: req.DefaultValue,
		Source:       req.Source,
	})
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, column)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Remove(tableParam(r), chi.URLParam(r, "id")); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	column, err := h.registry.Duplicate(tableParam(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, column)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.Reorder(tableParam(r), req.MovedID, req.BeforeID); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	columns, err := h.registry.List(tableParam(r))
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, columns)
}

func (h *Handler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.SetVisible(tableParam(r), chi.URLParam(r, "id"), req.Visible); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Reset(tableParam(r)); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	columns, err := h.registry.List(tableParam(r))
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, columns)
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownTable), errors.Is(err, ErrColumnNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrDuplicateColumnID):
		httpx.Problem(w, http.StatusConflict, "Duplicate Column", err.Error())
	default:
		httpx.BadRequest(w, err.Error())
	}
}
