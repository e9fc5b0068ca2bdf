package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/margindesk/margindesk/internal/platform/httpx"
)

// AutosaveRestarter restarts the periodic snapshot schedule when the user
// changes the save interval.
type AutosaveRestarter interface {
	Restart(interval time.Duration) error
}

// Handler wires HTTP endpoints for products, sales and settings.
type Handler struct {
	logger    *slog.Logger
	store     *Store
	validator *validator.Validate
	autosave  AutosaveRestarter
}

// NewHandler constructs the entity handler. autosave may be nil when no
// snapshot schedule is running.
func NewHandler(logger *slog.Logger, store *Store, autosave AutosaveRestarter) *Handler {
	return &Handler{
		logger:    logger,
		store:     store,
		validator: validator.New(),
		autosave:  autosave,
	}
}

// MountRoutes registers entity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Post("/", h.handleCreateProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
	})
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.handleListSales)
		r.Post("/", h.handleCreateSale)
		r.Delete("/{id}", h.handleDeleteSale)
	})
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.handleGetSettings)
		r.Put("/", h.handleUpdateSettings)
		r.Put("/rates", h.handleUpdateRates)
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

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Products())
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, err := h.store.AddProduct(ProductInput{
		Name:             req.Name,
		PriceYuan:        req.PriceYuan,
		PurchasePrice:    req.PurchasePrice,
		DeliveryCosts:    req.DeliveryCosts,
		AdvertisingCosts: req.AdvertisingCosts,
		InitialStock:     req.InitialStock,
		MinStock:         req.MinStock,
	})
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, err := h.store.UpdateProduct(chi.URLParam(r, "id"), ProductPatch{
		Name:             req.Name,
		PriceYuan:        req.PriceYuan,
		PurchasePrice:    req.PurchasePrice,
		DeliveryCosts:    req.DeliveryCosts,
		AdvertisingCosts: req.AdvertisingCosts,
		InitialStock:     req.InitialStock,
		MinStock:         req.MinStock,
	})
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Sales())
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !h.decode(w, r, &req) {
		return
	}
	sale, err := h.store.RecordSale(SaleInput{
		ProductID: req.ProductID,
		Date:      req.Date,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Customer:  req.Customer,
	})
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSale(chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Settings())
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	settings := h.store.UpdateSettings(req.LowStockThreshold, req.AutoSaveInterval, req.CurrencyDecimals)
	if h.autosave != nil {
		if err := h.autosave.Restart(time.Duration(settings.AutoSaveInterval) * time.Second); err != nil {
			h.logger.Error("restart autosave schedule", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateRates(w http.ResponseWriter, r *http.Request) {
	var req ratesRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.store.UpdateExchangeRates(ExchangeRates{
		CNYToUSD:    req.CNYToUSD,
		CNYToRUB:    req.CNYToRUB,
		Source:      req.Source,
		LastUpdated: req.LastUpdated,
	})
	httpx.JSON(w, http.StatusOK, h.store.Settings().ExchangeRates)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrSaleNotFound):
		httpx.NotFound(w, err.Error())
	default:
		httpx.BadRequest(w, err.Error())
	}
}
