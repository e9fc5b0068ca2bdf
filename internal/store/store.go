// Package store holds products, sales and settings, and owns derived-stock
// recomputation. Every mutation either fully applies and recomputes stock, or
// fully rejects with no state change.
package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory entity store. Operations are atomic relative to
// callers; the lock serializes HTTP-driven mutations.
type Store struct {
	mu        sync.RWMutex
	products  []Product
	sales     []Sale
	settings  Settings
	updatedAt time.Time
}

// New constructs an empty store with default settings.
func New() *Store {
	return &Store{
		settings: Settings{
			ExchangeRates: ExchangeRates{
				CNYToUSD:    0.1393,
				CNYToRUB:    11.5581,
				Source:      "ЦБ РФ",
				LastUpdated: "07.10.2025",
			},
			LowStockThreshold: 10,
			AutoSaveInterval:  30,
			CurrencyDecimals:  2,
		},
		updatedAt: time.Now(),
	}
}

// AddProduct creates a product with a fresh id and stock equal to the initial
// stock.
func (s *Store) AddProduct(input ProductInput) (Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Product{}, ErrNameRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Product{
		ID:               newID(),
		Name:             input.Name,
		PriceYuan:        input.PriceYuan,
		PurchasePrice:    input.PurchasePrice,
		DeliveryCosts:    input.DeliveryCosts,
		AdvertisingCosts: input.AdvertisingCosts,
		InitialStock:     input.InitialStock,
		MinStock:         input.MinStock,
		CurrentStock:     input.InitialStock,
	}
	s.products = append(s.products, p)
	s.touchLocked()
	return p, nil
}

// UpdateProduct applies a patch to an existing product. Denormalized sale
// names are left as recorded.
func (s *Store) UpdateProduct(id string, patch ProductPatch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return Product{}, ErrProductNotFound
	}
	p := &s.products[idx]
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return Product{}, ErrNameRequired
		}
		p.Name = *patch.Name
	}
	if patch.PriceYuan != nil {
		p.PriceYuan = *patch.PriceYuan
	}
	if patch.PurchasePrice != nil {
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.DeliveryCosts != nil {
		p.DeliveryCosts = *patch.DeliveryCosts
	}
	if patch.AdvertisingCosts != nil {
		p.AdvertisingCosts = *patch.AdvertisingCosts
	}
	if patch.InitialStock != nil {
		p.InitialStock = *patch.InitialStock
	}
	if patch.MinStock != nil {
		p.MinStock = *patch.MinStock
	}
	s.recomputeStockLocked()
	s.touchLocked()
	return *p, nil
}

// DeleteProduct removes a product and cascades to every sale referencing it.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return ErrProductNotFound
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	kept := s.sales[:0]
	for _, sale := range s.sales {
		if sale.ProductID != id {
			kept = append(kept, sale)
		}
	}
	s.sales = kept
	s.recomputeStockLocked()
	s.touchLocked()
	return nil
}

// RecordSale validates and appends a sale, then recomputes derived stock.
func (s *Store) RecordSale(input SaleInput) (Sale, error) {
	if input.Quantity <= 0 {
		return Sale{}, ErrInvalidQuantity
	}
	if strings.TrimSpace(input.Date) == "" {
		return Sale{}, ErrDateRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(input.ProductID)
	if idx < 0 {
		return Sale{}, ErrProductNotFound
	}
	p := s.products[idx]
	if input.Quantity > p.CurrentStock {
		return Sale{}, &InsufficientStockError{Available: p.CurrentStock}
	}
	sale := Sale{
		ID:          newID(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Date:        input.Date,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Total:       float64(input.Quantity) * input.UnitPrice,
		Customer:    input.Customer,
	}
	s.sales = append(s.sales, sale)
	s.recomputeStockLocked()
	s.touchLocked()
	return sale, nil
}

// DeleteSale removes a sale and recomputes derived stock.
func (s *Store) DeleteSale(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sale := range s.sales {
		if sale.ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			s.recomputeStockLocked()
			s.touchLocked()
			return nil
		}
	}
	return ErrSaleNotFound
}

// Products returns a copy of all products in insertion order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Sales returns a copy of all sales in insertion order.
func (s *Store) Sales() []Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateExchangeRates replaces the exchange-rate block.
func (s *Store) UpdateExchangeRates(rates ExchangeRates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ExchangeRates = rates
	s.touchLocked()
}

// UpdateSettings replaces the tunable system settings.
func (s *Store) UpdateSettings(lowStockThreshold, autoSaveInterval, currencyDecimals int) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.LowStockThreshold = lowStockThreshold
	s.settings.AutoSaveInterval = autoSaveInterval
	s.settings.CurrencyDecimals = currencyDecimals
	s.touchLocked()
	return s.settings
}

// Restore replaces entity state wholesale. A nil settings pointer keeps the
// existing settings. Derived stock is recomputed so the invariant holds
// regardless of what the document claimed.
func (s *Store) Restore(products []Product, sales []Sale, settings *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]Product(nil), products...)
	s.sales = append([]Sale(nil), sales...)
	if settings != nil {
		s.settings = *settings
	}
	s.recomputeStockLocked()
	s.touchLocked()
}

// Touch bumps the last-update timestamp; the auto-save tick calls this.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
}

// UpdatedAt reports when the store was last mutated or touched.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// RecomputeStock re-derives every product's current stock from the sales
// ledger. Deterministic and idempotent.
func (s *Store) RecomputeStock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeStockLocked()
}

func (s *Store) recomputeStockLocked() {
	for i := range s.products {
		sold := 0
		for _, sale := range s.sales {
			if sale.ProductID == s.products[i].ID {
				sold += sale.Quantity
			}
		}
		s.products[i].CurrentStock = s.products[i].InitialStock - sold
	}
}

func (s *Store) productIndexLocked(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) touchLocked() {
	s.updatedAt = time.Now()
}

func newID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strings.SplitN(uuid.NewString(), "-", 2)[0]
}
