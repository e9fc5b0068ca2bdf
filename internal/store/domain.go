package store

import (
	"errors"
	"fmt"
)

// Product is a tracked good. CurrentStock is derived from the sales ledger
// and recomputed after every sale mutation, never stored as independent truth.
type Product struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PriceYuan        float64 `json:"priceYuan"`
	PurchasePrice    float64 `json:"purchasePrice"`
	DeliveryCosts    float64 `json:"deliveryCosts"`
	AdvertisingCosts float64 `json:"advertisingCosts"`
	InitialStock     int     `json:"initialStock"`
	MinStock         int     `json:"minStock"`
	CurrentStock     int     `json:"currentStock"`
}

// Sale is one ledger entry. ProductName is a denormalized snapshot taken at
// sale time; it is what cross-table formula matching keys on.
type Sale struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Date        string  `json:"date"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	Customer    string  `json:"customer,omitempty"`
}

// ExchangeRates is the global CNY conversion context read by formula columns.
type ExchangeRates struct {
	CNYToUSD    float64 `json:"cnyToUsd"`
	CNYToRUB    float64 `json:"cnyToRub"`
	Source      string  `json:"source"`
	LastUpdated string  `json:"lastUpdated"`
}

// Settings groups user-tunable behavior.
type Settings struct {
	ExchangeRates     ExchangeRates `json:"exchangeRates"`
	LowStockThreshold int           `json:"lowStockThreshold"`
	AutoSaveInterval  int           `json:"autoSaveInterval"`
	CurrencyDecimals  int           `json:"currencyDecimals"`
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name             string
	PriceYuan        float64
	PurchasePrice    float64
	DeliveryCosts    float64
	AdvertisingCosts float64
	InitialStock     int
	MinStock         int
}

// ProductPatch updates a product; nil fields are left unchanged.
type ProductPatch struct {
	Name             *string
	PriceYuan        *float64
	PurchasePrice    *float64
	DeliveryCosts    *float64
	AdvertisingCosts *float64
	InitialStock     *int
	MinStock         *int
}

// SaleInput carries the fields of a new sale.
type SaleInput struct {
	ProductID string
	Date      string
	Quantity  int
	UnitPrice float64
	Customer  string
}

// ErrProductNotFound indicates the referenced product id is absent.
var ErrProductNotFound = errors.New("store: product not found")

// ErrSaleNotFound indicates the referenced sale id is absent.
var ErrSaleNotFound = errors.New("store: sale not found")

// ErrInvalidQuantity indicates a non-positive sale quantity.
var ErrInvalidQuantity = errors.New("store: quantity must be positive")

// ErrNameRequired indicates a missing product name.
var ErrNameRequired = errors.New("store: product name is required")

// ErrDateRequired indicates a missing sale date.
var ErrDateRequired = errors.New("store: sale date is required")

// InsufficientStockError is returned when a sale asks for more units than are
// on hand. It carries the available quantity for user display.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("store: insufficient stock: %d available", e.Available)
}
