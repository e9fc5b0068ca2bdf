package store

// Request payloads for the entity endpoints. Validation tags cover shape
// only; business rules (stock checks, product existence) stay in the store.

type productRequest struct {
	Name             string  `json:"name" validate:"required"`
	PriceYuan        float64 `json:"priceYuan" validate:"gte=0"`
	PurchasePrice    float64 `json:"purchasePrice" validate:"gte=0"`
	DeliveryCosts    float64 `json:"deliveryCosts" validate:"gte=0"`
	AdvertisingCosts float64 `json:"advertisingCosts" validate:"gte=0"`
	InitialStock     int     `json:"initialStock" validate:"gte=0"`
	MinStock         int     `json:"minStock" validate:"gte=0"`
}

type productPatchRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	PriceYuan        *float64 `json:"priceYuan,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice    *float64 `json:"purchasePrice,omitempty" validate:"omitempty,gte=0"`
	DeliveryCosts    *float64 `json:"deliveryCosts,omitempty" validate:"omitempty,gte=0"`
	AdvertisingCosts *float64 `json:"advertisingCosts,omitempty" validate:"omitempty,gte=0"`
	InitialStock     *int     `json:"initialStock,omitempty" validate:"omitempty,gte=0"`
	MinStock         *int     `json:"minStock,omitempty" validate:"omitempty,gte=0"`
}

type saleRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Customer  string  `json:"customer"`
}

type settingsRequest struct {
	LowStockThreshold int `json:"lowStockThreshold" validate:"gte=0"`
	AutoSaveInterval  int `json:"autoSaveInterval" validate:"gte=5,lte=3600"`
	CurrencyDecimals  int `json:"currencyDecimals" validate:"gte=0,lte=6"`
}

type ratesRequest struct {
	CNYToUSD    float64 `json:"cnyToUsd" validate:"gt=0"`
	CNYToRUB    float64 `json:"cnyToRub" validate:"gt=0"`
	Source      string  `json:"source"`
	LastUpdated string  `json:"lastUpdated"`
}
