package table

import (
	"math"

	"github.com/margindesk/margindesk/internal/store"
)

// Margin holds per-product margin figures in all three currencies. Percent is
// defined as zero for a zero or negative yuan price so division by zero never
// propagates.
type Margin struct {
	Yuan     float64
	Percent  float64
	PriceUSD float64
	PriceRUB float64
	USD      float64
	RUB      float64
}

func marginOf(p store.Product, rates store.ExchangeRates, decimals int) Margin {
	yuan := p.PriceYuan - p.PurchasePrice - p.DeliveryCosts - p.AdvertisingCosts
	var percent float64
	if p.PriceYuan > 0 {
		percent = yuan / p.PriceYuan * 100
	}
	return Margin{
		Yuan:     roundTo(yuan, decimals),
		Percent:  roundTo(percent, 1),
		PriceUSD: roundTo(p.PriceYuan*rates.CNYToUSD, decimals),
		PriceRUB: roundTo(p.PriceYuan*rates.CNYToRUB, decimals),
		USD:      roundTo(yuan*rates.CNYToUSD, decimals),
		RUB:      roundTo(yuan*rates.CNYToRUB, decimals),
	}
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
