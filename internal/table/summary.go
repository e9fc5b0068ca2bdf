package table

import "github.com/margindesk/margindesk/internal/store"

// MarginSummary totals product margins in all three currencies.
type MarginSummary struct {
	TotalMarginCNY float64             `json:"totalMarginCny"`
	TotalMarginUSD float64             `json:"totalMarginUsd"`
	TotalMarginRUB float64             `json:"totalMarginRub"`
	Rates          store.ExchangeRates `json:"rates"`
}

// SalesSummary aggregates the sales ledger overall and for today.
type SalesSummary struct {
	TotalCount  int     `json:"totalCount"`
	TotalAmount float64 `json:"totalAmount"`
	TodayCount  int     `json:"todayCount"`
	TodayAmount float64 `json:"todayAmount"`
}

// GlobalStats is the headline dashboard block.
type GlobalStats struct {
	TotalProducts        int     `json:"totalProducts"`
	AverageMarginPercent float64 `json:"averageMarginPercent"`
	TotalInventoryUnits  int     `json:"totalInventoryUnits"`
	LowStockCount        int     `json:"lowStockCount"`
}

// MarginSummary sums per-product margins using the current exchange rates.
func (m *Materializer) MarginSummary() MarginSummary {
	settings := m.store.Settings()
	out := MarginSummary{Rates: settings.ExchangeRates}
	for _, p := range m.store.Products() {
		calc := marginOf(p, settings.ExchangeRates, settings.CurrencyDecimals)
		out.TotalMarginCNY += calc.Yuan
		out.TotalMarginUSD += calc.USD
		out.TotalMarginRUB += calc.RUB
	}
	return out
}

// SalesSummary aggregates ledger totals; "today" compares calendar dates.
func (m *Materializer) SalesSummary() SalesSummary {
	today := m.now().Format("2006-01-02")
	var out SalesSummary
	for _, s := range m.store.Sales() {
		out.TotalCount++
		out.TotalAmount += s.Total
		if s.Date == today {
			out.TodayCount++
			out.TodayAmount += s.Total
		}
	}
	return out
}

// GlobalStats derives the dashboard figures. Low stock uses the global
// threshold setting, not per-product minimums.
func (m *Materializer) GlobalStats() GlobalStats {
	settings := m.store.Settings()
	products := m.store.Products()
	out := GlobalStats{TotalProducts: len(products)}
	var marginSum float64
	for _, p := range products {
		out.TotalInventoryUnits += p.CurrentStock
		if p.CurrentStock <= settings.LowStockThreshold {
			out.LowStockCount++
		}
		marginSum += marginOf(p, settings.ExchangeRates, settings.CurrencyDecimals).Percent
	}
	if len(products) > 0 {
		out.AverageMarginPercent = roundTo(marginSum/float64(len(products)), 1)
	}
	return out
}
