package store

// LoadSampleData replaces entity state with the bundled demo dataset and the
// ЦБ РФ reference rates. Column configs are untouched.
func (s *Store) LoadSampleData() {
	products := []Product{
		{
			ID:               "prod1",
			Name:             "Товар А",
			PriceYuan:        100,
			PurchasePrice:    70,
			DeliveryCosts:    10,
			AdvertisingCosts: 5,
			InitialStock:     150,
			MinStock:         10,
		},
		{
			ID:               "prod2",
			Name:             "Товар Б",
			PriceYuan:        250,
			PurchasePrice:    180,
			DeliveryCosts:    20,
			AdvertisingCosts: 15,
			InitialStock:     75,
			MinStock:         5,
		},
		{
			ID:               "prod3",
			Name:             "Товар В",
			PriceYuan:        80,
			PurchasePrice:    60,
			DeliveryCosts:    8,
			AdvertisingCosts: 3,
			InitialStock:     200,
			MinStock:         20,
		},
	}
	sales := []Sale{
		{
			ID:          "sale1",
			ProductID:   "prod1",
			ProductName: "Товар А",
			Date:        "2025-10-01",
			Quantity:    10,
			UnitPrice:   100,
			Total:       1000,
			Customer:    "Клиент Иванов",
		},
		{
			ID:          "sale2",
			ProductID:   "prod2",
			ProductName: "Товар Б",
			Date:        "2025-10-02",
			Quantity:    5,
			UnitPrice:   250,
			Total:       1250,
			Customer:    "Интернет-заказ",
		},
		{
			ID:          "sale3",
			ProductID:   "prod1",
			ProductName: "Товар А",
			Date:        "2025-10-03",
			Quantity:    15,
			UnitPrice:   100,
			Total:       1500,
			Customer:    "Оптовый клиент",
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.sales = sales
	s.settings.ExchangeRates = ExchangeRates{
		CNYToUSD:    0.1393,
		CNYToRUB:    11.5581,
		Source:      "ЦБ РФ",
		LastUpdated: "07.10.2025",
	}
	s.recomputeStockLocked()
	s.touchLocked()
}
