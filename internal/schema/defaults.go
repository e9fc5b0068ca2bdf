package schema

// Defaults returns the hardcoded startup column configuration for every
// table. Callers receive a fresh copy on each call.
func Defaults() map[TableName][]ColumnDefinition {
	return map[TableName][]ColumnDefinition{
		TableMargin: {
			{ID: "name", Name: "Название товара", Type: TypeText, Required: true, Visible: true, Width: 200},
			{ID: "price_yuan", Name: "Цена в юанях", Type: TypeCurrency, Required: true, Visible: true, Width: 150, Symbol: "¥"},
			{ID: "price_usd", Name: "Цена в долларах", Type: TypeFormula, Formula: "[price_yuan] * [exchange_rate_usd]", Visible: true, Width: 150, Symbol: "$"},
			{ID: "price_rub", Name: "Цена в рублях", Type: TypeFormula, Formula: "[price_yuan] * [exchange_rate_rub]", Visible: true, Width: 150, Symbol: "₽"},
			{ID: "purchase_price", Name: "Цена закупки", Type: TypeCurrency, Visible: true, Width: 150, Symbol: "¥"},
			{ID: "delivery_costs", Name: "Расходы на доставку", Type: TypeCurrency, Visible: true, Width: 180, Symbol: "¥"},
			{ID: "advertising_costs", Name: "Расходы на рекламу", Type: TypeCurrency, Visible: true, Width: 180, Symbol: "¥"},
			{ID: "margin_yuan", Name: "Маржа в юанях", Type: TypeFormula, Formula: "[price_yuan] - [purchase_price] - [delivery_costs] - [advertising_costs]", Visible: true, Width: 150},
			{ID: "margin_percent", Name: "Маржа %", Type: TypeFormula, Formula: "([margin_yuan] / [price_yuan]) * 100", Visible: true, Width: 120},
			{ID: "current_stock", Name: "Текущие остатки", Type: TypeFormula, Formula: "LOOKUP([name], inventory, current_stock)", Visible: true, Width: 150},
		},
		TableInventory: {
			{ID: "name", Name: "Название товара", Type: TypeText, Required: true, Visible: true, Width: 200},
			{ID: "current_stock", Name: "Текущие остатки", Type: TypeFormula, Formula: "[initial_stock] - SUMIF(sales, [name], quantity)", Visible: true, Width: 150},
			{ID: "initial_stock", Name: "Начальные остатки", Type: TypeNumber, Required: true, Visible: true, Width: 150},
			{ID: "total_sold", Name: "Всего продано", Type: TypeFormula, Formula: "SUMIF(sales, [name], quantity)", Visible: true, Width: 150},
			{ID: "last_updated", Name: "Последнее обновление", Type: TypeDate, Visible: true, Width: 180},
			{ID: "min_stock", Name: "Минимальный остаток", Type: TypeNumber, Visible: true, Width: 150},
			{ID: "status", Name: "Статус", Type: TypeText, Visible: true, Width: 120},
			{ID: "actions", Name: "Действия", Type: TypeActions, Visible: true, Width: 120},
		},
		TableSales: {
			{ID: "date", Name: "Дата", Type: TypeDate, Required: true, Visible: true, Width: 150},
			{ID: "product_name", Name: "Название товара", Type: TypeDropdown, Required: true, Visible: true, Width: 200, Source: "products"},
			{ID: "quantity", Name: "Количество", Type: TypeNumber, Required: true, Visible: true, Width: 120},
			{ID: "unit_price", Name: "Цена за единицу", Type: TypeCurrency, Visible: true, Width: 150, Symbol: "¥"},
			{ID: "total_amount", Name: "Итого", Type: TypeFormula, Formula: "[quantity] * [unit_price]", Visible: true, Width: 120},
			{ID: "customer", Name: "Клиент/Примечания", Type: TypeText, Visible: true, Width: 200},
			{ID: "actions", Name: "Действия", Type: TypeActions, Visible: true, Width: 120},
		},
	}
}

// Templates returns the predefined column templates users can instantiate.
// IDs are assigned at add time.
func Templates() []ColumnDefinition {
	return []ColumnDefinition{
		{Name: "Цена", Type: TypeCurrency, Symbol: "¥", Visible: true, Width: 120},
		{Name: "Количество", Type: TypeNumber, Visible: true, Width: 100},
		{Name: "Дата", Type: TypeDate, Visible: true, Width: 150},
		{Name: "Процент", Type: TypePercentage, Visible: true, Width: 100},
		{Name: "Статус", Type: TypeDropdown, Options: []string{"Активен", "Неактивен", "Ожидание"}, Visible: true, Width: 120},
		{Name: "Маржа", Type: TypeFormula, Formula: "[цена] - [себестоимость]", Visible: true, Width: 120},
		{Name: "Примечания", Type: TypeText, Visible: true, Width: 200},
	}
}
