package table

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/margindesk/margindesk/internal/formula"
	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/store"
)

func newTestMaterializer(t *testing.T) (*Materializer, *store.Store, *schema.Registry) {
	t.Helper()
	st := store.New()
	st.LoadSampleData()
	registry := schema.NewRegistry()
	m := NewMaterializer(st, registry, formula.New(nil), nil)
	m.now = func() time.Time { return time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC) }
	return m, st, registry
}

func cellByColumn(t *testing.T, view View, row int, columnID string) Cell {
	t.Helper()
	for i, col := range view.Columns {
		if col.ID == columnID {
			return view.Rows[row].Cells[i]
		}
	}
	t.Fatalf("column %s not in view", columnID)
	return Cell{}
}

func cellNumber(t *testing.T, view View, row int, columnID string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(cellByColumn(t, view, row, columnID).Value, 64)
	require.NoError(t, err)
	return v
}

func TestRenderMarginTable(t *testing.T) {
	m, _, _ := newTestMaterializer(t)

	view, err := m.Render(schema.TableMargin)
	require.NoError(t, err)
	require.Equal(t, schema.TableMargin, view.Table)
	require.Len(t, view.Columns, 10)
	require.Len(t, view.Rows, 3)

	require.Equal(t, "Товар А", cellByColumn(t, view, 0, "name").Value)
	require.Equal(t, "¥100.00", cellByColumn(t, view, 0, "price_yuan").Value)
	require.InDelta(t, 13.93, cellNumber(t, view, 0, "price_usd"), 0.001)
	require.InDelta(t, 1155.81, cellNumber(t, view, 0, "price_rub"), 0.001)
	require.InDelta(t, 15, cellNumber(t, view, 0, "margin_yuan"), 0.001)
	require.InDelta(t, 15, cellNumber(t, view, 0, "margin_percent"), 0.001)
	require.InDelta(t, 125, cellNumber(t, view, 0, "current_stock"), 0.001)
}

func TestRenderMarginTags(t *testing.T) {
	m, st, _ := newTestMaterializer(t)
	_, err := st.AddProduct(store.ProductInput{
		Name:          "Убыточный",
		PriceYuan:     50,
		PurchasePrice: 80,
		InitialStock:  10,
	})
	require.NoError(t, err)

	view, err := m.Render(schema.TableMargin)
	require.NoError(t, err)
	require.Len(t, view.Rows, 4)

	require.Contains(t, view.Rows[0].Tags, "margin-row-positive")
	require.Contains(t, cellByColumn(t, view, 0, "margin_yuan").Tags, "positive-margin")
	require.Contains(t, cellByColumn(t, view, 0, "margin_yuan").Tags, "calculated-field")

	require.Contains(t, view.Rows[3].Tags, "margin-row-negative")
	require.Contains(t, cellByColumn(t, view, 3, "margin_yuan").Tags, "negative-margin")
}

func TestRenderInventoryTable(t *testing.T) {
	m, _, _ := newTestMaterializer(t)

	view, err := m.Render(schema.TableInventory)
	require.NoError(t, err)
	require.Len(t, view.Rows, 3)

	require.InDelta(t, 125, cellNumber(t, view, 0, "current_stock"), 0.001)
	require.InDelta(t, 25, cellNumber(t, view, 0, "total_sold"), 0.001)
	require.Equal(t, "150", cellByColumn(t, view, 0, "initial_stock").Value)
	require.Equal(t, "03.10.2025", cellByColumn(t, view, 0, "last_updated").Value)
	require.Equal(t, "В наличии", cellByColumn(t, view, 0, "status").Value)

	actions := cellByColumn(t, view, 0, "actions")
	require.Equal(t, []Action{
		{Name: "edit", TargetID: "prod1"},
		{Name: "delete", TargetID: "prod1"},
	}, actions.Actions)
}

func TestRenderInventoryStockStatuses(t *testing.T) {
	m, st, _ := newTestMaterializer(t)
	_, err := st.AddProduct(store.ProductInput{Name: "Мало на складе", PriceYuan: 10, InitialStock: 3, MinStock: 5})
	require.NoError(t, err)
	_, err = st.AddProduct(store.ProductInput{Name: "Пусто", PriceYuan: 10, InitialStock: 0, MinStock: 5})
	require.NoError(t, err)

	view, err := m.Render(schema.TableInventory)
	require.NoError(t, err)
	require.Len(t, view.Rows, 5)

	require.Equal(t, "Мало", cellByColumn(t, view, 3, "status").Value)
	require.Contains(t, cellByColumn(t, view, 3, "status").Tags, "status-warning")
	require.Contains(t, view.Rows[3].Tags, "low-stock-row")

	require.Equal(t, "Нет в наличии", cellByColumn(t, view, 4, "status").Value)
	require.Contains(t, cellByColumn(t, view, 4, "status").Tags, "status-critical")
	require.Contains(t, view.Rows[4].Tags, "critical-stock-row")
}

func TestRenderSalesTable(t *testing.T) {
	m, st, _ := newTestMaterializer(t)
	_, err := st.RecordSale(store.SaleInput{
		ProductID: "prod3",
		Date:      "2025-10-05",
		Quantity:  2,
		UnitPrice: 80,
	})
	require.NoError(t, err)

	view, err := m.Render(schema.TableSales)
	require.NoError(t, err)
	require.Len(t, view.Rows, 4)

	// Newest first.
	require.Equal(t, "05.10.2025", cellByColumn(t, view, 0, "date").Value)
	require.Equal(t, "Товар В", cellByColumn(t, view, 0, "product_name").Value)
	require.InDelta(t, 160, cellNumber(t, view, 0, "total_amount"), 0.001)
	require.Equal(t, placeholder, cellByColumn(t, view, 0, "customer").Value)

	require.Equal(t, "03.10.2025", cellByColumn(t, view, 1, "date").Value)
	require.Equal(t, "Оптовый клиент", cellByColumn(t, view, 1, "customer").Value)
	require.Equal(t, []Action{{Name: "delete", TargetID: "sale3"}}, cellByColumn(t, view, 1, "actions").Actions)
}

func TestRenderUnknownTable(t *testing.T) {
	m, _, _ := newTestMaterializer(t)
	_, err := m.Render(schema.TableName("ledger"))
	require.ErrorIs(t, err, schema.ErrUnknownTable)
}

func TestRenderBrokenFormulaDegradesToZero(t *testing.T) {
	m, _, registry := newTestMaterializer(t)
	_, err := registry.Add(schema.TableMargin, schema.ColumnDefinition{
		Name:    "Сломанная",
		Type:    schema.TypeFormula,
		Formula: "[price_yuan] +",
		Visible: true,
	})
	require.NoError(t, err)

	view, err := m.Render(schema.TableMargin)
	require.NoError(t, err)
	broken := view.Rows[0].Cells[len(view.Columns)-1]
	require.Equal(t, "0", broken.Value)
}

func TestRenderHiddenColumnsSkipped(t *testing.T) {
	m, _, registry := newTestMaterializer(t)
	require.NoError(t, registry.SetVisible(schema.TableMargin, "price_rub", false))

	view, err := m.Render(schema.TableMargin)
	require.NoError(t, err)
	require.Len(t, view.Columns, 9)
	for _, col := range view.Columns {
		require.NotEqual(t, "price_rub", col.ID)
	}
}

func TestMarginSummary(t *testing.T) {
	m, _, _ := newTestMaterializer(t)

	summary := m.MarginSummary()
	require.InDelta(t, 59, summary.TotalMarginCNY, 0.001)
	require.InDelta(t, 8.22, summary.TotalMarginUSD, 0.02)
	require.InDelta(t, 681.92, summary.TotalMarginRUB, 0.02)
	require.Equal(t, "ЦБ РФ", summary.Rates.Source)
}

func TestSalesSummary(t *testing.T) {
	m, _, _ := newTestMaterializer(t)

	summary := m.SalesSummary()
	require.Equal(t, 3, summary.TotalCount)
	require.InDelta(t, 3750, summary.TotalAmount, 0.001)
	require.Equal(t, 1, summary.TodayCount)
	require.InDelta(t, 1500, summary.TodayAmount, 0.001)
}

func TestGlobalStats(t *testing.T) {
	m, st, _ := newTestMaterializer(t)

	stats := m.GlobalStats()
	require.Equal(t, 3, stats.TotalProducts)
	require.Equal(t, 395, stats.TotalInventoryUnits)
	require.Equal(t, 0, stats.LowStockCount)
	require.InDelta(t, 13.4, stats.AverageMarginPercent, 0.001)

	st.UpdateSettings(80, 30, 2)
	stats = m.GlobalStats()
	require.Equal(t, 1, stats.LowStockCount)
}
