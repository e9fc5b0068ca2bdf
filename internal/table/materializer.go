// Package table joins entity state with column schemas to produce fully
// formatted, classified rows for the rendering collaborator. Every render is
// a full recomputation from raw entity state.
package table

import (
	"log/slog"
	"sort"
	"time"

	"github.com/margindesk/margindesk/internal/formula"
	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/store"
)

// Action describes one row action the UI may offer for a cell.
type Action struct {
	Name     string `json:"name"`
	TargetID string `json:"targetId"`
}

// Cell is one formatted value with its classification tags.
type Cell struct {
	Value   string   `json:"value"`
	Tags    []string `json:"tags,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Row is one rendered entity, cells aligned to the visible columns.
type Row struct {
	Cells []Cell   `json:"cells"`
	Tags  []string `json:"tags,omitempty"`
}

// View is the rendered table handed to the external renderer.
type View struct {
	Table   schema.TableName          `json:"table"`
	Columns []schema.ColumnDefinition `json:"columns"`
	Rows    []Row                     `json:"rows"`
}

// Materializer derives views from the entity store and the column registry.
type Materializer struct {
	store    *store.Store
	registry *schema.Registry
	eval     *formula.Evaluator
	logger   *slog.Logger
	now      func() time.Time
}

// NewMaterializer builds a Materializer.
func NewMaterializer(st *store.Store, registry *schema.Registry, eval *formula.Evaluator, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{store: st, registry: registry, eval: eval, logger: logger, now: time.Now}
}

// Render produces the full view for one table: every visible column of every
// row, formatted and classified.
func (m *Materializer) Render(table schema.TableName) (View, error) {
	columns, err := m.registry.Visible(table)
	if err != nil {
		return View{}, err
	}
	ds := m.snapshot()

	var contexts []formula.Row
	var entityIDs []string
	switch table {
	case schema.TableMargin:
		for _, p := range ds.products {
			contexts = append(contexts, ds.marginContext(p))
			entityIDs = append(entityIDs, p.ID)
		}
	case schema.TableInventory:
		contexts = ds.inventoryRows
		for _, p := range ds.products {
			entityIDs = append(entityIDs, p.ID)
		}
	case schema.TableSales:
		contexts = ds.salesRows
		for _, s := range ds.sales {
			entityIDs = append(entityIDs, s.ID)
		}
	}

	rows := make([]Row, 0, len(contexts))
	for i, ctx := range contexts {
		row := Row{Tags: rowTags(table, ctx)}
		for _, col := range columns {
			row.Cells = append(row.Cells, m.cell(table, col, ctx, ds, entityIDs[i]))
		}
		rows = append(rows, row)
	}
	return View{Table: table, Columns: columns, Rows: rows}, nil
}

func (m *Materializer) cell(table schema.TableName, col schema.ColumnDefinition, ctx formula.Row, ds *dataset, entityID string) Cell {
	var raw any
	if col.Type == schema.TypeFormula {
		v, err := m.eval.Evaluate(col.Formula, ctx, ds)
		if err != nil {
			// Zero fallback; the failure never aborts row rendering.
			m.logger.Warn("formula column degraded to zero",
				slog.String("table", string(table)),
				slog.String("column", col.ID),
				slog.String("formula", col.Formula),
				slog.Any("error", err))
		}
		raw = v
	} else if v, ok := ctx[col.ID]; ok {
		raw = v
	} else {
		raw = placeholder
	}

	cell := Cell{Tags: cellTags(col, raw, ctx)}
	if col.Type == schema.TypeActions {
		cell.Actions = actionsFor(table, entityID)
		if len(cell.Actions) == 0 {
			cell.Value = placeholder
		}
		return cell
	}
	cell.Value = formatCell(col, raw)
	return cell
}

func actionsFor(table schema.TableName, entityID string) []Action {
	switch table {
	case schema.TableInventory:
		return []Action{{Name: "edit", TargetID: entityID}, {Name: "delete", TargetID: entityID}}
	case schema.TableSales:
		return []Action{{Name: "delete", TargetID: entityID}}
	}
	return nil
}

// dataset is a point-in-time copy of store state shared by one render pass.
// It backs the evaluator's whole-store context.
type dataset struct {
	products      []store.Product
	sales         []store.Sale
	settings      store.Settings
	today         string
	inventoryRows []formula.Row
	salesRows     []formula.Row
}

func (m *Materializer) snapshot() *dataset {
	ds := &dataset{
		products: m.store.Products(),
		sales:    m.store.Sales(),
		settings: m.store.Settings(),
		today:    m.now().Format("2006-01-02"),
	}
	// Sales render newest first.
	sort.SliceStable(ds.sales, func(i, j int) bool { return ds.sales[i].Date > ds.sales[j].Date })
	for _, p := range ds.products {
		ds.inventoryRows = append(ds.inventoryRows, ds.inventoryContext(p))
	}
	for _, s := range ds.sales {
		ds.salesRows = append(ds.salesRows, ds.saleContext(s))
	}
	return ds
}

// Rows implements formula.Tables over the snapshot.
func (d *dataset) Rows(table string) []formula.Row {
	switch table {
	case "sales":
		return d.salesRows
	case "inventory":
		return d.inventoryRows
	}
	return nil
}

// productContext exposes both the camelCase entity fields and the snake_case
// aliases formulas use.
func productContext(p store.Product) formula.Row {
	return formula.Row{
		"id":               p.ID,
		"name":             p.Name,
		"priceYuan":        p.PriceYuan,
		"price_yuan":       p.PriceYuan,
		"purchasePrice":    p.PurchasePrice,
		"purchase_price":   p.PurchasePrice,
		"deliveryCosts":    p.DeliveryCosts,
		"delivery_costs":   p.DeliveryCosts,
		"advertisingCosts": p.AdvertisingCosts,
		"advertising_costs": p.AdvertisingCosts,
		"initialStock":     p.InitialStock,
		"initial_stock":    p.InitialStock,
		"minStock":         p.MinStock,
		"min_stock":        p.MinStock,
		"currentStock":     p.CurrentStock,
		"current_stock":    p.CurrentStock,
	}
}

func (d *dataset) marginContext(p store.Product) formula.Row {
	ctx := productContext(p)
	calc := marginOf(p, d.settings.ExchangeRates, d.settings.CurrencyDecimals)
	ctx["price_usd"] = calc.PriceUSD
	ctx["price_rub"] = calc.PriceRUB
	ctx["margin_yuan"] = calc.Yuan
	ctx["margin_percent"] = calc.Percent
	ctx["exchange_rate_usd"] = d.settings.ExchangeRates.CNYToUSD
	ctx["exchange_rate_rub"] = d.settings.ExchangeRates.CNYToRUB
	return ctx
}

func (d *dataset) inventoryContext(p store.Product) formula.Row {
	ctx := productContext(p)
	sold := 0
	for _, s := range d.sales {
		if s.ProductID == p.ID {
			sold += s.Quantity
		}
	}
	ctx["total_sold"] = sold
	ctx["last_updated"] = d.today
	ctx["status"] = stockStatusText(p)
	return ctx
}

func (d *dataset) saleContext(s store.Sale) formula.Row {
	customer := s.Customer
	if customer == "" {
		customer = placeholder
	}
	return formula.Row{
		"id":           s.ID,
		"productId":    s.ProductID,
		"product_id":   s.ProductID,
		"productName":  s.ProductName,
		"product_name": s.ProductName,
		// Alias so SUMIF key matching against [name] works from any table.
		"name":         s.ProductName,
		"date":         s.Date,
		"quantity":     s.Quantity,
		"unitPrice":    s.UnitPrice,
		"unit_price":   s.UnitPrice,
		"total":        s.Total,
		"total_amount": s.Total,
		"customer":     customer,
	}
}

func stockStatusText(p store.Product) string {
	if p.CurrentStock <= 0 {
		return "Нет в наличии"
	}
	if p.CurrentStock <= p.MinStock {
		return "Мало"
	}
	return "В наличии"
}
