package table

import (
	"github.com/margindesk/margindesk/internal/formula"
	"github.com/margindesk/margindesk/internal/schema"
)

// Classification tags mirror the status vocabulary of the UI: margin sign on
// margin cells/rows, stock thresholds on stock cells/rows.

func cellTags(col schema.ColumnDefinition, raw any, ctx formula.Row) []string {
	var tags []string

	if col.Type == schema.TypeFormula {
		tags = append(tags, "calculated-field")
	}
	if col.Type == schema.TypeCurrency || col.Type == schema.TypeNumber {
		tags = append(tags, "text-right", "font-mono")
	}
	if col.Type == schema.TypeDate {
		tags = append(tags, "text-center")
	}

	if col.ID == "margin_yuan" || col.ID == "margin_percent" {
		if v, ok := numericValue(raw); ok && v >= 0 {
			tags = append(tags, "positive-margin")
		} else {
			tags = append(tags, "negative-margin")
		}
	}

	if col.ID == "current_stock" || col.ID == "status" {
		stock := contextNumber(ctx, "current_stock", "currentStock")
		minStock := contextNumber(ctx, "min_stock", "minStock")
		switch {
		case stock <= 0:
			tags = append(tags, "status-critical")
		case stock <= minStock:
			tags = append(tags, "status-warning")
		case col.ID == "current_stock":
			tags = append(tags, "status-ok")
		}
	}

	return tags
}

func rowTags(table schema.TableName, ctx formula.Row) []string {
	switch table {
	case schema.TableMargin:
		if contextNumber(ctx, "margin_yuan") >= 0 {
			return []string{"margin-row-positive"}
		}
		return []string{"margin-row-negative"}
	case schema.TableInventory:
		stock := contextNumber(ctx, "current_stock")
		minStock := contextNumber(ctx, "min_stock")
		if stock <= 0 {
			return []string{"critical-stock-row"}
		}
		if stock <= minStock {
			return []string{"low-stock-row"}
		}
	}
	return nil
}

func contextNumber(ctx formula.Row, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := numericValue(ctx[key]); ok {
			return v
		}
	}
	return 0
}
