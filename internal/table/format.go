package table

import (
	"fmt"
	"strconv"
	"time"

	"github.com/margindesk/margindesk/internal/schema"
)

// placeholder renders for absent values.
const placeholder = "—"

func formatCell(col schema.ColumnDefinition, raw any) string {
	switch col.Type {
	case schema.TypeCurrency:
		if v, ok := numericValue(raw); ok {
			return col.Symbol + strconv.FormatFloat(v, 'f', 2, 64)
		}
		return col.Symbol + display(raw)
	case schema.TypePercentage:
		if v, ok := numericValue(raw); ok {
			return strconv.FormatFloat(v, 'f', 1, 64) + "%"
		}
		return display(raw) + "%"
	case schema.TypeDate:
		s := display(raw)
		if s == placeholder {
			return s
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Format("02.01.2006")
		}
		// Unparseable dates pass through untouched.
		return s
	default:
		return display(raw)
	}
}

func display(raw any) string {
	switch v := raw.(type) {
	case nil:
		return placeholder
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
