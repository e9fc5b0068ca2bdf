package formula

import (
	"fmt"
	"regexp"
	"strings"
)

// The function set is closed: a fixed dispatch table, not an extension point.
// Each entry expands its call sites into plain numbers before arithmetic
// evaluation, so function results compose with the rest of the expression.
type function struct {
	pattern *regexp.Regexp
	apply   func(args []string, row Row, tables Tables) float64
}

var functionNames = []string{"SUMIF", "LOOKUP"}

var functions = map[string]function{
	// SUMIF(table, [keyColumn], sumColumn): sum sumColumn over the named
	// table's rows whose keyColumn equals the current row's keyColumn.
	// Only the sales table is supported; matching is by denormalized
	// product name, not id.
	"SUMIF": {
		pattern: regexp.MustCompile(`SUMIF\(\s*(\w+)\s*,\s*\[([^\]]+)\]\s*,\s*(\w+)\s*\)`),
		apply:   evalSumIf,
	},
	// LOOKUP([keyColumn], table, returnColumn): first row of the named
	// table whose name equals the current row's keyColumn, returning its
	// returnColumn. Only the inventory (products) table is supported.
	"LOOKUP": {
		pattern: regexp.MustCompile(`LOOKUP\(\s*\[([^\]]+)\]\s*,\s*(\w+)\s*,\s*(\w+)\s*\)`),
		apply:   evalLookup,
	},
}

func (f function) expand(expr string, row Row, tables Tables) string {
	return f.pattern.ReplaceAllStringFunc(expr, func(call string) string {
		m := f.pattern.FindStringSubmatch(call)
		return formatNumber(f.apply(m[1:], row, tables))
	})
}

func evalSumIf(args []string, row Row, tables Tables) float64 {
	table, keyColumn, sumColumn := args[0], args[1], args[2]
	if tables == nil || !strings.Contains(table, "sales") {
		return 0
	}
	keyValue, ok := row[keyColumn]
	if !ok || keyValue == nil {
		return 0
	}
	var sum float64
	for _, r := range tables.Rows("sales") {
		if !looseEqual(r[keyColumn], keyValue) {
			continue
		}
		if v, ok := numeric(r[sumColumn]); ok {
			sum += v
		}
	}
	return sum
}

func evalLookup(args []string, row Row, tables Tables) float64 {
	keyColumn, table, returnColumn := args[0], args[1], args[2]
	if tables == nil || !strings.Contains(table, "inventory") {
		return 0
	}
	keyValue, ok := row[keyColumn]
	if !ok || keyValue == nil {
		return 0
	}
	for _, r := range tables.Rows("inventory") {
		if !looseEqual(r["name"], keyValue) {
			continue
		}
		if v, ok := numeric(r[returnColumn]); ok {
			return v
		}
		return 0
	}
	return 0
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
