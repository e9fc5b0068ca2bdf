// Package schema manages the per-table, user-editable column definitions that
// drive table rendering, independent from entity structure.
package schema

import "errors"

// TableName identifies one of the three logical tables.
type TableName string

const (
	// TableMargin is the margin calculator table over products.
	TableMargin TableName = "margin"
	// TableInventory is the inventory table over products.
	TableInventory TableName = "inventory"
	// TableSales is the sales log table.
	TableSales TableName = "sales"
)

// Tables lists all logical tables in display order.
func Tables() []TableName {
	return []TableName{TableMargin, TableInventory, TableSales}
}

// Valid reports whether the table name is one of the known tables.
func (t TableName) Valid() bool {
	switch t {
	case TableMargin, TableInventory, TableSales:
		return true
	}
	return false
}

// ColumnType is the closed set of column kinds.
type ColumnType string

const (
	TypeText       ColumnType = "text"
	TypeNumber     ColumnType = "number"
	TypeCurrency   ColumnType = "currency"
	TypePercentage ColumnType = "percentage"
	TypeDate       ColumnType = "date"
	TypeFormula    ColumnType = "formula"
	TypeDropdown   ColumnType = "dropdown"
	TypeActions    ColumnType = "actions"
)

// Valid reports whether the column type is a member of the closed set.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeCurrency, TypePercentage, TypeDate, TypeFormula, TypeDropdown, TypeActions:
		return true
	}
	return false
}

// ColumnDefinition describes one column of a table. Order within the config
// list is display order.
type ColumnDefinition struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	Required     bool       `json:"required,omitempty"`
	Visible      bool       `json:"visible"`
	Width        int        `json:"width,omitempty"`
	Symbol       string     `json:"symbol,omitempty"`
	Formula      string     `json:"formula,omitempty"`
	Options      []string   `json:"options,omitempty"`
	DefaultValue string     `json:"defaultValue,omitempty"`
	Source       string     `json:"source,omitempty"`
}

// ColumnPatch updates a column definition; nil fields are left unchanged.
type ColumnPatch struct {
	Name         *string
	Type         *ColumnType
	Required     *bool
	Visible      *bool
	Width        *int
	Symbol       *string
	Formula      *string
	Options      *[]string
	DefaultValue *string
	Source       *string
}

// ErrUnknownTable indicates a table name outside margin/inventory/sales.
var ErrUnknownTable = errors.New("schema: unknown table")

// ErrColumnNotFound indicates the referenced column id is absent.
var ErrColumnNotFound = errors.New("schema: column not found")

// ErrDuplicateColumnID indicates an explicit id collides within its table.
var ErrDuplicateColumnID = errors.New("schema: duplicate column id")

// ErrNameRequired indicates a column without a display name.
var ErrNameRequired = errors.New("schema: column name is required")

// ErrInvalidColumnType indicates a type outside the closed set.
var ErrInvalidColumnType = errors.New("schema: invalid column type")

// ErrFormulaSelfReference indicates a formula referencing its own column id;
// row contexts come from a single materialization pass, so such a formula can
// never resolve and is rejected at save time.
var ErrFormulaSelfReference = errors.New("schema: formula references its own column")
