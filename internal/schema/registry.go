package schema

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/margindesk/margindesk/internal/formula"
)

// Registry holds the ordered column configuration for every table.
type Registry struct {
	mu      sync.RWMutex
	configs map[TableName][]ColumnDefinition
}

// NewRegistry constructs a registry initialized with the hardcoded defaults.
func NewRegistry() *Registry {
	return &Registry{configs: Defaults()}
}

// List returns the table's columns in display order.
func (r *Registry) List(table TableName) ([]ColumnDefinition, error) {
	if !table.Valid() {
		return nil, ErrUnknownTable
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneColumns(r.configs[table]), nil
}

// Visible returns only the visible columns, in display order.
func (r *Registry) Visible(table TableName) ([]ColumnDefinition, error) {
	cols, err := r.List(table)
	if err != nil {
		return nil, err
	}
	visible := cols[:0]
	for _, c := range cols {
		if c.Visible {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Add appends a column definition. An omitted id is generated and guaranteed
// unique within the table; an explicit id must not collide.
func (r *Registry) Add(table TableName, def ColumnDefinition) (ColumnDefinition, error) {
	if !table.Valid() {
		return ColumnDefinition{}, ErrUnknownTable
	}
	if err := validateColumn(def); err != nil {
		return ColumnDefinition{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if def.ID == "" {
		def.ID = r.generateIDLocked(table)
	} else if r.indexLocked(table, def.ID) >= 0 {
		return ColumnDefinition{}, ErrDuplicateColumnID
	}
	if err := checkSelfReference(def); err != nil {
		return ColumnDefinition{}, err
	}
	r.configs[table] = append(r.configs[table], def)
	return def, nil
}

// Update applies a patch to an existing column.
func (r *Registry) Update(table TableName, id string, patch ColumnPatch) (ColumnDefinition, error) {
	if !table.Valid() {
		return ColumnDefinition{}, ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(table, id)
	if idx < 0 {
		return ColumnDefinition{}, ErrColumnNotFound
	}
	def := r.configs[table][idx]
	if patch.Name != nil {
		def.Name = *patch.Name
	}
	if patch.Type != nil {
		def.Type = *patch.Type
	}
	if patch.Required != nil {
		def.Required = *patch.Required
	}
	if patch.Visible != nil {
		def.Visible = *patch.Visible
	}
	if patch.Width != nil {
		def.Width = *patch.Width
	}
	if patch.Symbol != nil {
		def.Symbol = *patch.Symbol
	}
	if patch.Formula != nil {
		def.Formula = *patch.Formula
	}
	if patch.Options != nil {
		def.Options = append([]string(nil), (*patch.Options)...)
	}
	if patch.DefaultValue != nil {
		def.DefaultValue = *patch.DefaultValue
	}
	if patch.Source != nil {
		def.Source = *patch.Source
	}
	if err := validateColumn(def); err != nil {
		return ColumnDefinition{}, err
	}
	if err := checkSelfReference(def); err != nil {
		return ColumnDefinition{}, err
	}
	r.configs[table][idx] = def
	return def, nil
}

// Remove deletes a column definition.
func (r *Registry) Remove(table TableName, id string) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(table, id)
	if idx < 0 {
		return ErrColumnNotFound
	}
	r.configs[table] = append(r.configs[table][:idx], r.configs[table][idx+1:]...)
	return nil
}

// Duplicate clones a column under a fresh id with a " (копия)" name suffix,
// appended at the end of the list.
func (r *Registry) Duplicate(table TableName, id string) (ColumnDefinition, error) {
	if !table.Valid() {
		return ColumnDefinition{}, ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(table, id)
	if idx < 0 {
		return ColumnDefinition{}, ErrColumnNotFound
	}
	dup := r.configs[table][idx]
	dup.Options = append([]string(nil), dup.Options...)
	dup.ID = r.generateIDLocked(table)
	dup.Name += " (копия)"
	r.configs[table] = append(r.configs[table], dup)
	return dup, nil
}

// Reorder moves movedID to immediately precede beforeID's current position.
// A missing id on either side, or movedID == beforeID, is a no-op.
func (r *Registry) Reorder(table TableName, movedID, beforeID string) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	if movedID == beforeID {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	from := r.indexLocked(table, movedID)
	to := r.indexLocked(table, beforeID)
	if from < 0 || to < 0 {
		return nil
	}
	cols := r.configs[table]
	moved := cols[from]
	cols = append(cols[:from], cols[from+1:]...)
	if from < to {
		to--
	}
	cols = append(cols[:to], append([]ColumnDefinition{moved}, cols[to:]...)...)
	r.configs[table] = cols
	return nil
}

// SetVisible toggles a column's visibility.
func (r *Registry) SetVisible(table TableName, id string, visible bool) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(table, id)
	if idx < 0 {
		return ErrColumnNotFound
	}
	r.configs[table][idx].Visible = visible
	return nil
}

// Reset restores a single table's columns to the hardcoded defaults.
func (r *Registry) Reset(table TableName) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[table] = Defaults()[table]
	return nil
}

// ResetAll restores every table's columns to the hardcoded defaults.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = Defaults()
}

// Configs returns a deep copy of the full configuration map.
func (r *Registry) Configs() map[TableName][]ColumnDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[TableName][]ColumnDefinition, len(r.configs))
	for t, cols := range r.configs {
		out[t] = cloneColumns(cols)
	}
	return out
}

// Replace swaps in a full configuration map, e.g. from an imported document.
// The map is validated as a whole before any mutation.
func (r *Registry) Replace(configs map[TableName][]ColumnDefinition) error {
	if err := ValidateConfigs(configs); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[TableName][]ColumnDefinition, len(configs))
	for t, cols := range configs {
		next[t] = cloneColumns(cols)
	}
	// Tables absent from the import keep their defaults.
	for _, t := range Tables() {
		if _, ok := next[t]; !ok {
			next[t] = Defaults()[t]
		}
	}
	r.configs = next
	return nil
}

// ValidateConfigs checks a full configuration map for unknown tables,
// invalid or nameless columns, duplicate ids and self-referencing formulas.
func ValidateConfigs(configs map[TableName][]ColumnDefinition) error {
	for t, cols := range configs {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownTable, t)
		}
		seen := make(map[string]bool, len(cols))
		for _, def := range cols {
			if def.ID == "" || seen[def.ID] {
				return fmt.Errorf("%w: table %s id %q", ErrDuplicateColumnID, t, def.ID)
			}
			seen[def.ID] = true
			if err := validateColumn(def); err != nil {
				return fmt.Errorf("table %s column %s: %w", t, def.ID, err)
			}
			if err := checkSelfReference(def); err != nil {
				return fmt.Errorf("table %s column %s: %w", t, def.ID, err)
			}
		}
	}
	return nil
}

func validateColumn(def ColumnDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return ErrNameRequired
	}
	if !def.Type.Valid() {
		return ErrInvalidColumnType
	}
	return nil
}

func checkSelfReference(def ColumnDefinition) error {
	if def.Type != TypeFormula || def.ID == "" {
		return nil
	}
	for _, ref := range formula.References(def.Formula) {
		if ref == def.ID {
			return ErrFormulaSelfReference
		}
	}
	return nil
}

func (r *Registry) indexLocked(table TableName, id string) int {
	for i, c := range r.configs[table] {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// generateIDLocked produces a column id unique within the table. The
// generator alone is not trusted; collisions are checked explicitly.
func (r *Registry) generateIDLocked(table TableName) string {
	for {
		id := "col_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + strings.SplitN(uuid.NewString(), "-", 2)[0]
		if r.indexLocked(table, id) < 0 {
			return id
		}
	}
}

func cloneColumns(cols []ColumnDefinition) []ColumnDefinition {
	out := make([]ColumnDefinition, len(cols))
	copy(out, cols)
	for i := range out {
		out[i].Options = append([]string(nil), out[i].Options...)
	}
	return out
}
