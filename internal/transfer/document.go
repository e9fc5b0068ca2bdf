// Package transfer moves full application state in and out: JSON documents
// for backup and restore, column-config documents, and the inventory CSV.
package transfer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/store"
)

// ErrInvalidFormat indicates a document missing the required sections or
// carrying sections that do not parse. Nothing is applied when it is returned.
var ErrInvalidFormat = errors.New("transfer: invalid document format")

// Document is the full-state export: entities plus the optional settings and
// column-config sections. The JSON key names are the portable wire format;
// documents produced by older exports round-trip unchanged.
type Document struct {
	Version       int                                          `json:"version"`
	ExportDate    string                                       `json:"exportDate"`
	Products      []store.Product                              `json:"products"`
	Sales         []store.Sale                                 `json:"sales"`
	Settings      *store.Settings                              `json:"settings,omitempty"`
	ColumnConfigs map[schema.TableName][]schema.ColumnDefinition `json:"columnConfigs,omitempty"`
}

// ColumnConfigDocument carries column definitions alone, keyed the same way
// the full document keys its column section.
type ColumnConfigDocument struct {
	Version       int                                            `json:"version"`
	ExportDate    string                                         `json:"exportDate"`
	ColumnConfigs map[schema.TableName][]schema.ColumnDefinition `json:"columnConfigs"`
}

const documentVersion = 1

// Service implements export and import over the store and the registry.
type Service struct {
	store    *store.Store
	registry *schema.Registry
	now      func() time.Time
}

// NewService constructs the transfer service.
func NewService(st *store.Store, registry *schema.Registry) *Service {
	return &Service{store: st, registry: registry, now: time.Now}
}

// Export snapshots the full application state.
func (s *Service) Export() Document {
	settings := s.store.Settings()
	return Document{
		Version:       documentVersion,
		ExportDate:    s.now().UTC().Format(time.RFC3339),
		Products:      s.store.Products(),
		Sales:         s.store.Sales(),
		Settings:      &settings,
		ColumnConfigs: s.registry.Configs(),
	}
}

// ExportColumns snapshots the column configuration alone.
func (s *Service) ExportColumns() ColumnConfigDocument {
	return ColumnConfigDocument{
		Version:       documentVersion,
		ExportDate:    s.now().UTC().Format(time.RFC3339),
		ColumnConfigs: s.registry.Configs(),
	}
}

// rawDocument checks section presence before committing to a full decode.
type rawDocument struct {
	Products      json.RawMessage `json:"products"`
	Sales         json.RawMessage `json:"sales"`
	Settings      json.RawMessage `json:"settings"`
	ColumnConfigs json.RawMessage `json:"columnConfigs"`
}

// Import applies a full-state document. Products and sales are required and
// replace current state; settings and column configs replace only when
// present. Validation happens before any mutation, so a bad document leaves
// state untouched.
func (s *Service) Import(data []byte) error {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidFormat
	}
	if raw.Products == nil || raw.Sales == nil {
		return ErrInvalidFormat
	}

	var products []store.Product
	if err := json.Unmarshal(raw.Products, &products); err != nil {
		return ErrInvalidFormat
	}
	var sales []store.Sale
	if err := json.Unmarshal(raw.Sales, &sales); err != nil {
		return ErrInvalidFormat
	}
	var settings *store.Settings
	if raw.Settings != nil {
		settings = &store.Settings{}
		if err := json.Unmarshal(raw.Settings, settings); err != nil {
			return ErrInvalidFormat
		}
	}
	var configs map[schema.TableName][]schema.ColumnDefinition
	if raw.ColumnConfigs != nil {
		if err := json.Unmarshal(raw.ColumnConfigs, &configs); err != nil {
			return ErrInvalidFormat
		}
		if err := schema.ValidateConfigs(configs); err != nil {
			return err
		}
	}

	if configs != nil {
		if err := s.registry.Replace(configs); err != nil {
			return err
		}
	}
	s.store.Restore(products, sales, settings)
	return nil
}

// ImportColumns applies a column-config document, all tables or nothing.
func (s *Service) ImportColumns(data []byte) error {
	var raw struct {
		ColumnConfigs json.RawMessage `json:"columnConfigs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidFormat
	}
	if raw.ColumnConfigs == nil {
		return ErrInvalidFormat
	}
	var configs map[schema.TableName][]schema.ColumnDefinition
	if err := json.Unmarshal(raw.ColumnConfigs, &configs); err != nil {
		return ErrInvalidFormat
	}
	return s.registry.Replace(configs)
}
