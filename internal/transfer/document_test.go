package transfer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store, *schema.Registry) {
	t.Helper()
	st := store.New()
	st.LoadSampleData()
	registry := schema.NewRegistry()
	return NewService(st, registry), st, registry
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, st, registry := newTestService(t)
	_, err := registry.Add(schema.TableMargin, schema.ColumnDefinition{
		Name: "Примечание", Type: schema.TypeText, Visible: true,
	})
	require.NoError(t, err)

	doc := svc.Export()
	require.Equal(t, documentVersion, doc.Version)
	require.Len(t, doc.Products, 3)
	require.Len(t, doc.Sales, 3)
	require.NotNil(t, doc.Settings)
	require.Len(t, doc.ColumnConfigs[schema.TableMargin], 11)

	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	// Import into a fresh instance and compare state.
	svc2, st2, registry2 := newTestService(t)
	st2.LoadSampleData()
	require.NoError(t, svc2.Import(payload))

	require.Equal(t, st.Products(), st2.Products())
	require.Equal(t, st.Sales(), st2.Sales())
	require.Equal(t, st.Settings(), st2.Settings())
	cols, err := registry2.List(schema.TableMargin)
	require.NoError(t, err)
	require.Len(t, cols, 11)
}

func TestImportRequiresProductsAndSales(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, payload := range []string{
		`{}`,
		`{"products": []}`,
		`{"sales": []}`,
		`{"products": "nope", "sales": []}`,
		`not json`,
	} {
		require.ErrorIs(t, svc.Import([]byte(payload)), ErrInvalidFormat, payload)
	}
}

func TestImportRecomputesStock(t *testing.T) {
	svc, st, _ := newTestService(t)

	payload := `{
		"products": [{"id": "p1", "name": "Товар", "priceYuan": 10, "initialStock": 100, "currentStock": 9999}],
		"sales": [{"id": "s1", "productId": "p1", "productName": "Товар", "date": "2025-10-01", "quantity": 30, "unitPrice": 10, "total": 300}]
	}`
	require.NoError(t, svc.Import([]byte(payload)))

	products := st.Products()
	require.Len(t, products, 1)
	require.Equal(t, 70, products[0].CurrentStock)
}

func TestImportBadColumnConfigLeavesStateUntouched(t *testing.T) {
	svc, st, registry := newTestService(t)
	before := st.Products()

	payload := `{
		"products": [],
		"sales": [],
		"columnConfigs": {"margin": [{"id": "broken", "name": "", "type": "text"}]}
	}`
	err := svc.Import([]byte(payload))
	require.ErrorIs(t, err, schema.ErrNameRequired)

	require.Equal(t, before, st.Products())
	cols, err := registry.List(schema.TableMargin)
	require.NoError(t, err)
	require.Len(t, cols, 10)
}

func TestImportKeepsSettingsWhenAbsent(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.UpdateSettings(42, 60, 3)

	require.NoError(t, svc.Import([]byte(`{"products": [], "sales": []}`)))
	require.Equal(t, 42, st.Settings().LowStockThreshold)
}

func TestImportColumnsAllOrNothing(t *testing.T) {
	svc, _, registry := newTestService(t)

	doc := svc.ExportColumns()
	doc.ColumnConfigs[schema.TableSales] = []schema.ColumnDefinition{
		{ID: "dup", Name: "Одна", Type: schema.TypeText},
		{ID: "dup", Name: "Другая", Type: schema.TypeText},
	}
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	require.ErrorIs(t, svc.ImportColumns(payload), schema.ErrDuplicateColumnID)
	cols, err := registry.List(schema.TableSales)
	require.NoError(t, err)
	require.Len(t, cols, 7)
}

func TestImportColumnsRequiresConfigs(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.ErrorIs(t, svc.ImportColumns([]byte(`{}`)), ErrInvalidFormat)
	require.ErrorIs(t, svc.ImportColumns([]byte(`broken`)), ErrInvalidFormat)
}

func TestDocumentWireFormat(t *testing.T) {
	svc, _, _ := newTestService(t)

	payload, err := json.Marshal(svc.Export())
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &keys))
	require.Contains(t, keys, "exportDate")
	require.Contains(t, keys, "columnConfigs")
	require.Contains(t, keys, "products")
	require.Contains(t, keys, "sales")
	require.Contains(t, keys, "settings")

	payload, err = json.Marshal(svc.ExportColumns())
	require.NoError(t, err)
	keys = nil
	require.NoError(t, json.Unmarshal(payload, &keys))
	require.Contains(t, keys, "exportDate")
	require.Contains(t, keys, "columnConfigs")
}

func TestImportColumnsAcceptsExportedDocument(t *testing.T) {
	svc, _, registry := newTestService(t)

	// The shape written by the browser app's column export.
	payload := `{
		"columnConfigs": {
			"sales": [
				{"id": "date", "name": "Дата", "type": "date", "visible": true},
				{"id": "quantity", "name": "Количество", "type": "number", "visible": true}
			]
		},
		"exportDate": "2025-10-07T10:00:00Z"
	}`
	require.NoError(t, svc.ImportColumns([]byte(payload)))

	cols, err := registry.List(schema.TableSales)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	require.Equal(t, "date", cols[0].ID)
}
