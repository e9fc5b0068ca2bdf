package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStockDerivedFromLedger(t *testing.T) {
	s := New()
	p, err := s.AddProduct(ProductInput{Name: "Товар А", PriceYuan: 100, InitialStock: 50, MinStock: 5})
	require.NoError(t, err)
	require.Equal(t, 50, p.CurrentStock)

	first, err := s.RecordSale(SaleInput{ProductID: p.ID, Date: "2025-10-01", Quantity: 10, UnitPrice: 100})
	require.NoError(t, err)
	require.Equal(t, 1000.0, first.Total)
	require.Equal(t, "Товар А", first.ProductName)

	_, err = s.RecordSale(SaleInput{ProductID: p.ID, Date: "2025-10-02", Quantity: 15, UnitPrice: 100})
	require.NoError(t, err)
	require.Equal(t, 25, s.Products()[0].CurrentStock)

	require.NoError(t, s.DeleteSale(first.ID))
	require.Equal(t, 35, s.Products()[0].CurrentStock)
}

func TestRecordSaleRejectsInsufficientStock(t *testing.T) {
	s := New()
	p, err := s.AddProduct(ProductInput{Name: "Товар Б", InitialStock: 5})
	require.NoError(t, err)

	_, err = s.RecordSale(SaleInput{ProductID: p.ID, Date: "2025-10-01", Quantity: 6, UnitPrice: 10})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 5, insufficient.Available)

	// Rejected call leaves stock and the ledger unchanged.
	require.Equal(t, 5, s.Products()[0].CurrentStock)
	require.Empty(t, s.Sales())
}

func TestRecordSaleValidation(t *testing.T) {
	s := New()
	p, err := s.AddProduct(ProductInput{Name: "Товар", InitialStock: 5})
	require.NoError(t, err)

	_, err = s.RecordSale(SaleInput{ProductID: p.ID, Date: "2025-10-01", Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.RecordSale(SaleInput{ProductID: p.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrDateRequired)

	_, err = s.RecordSale(SaleInput{ProductID: "missing", Date: "2025-10-01", Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProductCascades(t *testing.T) {
	s := New()
	a, err := s.AddProduct(ProductInput{Name: "Товар А", InitialStock: 100})
	require.NoError(t, err)
	b, err := s.AddProduct(ProductInput{Name: "Товар Б", InitialStock: 100})
	require.NoError(t, err)

	_, err = s.RecordSale(SaleInput{ProductID: a.ID, Date: "2025-10-01", Quantity: 1, UnitPrice: 1})
	require.NoError(t, err)
	_, err = s.RecordSale(SaleInput{ProductID: b.ID, Date: "2025-10-01", Quantity: 2, UnitPrice: 1})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(a.ID))
	require.Len(t, s.Products(), 1)
	sales := s.Sales()
	require.Len(t, sales, 1)
	require.Equal(t, b.ID, sales[0].ProductID)

	require.ErrorIs(t, s.DeleteProduct(a.ID), ErrProductNotFound)
}

func TestUpdateProductPatch(t *testing.T) {
	s := New()
	p, err := s.AddProduct(ProductInput{Name: "Товар", PriceYuan: 100, InitialStock: 50})
	require.NoError(t, err)

	_, err = s.RecordSale(SaleInput{ProductID: p.ID, Date: "2025-10-01", Quantity: 10, UnitPrice: 100})
	require.NoError(t, err)

	newStock := 80
	newPrice := 120.0
	updated, err := s.UpdateProduct(p.ID, ProductPatch{InitialStock: &newStock, PriceYuan: &newPrice})
	require.NoError(t, err)
	require.Equal(t, 120.0, updated.PriceYuan)
	// Derived stock follows the new initial stock.
	require.Equal(t, 70, updated.CurrentStock)

	_, err = s.UpdateProduct("missing", ProductPatch{})
	require.ErrorIs(t, err, ErrProductNotFound)

	empty := "  "
	_, err = s.UpdateProduct(p.ID, ProductPatch{Name: &empty})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestRecomputeStockIdempotent(t *testing.T) {
	s := New()
	s.LoadSampleData()
	before := s.Products()
	s.RecomputeStock()
	s.RecomputeStock()
	require.Equal(t, before, s.Products())
	require.Equal(t, 125, before[0].CurrentStock)
	require.Equal(t, 70, before[1].CurrentStock)
	require.Equal(t, 200, before[2].CurrentStock)
}

func TestRestoreRecomputesStock(t *testing.T) {
	s := New()
	products := []Product{{ID: "p1", Name: "Товар", InitialStock: 10, CurrentStock: 999}}
	sales := []Sale{{ID: "s1", ProductID: "p1", ProductName: "Товар", Date: "2025-10-01", Quantity: 3, UnitPrice: 1, Total: 3}}
	s.Restore(products, sales, nil)
	require.Equal(t, 7, s.Products()[0].CurrentStock)
}

func TestGeneratedIDsUnique(t *testing.T) {
	s := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := s.AddProduct(ProductInput{Name: "Товар", InitialStock: 1})
		require.NoError(t, err)
		require.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestErrorsMatchTaxonomy(t *testing.T) {
	require.True(t, errors.Is(ErrProductNotFound, ErrProductNotFound))
	err := &InsufficientStockError{Available: 3}
	require.Contains(t, err.Error(), "3")
}
