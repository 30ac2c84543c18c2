package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_SaleRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sale := models.Sale{
		ProductID:    "p1",
		ProductName:  "Rice",
		CustomerName: "Ann",
		Price:        models.Float(10),
		Cost:         models.Float(0),
		DateISO:      "2024-03-02",
	}
	require.NoError(t, repo.CreateSale(ctx, &sale))
	assert.NotEmpty(t, sale.ID)

	got, err := repo.FindSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale, *got)

	// Absent and zero amounts stay distinct.
	require.NotNil(t, got.Cost)
	assert.Zero(t, *got.Cost)
	assert.Nil(t, got.Quantity)
}

func TestRepository_FindSaleNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindSale(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListPreservesInsertionOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, repo.CreateSale(ctx, &models.Sale{ID: id, ProductName: id}))
		require.NoError(t, repo.SaveProduct(ctx, &models.Product{ID: id, Name: id}))
	}

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)

	var saleIDs, productIDs []string
	for _, s := range sales {
		saleIDs = append(saleIDs, s.ID)
	}
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, saleIDs)
	assert.Equal(t, []string{"z", "a", "m"}, productIDs)
}

func TestRepository_EmptyLists(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestRepository_SaveProductUpserts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	product := models.Product{ID: "p1", Name: "Rice", Cost: 2, Price: 3, Quantity: 40, CriticalStockLimit: 10, Category: "Pantry", Brand: "Acme", Unit: "kg"}
	require.NoError(t, repo.SaveProduct(ctx, &product))

	product.Quantity = 5
	product.Price = 3.5
	require.NoError(t, repo.SaveProduct(ctx, &product))

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product, products[0])
}

func TestRepository_SaveProductAssignsID(t *testing.T) {
	repo := newTestRepository(t)

	product := models.Product{Name: "Soap"}
	require.NoError(t, repo.SaveProduct(context.Background(), &product))
	assert.Len(t, product.ID, 36)
}

func TestRepository_ImportDataset(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	data := models.Dataset{
		Products: []models.Product{
			{ID: "p1", Name: "Rice", Cost: 2, Quantity: 3, CriticalStockLimit: 5},
			{ID: "p2", Name: "Soap", Cost: 1, Quantity: 20, CriticalStockLimit: 5},
		},
		Sales: []models.Sale{
			{ID: "s1", ProductID: "p1", Price: models.Float(4), Quantity: models.Float(2)},
			{ProductID: "p2", Price: models.Float(3)},
		},
	}
	require.NoError(t, repo.ImportDataset(ctx, data))

	// Re-importing keeps existing sales and refreshes products.
	data.Products[0].Quantity = 30
	require.NoError(t, repo.ImportDataset(ctx, models.Dataset{
		Products: data.Products,
		Sales:    data.Sales[:1],
	}))

	sales, products, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sales)
	assert.Equal(t, int64(2), products)

	stored, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(30), stored[0].Quantity)

	storedSales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, storedSales, 2)
	assert.Equal(t, "s1", storedSales[0].ID)
	assert.NotEmpty(t, storedSales[1].ID)
}

func TestRepository_ImportEmptyDataset(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.ImportDataset(context.Background(), models.Dataset{}))

	sales, products, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sales)
	assert.Zero(t, products)
}

func TestRepository_ImportDatasetTwiceWithoutIDs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	data := models.Dataset{
		Products: []models.Product{
			{Name: "Rice", Cost: 2, Price: 3, Quantity: 10, Unit: "kg"},
		},
		Sales: []models.Sale{
			{ProductName: "Rice", CustomerName: "Ann", Price: models.Float(3), DateISO: "2024-03-01"},
			// Same content on purpose: two identical purchases.
			{ProductName: "Rice", CustomerName: "Ann", Price: models.Float(3), DateISO: "2024-03-01"},
			{ProductName: "Rice", CustomerName: "Ann", Price: models.Float(3), Cost: models.Float(0), DateISO: "2024-03-01"},
		},
	}

	require.NoError(t, repo.ImportDataset(ctx, data))
	first, err := repo.ListSales(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.ImportDataset(ctx, data))

	sales, products, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sales)
	assert.Equal(t, int64(1), products)

	second, err := repo.ListSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, data.Sales[0].ID, "input records must not be modified")
}

func TestImportIDs_Derive(t *testing.T) {
	a := newImportIDs()
	b := newImportIDs()

	first := a.derive("sale", "Rice", "Ann")
	assert.Equal(t, first, b.derive("sale", "Rice", "Ann"))
	assert.NotEqual(t, first, a.derive("sale", "Rice", "Ann"))
	assert.NotEqual(t, first, b.derive("product", "Rice", "Ann"))
	assert.Len(t, first, 36)

	assert.Equal(t, "-", amountKey(nil))
	assert.Equal(t, "0", amountKey(models.Float(0)))
	assert.Equal(t, "2.5", amountKey(models.Float(2.5)))
}

func TestRepository_CreateSaleDuplicateID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSale(ctx, &models.Sale{ID: "s1", ProductName: "Rice"}))

	err := repo.CreateSale(ctx, &models.Sale{ID: "s1", ProductName: "Soap"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.FindSale(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Rice", got.ProductName)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bizdash.db")

	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening migrates an existing schema without error.
	repo, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
