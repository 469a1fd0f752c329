package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credotech/inventory-console/internal/domain"
)

func product(id, name, categoryID string, quantity int) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		SKU:      "SKU-" + id,
		Category: domain.CategoryRef{ID: categoryID, Name: "cat-" + categoryID},
		Quantity: quantity,
	}
}

func TestReplaceAllPreservesInsertionOrder(t *testing.T) {
	store := New()

	store.ReplaceAllProducts([]domain.Product{
		product("p3", "Gamma", "c1", 5),
		product("p1", "Alpha", "c1", 2),
		product("p2", "Beta", "c2", 9),
	})

	got := store.Products()
	require.Len(t, got, 3)
	assert.Equal(t, "p3", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)
	assert.Equal(t, "p2", got[2].ID)
}

func TestReplaceAllDropsDuplicateIDs(t *testing.T) {
	store := New()

	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 2),
		product("p1", "Alpha v2", "c1", 4),
	})

	got := store.Products()
	require.Len(t, got, 1)
	// Last write wins for the entity, first position wins for order
	assert.Equal(t, "Alpha v2", got[0].Name)
}

func TestUpsertKeepsExactlyOneEntryPerID(t *testing.T) {
	store := New()
	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 2),
		product("p2", "Beta", "c1", 3),
	})

	// Replace keeps position, insert appends
	store.UpsertProduct(product("p1", "Alpha edited", "c1", 7))
	store.UpsertProduct(product("p3", "Gamma", "c2", 1))

	got := store.Products()
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "Alpha edited", got[0].Name)
	assert.Equal(t, 7, got[0].Quantity)
	assert.Equal(t, "p3", got[2].ID)

	seen := map[string]int{}
	for _, p := range got {
		seen[p.ID]++
	}
	for id, count := range seen {
		assert.Equalf(t, 1, count, "id %s appears %d times", id, count)
	}
}

func TestRemoveProduct(t *testing.T) {
	store := New()
	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 2),
		product("p2", "Beta", "c1", 3),
	})

	store.RemoveProduct("p1")

	got := store.Products()
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)

	_, ok := store.ProductByID("p1")
	assert.False(t, ok)

	// Removing a missing id is a no-op
	store.RemoveProduct("p1")
	assert.Len(t, store.Products(), 1)
}

func TestRecomputeCategoryProductCountsSumsQuantities(t *testing.T) {
	store := New()
	store.ReplaceAllCategories([]domain.Category{
		{ID: "c1", Name: "Electronics", ProductCount: 999},
		{ID: "c2", Name: "Office"},
		{ID: "c3", Name: "Empty"},
	})
	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 2),
		product("p2", "Beta", "c1", 3),
		product("p3", "Gamma", "c2", 9),
	})

	store.RecomputeCategoryProductCounts()

	// Sum of quantities, not a count of products
	c1, _ := store.CategoryByID("c1")
	assert.Equal(t, 5, c1.ProductCount)
	c2, _ := store.CategoryByID("c2")
	assert.Equal(t, 9, c2.ProductCount)
	c3, _ := store.CategoryByID("c3")
	assert.Equal(t, 0, c3.ProductCount)
}

func TestRecomputeCategoryProductCountsIsIdempotent(t *testing.T) {
	store := New()
	store.ReplaceAllCategories([]domain.Category{{ID: "c1", Name: "Electronics"}})
	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 4),
		product("p2", "Beta", "c1", 6),
	})

	store.RecomputeCategoryProductCounts()
	first := store.Categories()
	store.RecomputeCategoryProductCounts()
	second := store.Categories()

	assert.Equal(t, first, second)
}

func TestRefreshProductCategoriesUpdatesSnapshot(t *testing.T) {
	store := New()
	store.ReplaceAllProducts([]domain.Product{
		product("p1", "Alpha", "c1", 2),
	})
	store.ReplaceAllCategories([]domain.Category{
		{ID: "c1", Name: "Renamed Electronics"},
	})

	store.RefreshProductCategories()

	p, ok := store.ProductByID("p1")
	require.True(t, ok)
	assert.Equal(t, "Renamed Electronics", p.Category.Name)
}

func TestSubscribeNotifiesPerResource(t *testing.T) {
	store := New()
	var events []Resource
	store.Subscribe(func(r Resource) {
		events = append(events, r)
	})

	store.ReplaceAllProducts([]domain.Product{product("p1", "Alpha", "c1", 2)})
	store.UpsertCategory(domain.Category{ID: "c1", Name: "Electronics"})
	store.ReplaceAllTransactions(nil)

	assert.Equal(t, []Resource{Products, Categories, Transactions}, events)
}

func TestTransactionsRoundTrip(t *testing.T) {
	store := New()
	store.ReplaceAllTransactions([]domain.Transaction{
		{ID: "t1", Type: domain.StockIn, Quantity: 5},
		{ID: "t2", Type: domain.StockOut, Quantity: 2},
	})

	store.UpsertTransaction(domain.Transaction{ID: "t3", Type: domain.StockIn, Quantity: 1})
	store.RemoveTransaction("t1")

	got := store.Transactions()
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].ID)
	assert.Equal(t, "t3", got[1].ID)
	assert.Equal(t, 2, store.Len(Transactions))
}
