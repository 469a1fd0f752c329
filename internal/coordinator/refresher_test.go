package coordinator

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credotech/inventory-console/internal/api"
	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/live"
)

// fakeSnapshots serves canned list responses and counts fetches
type fakeSnapshots struct {
	mu           sync.Mutex
	products     []domain.Product
	categories   []domain.Category
	transactions []domain.Transaction

	productErr   error
	productCalls int
}

func (f *fakeSnapshots) ListProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls++
	if f.productErr != nil {
		return nil, f.productErr
	}
	return f.products, nil
}

func (f *fakeSnapshots) ListCategories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

func (f *fakeSnapshots) ListTransactions(context.Context) ([]domain.Transaction, api.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transactions, api.Pagination{Total: len(f.transactions)}, nil
}

func (f *fakeSnapshots) productFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productCalls
}

func TestRefreshAllPopulatesEveryResource(t *testing.T) {
	remote := &fakeSnapshots{
		products: []domain.Product{
			{ID: "p1", Name: "Alpha", Category: domain.CategoryRef{ID: "c1"}, Quantity: 4},
		},
		categories: []domain.Category{
			{ID: "c1", Name: "Electronics"},
		},
		transactions: []domain.Transaction{
			{ID: "t1", Type: domain.StockIn, Quantity: 4},
		},
	}
	store := cache.New()
	r := NewRefresher(remote, store)

	require.NoError(t, r.RefreshAll(context.Background()))

	assert.Equal(t, 1, store.Len(cache.Products))
	assert.Equal(t, 1, store.Len(cache.Categories))
	assert.Equal(t, 1, store.Len(cache.Transactions))

	// Derived counts are recomputed as part of the refresh
	c1, _ := store.CategoryByID("c1")
	assert.Equal(t, 4, c1.ProductCount)
}

func TestRefreshAllCollectsPartialErrors(t *testing.T) {
	remote := &fakeSnapshots{
		productErr: errors.New("upstream down"),
		categories: []domain.Category{{ID: "c1", Name: "Electronics"}},
	}
	store := cache.New()
	r := NewRefresher(remote, store)

	err := r.RefreshAll(context.Background())
	require.Error(t, err)

	// Failed resources leave the cache alone, successful ones land
	assert.Equal(t, 0, store.Len(cache.Products))
	assert.Equal(t, 1, store.Len(cache.Categories))
}

func TestRefreshProductsReplacesStaleSnapshot(t *testing.T) {
	store := cache.New()
	store.ReplaceAllProducts([]domain.Product{
		{ID: "stale", Name: "Gone", Quantity: 1},
	})

	remote := &fakeSnapshots{
		products: []domain.Product{{ID: "p1", Name: "Alpha", Quantity: 2}},
	}
	r := NewRefresher(remote, store)

	require.NoError(t, r.RefreshProducts(context.Background()))

	_, ok := store.ProductByID("stale")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(cache.Products))
}

// scriptedConn and scriptedTransport drive the live channel end to end
type scriptedConn struct {
	msgs   chan []byte
	closed chan struct{}
	once   sync.Once
}

func (c *scriptedConn) ReadMessage() ([]byte, error) {
	select {
	case m := <-c.msgs:
		return m, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *scriptedConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

type scriptedTransport struct {
	conn *scriptedConn
}

func (t *scriptedTransport) Dial(context.Context) (live.Conn, error) {
	return t.conn, nil
}

func TestBindLiveRefetchesOnProductNotification(t *testing.T) {
	remote := &fakeSnapshots{
		products: []domain.Product{{ID: "p1", Name: "Alpha", Quantity: 2}},
	}
	store := cache.New()
	r := NewRefresher(remote, store)

	conn := &scriptedConn{msgs: make(chan []byte, 4), closed: make(chan struct{})}
	channel := live.NewChannel(&scriptedTransport{conn: conn}, time.Millisecond)
	defer channel.Close()
	r.BindLive(channel)
	channel.Start(context.Background())

	conn.msgs <- []byte(`{"type":"PRODUCTS_UPDATED"}`)

	assert.Eventually(t, func() bool {
		return store.Len(cache.Products) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, remote.productFetches())
}

func TestBindLiveAppliesEmbeddedCategoryList(t *testing.T) {
	store := cache.New()
	store.ReplaceAllProducts([]domain.Product{
		{ID: "p1", Name: "Alpha", Category: domain.CategoryRef{ID: "c1", Name: "Old"}, Quantity: 3},
	})
	r := NewRefresher(&fakeSnapshots{}, store)

	conn := &scriptedConn{msgs: make(chan []byte, 4), closed: make(chan struct{})}
	channel := live.NewChannel(&scriptedTransport{conn: conn}, time.Millisecond)
	defer channel.Close()
	r.BindLive(channel)
	channel.Start(context.Background())

	conn.msgs <- []byte(`{"type":"CATEGORY_UPDATED","categories":[{"id":"c1","name":"Renamed"}]}`)

	assert.Eventually(t, func() bool {
		p, ok := store.ProductByID("p1")
		return ok && p.Category.Name == "Renamed"
	}, time.Second, time.Millisecond)

	c1, ok := store.CategoryByID("c1")
	require.True(t, ok)
	assert.Equal(t, 3, c1.ProductCount)
}

func TestBindLiveAppliesEmbeddedTransactionList(t *testing.T) {
	store := cache.New()
	store.ReplaceAllTransactions([]domain.Transaction{
		{ID: "old", Type: domain.StockIn, Quantity: 1},
	})
	r := NewRefresher(&fakeSnapshots{}, store)

	conn := &scriptedConn{msgs: make(chan []byte, 4), closed: make(chan struct{})}
	channel := live.NewChannel(&scriptedTransport{conn: conn}, time.Millisecond)
	defer channel.Close()
	r.BindLive(channel)
	channel.Start(context.Background())

	conn.msgs <- []byte(`{"type":"TRANSACTION_UPDATED","transactions":[{"id":"t1","type":"stock-out","quantity":2}]}`)

	assert.Eventually(t, func() bool {
		_, ok := store.TransactionByID("t1")
		return ok
	}, time.Second, time.Millisecond)

	// The embedded list replaces the snapshot, it is not merged
	_, stale := store.TransactionByID("old")
	assert.False(t, stale)
}
