package cache

import (
	"sync"

	"github.com/credotech/inventory-console/internal/domain"
)

// Resource identifies one of the cached entity sets
type Resource string

const (
	Products     Resource = "products"
	Categories   Resource = "categories"
	Transactions Resource = "transactions"
)

// table holds one resource: an id-keyed mapping plus the insertion
// order of the last full snapshot, for stable pagination
type table[T any] struct {
	order []string
	items map[string]T
}

func newTable[T any]() table[T] {
	return table[T]{items: make(map[string]T)}
}

func (t *table[T]) replaceAll(list []T, id func(T) string) {
	t.order = t.order[:0]
	t.items = make(map[string]T, len(list))
	for _, item := range list {
		key := id(item)
		if _, exists := t.items[key]; !exists {
			t.order = append(t.order, key)
		}
		t.items[key] = item
	}
}

func (t *table[T]) upsert(key string, item T) {
	if _, exists := t.items[key]; !exists {
		t.order = append(t.order, key)
	}
	t.items[key] = item
}

func (t *table[T]) remove(key string) bool {
	if _, exists := t.items[key]; !exists {
		return false
	}
	delete(t.items, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.items[key])
	}
	return out
}

func (t *table[T]) get(key string) (T, bool) {
	item, ok := t.items[key]
	return item, ok
}

// Store is the local cache: the read-optimized, eventually-consistent
// projection of the server's products, categories and transactions.
// The only writers are the mutation coordinator and the live channel;
// every write goes through a named operation so the unique-id and
// atomic-replace invariants hold. Concurrent refreshes are
// last-write-wins per resource.
type Store struct {
	mu           sync.RWMutex
	products     table[domain.Product]
	categories   table[domain.Category]
	transactions table[domain.Transaction]

	subsMu sync.Mutex
	subs   []func(Resource)
}

// New creates an empty store
func New() *Store {
	return &Store{
		products:     newTable[domain.Product](),
		categories:   newTable[domain.Category](),
		transactions: newTable[domain.Transaction](),
	}
}

// Subscribe registers a callback invoked after a resource changes.
// Callbacks run outside the store lock and may read the store freely,
// but must not write to it.
func (s *Store) Subscribe(fn func(Resource)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(resource Resource) {
	s.subsMu.Lock()
	subs := make([]func(Resource), len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(resource)
	}
}

// ReplaceAllProducts atomically replaces the full product snapshot
func (s *Store) ReplaceAllProducts(list []domain.Product) {
	s.mu.Lock()
	s.products.replaceAll(list, func(p domain.Product) string { return p.ID })
	s.mu.Unlock()
	s.notify(Products)
}

// UpsertProduct inserts or replaces a single product by id
func (s *Store) UpsertProduct(p domain.Product) {
	s.mu.Lock()
	s.products.upsert(p.ID, p)
	s.mu.Unlock()
	s.notify(Products)
}

// RemoveProduct deletes a product by id
func (s *Store) RemoveProduct(id string) {
	s.mu.Lock()
	removed := s.products.remove(id)
	s.mu.Unlock()
	if removed {
		s.notify(Products)
	}
}

// Products returns the product snapshot in insertion order
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.list()
}

// ProductByID returns the cached product with the given id
func (s *Store) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.get(id)
}

// ReplaceAllCategories atomically replaces the full category snapshot
func (s *Store) ReplaceAllCategories(list []domain.Category) {
	s.mu.Lock()
	s.categories.replaceAll(list, func(c domain.Category) string { return c.ID })
	s.mu.Unlock()
	s.notify(Categories)
}

// UpsertCategory inserts or replaces a single category by id
func (s *Store) UpsertCategory(c domain.Category) {
	s.mu.Lock()
	s.categories.upsert(c.ID, c)
	s.mu.Unlock()
	s.notify(Categories)
}

// RemoveCategory deletes a category by id
func (s *Store) RemoveCategory(id string) {
	s.mu.Lock()
	removed := s.categories.remove(id)
	s.mu.Unlock()
	if removed {
		s.notify(Categories)
	}
}

// Categories returns the category snapshot in insertion order
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.list()
}

// CategoryByID returns the cached category with the given id
func (s *Store) CategoryByID(id string) (domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.get(id)
}

// ReplaceAllTransactions atomically replaces the full transaction snapshot
func (s *Store) ReplaceAllTransactions(list []domain.Transaction) {
	s.mu.Lock()
	s.transactions.replaceAll(list, func(t domain.Transaction) string { return t.ID })
	s.mu.Unlock()
	s.notify(Transactions)
}

// UpsertTransaction inserts or replaces a single transaction by id
func (s *Store) UpsertTransaction(t domain.Transaction) {
	s.mu.Lock()
	s.transactions.upsert(t.ID, t)
	s.mu.Unlock()
	s.notify(Transactions)
}

// RemoveTransaction deletes a transaction by id
func (s *Store) RemoveTransaction(id string) {
	s.mu.Lock()
	removed := s.transactions.remove(id)
	s.mu.Unlock()
	if removed {
		s.notify(Transactions)
	}
}

// Transactions returns the transaction snapshot in insertion order
func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.list()
}

// TransactionByID returns the cached transaction with the given id
func (s *Store) TransactionByID(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.get(id)
}

// RecomputeCategoryProductCounts rewrites every category's ProductCount
// as the sum of quantities of the products referencing it. Pure function
// of the current product and category mappings; idempotent. The server
// value is not trusted in isolation.
func (s *Store) RecomputeCategoryProductCounts() {
	s.mu.Lock()
	sums := make(map[string]int, len(s.categories.items))
	for _, p := range s.products.items {
		sums[p.Category.ID] += p.Quantity
	}
	changed := false
	for id, c := range s.categories.items {
		if count := sums[id]; c.ProductCount != count {
			c.ProductCount = count
			s.categories.items[id] = c
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify(Categories)
	}
}

// RefreshProductCategories refreshes the category snapshot embedded in
// each product from the current category set
func (s *Store) RefreshProductCategories() {
	s.mu.Lock()
	changed := false
	for id, p := range s.products.items {
		c, ok := s.categories.get(p.Category.ID)
		if !ok || p.Category.Name == c.Name {
			continue
		}
		p.Category.Name = c.Name
		s.products.items[id] = p
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.notify(Products)
	}
}

// Len returns the number of cached entries for a resource
func (s *Store) Len(resource Resource) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch resource {
	case Products:
		return len(s.products.items)
	case Categories:
		return len(s.categories.items)
	case Transactions:
		return len(s.transactions.items)
	}
	return 0
}
