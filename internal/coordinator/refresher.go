package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/credotech/inventory-console/internal/api"
	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/live"
	"github.com/credotech/inventory-console/internal/metrics"
	"github.com/credotech/inventory-console/pkg/logger"
)

// SnapshotAPI is the slice of the resource client the refresher needs
type SnapshotAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, api.Pagination, error)
}

// Refresher re-pulls full snapshots into the cache. It serves both the
// targeted re-fetches triggered by live notifications and the
// low-frequency poll that backstops missed notifications. Competing
// refreshes are last-write-wins per resource.
type Refresher struct {
	api   SnapshotAPI
	store *cache.Store
}

// NewRefresher creates a new refresher
func NewRefresher(remote SnapshotAPI, store *cache.Store) *Refresher {
	return &Refresher{api: remote, store: store}
}

// RefreshProducts replaces the cached product snapshot
func (r *Refresher) RefreshProducts(ctx context.Context) error {
	products, err := r.api.ListProducts(ctx)
	if err != nil {
		return err
	}
	r.store.ReplaceAllProducts(products)
	r.store.RecomputeCategoryProductCounts()
	metrics.Refreshes.WithLabelValues(string(cache.Products)).Inc()
	return nil
}

// RefreshCategories replaces the cached category snapshot
func (r *Refresher) RefreshCategories(ctx context.Context) error {
	categories, err := r.api.ListCategories(ctx)
	if err != nil {
		return err
	}
	r.store.ReplaceAllCategories(categories)
	r.store.RefreshProductCategories()
	r.store.RecomputeCategoryProductCounts()
	metrics.Refreshes.WithLabelValues(string(cache.Categories)).Inc()
	return nil
}

// RefreshTransactions replaces the cached transaction snapshot
func (r *Refresher) RefreshTransactions(ctx context.Context) error {
	transactions, _, err := r.api.ListTransactions(ctx)
	if err != nil {
		return err
	}
	r.store.ReplaceAllTransactions(transactions)
	metrics.Refreshes.WithLabelValues(string(cache.Transactions)).Inc()
	return nil
}

// RefreshAll refreshes every resource, collecting errors
func (r *Refresher) RefreshAll(ctx context.Context) error {
	return errors.Join(
		r.RefreshProducts(ctx),
		r.RefreshCategories(ctx),
		r.RefreshTransactions(ctx),
	)
}

// Run polls full snapshots on a fixed interval until the context is
// cancelled. Errors are logged and the loop keeps going.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RefreshAll(ctx); err != nil {
				logger.Error(ctx).Err(err).Msg("Snapshot poll failed")
			}
		}
	}
}

// BindLive registers the live channel handlers that reconcile inbound
// notifications into the cache. Messages carrying an embedded list are
// applied directly; the rest trigger a targeted re-fetch.
func (r *Refresher) BindLive(ch *live.Channel) {
	refetchProducts := func(ctx context.Context, _ live.Envelope) {
		if err := r.RefreshProducts(ctx); err != nil {
			logger.Error(ctx).Err(err).Msg("Product re-fetch after live update failed")
		}
	}
	ch.RegisterHandler(live.MessageProductUpdated, refetchProducts)
	ch.RegisterHandler(live.MessageProductsUpdated, refetchProducts)

	ch.RegisterHandler(live.MessageCategoriesUpdated, func(ctx context.Context, _ live.Envelope) {
		if err := r.RefreshCategories(ctx); err != nil {
			logger.Error(ctx).Err(err).Msg("Category re-fetch after live update failed")
		}
	})

	ch.RegisterHandler(live.MessageCategoryUpdated, func(ctx context.Context, env live.Envelope) {
		if env.Categories == nil {
			if err := r.RefreshCategories(ctx); err != nil {
				logger.Error(ctx).Err(err).Msg("Category re-fetch after live update failed")
			}
			return
		}
		r.store.ReplaceAllCategories(env.Categories)
		r.store.RefreshProductCategories()
		r.store.RecomputeCategoryProductCounts()
	})

	ch.RegisterHandler(live.MessageTransactionUpdated, func(ctx context.Context, env live.Envelope) {
		if env.Transactions == nil {
			if err := r.RefreshTransactions(ctx); err != nil {
				logger.Error(ctx).Err(err).Msg("Transaction re-fetch after live update failed")
			}
			return
		}
		r.store.ReplaceAllTransactions(env.Transactions)
	})
}
