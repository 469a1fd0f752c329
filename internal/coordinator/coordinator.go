package coordinator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/credotech/inventory-console/internal/api"
	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/metrics"
	"github.com/credotech/inventory-console/pkg/logger"
)

// RemoteAPI is the slice of the resource client the coordinator needs
type RemoteAPI interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, in api.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in api.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, in api.TransactionInput) (*domain.Transaction, error)
	ClearTransactions(ctx context.Context) error
}

// ErrNoTransactions is returned by ClearTransactions when the cached
// history is already empty; no network call is made.
var ErrNoTransactions = fmt.Errorf("no transactions to clear")

// PartialFailureError reports a confirmed transaction whose dependent
// product-quantity patch failed. The transaction record exists on the
// server but the quantity was not adjusted; the inconsistency is
// surfaced rather than hidden.
type PartialFailureError struct {
	TransactionID string
	ProductID     string
	Err           error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("transaction %s recorded but product %s quantity was not adjusted: %v",
		e.TransactionID, e.ProductID, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// Coordinator wraps create/update/delete operations. Every mutation
// reconciles the local cache from the server's returned representation,
// never from the locally constructed payload.
type Coordinator struct {
	api    RemoteAPI
	store  *cache.Store
	tracer trace.Tracer
}

// New creates a new mutation coordinator
func New(remote RemoteAPI, store *cache.Store) *Coordinator {
	return &Coordinator{
		api:    remote,
		store:  store,
		tracer: otel.Tracer("coordinator"),
	}
}

// CreateProduct creates a product and reconciles the cache
func (c *Coordinator) CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.create_product")
	defer span.End()

	created, err := c.api.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	c.store.UpsertProduct(*created)
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Products), "create").Inc()
	return created, nil
}

// UpdateProduct updates a product and reconciles the cache
func (c *Coordinator) UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.update_product")
	defer span.End()

	updated, err := c.api.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.store.UpsertProduct(*updated)
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Products), "update").Inc()
	return updated, nil
}

// DeleteProduct deletes a product and reconciles the cache
func (c *Coordinator) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.delete_product")
	defer span.End()

	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.store.RemoveProduct(id)
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Products), "delete").Inc()
	return nil
}

// CreateCategory creates a category and reconciles the cache
func (c *Coordinator) CreateCategory(ctx context.Context, in api.CategoryInput) (*domain.Category, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.create_category")
	defer span.End()

	created, err := c.api.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	c.store.UpsertCategory(*created)
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Categories), "create").Inc()
	return created, nil
}

// UpdateCategory updates a category, reconciles the cache and refreshes
// the category snapshots embedded in cached products
func (c *Coordinator) UpdateCategory(ctx context.Context, id string, in api.CategoryInput) (*domain.Category, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.update_category")
	defer span.End()

	updated, err := c.api.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.store.UpsertCategory(*updated)
	c.store.RefreshProductCategories()
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Categories), "update").Inc()
	return updated, nil
}

// DeleteCategory deletes a category and reconciles the cache
func (c *Coordinator) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.delete_category")
	defer span.End()

	if err := c.api.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.store.RemoveCategory(id)
	c.store.RecomputeCategoryProductCounts()
	metrics.Mutations.WithLabelValues(string(cache.Categories), "delete").Inc()
	return nil
}

// CreateTransaction creates a stock transaction and then adjusts the
// referenced product's quantity. The two steps are sequential, not
// atomic: when the quantity patch fails after the transaction was
// confirmed, the created transaction is returned together with a
// *PartialFailureError and the inconsistent state is left standing.
//
// Before submission a client-side guard rejects a stock-out exceeding
// the last-known cached quantity. The guard is advisory; the server
// stays authoritative.
func (c *Coordinator) CreateTransaction(ctx context.Context, in api.TransactionInput) (*domain.Transaction, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.create_transaction",
		trace.WithAttributes(
			attribute.String("transaction.type", string(in.Type)),
			attribute.String("product.id", in.ProductID),
			attribute.Int("transaction.quantity", in.Quantity),
		),
	)
	defer span.End()

	if in.Type == domain.StockOut {
		if product, ok := c.store.ProductByID(in.ProductID); ok {
			if err := domain.CheckStockOut(&product, in.Quantity); err != nil {
				logger.Warn(ctx).
					Str("product", product.Name).
					Int("requested", in.Quantity).
					Int("available", product.Quantity).
					Msg("Stock-out rejected by client-side guard")
				return nil, err
			}
		}
	}

	created, err := c.api.CreateTransaction(ctx, in)
	if err != nil {
		return nil, err
	}
	c.store.UpsertTransaction(*created)
	metrics.Mutations.WithLabelValues(string(cache.Transactions), "create").Inc()

	product, err := c.api.GetProduct(ctx, created.Product.ID)
	if err != nil {
		return created, &PartialFailureError{
			TransactionID: created.ID,
			ProductID:     created.Product.ID,
			Err:           err,
		}
	}

	payload := api.ProductInputFrom(product)
	if created.Type == domain.StockIn {
		payload.Quantity = product.Quantity + created.Quantity
	} else {
		payload.Quantity = product.Quantity - created.Quantity
	}

	updated, err := c.api.UpdateProduct(ctx, product.ID, payload)
	if err != nil {
		return created, &PartialFailureError{
			TransactionID: created.ID,
			ProductID:     product.ID,
			Err:           err,
		}
	}
	c.store.UpsertProduct(*updated)
	c.store.RecomputeCategoryProductCounts()

	logger.Info(ctx).
		Str("transaction_id", created.ID).
		Str("product_id", updated.ID).
		Int("quantity", updated.Quantity).
		Msg("Product quantity adjusted")

	return created, nil
}

// ClearTransactions deletes the whole transaction history. Refused
// locally when the cached list is already empty.
func (c *Coordinator) ClearTransactions(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.clear_transactions")
	defer span.End()

	if c.store.Len(cache.Transactions) == 0 {
		return ErrNoTransactions
	}
	if err := c.api.ClearTransactions(ctx); err != nil {
		return err
	}
	c.store.ReplaceAllTransactions(nil)
	metrics.Mutations.WithLabelValues(string(cache.Transactions), "clear").Inc()
	return nil
}
