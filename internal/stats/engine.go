package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/pkg/logger"
)

// BaselineAPI is the slice of the resource client the engine needs for
// the server-stored daily baseline
type BaselineAPI interface {
	InitialStats(ctx context.Context) (domain.DashboardStats, error)
	StoreInitialStats(ctx context.Context, stats domain.DashboardStats) error
	LastResetDate(ctx context.Context) (string, error)
	ResetDailyStats(ctx context.Context) error
}

// Engine recomputes the aggregate dashboard figures from the cache and
// expresses them as percentage change against the day's opening values
type Engine struct {
	api   BaselineAPI
	store *cache.Store
	now   func() time.Time
}

// NewEngine creates a new stats engine
func NewEngine(api BaselineAPI, store *cache.Store) *Engine {
	return &Engine{api: api, store: store, now: time.Now}
}

// PercentChange formats the change from previous to current with sign
// and two decimals. A zero previous value cannot be divided by: the
// change is pinned to +0% or +100%.
func PercentChange(previous, current int) string {
	if previous == 0 {
		if current == 0 {
			return "+0%"
		}
		return "+100%"
	}
	change := float64(current-previous) / float64(previous) * 100
	if change >= 0 {
		return fmt.Sprintf("+%.2f%%", change)
	}
	return fmt.Sprintf("%.2f%%", change)
}

// Snapshot derives the current totals from the cache
func (e *Engine) Snapshot() domain.DashboardStats {
	products := e.store.Products()

	totalStock := 0
	lowStock := 0
	for i := range products {
		totalStock += products[i].Quantity
		if products[i].LowStock() {
			lowStock++
		}
	}

	return domain.DashboardStats{
		TotalProducts:    len(products),
		TotalCategories:  len(e.store.Categories()),
		TotalStock:       totalStock,
		LowStockProducts: lowStock,
		ProductChange:    "+0%",
		CategoryChange:   "+0%",
		StockChange:      "+0%",
		LowStockChange:   "+0%",
	}
}

func (e *Engine) today() string {
	return e.now().UTC().Format("2006-01-02")
}

// isNewDay compares the server's last reset date against today (UTC).
// An unreadable reset date counts as a new day.
func (e *Engine) isNewDay(ctx context.Context) bool {
	lastReset, err := e.api.LastResetDate(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to fetch last reset date")
		return true
	}
	return lastReset != e.today()
}

// Refresh recomputes the dashboard stats. On a new calendar day the
// server baseline is reset before any change is computed, so changes
// are always relative to a same-day opening value. An empty baseline
// is seeded with the current snapshot. Baseline round-trip failures
// are logged and degrade to zero changes; they never fail the refresh.
func (e *Engine) Refresh(ctx context.Context) domain.DashboardStats {
	if e.isNewDay(ctx) {
		if err := e.api.ResetDailyStats(ctx); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to reset daily stats")
		}
	}

	baseline, err := e.api.InitialStats(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to fetch initial stats")
		baseline = domain.DashboardStats{}
	}

	current := e.Snapshot()

	if baseline.IsZero() {
		baseline = current
		if err := e.api.StoreInitialStats(ctx, baseline); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to store initial stats")
		}
	}

	current.ProductChange = PercentChange(baseline.TotalProducts, current.TotalProducts)
	current.CategoryChange = PercentChange(baseline.TotalCategories, current.TotalCategories)
	current.StockChange = PercentChange(baseline.TotalStock, current.TotalStock)
	current.LowStockChange = PercentChange(baseline.LowStockProducts, current.LowStockProducts)

	return current
}

// Run recomputes on every cache change and on a fixed interval until
// the context is cancelled, pushing each result to onUpdate
func (e *Engine) Run(ctx context.Context, interval time.Duration, onUpdate func(domain.DashboardStats)) {
	changes := make(chan struct{}, 1)
	e.store.Subscribe(func(cache.Resource) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-changes:
		}
		onUpdate(e.Refresh(ctx))
	}
}
