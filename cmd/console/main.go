package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/credotech/inventory-console/internal/api"
	"github.com/credotech/inventory-console/internal/auth"
	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/config"
	"github.com/credotech/inventory-console/internal/coordinator"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/live"
	"github.com/credotech/inventory-console/internal/metrics"
	"github.com/credotech/inventory-console/internal/stats"
	"github.com/credotech/inventory-console/pkg/logger"
	"github.com/credotech/inventory-console/pkg/tracing"
)

func main() {
	cfg := config.Load()

	isDevelopment := cfg.Environment == "development"
	logger.Init(cfg.ServiceName, isDevelopment)
	logger.SetLevel(cfg.LogLevel)

	instanceID := uuid.New().String()
	logger.Logger = logger.Logger.With().Str("instance", instanceID).Logger()

	logger.Logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("live_url", cfg.LiveURL).
		Str("environment", cfg.Environment).
		Msg("Starting inventory console")

	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session: headless runs authenticate with a pre-issued token
	session := auth.NewSession(cfg.InactivityTimeout)
	session.OnLogout(cancel)
	if cfg.APIToken != "" {
		if auth.TokenExpired(cfg.APIToken) {
			logger.Logger.Fatal().Msg("Configured API token is expired")
		}
		session.Login(domain.User{Name: getEnv("CONSOLE_USER", "console")}, cfg.APIToken)
	}

	client := api.New(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
		Token:          session.Token,
		OnUnauthorized: session.HandleUnauthorized,
	})

	store := cache.New()
	store.Subscribe(func(resource cache.Resource) {
		metrics.CacheEntries.WithLabelValues(string(resource)).Set(float64(store.Len(resource)))
	})

	refresher := coordinator.NewRefresher(client, store)
	mutator := coordinator.New(client, store)

	// Initial snapshot before the live channel takes over
	if err := refresher.RefreshAll(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("Initial snapshot fetch incomplete")
	}

	header := http.Header{}
	header.Set("X-Client-ID", instanceID)
	transport := live.NewWebSocketTransport(cfg.LiveURL, header)
	channel := live.NewChannel(transport, cfg.ReconnectInterval)
	refresher.BindLive(channel)
	channel.Start(ctx)

	// Poll backstop against missed notifications
	go refresher.Run(ctx, cfg.PollInterval)

	engine := stats.NewEngine(client, store)
	go engine.Run(ctx, cfg.PollInterval, func(s domain.DashboardStats) {
		logger.Logger.Debug().
			Int("total_products", s.TotalProducts).
			Int("total_categories", s.TotalCategories).
			Int("total_stock", s.TotalStock).
			Int("low_stock_products", s.LowStockProducts).
			Str("stock_change", s.StockChange).
			Msg("Dashboard stats recomputed")
	})

	admin := newAdminServer(store, channel, engine, session, mutator)
	server := admin.Start(cfg.AdminPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Logger.Info().Msg("Shutting down console...")
	cancel()
	channel.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Admin server shutdown failed")
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
