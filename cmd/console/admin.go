package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/credotech/inventory-console/internal/api"
	"github.com/credotech/inventory-console/internal/auth"
	"github.com/credotech/inventory-console/internal/cache"
	"github.com/credotech/inventory-console/internal/coordinator"
	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/live"
	"github.com/credotech/inventory-console/internal/stats"
	"github.com/credotech/inventory-console/pkg/logger"
)

// adminServer exposes the console's read surface (health, metrics,
// cached snapshots, dashboard) and a transaction entry point that
// drives the mutation coordinator
type adminServer struct {
	store   *cache.Store
	channel *live.Channel
	engine  *stats.Engine
	session *auth.Session
	mutator *coordinator.Coordinator
}

func newAdminServer(store *cache.Store, channel *live.Channel, engine *stats.Engine, session *auth.Session, mutator *coordinator.Coordinator) *adminServer {
	return &adminServer{
		store:   store,
		channel: channel,
		engine:  engine,
		session: session,
		mutator: mutator,
	}
}

// Start runs the admin HTTP server in the background
func (s *adminServer) Start(port string) *http.Server {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.HandleFunc("/dashboard", s.handleDashboard).Methods("GET")
	router.HandleFunc("/products", s.handleProducts).Methods("GET")
	router.HandleFunc("/categories", s.handleCategories).Methods("GET")
	router.HandleFunc("/transactions", s.handleTransactions).Methods("GET")
	router.HandleFunc("/transactions", s.handleCreateTransaction).Methods("POST")
	router.HandleFunc("/transactions", s.handleClearTransactions).Methods("DELETE")
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Logger.Info().
			Str("port", port).
			Str("metrics_endpoint", "/metrics").
			Msg("Admin server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start admin server")
		}
	}()

	return server
}

func (s *adminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"live":          s.channel.State().String(),
		"authenticated": s.session.IsAuthenticated(),
		"products":      s.store.Len(cache.Products),
		"categories":    s.store.Len(cache.Categories),
		"transactions":  s.store.Len(cache.Transactions),
	})
}

func (s *adminServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()
	writeJSON(w, http.StatusOK, s.engine.Refresh(r.Context()))
}

func (s *adminServer) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()
	products := domain.SearchProducts(s.store.Products(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, products)
}

func (s *adminServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()
	writeJSON(w, http.StatusOK, s.store.Categories())
}

func (s *adminServer) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()

	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Type: domain.TransactionType(q.Get("type")),
		Term: q.Get("q"),
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive end of day
			filter.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}

	writeJSON(w, http.StatusOK, domain.FilterTransactions(s.store.Transactions(), filter))
}

func (s *adminServer) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()

	var in api.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if in.AddedBy == "" {
		if user, ok := s.session.User(); ok {
			in.AddedBy = user.Name
		}
	}

	created, err := s.mutator.CreateTransaction(r.Context(), in)

	var insufficient *domain.InsufficientStockError
	var partial *coordinator.PartialFailureError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &partial):
		// Transaction exists server-side; report the inconsistency
		// instead of hiding it
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":       err.Error(),
			"transaction": created,
		})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *adminServer) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	s.session.Touch()

	err := s.mutator.ClearTransactions(r.Context())
	switch {
	case errors.Is(err, coordinator.ErrNoTransactions):
		writeJSON(w, http.StatusOK, map[string]string{"message": "no transactions to clear"})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "all transactions cleared"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
