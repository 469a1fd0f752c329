package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LiveReconnects counts reconnect attempts scheduled after a
	// non-caller-initiated close of the live channel
	LiveReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_live_reconnects_total",
		Help: "Number of live channel reconnect attempts",
	})

	// LiveMessages counts dispatched live messages by type
	LiveMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_live_messages_total",
		Help: "Number of handled live messages by type",
	}, []string{"type"})

	// Refreshes counts full snapshot re-fetches by resource
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_resource_refreshes_total",
		Help: "Number of full snapshot refreshes by resource",
	}, []string{"resource"})

	// Mutations counts create/update/delete round trips by resource
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_mutations_total",
		Help: "Number of mutation round trips by resource and operation",
	}, []string{"resource", "op"})

	// CacheEntries tracks the number of cached entries per resource
	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "console_cache_entries",
		Help: "Number of entries in the local cache by resource",
	}, []string{"resource"})
)
