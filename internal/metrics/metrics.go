package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection Metrics
var (
	// ConnectionsCurrent tracks currently kept client connections
	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections_current",
			Help: "Number of currently connected clients",
		},
	)

	// ConnectionsTotal tracks accepted client connections
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_connections_total",
			Help: "Total accepted client connections",
		},
	)

	// ConnectionDuration tracks how long clients stay connected
	ConnectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_connection_duration_seconds",
			Help:    "Client connection lifetime in seconds",
			Buckets: []float64{1, 10, 60, 300, 1800, 3600, 21600, 86400},
		},
	)

	// AcceptErrors tracks failed accepts on the listener
	AcceptErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_accept_errors_total",
			Help: "Total listener accept errors",
		},
	)
)

// Broadcast Metrics
var (
	// LinesReceived tracks lines read from clients
	LinesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_lines_received_total",
			Help: "Total lines received from clients",
		},
	)

	// LinesDelivered tracks lines written back to clients
	LinesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_lines_delivered_total",
			Help: "Total lines written to clients",
		},
	)

	// BroadcastErrors tracks lines the hub refused to publish
	BroadcastErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_broadcast_errors_total",
			Help: "Total failed publishes into the hub",
		},
	)

	// LagSkipped tracks lines dropped for lagging subscribers
	LagSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_lag_skipped_lines_total",
			Help: "Total lines dropped for subscribers that fell behind",
		},
	)

	// WriteErrors tracks failed writes to clients by kind (timeout/closed)
	WriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_write_errors_total",
			Help: "Total failed writes to clients by kind",
		},
		[]string{"kind"},
	)
)
