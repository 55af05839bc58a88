package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Business metrics
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_messages_sent_total",
			Help: "Total messages persisted",
		},
		[]string{"room_kind"}, // "direct", "listing" or "support"
	)

	Broadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_ws_broadcasts_total",
			Help: "Total room broadcasts",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_ws_connections",
			Help: "Currently open WebSocket connections",
		},
	)
)
