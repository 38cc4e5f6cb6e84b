// internal/metrics/metrics.go
// Prometheus instrumentation for the hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_active_connections",
		Help: "Number of authenticated WebSocket connections.",
	})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_auth_attempts_total",
		Help: "Handshake authentication attempts by result.",
	}, []string{"result"})

	eventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_events_delivered_total",
		Help: "Events delivered to client channels by event type.",
	}, []string{"type"})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_events_dropped_total",
		Help: "Events dropped due to closed or backlogged client channels.",
	})

	sweeperEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_sweeper_evictions_total",
		Help: "Connections evicted by the liveness sweeper.",
	})
)

func ConnectionOpened() { activeConnections.Inc() }
func ConnectionClosed() { activeConnections.Dec() }

func RecordAuthAttempt(success bool) {
	if success {
		authAttempts.WithLabelValues("success").Inc()
	} else {
		authAttempts.WithLabelValues("failure").Inc()
	}
}

func RecordDelivery(eventType string, n int) {
	if n > 0 {
		eventsDelivered.WithLabelValues(eventType).Add(float64(n))
	}
}

func RecordDrop()     { eventsDropped.Inc() }
func RecordEviction() { sweeperEvictions.Inc() }
