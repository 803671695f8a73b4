package realtime

import "github.com/prometheus/client_golang/prometheus"

// Delivery outcomes recorded on ws_events_total.
const (
	outcomeDelivered = "delivered"
	outcomeOffline   = "offline"
	outcomeFailed    = "failed"
	outcomeRelayed   = "relayed"
)

var (
	// wsActive gauges live registry entries on this instance.
	wsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Current number of registered websocket connections.",
		},
	)

	// wsEvents counts outbound events by kind (new_skill, new_request,
	// request_response, chat_message) and delivery outcome.
	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Total number of realtime events by kind and delivery outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(wsActive, wsEvents)
}
