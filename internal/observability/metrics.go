package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain collectors. Label sets are bounded by the state, category and
// result enumerations.
var (
	// TransitionsTotal counts committed order transitions by target state.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_transitions_total",
			Help: "Total number of committed order state transitions.",
		},
		[]string{"to"},
	)

	// NotificationsTotal counts delivery attempts by category and outcome.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_notifications_total",
			Help: "Total number of notification delivery attempts.",
		},
		[]string{"category", "success"},
	)

	// WSConnections gauges open dashboard websocket connections.
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pedidos_ws_connections",
			Help: "Current number of open realtime websocket connections.",
		},
	)

	// IntakeTotal counts processed chat messages by result
	// (order, not_order, error).
	IntakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_intake_total",
			Help: "Total number of inbound chat messages processed.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(TransitionsTotal, NotificationsTotal, WSConnections, IntakeTotal)
}
