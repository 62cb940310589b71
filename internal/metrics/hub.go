package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	onlineConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "noteboard",
			Name:      "online_connections",
			Help:      "Number of live sync connections, counting every tab.",
		},
	)

	onlineAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "noteboard",
			Name:      "online_accounts",
			Help:      "Number of distinct account names currently online.",
		},
	)

	// CellWrites counts accepted cell writes by entry path.
	CellWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "noteboard",
			Name:      "cell_writes_total",
			Help:      "Total accepted cell writes.",
		},
		[]string{"transport"},
	)
)

// HubCounts is satisfied by *hub.Hub.
type HubCounts interface {
	ConnectionCount() int
	AccountCount() int
}

// ObserveHub refreshes the presence gauges after a join or leave.
func ObserveHub(h HubCounts) {
	onlineConnections.Set(float64(h.ConnectionCount()))
	onlineAccounts.Set(float64(h.AccountCount()))
}
