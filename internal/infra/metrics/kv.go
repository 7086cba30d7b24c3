package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(kvRequestsTotal, kvFailoversTotal) }

var kvRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kv_requests_total",
		Help: "Key/value operations served, labeled by backend and operation.",
	},
	[]string{"backend", "op"}, // e.g., backend="redis", op="incr"
)

var kvFailoversTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kv_failovers_total",
		Help: "Operations that fell back to the in-process store because the shared cache was unreachable.",
	},
	[]string{"op"},
)

func IncKVRequest(backend, op string) {
	kvRequestsTotal.WithLabelValues(norm(backend), norm(op)).Inc()
}

func IncKVFailover(op string) {
	kvFailoversTotal.WithLabelValues(norm(op)).Inc()
}
