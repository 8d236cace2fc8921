package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FanoutDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_deliveries_total",
			Help: "Realtime deliveries by event and result (ok, failed).",
		},
		[]string{"event", "result"},
	)
	FanoutRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_retries_total",
			Help: "Realtime publish attempts that were retried.",
		},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_cache_lookups_total",
			Help: "Post cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
	Toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_toggles_total",
			Help: "Interaction toggles by kind and resulting state.",
		},
		[]string{"kind", "active"},
	)
	HandlerResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_handler_results_total",
			Help: "API handler outcomes by handler and error kind (ok when none).",
		},
		[]string{"handler", "kind"},
	)
)

func init() {
	prometheus.MustRegister(FanoutDeliveries)
	prometheus.MustRegister(FanoutRetries)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(Toggles)
	prometheus.MustRegister(HandlerResults)
}
