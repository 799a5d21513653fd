package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the panel's collectors.
	Registry = prometheus.NewRegistry()

	reconcilerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coolify_admin",
			Subsystem: "reconciler",
			Name:      "runs_total",
			Help:      "Total number of subscription reconciler runs.",
		},
		[]string{"result"},
	)

	reconcilerItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coolify_admin",
			Subsystem: "reconciler",
			Name:      "items_total",
			Help:      "Subscriptions processed by the reconciler, by outcome.",
		},
		[]string{"outcome"},
	)

	reconcilerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coolify_admin",
			Subsystem: "reconciler",
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciler runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
	)

	coolifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coolify_admin",
			Subsystem: "coolify",
			Name:      "requests_total",
			Help:      "Requests sent to the Coolify API.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	Registry.MustRegister(
		reconcilerRuns,
		reconcilerItems,
		reconcilerDuration,
		coolifyRequests,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordReconcilerRun records one reconciler run. result is "ok", "error" or
// "skipped".
func RecordReconcilerRun(result string, paused, resumed, failed int, took time.Duration) {
	reconcilerRuns.WithLabelValues(result).Inc()
	reconcilerItems.WithLabelValues("paused").Add(float64(paused))
	reconcilerItems.WithLabelValues("resumed").Add(float64(resumed))
	reconcilerItems.WithLabelValues("failed").Add(float64(failed))
	if result != "skipped" {
		reconcilerDuration.Observe(took.Seconds())
	}
}

// RecordCoolifyRequest counts a Coolify call. status 0 means the request never
// got a response.
func RecordCoolifyRequest(method string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	coolifyRequests.WithLabelValues(method, label).Inc()
}
