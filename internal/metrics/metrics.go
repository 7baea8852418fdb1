// Package metrics provides Prometheus instrumentation for the dashboard
// client's refresh cycles, backend fetches and alert actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supplyshock_dashboard"

var (
	// RefreshCyclesTotal counts refresh cycles by outcome: rendered, failed or stale.
	RefreshCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		},
		[]string{"result"},
	)

	// RefreshDuration observes the wall time of a full fetch-all pass.
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of refresh cycles in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// FetchDuration observes backend request latency per resource.
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Backend fetch duration in seconds by resource.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// FetchFailuresTotal counts failed backend fetches per resource.
	FetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed backend fetches by resource.",
		},
		[]string{"resource"},
	)

	// AlertActionsTotal counts alert transitions by action and result.
	AlertActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_actions_total",
			Help:      "Alert acknowledge/resolve submissions by action and result.",
		},
		[]string{"action", "result"},
	)

	// WindowHours is the lookback window used by the latest cycle.
	WindowHours = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_hours",
			Help:      "Lookback window in hours used by the most recent refresh cycle.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RefreshCyclesTotal,
		RefreshDuration,
		FetchDuration,
		FetchFailuresTotal,
		AlertActionsTotal,
		WindowHours,
	)
}

// ObserveFetch records one backend call.
func ObserveFetch(resource string, started time.Time, err error) {
	FetchDuration.WithLabelValues(resource).Observe(time.Since(started).Seconds())
	if err != nil {
		FetchFailuresTotal.WithLabelValues(resource).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
