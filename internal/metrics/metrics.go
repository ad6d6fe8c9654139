package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecomputeRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamfund", Name: "recompute_runs_total", Help: "Full balance recomputations by triggering operation",
	}, []string{"op"})
	RecomputeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamfund", Name: "recompute_errors_total", Help: "Failed mutations/recomputations by operation",
	}, []string{"op"})
	RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "teamfund", Name: "recompute_duration_seconds", Help: "Mutation + full recompute transaction latency",
		Buckets: prometheus.DefBuckets,
	})
	SessionsFolded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamfund", Name: "sessions_folded", Help: "Sessions replayed by the last successful recompute",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamfund", Name: "http_requests_total", Help: "HTTP requests by route and status",
	}, []string{"route", "status"})
	NotifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "teamfund", Name: "notify_errors_total", Help: "Failed Telegram balance notifications",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "teamfund", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(RecomputeRuns, RecomputeErrors, RecomputeDuration, SessionsFolded, HTTPRequests, NotifyErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveRecompute — итог одной изменяющей операции.
func ObserveRecompute(op string, d time.Duration, sessions int, err error) {
	if err != nil {
		RecomputeErrors.WithLabelValues(op).Inc()
		return
	}
	RecomputeRuns.WithLabelValues(op).Inc()
	RecomputeDuration.Observe(d.Seconds())
	SessionsFolded.Set(float64(sessions))
}
