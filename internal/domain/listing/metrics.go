package listing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "zighang_ingest"

// Prometheus metrics for the ingestion loop.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "pages_fetched_total",
		Help:      "Pages fetched successfully from the remote API",
	})

	fetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "fetch_failures_total",
		Help:      "Page fetches that failed",
	})

	upsertFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "upsert_failures_total",
		Help:      "Page batches rejected by the store",
	})

	rowsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rows_upserted_total",
		Help:      "Rows reported as affected by the store",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "runs_total",
		Help:      "Runs by outcome (completed, aborted, failed)",
	}, []string{"outcome"})

	runDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of finished runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)
