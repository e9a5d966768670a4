package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var ingestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_runs_total",
	Help: "Ingestion runs by outcome (ok, staged, bad_request, error)",
}, []string{"outcome"})

var chunksIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Total chunk rows written across all ingestion runs",
})

var embeddingBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embedding_batches_total",
	Help: "Total embedding endpoint calls",
})

var ingestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ingest_duration_seconds",
	Help:    "Wall time of ingestion runs",
	Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
})

func RecordIngestRun(outcome string, started time.Time) {
	ingestRunsTotal.WithLabelValues(outcome).Inc()
	ingestDuration.Observe(time.Since(started).Seconds())
}

func AddChunksIngested(n int) {
	chunksIngestedTotal.Add(float64(n))
}

func IncrementEmbeddingBatches() {
	embeddingBatchesTotal.Inc()
}

func RecordHTTPRequest(path string, status int) {
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
