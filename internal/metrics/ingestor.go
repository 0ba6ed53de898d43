// Package metrics exposes Prometheus collectors for the ingestion
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ringscope/ringscope-backend/internal/model"
)

var (
	ingestBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "process_batch_total",
		Help:      "Count of scheduled height batches processed.",
	}, []string{"network", "status"})

	ingestBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "process_batch_duration_seconds",
		Help:      "Duration of processing one scheduled height batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	ingestBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "process_batch_size",
		Help:      "Number of heights per scheduled batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"network"})

	ingestBlockLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "block_commit_latency_seconds",
		Help:      "End-to-end latency from scheduling a height to its durable commit.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"network", "status"})

	ingestQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "queue_depth",
		Help:      "Buffered items per pipeline stage.",
	}, []string{"network", "stage"})

	ingestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "ingestor",
		Name:      "errors_total",
		Help:      "Count of pipeline errors by kind.",
	}, []string{"network", "kind"})
)

// Ingestor tracks metrics for the ingestion pipeline.
type Ingestor struct {
	network model.Network
}

// NewIngestor constructs an Ingestor collector.
func NewIngestor(network model.Network) *Ingestor {
	if network == "" {
		network = "unknown"
	}
	return &Ingestor{network: network}
}

// ObserveBatch records processing of one scheduled height batch.
func (m Ingestor) ObserveBatch(err error, heights int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestBatchTotal.WithLabelValues(string(m.network), status).Inc()
	ingestBatchDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	ingestBatchSize.WithLabelValues(string(m.network)).Observe(float64(heights))
}

// ObserveBlockCommit records the end-to-end latency of one block commit.
func (m Ingestor) ObserveBlockCommit(err error, scheduledAt time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestBlockLatency.WithLabelValues(string(m.network), status).
		Observe(time.Since(scheduledAt).Seconds())
}

// SetQueueDepth publishes the buffered item count of a pipeline stage.
func (m Ingestor) SetQueueDepth(stage string, depth int) {
	ingestQueueDepth.WithLabelValues(string(m.network), stage).Set(float64(depth))
}

// ObserveError counts one pipeline error of the given kind.
func (m Ingestor) ObserveError(kind string) {
	ingestErrorsTotal.WithLabelValues(string(m.network), kind).Inc()
}
