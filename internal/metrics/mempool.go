package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ringscope/ringscope-backend/internal/model"
)

var (
	mempoolRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "mempool",
		Name:      "refresh_total",
		Help:      "Count of transaction pool refreshes.",
	}, []string{"network", "status"})

	mempoolRefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "mempool",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of one transaction pool refresh.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	mempoolSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringscope",
		Subsystem: "mempool",
		Name:      "size",
		Help:      "Transactions observed in the pool at the last refresh.",
	}, []string{"network"})
)

// Mempool tracks metrics for the transaction pool watcher.
type Mempool struct {
	network model.Network
}

// NewMempool constructs a Mempool collector.
func NewMempool(network model.Network) *Mempool {
	if network == "" {
		network = "unknown"
	}
	return &Mempool{network: network}
}

// ObserveRefresh records one pool refresh with its duration and size.
func (m Mempool) ObserveRefresh(err error, size int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	mempoolRefreshTotal.WithLabelValues(string(m.network), status).Inc()
	mempoolRefreshDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		mempoolSize.WithLabelValues(string(m.network)).Set(float64(size))
	}
}
