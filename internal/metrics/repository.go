package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ringscope/ringscope-backend/internal/model"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "repository",
		Name:      "requests_total",
		Help:      "Count of repository queries.",
	}, []string{"operation", "network", "status"})

	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "repository",
		Name:      "request_duration_seconds",
		Help:      "Duration of repository queries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// Repository tracks metrics for repository calls.
type Repository struct {
	network model.Network
}

// NewRepository constructs a Repository collector.
func NewRepository(network model.Network) *Repository {
	if network == "" {
		network = "unknown"
	}
	return &Repository{network: network}
}

// Observe records a repository call with its duration and outcome.
func (m Repository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	repositoryRequestsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	repositoryRequestDuration.WithLabelValues(operation, string(m.network), status).
		Observe(time.Since(started).Seconds())
}
