package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ringscope/ringscope-backend/internal/model"
)

var (
	reorgDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "reorg",
		Name:      "detected_total",
		Help:      "Count of detected chain divergences.",
	}, []string{"network"})

	reorgHealTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "reorg",
		Name:      "heal_total",
		Help:      "Count of heal attempts.",
	}, []string{"network", "status"})

	reorgHealDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "reorg",
		Name:      "heal_duration_seconds",
		Help:      "Duration of a heal pass from divergence to rewound checkpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	reorgDepth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "reorg",
		Name:      "depth",
		Help:      "Number of blocks rewound per healed divergence.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"network"})

	reorgState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringscope",
		Subsystem: "reorg",
		Name:      "state",
		Help:      "Current sentinel state: 0 following, 1 diverged, 2 healing.",
	}, []string{"network"})
)

// Reorg tracks metrics for divergence detection and healing.
type Reorg struct {
	network model.Network
}

// NewReorg constructs a Reorg collector.
func NewReorg(network model.Network) *Reorg {
	if network == "" {
		network = "unknown"
	}
	return &Reorg{network: network}
}

// ObserveDetected counts one detected divergence.
func (m Reorg) ObserveDetected() {
	reorgDetectedTotal.WithLabelValues(string(m.network)).Inc()
}

// ObserveHeal records one heal attempt with its duration and rewound depth.
func (m Reorg) ObserveHeal(err error, depth int64, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	reorgHealTotal.WithLabelValues(string(m.network), status).Inc()
	reorgHealDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		reorgDepth.WithLabelValues(string(m.network)).Observe(float64(depth))
	}
}

// SetState publishes the sentinel state.
func (m Reorg) SetState(state int) {
	reorgState.WithLabelValues(string(m.network)).Set(float64(state))
}
