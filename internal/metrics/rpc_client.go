package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ringscope/ringscope-backend/internal/model"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "rpc_client",
		Name:      "operations_total",
		Help:      "Count of daemon RPC operations.",
	}, []string{"operation", "network", "status"})
	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringscope",
		Subsystem: "rpc_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of daemon RPC operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
	rpcRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ringscope",
		Subsystem: "rpc_client",
		Name:      "retries_total",
		Help:      "Count of retried daemon RPC attempts.",
	}, []string{"operation", "network"})
)

// RPCClient tracks metrics for calls to the chain daemon.
type RPCClient struct {
	network model.Network
}

// NewRPCClient constructs a metrics collector for daemon calls.
func NewRPCClient(network model.Network) *RPCClient {
	if network == "" {
		network = "unknown"
	}
	return &RPCClient{network: network}
}

// Observe records a single daemon call outcome and duration.
func (m RPCClient) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	rpcRequestsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	rpcRequestDuration.WithLabelValues(operation, string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveRetry records one retried attempt of a daemon call.
func (m RPCClient) ObserveRetry(operation string) {
	rpcRetriesTotal.WithLabelValues(operation, string(m.network)).Inc()
}
