//go:build !zmq

package main

import (
	"context"

	"go.uber.org/zap"
)

// Without zmq support the pipeline falls back to timer-driven polls.
func startChainSignals(_ context.Context, addr string, logger *zap.Logger) (<-chan struct{}, <-chan struct{}, error) {
	if addr != "" {
		logger.Warn("built without zmq support, ignoring zmq address", zap.String("addr", addr))
	}
	return nil, nil, nil
}
