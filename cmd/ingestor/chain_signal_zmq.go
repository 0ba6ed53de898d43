//go:build zmq

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// startChainSignals subscribes to monerod's zmq-pub endpoint and
// fans the raw_block and raw_tx topics into wakeup channels.
func startChainSignals(ctx context.Context, addr string, logger *zap.Logger) (<-chan struct{}, <-chan struct{}, error) {
	if addr == "" {
		return nil, nil, nil
	}

	sub, err := newSubscriber(addr, "raw_block", "raw_tx")
	if err != nil {
		return nil, nil, fmt.Errorf("connect zmq: %w", err)
	}

	blockNotify := make(chan struct{}, 1)
	txNotify := make(chan struct{}, 1)

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgParts, err := sub.RecvMessageBytes(0)
			if err != nil {
				logger.Warn("zmq recv failed", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(msgParts) < 1 {
				continue
			}

			topic := string(msgParts[0])
			switch {
			case strings.HasPrefix(topic, "raw_block"):
				select {
				case blockNotify <- struct{}{}:
				default:
				}
			case strings.HasPrefix(topic, "raw_tx"):
				select {
				case txNotify <- struct{}{}:
				default:
				}
			}
		}
	}()

	return blockNotify, txNotify, nil
}

func newSubscriber(addr string, topics ...string) (*zmq4.Socket, error) {
	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, err
	}

	for _, topic := range topics {
		if err := sub.SetSubscribe(topic); err != nil {
			sub.Close()
			return nil, err
		}
	}

	if err := sub.Connect(addr); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}
