// Package limiter provides the request gate shared by all upstream daemon
// calls.
package limiter

import (
	"context"
	"math"
	"sync"

	"go.uber.org/ratelimit"
)

// bootstrapRateMultiplier raises the request quota while catching up from
// genesis.
const bootstrapRateMultiplier = 2.5

// Gate meters upstream requests at a fixed credits-per-second rate. Every
// daemon call acquires credits before going out; no request bypasses it.
type Gate struct {
	mu sync.Mutex
	rl ratelimit.Limiter
}

// New builds a Gate for the given steady-state rate. Bootstrap selects the
// elevated catch-up profile.
func New(rps int, bootstrap bool) *Gate {
	return &Gate{rl: ratelimit.New(EffectiveRate(rps, bootstrap))}
}

// Acquire blocks until n request credits are available or the context is
// canceled.
func (g *Gate) Acquire(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.limiter().Take()
	}
	return ctx.Err()
}

// Reconfigure switches the gate to a new operating profile. This is an
// explicit operation, never driven per request.
func (g *Gate) Reconfigure(rps int, bootstrap bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rl = ratelimit.New(EffectiveRate(rps, bootstrap))
}

func (g *Gate) limiter() ratelimit.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rl
}

// EffectiveRate applies the bootstrap multiplier to the configured quota.
func EffectiveRate(rps int, bootstrap bool) int {
	if rps < 1 {
		rps = 1
	}
	if !bootstrap {
		return rps
	}
	return int(math.Ceil(float64(rps) * bootstrapRateMultiplier))
}

// EffectiveConcurrency widens the worker pool in bootstrap mode.
func EffectiveConcurrency(base int, bootstrap bool) int {
	if base < 1 {
		base = 1
	}
	if !bootstrap {
		return base
	}
	doubled := base * 2
	if padded := base + 4; padded > doubled {
		return padded
	}
	return doubled
}
