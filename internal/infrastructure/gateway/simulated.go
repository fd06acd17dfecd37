// Package gateway provides payment.Gateway implementations: a latency
// simulator for dev/test and a resty-backed client for a real charge API.
package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Simulated mimics a slow external processor: it blocks for a fixed latency
// and then approves with the configured probability. A success rate of 1
// reproduces the reference gateway that always approves.
type Simulated struct {
	mu          sync.Mutex
	random      *rand.Rand
	latency     time.Duration
	successRate float64
}

func NewSimulated(latency time.Duration, successRate float64) *Simulated {
	return &Simulated{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		latency:     latency,
		successRate: successRate,
	}
}

func (g *Simulated) Charge(ctx context.Context, orderID string, amount decimal.Decimal, method payment.Method) (bool, error) {
	_ = orderID
	_ = amount
	_ = method

	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.random.Float64() <= g.successRate, nil
}
