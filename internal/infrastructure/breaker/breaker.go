// Package breaker provides a consecutive-failure circuit breaker for a
// downstream integration. One breaker instance guards one integration;
// its state is shared across all users of that integration.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Breaker tracks consecutive failures of a protected call and opens to
// fail fast once they reach the threshold. After the cooldown has elapsed
// since the last failure the breaker resets itself closed and the next
// call gets a chance to prove the downstream healthy again.
type Breaker struct {
	mu          sync.Mutex
	name        string
	failures    int
	threshold   int
	cooldown    time.Duration
	lastFailure time.Time
	logger      logger.Logger

	now func() time.Time
}

// New creates a circuit breaker for the named integration.
func New(name string, threshold int, cooldown time.Duration, log logger.Logger) *Breaker {
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		logger:    log.WithComponent("breaker"),
		now:       time.Now,
	}
}

// Open reports whether calls must fail fast. Evaluating Open after the
// cooldown has elapsed performs the OPEN to CLOSED transition by
// resetting the failure count to zero.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return false
	}

	if b.now().Sub(b.lastFailure) > b.cooldown {
		b.failures = 0
		b.logger.Info(context.Background(), "circuit breaker cooldown elapsed, closing",
			logger.String("integration", b.name))
		return false
	}

	return true
}

// RecordFailure increments the consecutive-failure count and stamps the
// failure time. Reaching the threshold opens the breaker.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.failures == b.threshold {
		b.logger.Warn(context.Background(), "circuit breaker opened",
			logger.String("integration", b.name),
			logger.Int("failures", b.failures),
			logger.Duration("cooldown", b.cooldown))
	}
}

// RecordSuccess resets the consecutive-failure count to zero.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// Failures reports the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
