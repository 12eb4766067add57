package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

func newTestBreaker(at time.Time) *Breaker {
	b := New("chain", 3, 5*time.Minute, logger.NewNoopLogger())
	b.now = func() time.Time { return at }
	return b
}

func TestClosedUntilThreshold(t *testing.T) {
	b := newTestBreaker(time.Unix(1_700_000_000, 0))

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.Open())
	assert.Equal(t, 2, b.Failures())

	b.RecordFailure()
	assert.True(t, b.Open())
}

func TestSuccessResetsCount(t *testing.T) {
	b := newTestBreaker(time.Unix(1_700_000_000, 0))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	assert.Zero(t, b.Failures())

	// A fresh run of failures is needed to open.
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.Open())
}

func TestCooldownClosesBreaker(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	b := newTestBreaker(start)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.True(t, b.Open())

	t.Run("still open within cooldown", func(t *testing.T) {
		b.now = func() time.Time { return start.Add(4 * time.Minute) }
		assert.True(t, b.Open())
	})

	t.Run("closes after cooldown", func(t *testing.T) {
		b.now = func() time.Time { return start.Add(5*time.Minute + time.Second) }
		assert.False(t, b.Open())
		assert.Zero(t, b.Failures())
	})
}

func TestReopensAfterCooldownProbeFails(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	b := newTestBreaker(start)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}

	b.now = func() time.Time { return start.Add(6 * time.Minute) }
	assert.False(t, b.Open())

	// The probe after reset failed; the count rebuilds from zero.
	b.RecordFailure()
	assert.False(t, b.Open())
	assert.Equal(t, 1, b.Failures())
}

func TestConcurrentRecordersStayConsistent(t *testing.T) {
	b := newTestBreaker(time.Unix(1_700_000_000, 0))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, b.Failures())
	assert.True(t, b.Open())
}
