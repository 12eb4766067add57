package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex(DefaultLockShards)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("shared-key")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestZeroShardsFallsBackToDefault(t *testing.T) {
	m := NewKeyedMutex(0)

	unlock := m.Lock("any")
	unlock()
	assert.Len(t, m.shards, DefaultLockShards)
}

func TestDistinctKeysDoNotDeadlock(t *testing.T) {
	m := NewKeyedMutex(4)

	unlockA := m.Lock("alpha")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		// Probe keys until one lands on a different shard.
		for _, key := range []string{"beta", "gamma", "delta", "epsilon", "zeta"} {
			if m.index(key) != m.index("alpha") {
				unlock := m.Lock(key)
				unlock()
				break
			}
		}
		close(done)
	}()
	<-done
}
