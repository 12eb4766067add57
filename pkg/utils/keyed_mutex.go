// Package utils provides small shared helpers for the AI Gateway.
package utils

import (
	"hash/fnv"
	"sync"
)

// DefaultLockShards is the stripe count used by the governance stores.
const DefaultLockShards = 64

// KeyedMutex provides striped per-key locking so check-then-increment
// sequences on a shared counter store are indivisible per key without a
// single global lock serializing unrelated users.
type KeyedMutex struct {
	shards []sync.Mutex
}

// NewKeyedMutex creates a striped mutex with the given shard count.
func NewKeyedMutex(shards int) *KeyedMutex {
	if shards <= 0 {
		shards = DefaultLockShards
	}
	return &KeyedMutex{shards: make([]sync.Mutex, shards)}
}

// Lock locks the shard owning key and returns its unlock function.
func (m *KeyedMutex) Lock(key string) func() {
	shard := &m.shards[m.index(key)]
	shard.Lock()
	return shard.Unlock
}

func (m *KeyedMutex) index(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % uint32(len(m.shards))
}
