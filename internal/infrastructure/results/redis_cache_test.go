package results

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewRedisCacheWithClient(client, logger.NewNoopLogger()), server
}

func sampleResult() *models.CachedResult {
	return &models.CachedResult{
		TxHash:       "0xdeadbeef",
		QualityScore: 85,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set(context.Background(), "sub-1", sampleResult())

	got, found := cache.Get(context.Background(), "sub-1")
	require.True(t, found)
	assert.Equal(t, "0xdeadbeef", got.TxHash)
	assert.InDelta(t, 85, got.QualityScore, 1e-9)
}

func TestGetMissingIsAMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, found := cache.Get(context.Background(), "sub-absent")
	assert.False(t, found)
}

func TestEntryExpires(t *testing.T) {
	cache, server := newTestCache(t)

	cache.Set(context.Background(), "sub-1", sampleResult())
	server.FastForward(constants.ResultsCacheTTL + time.Minute)

	_, found := cache.Get(context.Background(), "sub-1")
	assert.False(t, found)
}

func TestDeleteForcesReprocessing(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set(context.Background(), "sub-1", sampleResult())
	cache.Delete(context.Background(), "sub-1")

	_, found := cache.Get(context.Background(), "sub-1")
	assert.False(t, found)
}

func TestBackendOutageDegradesToMiss(t *testing.T) {
	cache, server := newTestCache(t)

	cache.Set(context.Background(), "sub-1", sampleResult())
	server.Close()

	_, found := cache.Get(context.Background(), "sub-1")
	assert.False(t, found)
}

func TestCorruptEntryDegradesToMiss(t *testing.T) {
	cache, server := newTestCache(t)

	require.NoError(t, server.Set("ai-results:sub-1", "not json"))

	_, found := cache.Get(context.Background(), "sub-1")
	assert.False(t, found)
}

func TestPing(t *testing.T) {
	cache, server := newTestCache(t)

	assert.NoError(t, cache.Ping(context.Background()))
	server.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
