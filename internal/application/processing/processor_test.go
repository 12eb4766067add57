package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

type fakeChain struct {
	err   error
	calls int
}

func (f *fakeChain) SubmitResult(_ context.Context, submissionID string, qualityScore, confidence float64, _ string, passes bool) (*models.ChainResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.ChainResult{
		TxHash:             "0x" + submissionID,
		BlockNumber:        1,
		GasUsed:            1,
		Status:             "confirmed",
		SubmissionApproved: passes,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}

type fakeBreaker struct {
	open      bool
	failures  int
	successes int
}

func (f *fakeBreaker) Open() bool     { return f.open }
func (f *fakeBreaker) RecordFailure() { f.failures++ }
func (f *fakeBreaker) RecordSuccess() { f.successes++ }
func (f *fakeBreaker) Failures() int  { return f.failures }

type fakeCache struct {
	entries map[string]*models.CachedResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*models.CachedResult)}
}

func (f *fakeCache) Get(_ context.Context, submissionID string) (*models.CachedResult, bool) {
	result, found := f.entries[submissionID]
	return result, found
}

func (f *fakeCache) Set(_ context.Context, submissionID string, result *models.CachedResult) {
	f.entries[submissionID] = result
}

type fakeAudit struct {
	entries []*models.AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, entry *models.AuditEntry) {
	f.entries = append(f.entries, entry)
}

func (f *fakeAudit) Recent(int) []*models.AuditEntry         { return nil }
func (f *fakeAudit) ByRequestID(string) []*models.AuditEntry { return nil }

type fixture struct {
	chain     *fakeChain
	breaker   *fakeBreaker
	cache     *fakeCache
	audit     *fakeAudit
	processor *Processor
}

func newFixture() *fixture {
	f := &fixture{
		chain:   &fakeChain{},
		breaker: &fakeBreaker{},
		cache:   newFakeCache(),
		audit:   &fakeAudit{},
	}
	f.processor = NewProcessor(f.chain, f.breaker, f.cache, f.audit, logger.NewNoopLogger())
	return f
}

func request(submissionID string, score, confidence float64) *models.ResultsRequest {
	return &models.ResultsRequest{
		SubmissionID: submissionID,
		VerificationResults: map[string]interface{}{
			"qualityScore":     score,
			"confidence":       confidence,
			"languageDetected": "sw",
		},
		UserID: "user-1",
	}
}

func TestProcessSuccess(t *testing.T) {
	f := newFixture()

	resp, govErr := f.processor.Process(context.Background(), request("sub-1", 85, 0.9), "req-1")
	require.Nil(t, govErr)
	assert.True(t, resp.Processed)
	assert.False(t, resp.Cached)
	assert.Equal(t, "0xsub-1", resp.ChainTxHash)
	assert.Equal(t, 1, f.breaker.successes)

	// The outcome is cached and audited.
	_, cached := f.cache.Get(context.Background(), "sub-1")
	assert.True(t, cached)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, constants.AuditActionProcessResults, f.audit.entries[0].Action)
	assert.True(t, f.audit.entries[0].Success)
}

func TestProcessReplaysFromCache(t *testing.T) {
	f := newFixture()
	f.cache.Set(context.Background(), "sub-1", &models.CachedResult{TxHash: "0xcached"})

	resp, govErr := f.processor.Process(context.Background(), request("sub-1", 85, 0.9), "req-1")
	require.Nil(t, govErr)
	assert.True(t, resp.Cached)
	assert.Equal(t, "0xcached", resp.ChainTxHash)
	assert.Zero(t, f.chain.calls)
}

func TestProcessFailsFastWhenBreakerOpen(t *testing.T) {
	f := newFixture()
	f.breaker.open = true

	_, govErr := f.processor.Process(context.Background(), request("sub-1", 85, 0.9), "req-1")
	require.NotNil(t, govErr)
	assert.Equal(t, constants.ErrCodeCircuitOpen, govErr.Code())
	assert.Zero(t, f.chain.calls)
}

func TestProcessChainFailureFeedsBreaker(t *testing.T) {
	f := newFixture()
	f.chain.err = errors.New("rpc timeout")

	_, govErr := f.processor.Process(context.Background(), request("sub-1", 85, 0.9), "req-1")
	require.NotNil(t, govErr)
	assert.Equal(t, constants.ErrCodeServerError, govErr.Code())
	assert.Equal(t, 1, f.breaker.failures)

	// Failed submissions must not be replayable.
	_, cached := f.cache.Get(context.Background(), "sub-1")
	assert.False(t, cached)
	require.Len(t, f.audit.entries, 1)
	assert.False(t, f.audit.entries[0].Success)
}

func TestProcessValidation(t *testing.T) {
	f := newFixture()

	cases := map[string]*models.ResultsRequest{
		"missing submission id":   request("", 85, 0.9),
		"score out of range":      request("sub-1", 150, 0.9),
		"confidence out of range": request("sub-1", 85, 1.5),
		"no results":              {SubmissionID: "sub-1", UserID: "user-1"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, govErr := f.processor.Process(context.Background(), req, "req-1")
			require.NotNil(t, govErr)
			assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
		})
	}

	t.Run("bad language code", func(t *testing.T) {
		req := request("sub-1", 85, 0.9)
		req.VerificationResults["languageDetected"] = "x"
		_, govErr := f.processor.Process(context.Background(), req, "req-1")
		require.NotNil(t, govErr)
		assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
	})
}

func TestQualityGateControlsApproval(t *testing.T) {
	t.Run("passing submission approved", func(t *testing.T) {
		f := newFixture()
		resp, govErr := f.processor.Process(context.Background(), request("sub-1", 70, 0.6), "req-1")
		require.Nil(t, govErr)
		assert.True(t, resp.Processed)
	})

	t.Run("low score still anchors as rejected", func(t *testing.T) {
		f := newFixture()
		resp, govErr := f.processor.Process(context.Background(), request("sub-2", 40, 0.9), "req-1")
		require.Nil(t, govErr)
		assert.True(t, resp.Processed)
		assert.Equal(t, 1, f.chain.calls)
	})
}

func TestStatusAndStats(t *testing.T) {
	f := newFixture()
	f.cache.Set(context.Background(), "sub-1", &models.CachedResult{TxHash: "0xcached", QualityScore: 85})

	cached, found := f.processor.Status(context.Background(), "sub-1")
	require.True(t, found)
	assert.Equal(t, "0xcached", cached.TxHash)

	stats := f.processor.Stats()
	assert.Equal(t, false, stats["circuitBreakerOpen"])
	assert.Equal(t, 0, stats["consecutiveFailures"])
}
