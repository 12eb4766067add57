package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

func TestCredentialTaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    GovError
		status int
	}{
		{"missing", ErrMissingCredential(), http.StatusUnauthorized},
		{"malformed", ErrMalformedCredential("no bearer"), http.StatusUnauthorized},
		{"expired", ErrExpiredCredential(), http.StatusForbidden},
		{"invalid", ErrInvalidCredential("bad signature"), http.StatusForbidden},
		{"unavailable", ErrVerificationUnavailable(errors.New("sealed")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.HTTPStatus())
			if tc.status != http.StatusInternalServerError {
				assert.True(t, IsCredentialError(tc.err))
			}
		})
	}
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	err := ErrRateLimitExceeded(constants.WindowMinute, 42)

	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus())
	assert.True(t, IsRateLimitError(err))

	seconds, ok := RetryAfterSeconds(err)
	require.True(t, ok)
	assert.Equal(t, int64(42), seconds)
	assert.Equal(t, "minute", err.Metadata()["window"])
}

func TestHourlyVariantHasDistinctDescription(t *testing.T) {
	minute := ErrRateLimitExceeded(constants.WindowMinute, 10)
	hour := ErrRateLimitExceeded(constants.WindowHour, 10)

	assert.NotEqual(t, minute.Description(), hour.Description())
	assert.Equal(t, minute.Code(), hour.Code())
}

func TestCostLimitIsRateLimitClass(t *testing.T) {
	err := ErrCostLimitExceeded(constants.ServiceGemini, 100)

	assert.True(t, IsRateLimitError(err))
	_, ok := RetryAfterSeconds(err)
	assert.False(t, ok)
}

func TestCircuitOpen(t *testing.T) {
	err := ErrCircuitOpen("chain")

	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
	assert.True(t, IsCircuitOpenError(err))
	assert.False(t, IsCircuitOpenError(ErrServerError("boom")))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrVerificationUnavailable(cause)

	assert.True(t, errors.Is(err, cause))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrRateLimitExceeded(constants.WindowHour, 1800))

	assert.Equal(t, "Hourly rate limit exceeded", resp.Error)
	assert.Equal(t, "rate_limit_exceeded", resp.Code)
	require.NotNil(t, resp.RetryAfter)
	assert.Equal(t, int64(1800), *resp.RetryAfter)
}

func TestToGenericErrorResponseHidesInternals(t *testing.T) {
	resp := ToGenericErrorResponse(errors.New("pq: relation does not exist"))

	assert.Equal(t, "Internal server error", resp.Error)
	assert.Equal(t, string(constants.ErrCodeServerError), resp.Code)
}

func TestShouldLogError(t *testing.T) {
	assert.False(t, ShouldLogError(ErrMissingCredential()))
	assert.True(t, ShouldLogError(ErrRateLimitExceeded(constants.WindowMinute, 5)))
	assert.True(t, ShouldLogError(ErrServerError("boom")))
	assert.True(t, ShouldLogError(errors.New("untyped")))
}
