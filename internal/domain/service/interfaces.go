// Package service defines the domain service contracts of the AI Gateway.
// Implementations live under internal/infrastructure and are injected into
// the admission pipeline at construction.
package service

import (
	"context"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
)

// IdentityVerifier validates a raw bearer credential and extracts the caller identity.
// Audit emission for the outcome belongs to the admission pipeline, which
// composes the stages and records exactly one entry per decision.
type IdentityVerifier interface {
	// Verify parses and verifies the Authorization header value.
	Verify(ctx context.Context, authorization string) (models.Identity, errors.GovError)
}

// RateLimitService enforces the dual-window per-user-per-service rate limits.
type RateLimitService interface {
	// Admit checks both the minute and hour windows for the caller and,
	// when under limit, increments both counters atomically. A nil return
	// means the request is admitted. Rejections carry the retry-after hint.
	Admit(ctx context.Context, identity models.Identity, service constants.ServiceTag) errors.GovError

	// Usage reports the current counts for diagnostics.
	Usage(identity models.Identity, service constants.ServiceTag) (minute, hour int)
}

// CostGovernor enforces the per-user-per-service daily spend budget.
type CostGovernor interface {
	// CheckAndReserve reserves estimatedCost against today's ledger.
	// It returns nil and mutates the ledger only when the reservation fits
	// under the daily cap. If the ledger store itself fails, the governor
	// fails open and admits the request.
	CheckAndReserve(ctx context.Context, identity models.Identity, service constants.ServiceTag, estimatedCost float64) errors.GovError

	// Reconcile adjusts today's ledger by the difference between the
	// actual and estimated cost of a completed request.
	Reconcile(identity models.Identity, service constants.ServiceTag, delta float64)

	// SpentToday reports the cumulative cost recorded for today.
	SpentToday(identity models.Identity, service constants.ServiceTag) float64
}

// CircuitBreaker isolates a repeatedly failing downstream integration.
// Callers must check Open before the protected call and report exactly
// one of RecordSuccess or RecordFailure after each attempt.
type CircuitBreaker interface {
	// Open reports whether calls must fail fast. Evaluating Open after the
	// cooldown has elapsed resets the failure count to zero.
	Open() bool

	// RecordFailure increments the consecutive-failure count.
	RecordFailure()

	// RecordSuccess resets the consecutive-failure count.
	RecordSuccess()

	// Failures reports the current consecutive-failure count.
	Failures() int
}

// AuditService is the append-only, time-bounded decision record store.
type AuditService interface {
	// Record appends one entry. It is fire-and-forget: a failure to audit
	// must never fail the request being audited.
	Record(ctx context.Context, entry *models.AuditEntry)

	// Recent returns up to n of the most recently recorded entries,
	// newest first.
	Recent(n int) []*models.AuditEntry

	// ByRequestID returns every retained entry recorded for a correlation id.
	ByRequestID(requestID string) []*models.AuditEntry
}

// SecretSource provides process-wide secrets from the secret store.
type SecretSource interface {
	// SigningKey returns the JWT signing key.
	SigningKey(ctx context.Context) ([]byte, error)

	// APIKey returns the named downstream API key.
	APIKey(ctx context.Context, name string) (string, error)
}

// ChainIntegration anchors processed verification results downstream.
// The production integration is external; this layer only needs the contract.
type ChainIntegration interface {
	SubmitResult(ctx context.Context, submissionID string, qualityScore, confidence float64, languageDetected string, passesQuality bool) (*models.ChainResult, error)
}

// ResultsCache stores processed results for replay within a bounded window.
type ResultsCache interface {
	Get(ctx context.Context, submissionID string) (*models.CachedResult, bool)
	Set(ctx context.Context, submissionID string, result *models.CachedResult)
}
