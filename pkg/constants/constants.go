// Package constants defines system-wide constants for the AI Gateway.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Tag Constants
// ================================================================================

// ServiceTag identifies one of the governed downstream AI services.
type ServiceTag string

const (
	// ServiceGemini is the generative verification service (text/audio/image).
	ServiceGemini ServiceTag = "GEMINI"

	// ServiceTranslate is the text translation service.
	ServiceTranslate ServiceTag = "TRANSLATE"

	// ServiceSpeech is the speech-to-text transcription service.
	ServiceSpeech ServiceTag = "SPEECH"
)

// KnownServices lists every service tag the gateway governs.
var KnownServices = []ServiceTag{ServiceGemini, ServiceTranslate, ServiceSpeech}

// ================================================================================
// Rate Window Constants
// ================================================================================

// WindowKind identifies which fixed-origin rate window a counter belongs to.
type WindowKind string

const (
	// WindowMinute is the 60-second burst window.
	WindowMinute WindowKind = "minute"

	// WindowHour is the 3600-second sustained-use window.
	WindowHour WindowKind = "hour"
)

// Period returns the fixed length of the window.
func (k WindowKind) Period() time.Duration {
	if k == WindowHour {
		return time.Hour
	}
	return time.Minute
}

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	// ErrCodeMissingCredential indicates no usable bearer credential was presented.
	ErrCodeMissingCredential ErrorCode = "missing_credential"

	// ErrCodeMalformedCredential indicates the Authorization header had the wrong shape.
	ErrCodeMalformedCredential ErrorCode = "malformed_credential"

	// ErrCodeExpiredCredential indicates the token signature was valid but expired.
	ErrCodeExpiredCredential ErrorCode = "expired_credential"

	// ErrCodeInvalidCredential indicates a tampered or otherwise unverifiable token.
	ErrCodeInvalidCredential ErrorCode = "invalid_credential"

	// ErrCodeVerificationUnavailable indicates the signing key could not be fetched.
	ErrCodeVerificationUnavailable ErrorCode = "verification_unavailable"

	// ErrCodeRateLimitExceeded indicates a per-minute or per-hour window is full.
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeCostLimitExceeded indicates the daily spend cap would be breached.
	ErrCodeCostLimitExceeded ErrorCode = "cost_limit_exceeded"

	// ErrCodeCircuitOpen indicates the downstream integration breaker is open.
	ErrCodeCircuitOpen ErrorCode = "circuit_open"

	// ErrCodeUnknownService indicates an endpoint references an unconfigured service tag.
	ErrCodeUnknownService ErrorCode = "unknown_service"

	// ErrCodeMonitoringUnavailable indicates a governance store failed internally.
	ErrCodeMonitoringUnavailable ErrorCode = "monitoring_unavailable"

	// ErrCodeInvalidRequest indicates a malformed request body.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeServerError indicates an unexpected internal failure.
	ErrCodeServerError ErrorCode = "server_error"
)

// ================================================================================
// Audit Action Constants
// ================================================================================

// AuditAction names the logical event an audit entry records.
type AuditAction string

const (
	// AuditActionAuthenticate records a credential verification outcome.
	AuditActionAuthenticate AuditAction = "authenticate"

	// AuditActionRateLimit records a rate limiter admission decision.
	AuditActionRateLimit AuditAction = "rate_limit"

	// AuditActionCostCheck records a cost governor admission decision.
	AuditActionCostCheck AuditAction = "cost_check"

	// AuditActionVerification records a generative verification outcome.
	AuditActionVerification AuditAction = "gemini_verification"

	// AuditActionTranslate records a translation outcome.
	AuditActionTranslate AuditAction = "translate"

	// AuditActionTranscribe records a transcription outcome.
	AuditActionTranscribe AuditAction = "speech_to_text"

	// AuditActionProcessResults records a results processing outcome.
	AuditActionProcessResults AuditAction = "process_ai_results"
)

// AnonymousUser is recorded on audit entries when no identity was established.
const AnonymousUser = "unknown"

// ================================================================================
// Store Retention Constants
// ================================================================================

const (
	// RateWindowTTL bounds how long rate window counters are retained.
	// Must outlive the hour window so hourly counts never vanish mid-window.
	RateWindowTTL = 2 * time.Hour

	// CostLedgerTTL bounds how long daily spend entries are retained.
	// Set well beyond 24h so a day's ledger safely outlives its day boundary.
	CostLedgerTTL = 48 * time.Hour

	// AuditRetentionTTL bounds how long audit entries are held in memory.
	AuditRetentionTTL = 24 * time.Hour

	// SecretCacheTTL bounds how long fetched secrets are served from cache.
	SecretCacheTTL = 5 * time.Minute

	// ResultsCacheTTL bounds how long processed results are replayable.
	ResultsCacheTTL = 1 * time.Hour

	// StoreSweepInterval is how often expired entries are swept from the TTL stores.
	StoreSweepInterval = 10 * time.Minute
)

// ================================================================================
// Circuit Breaker Defaults
// ================================================================================

const (
	// DefaultBreakerThreshold is the consecutive-failure count that opens the breaker.
	DefaultBreakerThreshold = 5

	// DefaultBreakerCooldown is how long the breaker stays open after the last failure.
	DefaultBreakerCooldown = 5 * time.Minute
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type used for request context values set by middleware.
type ContextKey string

const (
	// ContextKeyIdentity carries the verified identity for the request.
	ContextKeyIdentity ContextKey = "gateway_identity"

	// ContextKeyRequestID carries the request correlation ID.
	ContextKeyRequestID ContextKey = "gateway_request_id"

	// ContextKeyCompletion carries the admission completion callback.
	ContextKeyCompletion ContextKey = "gateway_completion"
)

// HeaderRequestID is the inbound header honored for request correlation.
const HeaderRequestID = "X-Request-ID"
