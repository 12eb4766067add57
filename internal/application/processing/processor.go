// Package processing turns validated verification results into anchored,
// replayable outcomes through the breaker-guarded chain integration.
package processing

import (
	"context"
	"time"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/internal/domain/service"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Quality gate for anchoring a submission as approved.
const (
	minPassingScore      = 70.0
	minPassingConfidence = 0.6
)

// Processor implements the results pipeline: validate, replay from cache,
// anchor through the breaker-guarded integration, cache and audit.
type Processor struct {
	chain   service.ChainIntegration
	breaker service.CircuitBreaker
	cache   service.ResultsCache
	audit   service.AuditService
	logger  logger.Logger

	now func() time.Time
}

// NewProcessor wires the results pipeline.
func NewProcessor(
	chain service.ChainIntegration,
	breaker service.CircuitBreaker,
	cache service.ResultsCache,
	audit service.AuditService,
	log logger.Logger,
) *Processor {
	return &Processor{
		chain:   chain,
		breaker: breaker,
		cache:   cache,
		audit:   audit,
		logger:  log.WithComponent("processing"),
		now:     time.Now,
	}
}

// Process handles one results submission. A previously processed
// submission is replayed from cache without touching the integration.
func (p *Processor) Process(ctx context.Context, req *models.ResultsRequest, requestID string) (*models.ResultsResponse, errors.GovError) {
	started := p.now()

	qualityScore, confidence, language, govErr := validateResults(req)
	if govErr != nil {
		p.recordOutcome(ctx, req, requestID, false, govErr.Error())
		return nil, govErr
	}

	if cached, found := p.cache.Get(ctx, req.SubmissionID); found {
		p.logger.Debug(ctx, "replaying cached result",
			logger.String("submission_id", req.SubmissionID))
		return &models.ResultsResponse{
			SubmissionID:     req.SubmissionID,
			Processed:        true,
			ChainTxHash:      cached.TxHash,
			Cached:           true,
			ProcessingTimeMS: p.now().Sub(started).Milliseconds(),
		}, nil
	}

	if p.breaker.Open() {
		govErr := errors.ErrCircuitOpen("chain")
		p.recordOutcome(ctx, req, requestID, false, govErr.Error())
		return nil, govErr
	}

	passes := qualityScore >= minPassingScore && confidence >= minPassingConfidence
	chainResult, err := p.chain.SubmitResult(ctx, req.SubmissionID, qualityScore, confidence, language, passes)
	if err != nil {
		p.breaker.RecordFailure()
		p.logger.Error(ctx, "chain submission failed", err,
			logger.String("submission_id", req.SubmissionID),
			logger.Int("breaker_failures", p.breaker.Failures()))
		govErr := errors.ErrServerError("result anchoring failed").WithCause(err)
		p.recordOutcome(ctx, req, requestID, false, govErr.Error())
		return nil, govErr
	}
	p.breaker.RecordSuccess()

	p.cache.Set(ctx, req.SubmissionID, &models.CachedResult{
		TxHash:       chainResult.TxHash,
		QualityScore: qualityScore,
		Timestamp:    chainResult.Timestamp,
	})

	p.recordOutcome(ctx, req, requestID, true, "")

	return &models.ResultsResponse{
		SubmissionID:     req.SubmissionID,
		Processed:        true,
		ChainTxHash:      chainResult.TxHash,
		Cached:           false,
		ProcessingTimeMS: p.now().Sub(started).Milliseconds(),
	}, nil
}

// Status reports whether a submission has a replayable processed result.
func (p *Processor) Status(ctx context.Context, submissionID string) (*models.CachedResult, bool) {
	return p.cache.Get(ctx, submissionID)
}

// Stats summarizes the processor's operational state.
func (p *Processor) Stats() map[string]interface{} {
	open := p.breaker.Open()
	return map[string]interface{}{
		"circuitBreakerOpen":  open,
		"consecutiveFailures": p.breaker.Failures(),
	}
}

func (p *Processor) recordOutcome(ctx context.Context, req *models.ResultsRequest, requestID string, success bool, errDescription string) {
	entry := models.NewAuditEntry(req.UserID, constants.AuditActionProcessResults, "/ai-results", requestID, success).
		WithMetadata("submission_id", req.SubmissionID)
	if errDescription != "" {
		entry.WithError(errDescription)
	}
	p.audit.Record(ctx, entry)
}

// validateResults checks the shape and ranges of a results payload.
func validateResults(req *models.ResultsRequest) (qualityScore, confidence float64, language string, govErr errors.GovError) {
	if req.SubmissionID == "" {
		return 0, 0, "", errors.ErrInvalidRequest("submissionId is required")
	}
	if len(req.VerificationResults) == 0 {
		return 0, 0, "", errors.ErrInvalidRequest("verificationResults is required")
	}

	qualityScore, ok := numericField(req.VerificationResults, "qualityScore")
	if !ok || qualityScore < 0 || qualityScore > 100 {
		return 0, 0, "", errors.ErrInvalidRequest("qualityScore must be a number between 0 and 100")
	}
	confidence, ok = numericField(req.VerificationResults, "confidence")
	if !ok || confidence < 0 || confidence > 1 {
		return 0, 0, "", errors.ErrInvalidRequest("confidence must be a number between 0 and 1")
	}
	language, _ = req.VerificationResults["languageDetected"].(string)
	if len(language) < 2 {
		return 0, 0, "", errors.ErrInvalidRequest("languageDetected must be a language code")
	}

	return qualityScore, confidence, language, nil
}

// numericField tolerates both float64 (decoded JSON) and int values.
func numericField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
