package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/internal/application/admission"
	"github.com/delang-zeta/ai-gateway/internal/application/aiservice"
	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/internal/domain/service"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/costs"
	"github.com/delang-zeta/ai-gateway/internal/interfaces/http/middleware"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
)

// GatewayHandler serves the three governed AI endpoints. Every request
// runs the full admission pipeline before the downstream call, the
// downstream outcome is audited as its own event, and the completion
// callback settles the cost reservation afterwards.
type GatewayHandler struct {
	pipeline  *admission.Pipeline
	ai        *aiservice.Service
	estimator *costs.Estimator
	audit     service.AuditService
}

// NewGatewayHandler creates the governed endpoint handler.
func NewGatewayHandler(pipeline *admission.Pipeline, ai *aiservice.Service, estimator *costs.Estimator, audit service.AuditService) *GatewayHandler {
	return &GatewayHandler{
		pipeline:  pipeline,
		ai:        ai,
		estimator: estimator,
		audit:     audit,
	}
}

// Verify handles POST /gemini/verify.
func (h *GatewayHandler) Verify(c *gin.Context) {
	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectWith(c, errors.ErrInvalidRequest("request body must be valid JSON"))
		return
	}

	identity, decision := h.admit(c, constants.ServiceGemini, h.estimator.VerificationCost(req.DataType))
	if !decision.Admitted {
		rejectWith(c, decision.Rejection)
		return
	}
	req.UserID = identity.UserID

	result, govErr := h.ai.Verify(c.Request.Context(), &req)
	if govErr != nil {
		decision.Complete(false, 0)
		h.recordOutcome(c, identity.UserID, constants.AuditActionVerification, false, govErr.Error(),
			map[string]interface{}{"submission_id": req.SubmissionID})
		rejectWith(c, govErr)
		return
	}
	result.CostEstimate = h.estimator.VerificationCost(req.DataType)
	decision.Complete(true, result.CostEstimate)
	h.recordOutcome(c, identity.UserID, constants.AuditActionVerification, true, "",
		map[string]interface{}{"submission_id": req.SubmissionID, "quality_score": result.QualityScore})

	c.JSON(http.StatusOK, result)
}

// Translate handles POST /translate.
func (h *GatewayHandler) Translate(c *gin.Context) {
	var req models.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectWith(c, errors.ErrInvalidRequest("request body must be valid JSON"))
		return
	}

	estimate := h.estimator.TranslationCost(len(req.Text))
	identity, decision := h.admit(c, constants.ServiceTranslate, estimate)
	if !decision.Admitted {
		rejectWith(c, decision.Rejection)
		return
	}
	req.UserID = identity.UserID

	result, govErr := h.ai.Translate(c.Request.Context(), &req)
	if govErr != nil {
		decision.Complete(false, 0)
		h.recordOutcome(c, identity.UserID, constants.AuditActionTranslate, false, govErr.Error(), nil)
		rejectWith(c, govErr)
		return
	}
	result.CostEstimate = estimate
	decision.Complete(true, estimate)
	h.recordOutcome(c, identity.UserID, constants.AuditActionTranslate, true, "",
		map[string]interface{}{"target_language": req.TargetLanguage, "characters": len(req.Text)})

	c.JSON(http.StatusOK, result)
}

// Transcribe handles POST /speech-to-text.
func (h *GatewayHandler) Transcribe(c *gin.Context) {
	var req models.TranscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectWith(c, errors.ErrInvalidRequest("request body must be valid JSON"))
		return
	}

	estimate := h.estimator.TranscriptionCost(req.DurationSeconds)
	identity, decision := h.admit(c, constants.ServiceSpeech, estimate)
	if !decision.Admitted {
		rejectWith(c, decision.Rejection)
		return
	}
	req.UserID = identity.UserID

	result, govErr := h.ai.Transcribe(c.Request.Context(), &req)
	if govErr != nil {
		decision.Complete(false, 0)
		h.recordOutcome(c, identity.UserID, constants.AuditActionTranscribe, false, govErr.Error(), nil)
		rejectWith(c, govErr)
		return
	}
	result.CostEstimate = estimate
	decision.Complete(true, estimate)
	h.recordOutcome(c, identity.UserID, constants.AuditActionTranscribe, true, "",
		map[string]interface{}{"audio_url": req.AudioURL})

	c.JSON(http.StatusOK, result)
}

func (h *GatewayHandler) admit(c *gin.Context, service constants.ServiceTag, estimate float64) (models.Identity, models.Decision) {
	return h.pipeline.Admit(c.Request.Context(), admission.Request{
		Authorization: c.GetHeader("Authorization"),
		Service:       service,
		Endpoint:      c.FullPath(),
		RequestID:     middleware.GetRequestID(c),
		EstimatedCost: estimate,
	})
}

// recordOutcome appends the audit entry for one downstream call, exactly
// one per attempt, success or failure.
func (h *GatewayHandler) recordOutcome(c *gin.Context, userID string, action constants.AuditAction, success bool, errDescription string, metadata map[string]interface{}) {
	entry := models.NewAuditEntry(userID, action, c.FullPath(), middleware.GetRequestID(c), success)
	if errDescription != "" {
		entry.WithError(errDescription)
	}
	for key, value := range metadata {
		entry.WithMetadata(key, value)
	}
	h.audit.Record(c.Request.Context(), entry)
}
