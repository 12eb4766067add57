package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/internal/application/admission"
	"github.com/delang-zeta/ai-gateway/internal/application/processing"
	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/internal/interfaces/http/middleware"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
)

// ResultsHandler serves the results processing surface. Processing rides
// the GEMINI governance track since it fronts the same integration.
type ResultsHandler struct {
	pipeline  *admission.Pipeline
	processor *processing.Processor
}

// NewResultsHandler creates the results endpoint handler.
func NewResultsHandler(pipeline *admission.Pipeline, processor *processing.Processor) *ResultsHandler {
	return &ResultsHandler{
		pipeline:  pipeline,
		processor: processor,
	}
}

// Process handles POST /ai-results.
func (h *ResultsHandler) Process(c *gin.Context) {
	var req models.ResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectWith(c, errors.ErrInvalidRequest("request body must be valid JSON"))
		return
	}

	requestID := middleware.GetRequestID(c)
	identity, decision := h.pipeline.Admit(c.Request.Context(), admission.Request{
		Authorization: c.GetHeader("Authorization"),
		Service:       constants.ServiceGemini,
		Endpoint:      c.FullPath(),
		RequestID:     requestID,
		EstimatedCost: 0,
	})
	if !decision.Admitted {
		rejectWith(c, decision.Rejection)
		return
	}
	req.UserID = identity.UserID

	resp, govErr := h.processor.Process(c.Request.Context(), &req, requestID)
	if govErr != nil {
		decision.Complete(false, 0)
		rejectWith(c, govErr)
		return
	}
	decision.Complete(true, 0)

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /ai-results/:submissionId.
func (h *ResultsHandler) Status(c *gin.Context) {
	submissionID := c.Param("submissionId")
	if submissionID == "" {
		rejectWith(c, errors.ErrInvalidRequest("submissionId is required"))
		return
	}

	cached, found := h.processor.Status(c.Request.Context(), submissionID)
	if !found {
		c.JSON(http.StatusOK, gin.H{
			"submissionId": submissionID,
			"processed":    false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissionId":        submissionID,
		"processed":           true,
		"smartContractTxHash": cached.TxHash,
		"qualityScore":        cached.QualityScore,
		"timestamp":           cached.Timestamp,
	})
}

// Stats handles GET /ai-results/stats.
func (h *ResultsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.processor.Stats())
}
