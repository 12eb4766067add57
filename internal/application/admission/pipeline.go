// Package admission composes the governance stages into one ordered
// pipeline: authenticate, rate limit, cost check. Each stage is a pure
// admission decision; the pipeline itself records the audit entry for
// every decision, so exactly one entry exists per stage outcome and no
// stage needs to know about auditing.
package admission

import (
	"context"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/internal/domain/service"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/monitoring"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Request carries everything the pipeline needs to decide one admission.
type Request struct {
	Authorization string
	Service       constants.ServiceTag
	Endpoint      string
	RequestID     string
	EstimatedCost float64
}

// Pipeline runs the ordered governance stages. Later stages never run
// once an earlier stage rejects, so a caller is charged no rate window
// slot for a request that failed authentication and no budget for a
// request that was rate limited.
type Pipeline struct {
	verifier service.IdentityVerifier
	limiter  service.RateLimitService
	costs    service.CostGovernor
	audit    service.AuditService
	metrics  *monitoring.Metrics
	logger   logger.Logger
}

// NewPipeline wires the governance stages together.
func NewPipeline(
	verifier service.IdentityVerifier,
	limiter service.RateLimitService,
	costs service.CostGovernor,
	audit service.AuditService,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		verifier: verifier,
		limiter:  limiter,
		costs:    costs,
		audit:    audit,
		metrics:  metrics,
		logger:   log.WithComponent("admission"),
	}
}

// Admit runs the full pipeline for one request. The returned identity is
// valid whenever authentication passed, even if a later stage rejected.
func (p *Pipeline) Admit(ctx context.Context, req Request) (models.Identity, models.Decision) {
	identity, govErr := p.verifier.Verify(ctx, req.Authorization)
	if govErr != nil {
		p.record(ctx, req, constants.AnonymousUser, constants.AuditActionAuthenticate, false, govErr.Error(), nil)
		p.observe(req.Service, "authenticate", false)
		return models.Identity{}, models.Reject(govErr)
	}
	p.record(ctx, req, identity.UserID, constants.AuditActionAuthenticate, true, "", nil)
	p.observe(req.Service, "authenticate", true)

	if govErr := p.limiter.Admit(ctx, identity, req.Service); govErr != nil {
		p.record(ctx, req, identity.UserID, constants.AuditActionRateLimit, false, govErr.Error(), govErr.Metadata())
		p.observe(req.Service, "rate_limit", false)
		return identity, models.Reject(govErr)
	}
	p.record(ctx, req, identity.UserID, constants.AuditActionRateLimit, true, "", nil)
	p.observe(req.Service, "rate_limit", true)

	if govErr := p.costs.CheckAndReserve(ctx, identity, req.Service, req.EstimatedCost); govErr != nil {
		p.record(ctx, req, identity.UserID, constants.AuditActionCostCheck, false, govErr.Error(), govErr.Metadata())
		p.observe(req.Service, "cost_check", false)
		return identity, models.Reject(govErr)
	}
	p.record(ctx, req, identity.UserID, constants.AuditActionCostCheck, true, "",
		map[string]interface{}{"estimated_cost": req.EstimatedCost})
	p.observe(req.Service, "cost_check", true)
	if p.metrics != nil {
		p.metrics.AddCostReserved(string(req.Service), req.EstimatedCost)
	}

	complete := p.completion(identity, req)
	return identity, models.Admit(complete)
}

// completion builds the callback that settles the reservation once the
// protected call finished. A failed call releases the full estimate; a
// successful call adjusts the ledger to the actual cost.
func (p *Pipeline) completion(identity models.Identity, req Request) models.CompletionFunc {
	var settled bool
	return func(succeeded bool, actualCost float64) {
		if settled {
			return
		}
		settled = true

		if !succeeded {
			p.costs.Reconcile(identity, req.Service, -req.EstimatedCost)
			return
		}
		if actualCost > 0 && actualCost != req.EstimatedCost {
			p.costs.Reconcile(identity, req.Service, actualCost-req.EstimatedCost)
		}
	}
}

// record appends one audit entry for a stage decision.
func (p *Pipeline) record(ctx context.Context, req Request, userID string, action constants.AuditAction, success bool, errDescription string, metadata map[string]interface{}) {
	entry := models.NewAuditEntry(userID, action, req.Endpoint, req.RequestID, success)
	if errDescription != "" {
		entry.WithError(errDescription)
	}
	for key, value := range metadata {
		entry.WithMetadata(key, value)
	}
	entry.WithMetadata("service", string(req.Service))

	p.audit.Record(ctx, entry)
	if p.metrics != nil {
		p.metrics.IncAuditEntries()
	}
}

func (p *Pipeline) observe(service constants.ServiceTag, stage string, admitted bool) {
	if p.metrics != nil {
		p.metrics.ObserveAdmission(string(service), stage, admitted)
	}
}
