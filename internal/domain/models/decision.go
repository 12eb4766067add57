package models

import (
	"github.com/delang-zeta/ai-gateway/pkg/errors"
)

// Decision is the outcome of running a request through the admission pipeline.
type Decision struct {
	Admitted bool
	// Rejection carries the structured reason when Admitted is false.
	Rejection errors.GovError
	// Complete must be invoked exactly once for an admitted request with
	// the protected call's outcome, so the cost ledger stays accurate.
	// It is nil on rejection.
	Complete CompletionFunc
}

// CompletionFunc reports the outcome of the protected operation back to
// the governance layer.
type CompletionFunc func(succeeded bool, actualCost float64)

// Admit builds an admitted decision with its completion callback.
func Admit(complete CompletionFunc) Decision {
	return Decision{Admitted: true, Complete: complete}
}

// Reject builds a rejected decision.
func Reject(reason errors.GovError) Decision {
	return Decision{Admitted: false, Rejection: reason}
}
