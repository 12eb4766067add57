package models

import (
	"time"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

// RateWindow is one fixed-origin counting window for a (user, service) pair.
// WindowStart is always aligned to the window period boundary.
type RateWindow struct {
	UserID       string
	Service      constants.ServiceTag
	Kind         constants.WindowKind
	RequestCount int
	WindowStart  int64 // unix seconds, truncated to the period
	Limit        int
}

// CostLedgerEntry is the cumulative spend record for a (user, service, day).
type CostLedgerEntry struct {
	UserID       string
	Service      constants.ServiceTag
	Day          string // calendar day, YYYY-MM-DD in UTC
	Cost         float64
	RequestCount int
	UpdatedAt    time.Time
}

// Day formats a timestamp as the UTC calendar day used to key the ledger.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
