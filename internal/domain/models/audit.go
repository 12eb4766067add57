package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

// AuditEntry represents a single immutable audit trail event.
// One entry is recorded per significant event, never zero, never duplicated.
type AuditEntry struct {
	EventID   uuid.UUID
	UserID    string // verified user or constants.AnonymousUser
	Action    constants.AuditAction
	Endpoint  string
	RequestID string
	Success   bool
	Error     string
	Metadata  map[string]interface{}
	Timestamp time.Time
}

// NewAuditEntry creates a new audit entry stamped with the current time.
func NewAuditEntry(userID string, action constants.AuditAction, endpoint, requestID string, success bool) *AuditEntry {
	if userID == "" {
		userID = constants.AnonymousUser
	}
	return &AuditEntry{
		EventID:   uuid.New(),
		UserID:    userID,
		Action:    action,
		Endpoint:  endpoint,
		RequestID: requestID,
		Success:   success,
		Timestamp: time.Now().UTC(),
	}
}

// WithError sets the error description for a failed event.
func (e *AuditEntry) WithError(errDescription string) *AuditEntry {
	e.Error = errDescription
	return e
}

// WithMetadata attaches one metadata key to the entry.
func (e *AuditEntry) WithMetadata(key string, value interface{}) *AuditEntry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}
