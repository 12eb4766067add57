// Package audit implements the append-only governance decision record.
// Entries are retained in memory for a bounded window and optionally
// fanned out to Kafka and a relational archive.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Emitter ships an audit entry to an external sink. Emitters run off the
// request path; their failures are logged and absorbed.
type Emitter interface {
	Emit(ctx context.Context, entry *models.AuditEntry) error
	Close() error
}

// Service implements service.AuditService. Retention is enforced by the
// TTL store; the ordered id list is pruned lazily as expired entries are
// encountered during reads.
type Service struct {
	mu       sync.Mutex
	store    *cache.Cache
	order    []string
	byReqID  map[string][]string
	emitters []Emitter
	logger   logger.Logger
}

// NewService creates the audit service with the given fan-out emitters.
func NewService(log logger.Logger, emitters ...Emitter) *Service {
	return &Service{
		store:    cache.New(constants.AuditRetentionTTL, constants.StoreSweepInterval),
		byReqID:  make(map[string][]string),
		emitters: emitters,
		logger:   log.WithComponent("audit"),
	}
}

// Record appends one entry and fans it out. It is fire-and-forget: a
// failure to audit must never fail the request being audited.
func (s *Service) Record(ctx context.Context, entry *models.AuditEntry) {
	if entry == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	id := entry.EventID.String()

	s.mu.Lock()
	s.store.Set(id, entry, constants.AuditRetentionTTL)
	s.order = append(s.order, id)
	if entry.RequestID != "" {
		s.byReqID[entry.RequestID] = append(s.byReqID[entry.RequestID], id)
	}
	s.mu.Unlock()

	for _, emitter := range s.emitters {
		go func(e Emitter) {
			if err := e.Emit(context.WithoutCancel(ctx), entry); err != nil {
				s.logger.Warn(ctx, "audit fan-out failed",
					logger.Error(err),
					logger.String("event_id", id))
			}
		}(emitter)
	}
}

// Recent returns up to n of the most recently recorded entries, newest first.
func (s *Service) Recent(n int) []*models.AuditEntry {
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*models.AuditEntry, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(entries) < n; i-- {
		if v, found := s.store.Get(s.order[i]); found {
			if entry, ok := v.(*models.AuditEntry); ok {
				entries = append(entries, entry)
			}
		}
	}

	s.prune()
	return entries
}

// ByRequestID returns every retained entry recorded for a correlation id,
// oldest first.
func (s *Service) ByRequestID(requestID string) []*models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byReqID[requestID]
	entries := make([]*models.AuditEntry, 0, len(ids))
	for _, id := range ids {
		if v, found := s.store.Get(id); found {
			if entry, ok := v.(*models.AuditEntry); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// Size reports the number of retained entries.
func (s *Service) Size() int {
	return s.store.ItemCount()
}

// Close shuts the fan-out emitters down.
func (s *Service) Close() error {
	var firstErr error
	for _, emitter := range s.emitters {
		if err := emitter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// prune drops expired ids from the ordering and the request index.
// Must be called with the mutex held.
func (s *Service) prune() {
	if len(s.order) == 0 {
		return
	}

	live := s.order[:0]
	for _, id := range s.order {
		if _, found := s.store.Get(id); found {
			live = append(live, id)
		}
	}
	s.order = live

	for reqID, ids := range s.byReqID {
		liveIDs := ids[:0]
		for _, id := range ids {
			if _, found := s.store.Get(id); found {
				liveIDs = append(liveIDs, id)
			}
		}
		if len(liveIDs) == 0 {
			delete(s.byReqID, reqID)
		} else {
			s.byReqID[reqID] = liveIDs
		}
	}
}
