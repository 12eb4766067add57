// Package costs provides daily spend budgeting for the governed services.
package costs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
	"github.com/delang-zeta/ai-gateway/pkg/utils"
)

// Store is the minimal TTL store contract the ledger depends on. The
// error returns exist so store outages can be distinguished from misses:
// the governor fails open on them.
type Store interface {
	Get(key string) (interface{}, bool, error)
	Set(key string, value interface{}, ttl time.Duration) error
}

// memoryStore adapts go-cache to the Store contract. It cannot fail.
type memoryStore struct {
	c *cache.Cache
}

// NewMemoryStore creates the default in-memory ledger store.
func NewMemoryStore() Store {
	return &memoryStore{c: cache.New(constants.CostLedgerTTL, constants.StoreSweepInterval)}
}

func (s *memoryStore) Get(key string) (interface{}, bool, error) {
	v, found := s.c.Get(key)
	return v, found, nil
}

func (s *memoryStore) Set(key string, value interface{}, ttl time.Duration) error {
	s.c.Set(key, value, ttl)
	return nil
}

// Ledger implements service.CostGovernor over a TTL-bounded spend store.
type Ledger struct {
	store  Store
	locks  *utils.KeyedMutex
	limits map[constants.ServiceTag]config.ServiceLimits
	logger logger.Logger

	// now is swappable so day-boundary behavior can be tested.
	now func() time.Time
}

// NewLedger creates a cost governor for the configured service table.
func NewLedger(store Store, services map[string]config.ServiceLimits, log logger.Logger) *Ledger {
	// Configuration keys arrive lowercased; service tags are upper-case.
	limits := make(map[constants.ServiceTag]config.ServiceLimits, len(services))
	for name, l := range services {
		limits[constants.ServiceTag(strings.ToUpper(name))] = l
	}

	return &Ledger{
		store:  store,
		locks:  utils.NewKeyedMutex(utils.DefaultLockShards),
		limits: limits,
		logger: log.WithComponent("costs"),
		now:    time.Now,
	}
}

// CheckAndReserve reserves estimatedCost against today's ledger entry for
// the caller. The lookup, cap comparison and accumulation run under one
// per-key lock, so a reservation is admitted exactly when the running
// total plus the estimate fits the daily cap, with no lost updates.
//
// When the store itself fails the governor fails open: availability is
// deliberately preferred over strictness for a monitoring outage, and the
// absorbed failure is logged because silently admitting is a tradeoff
// worth tracking.
func (l *Ledger) CheckAndReserve(ctx context.Context, identity models.Identity, service constants.ServiceTag, estimatedCost float64) errors.GovError {
	limits, ok := l.limits[service]
	if !ok {
		return errors.ErrUnknownService(string(service))
	}

	now := l.now()
	key := ledgerKey(identity.UserID, service, models.Day(now))

	unlock := l.locks.Lock(key)
	defer unlock()

	entry, err := l.load(key)
	if err != nil {
		l.logger.Error(ctx, "cost ledger unavailable, failing open", err,
			logger.String("user_id", identity.UserID),
			logger.String("service", string(service)))
		return nil
	}

	current := 0.0
	count := 0
	if entry != nil {
		current = entry.Cost
		count = entry.RequestCount
	}

	if current+estimatedCost > limits.CostLimitPerDay {
		return errors.ErrCostLimitExceeded(service, limits.CostLimitPerDay).
			WithMetadata("spent_today", current).
			WithMetadata("estimated_cost", estimatedCost)
	}

	updated := &models.CostLedgerEntry{
		UserID:       identity.UserID,
		Service:      service,
		Day:          models.Day(now),
		Cost:         current + estimatedCost,
		RequestCount: count + 1,
		UpdatedAt:    now,
	}
	if err := l.store.Set(key, updated, constants.CostLedgerTTL); err != nil {
		l.logger.Error(ctx, "cost ledger write failed, failing open", err,
			logger.String("user_id", identity.UserID),
			logger.String("service", string(service)))
	}

	return nil
}

// Reconcile adjusts today's ledger by the difference between actual and
// estimated cost once the protected call has completed. The running total
// never goes negative.
func (l *Ledger) Reconcile(identity models.Identity, service constants.ServiceTag, delta float64) {
	if delta == 0 {
		return
	}

	now := l.now()
	key := ledgerKey(identity.UserID, service, models.Day(now))

	unlock := l.locks.Lock(key)
	defer unlock()

	entry, err := l.load(key)
	if err != nil || entry == nil {
		return
	}

	entry.Cost += delta
	if entry.Cost < 0 {
		entry.Cost = 0
	}
	entry.UpdatedAt = now
	_ = l.store.Set(key, entry, constants.CostLedgerTTL)
}

// SpentToday reports the cumulative cost recorded for today.
func (l *Ledger) SpentToday(identity models.Identity, service constants.ServiceTag) float64 {
	key := ledgerKey(identity.UserID, service, models.Day(l.now()))

	unlock := l.locks.Lock(key)
	defer unlock()

	entry, err := l.load(key)
	if err != nil || entry == nil {
		return 0
	}
	return entry.Cost
}

// load fetches the current ledger entry for a key.
// Must be called with the key's lock held.
func (l *Ledger) load(key string) (*models.CostLedgerEntry, error) {
	v, found, err := l.store.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	entry, ok := v.(*models.CostLedgerEntry)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func ledgerKey(userID string, service constants.ServiceTag, day string) string {
	return fmt.Sprintf("%s:%s:%s", userID, service, day)
}
