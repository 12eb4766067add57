// Package ratelimit provides in-memory dual-window rate limiting.
//
// Every caller is counted in two fixed-origin windows at once: a 60 second
// window capping bursts and a 3600 second window capping sustained use. A
// caller may repeatedly run up to the minute cap as long as the hourly cap
// holds. Window starts are derived by truncating the current time to the
// period boundary, so a window's outer edge is fixed, not sliding.
package ratelimit

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

// WindowLimiter implements service.RateLimitService on a TTL-bounded
// in-memory store. Counters age out on their own; nothing deletes them.
type WindowLimiter struct {
	store  *cache.Cache
	locks  *utils.KeyedMutex
	limits map[constants.ServiceTag]config.ServiceLimits
	logger logger.Logger

	// now is swappable for deterministic window tests.
	now func() time.Time
}

// NewWindowLimiter creates a rate limiter for the configured service table.
func NewWindowLimiter(services map[string]config.ServiceLimits, log logger.Logger) *WindowLimiter {
	// Configuration keys arrive lowercased; service tags are upper-case.
	limits := make(map[constants.ServiceTag]config.ServiceLimits, len(services))
	for name, l := range services {
		limits[constants.ServiceTag(strings.ToUpper(name))] = l
	}

	return &WindowLimiter{
		store:  cache.New(constants.RateWindowTTL, constants.StoreSweepInterval),
		locks:  utils.NewKeyedMutex(utils.DefaultLockShards),
		limits: limits,
		logger: log.WithComponent("ratelimit"),
		now:    time.Now,
	}
}

// Admit checks both windows for the caller and increments them when under
// limit. The check and the increments happen under one per-key lock so two
// concurrent requests can never both observe "under limit" and push a
// counter past it.
func (l *WindowLimiter) Admit(ctx context.Context, identity models.Identity, service constants.ServiceTag) errors.GovError {
	limits, ok := l.limits[service]
	if !ok {
		l.logger.Error(ctx, "unknown service for rate limiting", nil, logger.String("service", string(service)))
		return errors.ErrUnknownService(string(service))
	}

	now := l.now()
	minuteStart := truncate(now, constants.WindowMinute)
	hourStart := truncate(now, constants.WindowHour)

	unlock := l.locks.Lock(lockKey(identity.UserID, service))
	defer unlock()

	minuteWindow := l.lookup(identity, service, constants.WindowMinute, minuteStart)
	if minuteWindow != nil && minuteWindow.RequestCount >= limits.RequestsPerMinute {
		retryAfter := retryAfterSeconds(now, minuteStart, constants.WindowMinute)
		return errors.ErrRateLimitExceeded(constants.WindowMinute, retryAfter)
	}

	hourWindow := l.lookup(identity, service, constants.WindowHour, hourStart)
	if hourWindow != nil && hourWindow.RequestCount >= limits.RequestsPerHour {
		retryAfter := retryAfterSeconds(now, hourStart, constants.WindowHour)
		return errors.ErrRateLimitExceeded(constants.WindowHour, retryAfter)
	}

	l.increment(identity, service, constants.WindowMinute, minuteStart, minuteWindow, limits.RequestsPerMinute)
	l.increment(identity, service, constants.WindowHour, hourStart, hourWindow, limits.RequestsPerHour)

	return nil
}

// Usage reports the current window counts for diagnostics.
func (l *WindowLimiter) Usage(identity models.Identity, service constants.ServiceTag) (minute, hour int) {
	now := l.now()

	unlock := l.locks.Lock(lockKey(identity.UserID, service))
	defer unlock()

	if w := l.lookup(identity, service, constants.WindowMinute, truncate(now, constants.WindowMinute)); w != nil {
		minute = w.RequestCount
	}
	if w := l.lookup(identity, service, constants.WindowHour, truncate(now, constants.WindowHour)); w != nil {
		hour = w.RequestCount
	}
	return minute, hour
}

// lookup returns the live window entry, or nil if none exists yet.
// Must be called with the key's lock held.
func (l *WindowLimiter) lookup(identity models.Identity, service constants.ServiceTag, kind constants.WindowKind, windowStart int64) *models.RateWindow {
	if v, found := l.store.Get(windowKey(identity.UserID, service, kind, windowStart)); found {
		if w, ok := v.(*models.RateWindow); ok {
			return w
		}
	}
	return nil
}

// increment bumps an existing window or creates it at count 1.
// Must be called with the key's lock held.
func (l *WindowLimiter) increment(identity models.Identity, service constants.ServiceTag, kind constants.WindowKind, windowStart int64, window *models.RateWindow, limit int) {
	if window != nil {
		window.RequestCount++
		return
	}

	l.store.Set(windowKey(identity.UserID, service, kind, windowStart), &models.RateWindow{
		UserID:       identity.UserID,
		Service:      service,
		Kind:         kind,
		RequestCount: 1,
		WindowStart:  windowStart,
		Limit:        limit,
	}, ttlFor(kind))
}

// truncate aligns a timestamp to the fixed origin of the window period.
func truncate(now time.Time, kind constants.WindowKind) int64 {
	period := int64(kind.Period().Seconds())
	return (now.Unix() / period) * period
}

// retryAfterSeconds is the time remaining until the window rolls over,
// always within [0, period].
func retryAfterSeconds(now time.Time, windowStart int64, kind constants.WindowKind) int64 {
	period := int64(kind.Period().Seconds())
	remaining := period - (now.Unix() - windowStart)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > period {
		remaining = period
	}
	return remaining
}

// ttlFor keeps a window entry alive for twice its period so an in-flight
// window never expires under its own feet.
func ttlFor(kind constants.WindowKind) time.Duration {
	return 2 * kind.Period()
}

func windowKey(userID string, service constants.ServiceTag, kind constants.WindowKind, windowStart int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", userID, service, kind, windowStart)
}

func lockKey(userID string, service constants.ServiceTag) string {
	return fmt.Sprintf("%s:%s", userID, service)
}
