// Package ratelimit bounds the frequency of named operations per identifier
// using fixed-window counters in the shared key-value store. Atomicity comes
// from the store's INCR; there is no application-level locking.
package ratelimit

import (
	"context"
	"time"

	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/storage/kv"
	"resumelens-backend/internal/shared/telemetry"
)

// Rule pairs a request budget with its window. The pairing per operation is
// load-bearing; adjust both together or not at all.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Rules holds the per-operation budgets.
var Rules = map[string]Rule{
	"upload":   {Limit: 3, Window: 10 * time.Minute},
	"contact":  {Limit: 5, Window: 5 * time.Minute},
	"login":    {Limit: 5, Window: 5 * time.Minute},
	"register": {Limit: 3, Window: time.Hour},
}

// Result reports the limiter's decision for one request.
type Result struct {
	Limited    bool          `json:"limited"`
	Remaining  int           `json:"remaining"`
	TTL        time.Duration `json:"ttl"`
	RetryAfter time.Duration `json:"retryAfter,omitempty"`
}

// Limiter checks fixed-window counters against the configured rules.
type Limiter struct {
	Store kv.Store
}

// New constructs a Limiter on the given store.
func New(store kv.Store) *Limiter {
	return &Limiter{Store: store}
}

// Check increments the window counter for (op, identifier[, ip]) and reports
// whether the request exceeds the operation's budget. If the counter store is
// unreachable the limiter fails open: availability over strictness.
func (l *Limiter) Check(ctx context.Context, op, identifier, ip string) Result {
	rule, ok := Rules[op]
	if !ok {
		return Result{Limited: false, Remaining: 1}
	}

	key := kv.RateLimitPrefix + op + ":" + identifier
	if ip != "" {
		key += ":" + ip
	}

	count, err := l.Store.Incr(ctx, key)
	if err != nil {
		return l.failOpen(op, err)
	}
	if count == 1 {
		if err := l.Store.Expire(ctx, key, rule.Window); err != nil {
			return l.failOpen(op, err)
		}
	}
	ttl, err := l.Store.TTL(ctx, key)
	if err != nil {
		return l.failOpen(op, err)
	}
	if ttl <= 0 {
		ttl = rule.Window
	}

	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	limited := count > int64(rule.Limit)

	res := Result{Limited: limited, Remaining: remaining, TTL: ttl}
	if limited {
		res.RetryAfter = ttl
		metrics.IncRateLimited()
	}
	return res
}

func (l *Limiter) failOpen(op string, err error) Result {
	telemetry.Warn("ratelimit.store_error", map[string]any{
		"op":  op,
		"err": err.Error(),
	})
	return Result{Limited: false, Remaining: 1}
}
