// Package kv wraps the shared Redis connection behind a small key-value
// interface so pipeline code stays agnostic of the concrete store. Every
// caller treats entries as advisory: the system must behave correctly
// (slower, not wrong) with any entry absent.
package kv

import (
	"context"
	"time"
)

// Key namespaces used across the application.
const (
	AnalysisCachePrefix  = "resume:cache:"
	JobsCachePrefix      = "jobs:cache:"
	ResumeListPrefix     = "resumes:list:"
	DashboardCachePrefix = "dashboard:analytics:"
	RateLimitPrefix      = "rate:"
)

// Store is the store contract: GET / SET-with-expiry / INCR / TTL / DEL,
// plus EXPIRE for the rate limiter's first-increment window arming.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEX(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
