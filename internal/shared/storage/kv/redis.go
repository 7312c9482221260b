package kv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"resumelens-backend/internal/shared/telemetry"
)

// Redis implements Store on a go-redis client. The underlying client pools
// and re-dials on its own, so a transient outage heals without restart.
type Redis struct {
	client *redis.Client
}

// ErrUnavailable is returned when no client could be established.
var ErrUnavailable = errors.New("kv store unavailable")

// NewRedis connects using a redis:// URL. A bad URL is a configuration
// error and is returned; an unreachable server is not — operations will
// surface errors until the server comes back.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		telemetry.Warn("kv.redis.unreachable", map[string]any{"err": err.Error()})
	}

	return &Redis{client: client}, nil
}

// NewRedisAddr connects to a bare host:port, used by tests against miniredis.
func NewRedisAddr(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.client == nil {
		return "", false, ErrUnavailable
	}
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return ErrUnavailable
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	if r == nil || r.client == nil {
		return 0, ErrUnavailable
	}
	return r.client.Incr(ctx, key).Result()
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	if r == nil || r.client == nil {
		return 0, ErrUnavailable
	}
	return r.client.TTL(ctx, key).Result()
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return ErrUnavailable
	}
	return r.client.Expire(ctx, key, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if r == nil || r.client == nil {
		return ErrUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

var _ Store = (*Redis)(nil)

var (
	sharedMu    sync.Mutex
	sharedStore *Redis
)

// Shared returns a process-wide store, initializing it on first use.
// A failed init is retried on the next call rather than cached.
func Shared(redisURL string) (*Redis, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedStore != nil {
		return sharedStore, nil
	}
	store, err := NewRedis(redisURL)
	if err != nil {
		return nil, err
	}
	sharedStore = store
	return sharedStore, nil
}
