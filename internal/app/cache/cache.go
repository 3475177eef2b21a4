// Package cache exposes the narrow key-value surface the application
// needs from its fast store. Callers must treat any returned error other
// than ErrCacheMiss as "cache unavailable", never as "value absent".
package cache

import (
	"context"
	"errors"
	"time"
)

// Key namespaces shared by the service, the aggregator and the throttle.
const (
	ShortPrefix = "short:"
	ClickPrefix = "click:"
	RatePrefix  = "rate:"
)

// ErrCacheMiss reports a key that is definitely absent.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the ephemeral store contract: per-key expiry, atomic
// increments and prefix enumeration.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}
