package cache

import (
	"context"
	"time"
)

// Cache is the port the repositories and the session store talk to.
// Implementations: Redis in production, in-memory fakes in tests.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found = false means cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Expire resets the TTL of an existing key. Used for sliding session
	// expiry.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
