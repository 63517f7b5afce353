// Package cache stores solved orderings and generated instances so that
// repeated runs on the same input return immediately.
//
// Backends implement [Cache]: [FileCache] for local CLI use, [RedisCache]
// for a shared cache, and [NullCache] when caching is disabled. Keys are
// built by a [Keyer] from an instance fingerprint or generator parameters,
// and [ScopedKeyer] prefixes them to isolate namespaces.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for
// backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs for cached entries.
const (
	// TTLSolution is effectively forever: a satisfying ordering never
	// stops being one.
	TTLSolution time.Duration = 0
	TTLInstance = 30 * 24 * time.Hour
)
