package cache

import (
	"context"
	"errors"
	"time"
)

// NoExpiration indicates that a cached value should never expire.
const NoExpiration time.Duration = -1

// ErrKeyNotFound is returned by Get when the key is absent from the cache.
var ErrKeyNotFound = errors.New("key not found in cache")

// Cache is the backend-agnostic key/value interface used by the stores to
// keep parsed file snapshots. Implementations live in the inmemory and redis
// subpackages; values are JSON strings so every backend can hold them.
type Cache interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (interface{}, error)

	// Set stores value under key with the given expiration.
	// Use NoExpiration for values that should live until overwritten.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Delete removes key from the cache. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
