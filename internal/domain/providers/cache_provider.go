package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for response caching operations.
// A miss is reported as an error; callers treat any Get error as "recompute".
type CacheProvider interface {
	// Get retrieves a cached value, erroring on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a time-to-live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
