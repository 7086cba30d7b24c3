package repository

import (
	"context"
	"time"
)

// KeyValueStore is the TTL-capable store backing OTP codes and counters.
// Two implementations exist (Redis-backed and process-local); callers must
// not be able to observe which one served a call.
type KeyValueStore interface {
	// Get returns the value for key, or domain.ErrNotFound if the key is
	// absent or past its expiry.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores value under key, overwriting any prior value and
	// restarting the expiry window.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// IncrWithTTL initializes the key to 1 with a fresh expiry window when
	// absent or expired, otherwise increments the stored integer while
	// preserving the original expiry. Returns the post-increment count.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Del removes the key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// CompareAndDelete deletes the key only if its current value equals
	// expected, reporting whether the delete happened. This is the
	// single-use consume step for OTP hashes; it must be atomic on a
	// shared backend.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}
