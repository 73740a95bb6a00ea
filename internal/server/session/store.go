// Package session implements cookie-backed sessions: an opaque random
// identifier in an HttpOnly cookie maps to a user id in a key-value store
// with a fixed TTL. The store entry's existence is the sole proof of
// authentication; nothing in the entry is signed or encrypted.
package session

import (
	"context"
	"time"
)

// Store is the key-value backend sessions live in. Implementations must
// expire entries on their own once the TTL elapses.
type Store interface {
	// Set writes key -> value with the given TTL, overwriting any previous value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or common.ErrorNotFound when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
