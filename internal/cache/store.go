// Package cache holds the shared key/value store abstraction and the
// staleness-aware manager built on top of it.
package cache

import "context"

// Store is the minimal contract against the shared cache. Implementations
// must round-trip stored values exactly (decimal precision, timestamps).
//
// A read error and a missing key are distinct: callers treat errors as a
// miss anyway, but implementations should not conflate them.
type Store interface {
	// Get unmarshals the value at key into dest and reports whether the key
	// existed.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value at key, replacing any existing entry wholesale.
	Set(ctx context.Context, key string, value any) error
}
