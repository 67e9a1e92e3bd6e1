package arbor

import (
	"context"
	"strconv"
	"time"
)

// Cache is the interface for the optional second-level query result cache
// consulted by the session. It is deliberately process-wide state with an
// explicit invalidation surface keyed by table prefix; it is never the
// per-materialization identity map, which stays call-scoped.
//
// Users may implement this interface with their preferred caching solution
// (e.g., Redis, Memcached). An in-memory implementation is provided by the
// cache subpackage.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies one query result set in the cache. Keys for the same
// table share the table prefix so a mutation can invalidate them in one call.
type CacheKey struct {
	Table      string
	Operation  string
	Predicates string
	OrderBy    string
	Limit      int
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	s := k.Table + ":" + k.Operation + ":" + k.Predicates + ":" + k.OrderBy
	if k.Limit > 0 {
		s += ":" + strconv.Itoa(k.Limit)
	}
	return s
}

// TablePrefix returns the invalidation prefix covering every cached query
// against the key's table.
func (k CacheKey) TablePrefix() string {
	return k.Table + ":"
}
