// Package store defines the byte store the cache sits on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the bytes previously passed to Set for a key. A store may evict entries on
// its own (TTL, memory pressure); the cache treats that as a plain miss.
//
// Connectivity problems (dial failures, timeouts, closed clients, server
// errors) MUST be reported as errors matching ErrUnavailable so the cache can
// tell them apart from "key absent".
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks errors caused by an unreachable or unhealthy store.
var ErrUnavailable = errors.New("store: unavailable")

// Unavailable joins err with ErrUnavailable. A nil err stays nil.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}

// Item is a single write of a batch.
type Item struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// Store is a byte store with per-key TTLs. Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// MGet reads many keys at once. The result has the same length and order
	// as keys; absent keys are nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)

	// MSet writes all items in one batch (pipeline) and waits for every write
	// to settle. The result has one entry per item, nil on success. Writes
	// that succeeded are never rolled back.
	MSet(ctx context.Context, items []Item) []error

	// Scan lists keys starting with prefix. The listing is best-effort: keys
	// written while it runs may or may not be included.
	Scan(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Fill returns a per-item error slice of length n holding err everywhere.
// Adapters use it when a whole batch fails before any write is attempted.
func Fill(n int, err error) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}
