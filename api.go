package asidecache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/envelope"
	"github.com/unkn0wn-root/asidecache/store"
)

// Loader computes the value for a cache key. Its errors are returned to the
// caller of GetOrSet unchanged.
type Loader[V any] func(ctx context.Context) (V, error)

// Cache is the cache-aside API. V is the caller's value type.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// GetOrSet returns the fresh cached value for key or computes it with
	// load. Store problems never surface as errors; only load's own error does.
	GetOrSet(ctx context.Context, key string, load Loader[V], opts *GetOptions[V]) (V, error)

	// Expire marks key logically expired, keeping its bytes for stale
	// fallback. Absent keys are a no-op.
	Expire(ctx context.Context, key string) error

	// ExpireByPrefix marks every key starting with prefix logically expired
	// using one batched read and one batched write. Returns *PartialBatchError
	// when only part of the batch could be written.
	ExpireByPrefix(ctx context.Context, prefix string) error
}

// GetOptions tune a single GetOrSet call. A nil *GetOptions means defaults.
type GetOptions[V any] struct {
	// DisableCache calls the loader without touching the store.
	DisableCache bool
	// UseStaleOnInvalid returns a logically expired copy, when one was read,
	// instead of an invalid loader result.
	UseStaleOnInvalid bool
	// IsValid overrides Options.IsValid for this call.
	IsValid func(V) bool
}

// Options configure the cache. Store and Codec are required.
type Options[V any] struct {
	// Required
	Store store.Store
	Codec codec.Codec[V]

	Envelope           envelope.Codec   // nil => envelope.CBOR
	Namespace          string           // optional; keys become "<ns>:<key>"
	Logger             Logger           // nil => NopLogger
	Hooks              Hooks            // nil => NopHooks
	CacheDuration      time.Duration    // logical freshness; 0 => 10m
	AbsoluteExpiration time.Duration    // physical TTL; 0 => 1h; must be >= CacheDuration
	OpTimeout          time.Duration    // bound on every store call; 0 => 5s
	IsValid            func(V) bool     // nil => every loader result is cacheable
	Disabled           bool             // bypass the store for every call
	Now                func() time.Time // nil => time.Now
}

func New[V any](opts Options[V]) (Cache[V], error) {
	c, err := newCache(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}
