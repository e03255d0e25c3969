package asidecache

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/unkn0wn-root/asidecache/envelope"
	"github.com/unkn0wn-root/asidecache/internal/util"
	"github.com/unkn0wn-root/asidecache/store"
)

var maxExpireAt = time.Unix(0, math.MaxInt64)

type cache[V any] struct {
	ns        string
	store     store.Store
	entries   EntryCodec[V]
	log       Logger
	hooks     Hooks
	enabled   bool
	cacheDur  time.Duration
	absTTL    time.Duration
	opTimeout time.Duration
	isValid   func(V) bool
	now       func() time.Time
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, invalidOptions("store is required")
	}
	if opts.Codec == nil {
		return nil, invalidOptions("codec is required")
	}
	if opts.CacheDuration < 0 || opts.AbsoluteExpiration < 0 || opts.OpTimeout < 0 {
		return nil, invalidOptions("durations must not be negative")
	}

	c := &cache[V]{
		ns:      opts.Namespace,
		store:   opts.Store,
		enabled: !opts.Disabled,
		isValid: opts.IsValid,
		now:     opts.Now,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.entries = EntryCodec[V]{
		Value:    opts.Codec,
		Envelope: coalesce[envelope.Codec](opts.Envelope, envelope.CBOR{}),
	}
	c.cacheDur = coalesce(opts.CacheDuration, defaultCacheDuration)
	c.absTTL = coalesce(opts.AbsoluteExpiration, max(defaultAbsoluteExpiration, c.cacheDur))
	c.opTimeout = coalesce(opts.OpTimeout, defaultOpTimeout)
	if c.now == nil {
		c.now = time.Now
	}

	if c.absTTL < c.cacheDur {
		return nil, invalidOptions("absolute expiration %s is shorter than cache duration %s", c.absTTL, c.cacheDur)
	}
	// envelopes store expireAt as int64 unix nanos
	if c.now().Add(c.absTTL).After(maxExpireAt) {
		return nil, invalidOptions("expiry %s from now is past %s", c.absTTL, maxExpireAt.Format(time.RFC3339))
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	if c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

func (c *cache[V]) GetOrSet(ctx context.Context, key string, load Loader[V], opts *GetOptions[V]) (V, error) {
	var o GetOptions[V]
	if opts != nil {
		o = *opts
	}
	k := c.storageKey(key)

	if !c.enabled || o.DisableCache {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.hooks.Outcome(k, OutcomeBypassed)
		return v, nil
	}

	var (
		stale *Entry[V]
		// read or decode failed: the loader result is returned but never
		// written. An invalid result still reports as an invalid result.
		readFailed bool
	)

	raw, ok, err := c.get(ctx, k)
	switch {
	case err != nil:
		readFailed = true
		c.hooks.StoreError("get", k, err)
		c.log.Warn("cache read failed; calling loader", Fields{"key": k, "err": err})
	case ok:
		e, derr := c.entries.Decode(raw)
		if derr != nil {
			readFailed = true
			c.hooks.CodecError("decode", k, derr)
			c.log.Warn("cache entry unreadable; calling loader", Fields{"key": k, "err": derr})
			break
		}
		if e.Fresh(c.now()) {
			c.log.Debug("cache hit", Fields{"key": k})
			c.hooks.Outcome(k, OutcomeHit)
			return e.Value, nil
		}
		stale = &e
		c.log.Debug("cache entry logically expired", Fields{"key": k, "expireAt": e.ExpireAt})
	default:
		c.log.Debug("cache miss", Fields{"key": k})
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if !c.valid(o, v) {
		if o.UseStaleOnInvalid && stale != nil {
			c.log.Info("invalid loader result; serving stale entry", Fields{"key": k, "expireAt": stale.ExpireAt})
			c.hooks.Outcome(k, OutcomeStaleServed)
			return stale.Value, nil
		}
		c.log.Info("invalid loader result; not cached", Fields{"key": k})
		c.hooks.Outcome(k, OutcomeLoaderFallbackOnInvalidResult)
		return v, nil
	}

	if readFailed {
		c.hooks.Outcome(k, OutcomeLoaderFallbackOnStoreFailure)
		return v, nil
	}

	// write-back problems are events only; the caller still gets the value
	c.write(ctx, k, v)
	c.hooks.Outcome(k, OutcomeMissLoaded)
	return v, nil
}

func (c *cache[V]) Expire(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	k := c.storageKey(key)

	raw, ok, err := c.get(ctx, k)
	if err != nil {
		c.hooks.StoreError("get", k, err)
		c.log.Warn("expire: cache read failed", Fields{"key": k, "err": err})
		return nil
	}
	if !ok {
		c.hooks.ExpireMissing(k)
		c.log.Debug("expire: key not cached", Fields{"key": k})
		return nil
	}

	b, err := envelope.Restamp(c.entries.Envelope, raw, c.now())
	if err != nil {
		c.hooks.CodecError("decode", k, err)
		c.log.Warn("expire: cache entry unreadable", Fields{"key": k, "err": err})
		return nil
	}
	if err := c.set(ctx, k, b); err != nil {
		c.hooks.StoreError("set", k, err)
		c.log.Warn("expire: cache write failed", Fields{"key": k, "err": err})
		return nil
	}
	c.log.Debug("expired key", Fields{"key": k})
	return nil
}

// ExpireByPrefix is best-effort: the key listing is not a point-in-time
// snapshot, so keys written while it runs may be left fresh.
func (c *cache[V]) ExpireByPrefix(ctx context.Context, prefix string) error {
	if !c.enabled {
		return nil
	}
	p := c.storageKey(prefix)

	keys, err := c.scan(ctx, p)
	if err != nil {
		c.hooks.StoreError("scan", p, err)
		c.log.Warn("expire prefix: scan failed", Fields{"prefix": p, "err": err})
		return nil
	}
	if len(keys) == 0 {
		c.log.Debug("expire prefix: no keys", Fields{"prefix": p})
		return nil
	}

	vals, err := c.mget(ctx, keys)
	if err != nil {
		c.hooks.StoreError("mget", p, err)
		c.log.Warn("expire prefix: batched read failed", Fields{"prefix": p, "keys": len(keys), "err": err})
		return nil
	}

	now := c.now()
	items := make([]store.Item, 0, len(keys))
	for i, raw := range vals {
		if raw == nil {
			continue // evicted since the scan
		}
		b, err := envelope.Restamp(c.entries.Envelope, raw, now)
		if err != nil {
			c.hooks.CodecError("decode", keys[i], err)
			c.log.Warn("expire prefix: skipping unreadable entry", Fields{"key": keys[i], "err": err})
			continue
		}
		items = append(items, store.Item{Key: keys[i], Value: b, TTL: c.absTTL})
	}
	if len(items) == 0 {
		c.hooks.BatchExpired(p, len(keys), 0)
		return nil
	}

	errs := c.mset(ctx, items)
	failed := make(map[string]error)
	for i, err := range errs {
		if err != nil {
			failed[items[i].Key] = err
		}
	}
	written := len(items) - len(failed)
	c.hooks.BatchExpired(p, len(keys), written)

	if len(failed) == 0 {
		c.log.Debug("expired prefix", Fields{"prefix": p, "keys": written})
		return nil
	}

	c.hooks.BatchPartial(p, len(failed), len(items))
	if written == 0 {
		// nothing landed: same as any other store outage
		c.hooks.StoreError("mset", p, errors.Join(errs...))
		c.log.Warn("expire prefix: batched write failed", Fields{"prefix": p, "keys": len(items)})
		return nil
	}
	perr := &PartialBatchError{Prefix: p, Total: len(items), Failed: failed}
	c.log.Error("expire prefix: partial batch failure", Fields{"prefix": p, "failed": len(failed), "total": len(items)})
	return perr
}

func (c *cache[V]) valid(o GetOptions[V], v V) bool {
	if o.IsValid != nil {
		return o.IsValid(v)
	}
	if c.isValid != nil {
		return c.isValid(v)
	}
	return true
}

func (c *cache[V]) write(ctx context.Context, k string, v V) {
	b, err := c.entries.Encode(Entry[V]{Value: v, ExpireAt: c.now().Add(c.cacheDur)})
	if err != nil {
		c.hooks.CodecError("encode", k, err)
		c.log.Error("cache entry encode failed", Fields{"key": k, "err": err})
		return
	}
	if err := c.set(ctx, k, b); err != nil {
		c.hooks.StoreError("set", k, err)
		c.log.Warn("cache write failed", Fields{"key": k, "err": err})
		return
	}
	c.log.Debug("cache set", Fields{"key": k, "ttl": c.absTTL})
}

// store calls, each bounded by opTimeout

func (c *cache[V]) get(ctx context.Context, k string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Get(ctx, k)
}

func (c *cache[V]) set(ctx context.Context, k string, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Set(ctx, k, b, c.absTTL)
}

func (c *cache[V]) scan(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Scan(ctx, prefix)
}

func (c *cache[V]) mget(ctx context.Context, keys []string) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	vals, err := c.store.MGet(ctx, keys)
	if err == nil && len(vals) != len(keys) {
		err = store.Unavailable(errors.New("mget: result length mismatch"))
	}
	return vals, err
}

func (c *cache[V]) mset(ctx context.Context, items []store.Item) []error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	errs := c.store.MSet(ctx, items)
	if len(errs) != len(items) {
		return store.Fill(len(items), store.Unavailable(errors.New("mset: result length mismatch")))
	}
	return errs
}

func (c *cache[V]) storageKey(key string) string {
	return util.JoinKey(c.ns, key)
}
