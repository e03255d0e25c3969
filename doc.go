// Package asidecache is a cache-aside layer over a TTL byte store (Redis in
// production, ristretto or bigcache in-process). It memoizes expensive loader
// calls, degrades to calling the loader directly when the store is
// unreachable, and invalidates by marking entries logically expired instead
// of deleting them, so a stale copy stays available as a fallback.
//
// Components:
//   - store.Store: byte store with per-key TTL, batched reads/writes and prefix scan.
//   - codec.Codec[V]: (de)serializes V <-> payload bytes.
//   - envelope.Codec: frames payload + expireAt; the only format written to the store.
//
// Each entry carries two lifetimes:
//
//	CacheDuration      - logical freshness; after it the entry is stale
//	AbsoluteExpiration - physical TTL in the store; stale bytes live this long
//
// GetOrSet outcomes (reported through Hooks.Outcome):
//
//	Bypassed                       disabled cache; loader called, store untouched
//	Hit                            fresh entry returned, loader not called
//	MissLoaded                     loader called, valid result written back
//	StaleServed                    loader result invalid, stale copy returned
//	LoaderFallbackOnInvalidResult  loader result invalid, returned as-is, not written
//	LoaderFallbackOnStoreFailure   store unreadable/undecodable; loader result returned
//
// Typical use:
//
//	c, _ := asidecache.New(asidecache.Options[Forecast]{
//	    Store:              rs, // store/redis
//	    Codec:              codec.JSON[Forecast]{},
//	    CacheDuration:      5 * time.Minute,
//	    AbsoluteExpiration: time.Hour,
//	})
//	f, err := c.GetOrSet(ctx, "forecast:42", loadForecast, &asidecache.GetOptions[Forecast]{
//	    UseStaleOnInvalid: true,
//	    IsValid:           func(f Forecast) bool { return f.Valid },
//	})
//	_ = c.ExpireByPrefix(ctx, "forecast:")
//
// Concurrent misses for the same key are not coalesced: every caller runs the
// loader and the last write wins.
package asidecache
