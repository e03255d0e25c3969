package asidecache

// Hooks are lightweight callbacks for cache events.
// Implementations MUST be cheap and non-blocking: the cache calls them on
// hot paths. Keys passed to hooks are storage keys (namespace included).
type Hooks interface {
	// Outcome is called once per successful GetOrSet.
	Outcome(key string, o Outcome)

	// StoreError reports a store call that failed or timed out.
	// op ∈ {"get", "set", "mget", "mset", "scan"}
	StoreError(op, key string, err error)

	// CodecError reports bytes that could not be decoded, or a value that
	// could not be encoded. op ∈ {"decode", "encode"}
	CodecError(op, key string, err error)

	// ExpireMissing is called when Expire finds nothing to expire.
	ExpireMissing(key string)

	// BatchExpired reports a finished ExpireByPrefix: matched keys scanned,
	// written entries rewritten successfully.
	BatchExpired(prefix string, matched, written int)

	// BatchPartial reports ExpireByPrefix writes that failed.
	BatchPartial(prefix string, failed, total int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Outcome(string, Outcome)          {}
func (NopHooks) StoreError(string, string, error) {}
func (NopHooks) CodecError(string, string, error) {}
func (NopHooks) ExpireMissing(string)             {}
func (NopHooks) BatchExpired(string, int, int)    {}
func (NopHooks) BatchPartial(string, int, int)    {}
