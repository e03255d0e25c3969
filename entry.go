package asidecache

import (
	"time"

	"github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/envelope"
)

// Entry is a memoized value and the instant it stops being fresh. The store
// may keep the bytes well past ExpireAt (see Options.AbsoluteExpiration).
type Entry[V any] struct {
	Value    V
	ExpireAt time.Time
}

// Fresh reports whether the entry is still within its logical lifetime.
func (e Entry[V]) Fresh(now time.Time) bool {
	return now.Before(e.ExpireAt)
}

// EntryCodec encodes entries as a value payload wrapped in an envelope.
type EntryCodec[V any] struct {
	Value    codec.Codec[V]
	Envelope envelope.Codec
}

func (c EntryCodec[V]) Encode(e Entry[V]) ([]byte, error) {
	payload, err := c.Value.Encode(e.Value)
	if err != nil {
		return nil, err
	}
	return c.Envelope.Encode(envelope.Entry{Payload: payload, ExpireAt: e.ExpireAt})
}

func (c EntryCodec[V]) Decode(b []byte) (Entry[V], error) {
	env, err := c.Envelope.Decode(b)
	if err != nil {
		return Entry[V]{}, err
	}
	v, err := c.Value.Decode(env.Payload)
	if err != nil {
		return Entry[V]{}, err
	}
	return Entry[V]{Value: v, ExpireAt: env.ExpireAt}, nil
}
