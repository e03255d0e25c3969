// Package envelope frames a cached payload together with its logical expiry.
//
// The envelope is the only thing the cache writes to a store. Payload bytes
// are produced by a value codec (package codec) and are opaque here, which
// lets the expiration paths rewrite ExpireAt without knowing the value type.
package envelope

import (
	"errors"
	"time"
)

var (
	// ErrCorrupt is returned when stored bytes are not a valid envelope.
	ErrCorrupt = errors.New("envelope: corrupt entry")
	// ErrNoExpiry is returned by Encode for an Entry without ExpireAt.
	ErrNoExpiry = errors.New("envelope: expireAt is required")
)

// Entry is a type-erased cache entry.
type Entry struct {
	Payload  []byte
	ExpireAt time.Time
}

// Codec encodes/decodes envelopes.
type Codec interface {
	Encode(Entry) ([]byte, error)
	Decode([]byte) (Entry, error)
}

// Restamper is implemented by codecs that can replace the expiry of an
// encoded envelope without a full decode/encode cycle.
type Restamper interface {
	Restamp(b []byte, expireAt time.Time) ([]byte, error)
}

// Restamp rewrites the expiry of an encoded envelope using c. Codecs that do
// not implement Restamper go through Decode and Encode.
func Restamp(c Codec, b []byte, expireAt time.Time) ([]byte, error) {
	if r, ok := c.(Restamper); ok {
		return r.Restamp(b, expireAt)
	}
	e, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	e.ExpireAt = expireAt
	return c.Encode(e)
}

func corrupt(err error) error {
	return errors.Join(ErrCorrupt, err)
}
