package envelope

import (
	"time"

	"github.com/unkn0wn-root/asidecache/internal/wire"
)

// Wire is a compact binary framing. It is not self-describing, but Restamp
// only touches the 8 expiry bytes.
type Wire struct{}

var (
	_ Codec     = Wire{}
	_ Restamper = Wire{}
)

func (Wire) Encode(e Entry) ([]byte, error) {
	if e.ExpireAt.IsZero() {
		return nil, ErrNoExpiry
	}
	return wire.Encode(e.ExpireAt, e.Payload), nil
}

func (Wire) Decode(b []byte) (Entry, error) {
	exp, payload, err := wire.Decode(b)
	if err != nil {
		return Entry{}, corrupt(err)
	}
	return Entry{Payload: payload, ExpireAt: exp}, nil
}

func (Wire) Restamp(b []byte, expireAt time.Time) ([]byte, error) {
	if expireAt.IsZero() {
		return nil, ErrNoExpiry
	}
	out, err := wire.Restamp(b, expireAt)
	if err != nil {
		return nil, corrupt(err)
	}
	return out, nil
}
