package envelope

import (
	"time"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

type cborEntry struct {
	Value    []byte `cbor:"value"`
	ExpireAt int64  `cbor:"expire_at"` // unix nanos
}

// CBOR encodes the envelope as a deterministic CBOR map {value, expire_at}.
// The zero value is ready to use. This is the default envelope.
type CBOR struct{}

var _ Codec = CBOR{}

func (CBOR) Encode(e Entry) ([]byte, error) {
	if e.ExpireAt.IsZero() {
		return nil, ErrNoExpiry
	}
	return cborEnc.Marshal(cborEntry{Value: e.Payload, ExpireAt: e.ExpireAt.UnixNano()})
}

func (CBOR) Decode(b []byte) (Entry, error) {
	var ce cborEntry
	if err := cborDec.Unmarshal(b, &ce); err != nil {
		return Entry{}, corrupt(err)
	}
	if ce.ExpireAt == 0 {
		return Entry{}, ErrCorrupt
	}
	return Entry{Payload: ce.Value, ExpireAt: time.Unix(0, ce.ExpireAt).UTC()}, nil
}
