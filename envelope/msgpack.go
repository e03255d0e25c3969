package envelope

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackEntry struct {
	Value    []byte `msgpack:"value"`
	ExpireAt int64  `msgpack:"expire_at"`
}

// Msgpack encodes the envelope as a msgpack map {value, expire_at}.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) Encode(e Entry) ([]byte, error) {
	if e.ExpireAt.IsZero() {
		return nil, ErrNoExpiry
	}
	return msgpack.Marshal(msgpackEntry{Value: e.Payload, ExpireAt: e.ExpireAt.UnixNano()})
}

func (Msgpack) Decode(b []byte) (Entry, error) {
	var me msgpackEntry
	if err := msgpack.Unmarshal(b, &me); err != nil {
		return Entry{}, corrupt(err)
	}
	if me.ExpireAt == 0 {
		return Entry{}, ErrCorrupt
	}
	return Entry{Payload: me.Value, ExpireAt: time.Unix(0, me.ExpireAt).UTC()}, nil
}
