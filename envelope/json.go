package envelope

import (
	"encoding/json"
	"time"
)

type jsonEntry struct {
	Value    []byte    `json:"value"`
	ExpireAt time.Time `json:"expire_at"`
}

// JSON encodes the envelope as {"value": <base64 payload>, "expire_at": <RFC3339Nano>}.
// Handy when entries are inspected with redis-cli.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Encode(e Entry) ([]byte, error) {
	if e.ExpireAt.IsZero() {
		return nil, ErrNoExpiry
	}
	return json.Marshal(jsonEntry{Value: e.Payload, ExpireAt: e.ExpireAt.UTC()})
}

func (JSON) Decode(b []byte) (Entry, error) {
	var je jsonEntry
	if err := json.Unmarshal(b, &je); err != nil {
		return Entry{}, corrupt(err)
	}
	if je.ExpireAt.IsZero() {
		return Entry{}, ErrCorrupt
	}
	return Entry{Payload: je.Value, ExpireAt: je.ExpireAt}, nil
}
