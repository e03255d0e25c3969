// Package codec turns cached values into payload bytes and back. The payload
// is wrapped by an envelope (see package envelope) before it reaches a store,
// so codecs never see the expiry.
package codec

import "errors"

var (
	// ErrEncode wraps any failure to serialize a value.
	ErrEncode = errors.New("codec: encode failed")
	// ErrDecode wraps any failure to deserialize a payload. The cache treats
	// it exactly like an unreadable store entry.
	ErrDecode = errors.New("codec: decode failed")
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

func encodeErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrEncode, err)
}

func decodeErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrDecode, err)
}
