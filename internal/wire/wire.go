package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
	expOff       = 4 + 1
)

var (
	ErrCorrupt = errors.New("asidecache: corrupt entry")
	magic4     = [...]byte{'A', 'S', 'D', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | expireAt(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
func Encode(expireAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(expireAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the expiry and a sub-slice of b holding the payload.
func Decode(b []byte) (expireAt time.Time, payload []byte, err error) {
	if err := check(b); err != nil {
		return time.Time{}, nil, err
	}
	nanos := int64(binary.BigEndian.Uint64(b[expOff : expOff+8]))
	return time.Unix(0, nanos).UTC(), b[hdrLen:], nil
}

// Restamp returns a copy of b with only the expiry replaced. The payload
// bytes are never interpreted.
func Restamp(b []byte, expireAt time.Time) ([]byte, error) {
	if err := check(b); err != nil {
		return nil, err
	}
	out := bytes.Clone(b)
	binary.BigEndian.PutUint64(out[expOff:expOff+8], uint64(expireAt.UnixNano()))
	return out, nil
}

func check(b []byte) error {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[expOff+8 : hdrLen]))
	// exact framing: no short payloads, no trailing junk
	if vlen < 0 || vlen != len(b)-hdrLen {
		return ErrCorrupt
	}
	return nil
}
