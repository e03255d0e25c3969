package asidecache

import (
	"errors"
	"reflect"
	"testing"
	"time"

	c "github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/envelope"
)

func TestEntryRoundTrip(t *testing.T) {
	exp := time.Date(2026, 10, 16, 9, 10, 0, 123456789, time.UTC)
	in := Entry[forecast]{Value: lisbon, ExpireAt: exp}

	envs := map[string]envelope.Codec{
		"cbor":    envelope.CBOR{},
		"msgpack": envelope.Msgpack{},
		"json":    envelope.JSON{},
		"wire":    envelope.Wire{},
	}
	vals := map[string]c.Codec[forecast]{
		"json":    c.JSON[forecast]{},
		"msgpack": c.Msgpack[forecast]{},
		"cbor":    c.MustCBOR[forecast](true),
	}
	for en, env := range envs {
		for vn, val := range vals {
			t.Run(en+"/"+vn, func(t *testing.T) {
				ec := EntryCodec[forecast]{Value: val, Envelope: env}
				b, err := ec.Encode(in)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				out, err := ec.Decode(b)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if !reflect.DeepEqual(out.Value, in.Value) || !out.ExpireAt.Equal(in.ExpireAt) {
					t.Fatalf("got %+v want %+v", out, in)
				}
			})
		}
	}
}

func TestEntryDecodeErrors(t *testing.T) {
	ec := EntryCodec[forecast]{Value: c.JSON[forecast]{}, Envelope: envelope.CBOR{}}

	if _, err := ec.Decode([]byte{0xff}); !errors.Is(err, envelope.ErrCorrupt) {
		t.Fatalf("expected envelope.ErrCorrupt, got %v", err)
	}

	// valid envelope, payload the value codec cannot read
	b, err := (envelope.CBOR{}).Encode(envelope.Entry{Payload: []byte("{"), ExpireAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ec.Decode(b); !errors.Is(err, c.ErrDecode) {
		t.Fatalf("expected codec.ErrDecode, got %v", err)
	}
}

func TestEntryFresh(t *testing.T) {
	now := time.Now()
	e := Entry[int]{Value: 1, ExpireAt: now}
	if e.Fresh(now) {
		t.Fatalf("entry expiring now must not be fresh")
	}
	if !e.Fresh(now.Add(-time.Nanosecond)) {
		t.Fatalf("entry should be fresh before expireAt")
	}
}
