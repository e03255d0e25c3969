package envelope

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func allCodecs() map[string]Codec {
	return map[string]Codec{
		"cbor":    CBOR{},
		"msgpack": Msgpack{},
		"json":    JSON{},
		"wire":    Wire{},
	}
}

func TestRoundTripPreservesPayloadAndExpiry(t *testing.T) {
	exp := time.Date(2026, 10, 16, 9, 15, 30, 987654321, time.FixedZone("X", 3600))
	payloads := [][]byte{
		nil,
		[]byte(`{"city":"Lisbon","temp_c":21}`),
		{0x00, 0xff, 0x10},
	}
	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			for _, p := range payloads {
				b, err := c.Encode(Entry{Payload: p, ExpireAt: exp})
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				got, err := c.Decode(b)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if !bytes.Equal(got.Payload, p) {
					t.Fatalf("payload mismatch: got %x want %x", got.Payload, p)
				}
				if !got.ExpireAt.Equal(exp) {
					t.Fatalf("expiry mismatch: got %v want %v", got.ExpireAt, exp)
				}
			}
		})
	}
}

func TestEncodeRequiresExpiry(t *testing.T) {
	for name, c := range allCodecs() {
		if _, err := c.Encode(Entry{Payload: []byte("x")}); !errors.Is(err, ErrNoExpiry) {
			t.Fatalf("%s: expected ErrNoExpiry, got %v", name, err)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for name, c := range allCodecs() {
		if _, err := c.Decode([]byte{0xc1, 0xff, 0x00}); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestDecodeRejectsMissingExpiry(t *testing.T) {
	if _, err := (JSON{}).Decode([]byte(`{"value":"eA=="}`)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("json: expected ErrCorrupt, got %v", err)
	}
}

func TestRestamp(t *testing.T) {
	orig := time.Now().Add(time.Hour)
	now := time.Now()
	payload := []byte("opaque")

	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(Entry{Payload: payload, ExpireAt: orig})
			if err != nil {
				t.Fatal(err)
			}
			out, err := Restamp(c, b, now)
			if err != nil {
				t.Fatalf("Restamp: %v", err)
			}
			got, err := c.Decode(out)
			if err != nil {
				t.Fatal(err)
			}
			if !got.ExpireAt.Equal(now) {
				t.Fatalf("expiry not restamped: %v", got.ExpireAt)
			}
			if !bytes.Equal(got.Payload, payload) {
				t.Fatalf("payload changed: %q", got.Payload)
			}
		})
	}
}

func TestRestampCorrupt(t *testing.T) {
	for name, c := range allCodecs() {
		if _, err := Restamp(c, []byte("garbage"), time.Now()); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}
