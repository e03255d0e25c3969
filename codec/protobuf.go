package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes generated protobuf messages.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.Forecast { return &pb.Forecast{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	b, err := proto.Marshal(v)
	return b, encodeErr(err)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, decodeErr(err)
	}
	return m, nil
}
