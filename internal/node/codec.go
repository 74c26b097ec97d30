package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload encoding names.
const (
	EncodingBinary = "binary"
	EncodingText   = "text"
)

// Codec converts the single unsigned byte carried by both topics.
type Codec interface {
	Encode(v uint8) []byte
	Decode(payload []byte) (uint8, error)
}

// NewCodec returns the codec registered under name.
func NewCodec(name string) (Codec, error) {
	switch name {
	case EncodingBinary, "":
		return BinaryCodec{}, nil
	case EncodingText:
		return TextCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// BinaryCodec sends the value as exactly one raw byte.
type BinaryCodec struct{}

// Encode returns a one-byte payload.
func (BinaryCodec) Encode(v uint8) []byte {
	return []byte{v}
}

// Decode requires exactly one byte.
func (BinaryCodec) Decode(payload []byte) (uint8, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("%w: want 1 byte, got %d", ErrInvalidPayload, len(payload))
	}
	return payload[0], nil
}

// TextCodec sends the value as decimal ASCII, e.g. "7".
// Handy with mosquitto_pub and other shell tooling.
type TextCodec struct{}

// Encode formats v in base 10.
func (TextCodec) Encode(v uint8) []byte {
	return strconv.AppendUint(nil, uint64(v), 10)
}

// Decode parses a base-10 value in [0, 255], ignoring surrounding whitespace.
func (TextCodec) Decode(payload []byte) (uint8, error) {
	s := strings.TrimSpace(string(payload))
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPayload, s)
	}
	return uint8(v), nil
}
