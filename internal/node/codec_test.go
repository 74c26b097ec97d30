package node

import (
	"bytes"
	"errors"
	"testing"
)

func TestBinaryCodec(t *testing.T) {
	c := BinaryCodec{}
	if got := c.Encode(7); !bytes.Equal(got, []byte{7}) {
		t.Errorf("Encode(7) = %v, want [7]", got)
	}

	v, err := c.Decode([]byte{0xFF})
	if err != nil || v != 255 {
		t.Errorf("Decode([255]) = %d, %v; want 255, nil", v, err)
	}

	for _, bad := range [][]byte{nil, {}, {1, 2}} {
		if _, err := c.Decode(bad); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Decode(%v) error = %v, want ErrInvalidPayload", bad, err)
		}
	}
}

func TestTextCodec(t *testing.T) {
	c := TextCodec{}
	if got := string(c.Encode(42)); got != "42" {
		t.Errorf("Encode(42) = %q, want \"42\"", got)
	}

	tests := []struct {
		in      string
		want    uint8
		wantErr bool
	}{
		{"0", 0, false},
		{"7", 7, false},
		{" 255\n", 255, false},
		{"256", 0, true},
		{"-1", 0, true},
		{"on", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := c.Decode([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("Decode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Decode(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewCodec(t *testing.T) {
	if c, err := NewCodec(""); err != nil || c == nil {
		t.Errorf("NewCodec(\"\") = %v, %v; want binary default", c, err)
	}
	if _, err := NewCodec(EncodingText); err != nil {
		t.Errorf("NewCodec(text) error = %v", err)
	}
	if _, err := NewCodec("cdr"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("NewCodec(cdr) error = %v, want ErrUnknownEncoding", err)
	}
}
