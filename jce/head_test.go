package jce

import (
	"bytes"
	"testing"
)

func TestHeadInlineVsTwoByte(t *testing.T) {
	cases := []struct {
		tag  int
		wt   WireType
		want []byte
	}{
		{0, ZeroTag, []byte{0x0C}},
		{14, Int1, []byte{0xE0}},
		{15, Int1, []byte{0xF0, 0x0F}},
		{255, SimpleList, []byte{0xFD, 0xFF}},
	}
	for _, c := range cases {
		got := encodeHead(nil, c.tag, c.wt)
		if !bytes.Equal(got, c.want) {
			t.Errorf("encodeHead(%d,%v) = % x, want % x", c.tag, c.wt, got, c.want)
		}
		tag, wt, n, err := decodeHead(got, 0, "t")
		if err != nil {
			t.Fatalf("decodeHead: %v", err)
		}
		if tag != c.tag || wt != c.wt || n != len(c.want) {
			t.Errorf("decodeHead round trip = (%d,%v,%d), want (%d,%v,%d)", tag, wt, n, c.tag, c.wt, len(c.want))
		}
	}
}

func TestHeadTruncated(t *testing.T) {
	if _, _, _, err := decodeHead(nil, 0, "t"); !Is(err, Truncated) {
		t.Fatalf("want Truncated, got %v", err)
	}
	// Two-byte form with only the first byte present.
	if _, _, _, err := decodeHead([]byte{0xF0}, 0, "t"); !Is(err, Truncated) {
		t.Fatalf("want Truncated for short two-byte head, got %v", err)
	}
}

func TestHeadBadType(t *testing.T) {
	// Nibble 14 is not a defined wire type (0..13 only).
	if _, _, _, err := decodeHead([]byte{0x0E}, 0, "t"); !Is(err, BadType) {
		t.Fatalf("want BadType, got %v", err)
	}
}
