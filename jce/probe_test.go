package jce

import "testing"

func TestProbeStructAcceptsWellFormedBuffer(t *testing.T) {
	w := NewWriter()
	if err := w.WriteInt("n", 0, 5); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteString("s", 1, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	v, ok := ProbeStruct(w.Bytes(), DefaultLimits())
	if !ok {
		t.Fatal("expected well-formed buffer to probe true")
	}
	if len(v.StructMap) != 2 {
		t.Fatalf("got %d fields, want 2", len(v.StructMap))
	}
}

func TestProbeStructRejectsTruncated(t *testing.T) {
	w := NewWriter()
	_ = w.WriteInt("n", 0, 5)
	buf := w.Bytes()
	_, ok := ProbeStruct(buf[:len(buf)-1], DefaultLimits())
	if ok {
		t.Fatal("expected truncated buffer to probe false")
	}
}

func TestProbeStructRejectsTrailingGarbage(t *testing.T) {
	w := NewWriter()
	_ = w.WriteInt("n", 0, 5)
	buf := append(w.Bytes(), 0xFF)
	_, ok := ProbeStruct(buf, DefaultLimits())
	if ok {
		t.Fatal("expected trailing garbage to probe false")
	}
}

func TestProbeStructRejectsUnmatchedStructEnd(t *testing.T) {
	// A lone StructEnd head at the top level has no open StructBegin to
	// close; decodeGenericFields' done() never sees it, and it ends up
	// rejected as an unsupported wire type.
	head := encodeHead(nil, 0, StructEnd)
	_, ok := ProbeStruct(head, DefaultLimits())
	if ok {
		t.Fatal("expected unmatched StructEnd to probe false")
	}
}

func TestProbeStructEmptyBufferIsEmptyStruct(t *testing.T) {
	v, ok := ProbeStruct(nil, DefaultLimits())
	if !ok {
		t.Fatal("expected empty buffer to probe true as an empty struct")
	}
	if len(v.StructMap) != 0 {
		t.Fatalf("got %d fields, want 0", len(v.StructMap))
	}
}
