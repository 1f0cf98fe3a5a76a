package jce

// Wire primitives: head encoding/decoding (spec.md section 4.1).
//
// A head is one or two bytes. If tag < 15, it's a single byte
// (tag<<4)|type. Otherwise the first byte is (0xF0|type) and a second
// byte carries the tag verbatim, giving a tag range of 0..=255.

const tagInlineLimit = 15 // tags 0..14 fit in the single-byte head's nibble

// headLen returns the number of bytes encodeHead would write for tag.
func headLen(tag int) int {
	if tag < tagInlineLimit {
		return 1
	}
	return 2
}

// encodeHead appends the head for (tag, wt) to dst and returns the result.
// Callers must ensure tag is in 0..=255 before calling; writer.go enforces
// that at the public API boundary (OutOfRange).
func encodeHead(dst []byte, tag int, wt WireType) []byte {
	if tag < tagInlineLimit {
		return append(dst, byte(tag<<4)|byte(wt))
	}
	return append(dst, 0xF0|byte(wt), byte(tag))
}

// decodeHead reads a head starting at buf[pos] and returns the tag, wire
// type, and number of bytes consumed. It never panics: a short buffer
// yields Truncated, and a type nibble above 13 yields BadType.
func decodeHead(buf []byte, pos int, path string) (tag int, wt WireType, n int, err error) {
	if pos >= len(buf) {
		return 0, 0, 0, errTruncated(path)
	}
	b0 := buf[pos]
	wt = WireType(b0 & 0x0F)
	if !wt.valid() {
		return 0, 0, 0, errBadType(path).withWire(wt)
	}
	if b0>>4 != 0x0F {
		return int(b0 >> 4), wt, 1, nil
	}
	if pos+1 >= len(buf) {
		return 0, 0, 0, errTruncated(path)
	}
	return int(buf[pos+1]), wt, 2, nil
}
