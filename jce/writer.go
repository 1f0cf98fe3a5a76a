package jce

// Writer is an append-only cursor over a growable byte buffer (spec.md
// section 4.3, component C3). The buffer itself is a plain byte slice,
// preallocated with writerMinGrow bytes of capacity and grown by append.
type Writer struct {
	buf    []byte
	depth  int
	limits Limits
	endian Endianness
}

const writerMinGrow = 256

// NewWriter returns a Writer using the engine's default Limits and
// big-endian byte order.
func NewWriter() *Writer {
	return NewWriterWithOptions(DefaultLimits(), BigEndian)
}

// NewWriterWithOptions returns a Writer with explicit Limits and
// Endianness; a zero-value Limits falls back to the engine defaults.
func NewWriterWithOptions(limits Limits, endian Endianness) *Writer {
	return &Writer{
		buf:    make([]byte, 0, writerMinGrow),
		limits: limits.orDefault(),
		endian: endian,
	}
}

// Bytes returns the bytes written so far. The returned slice aliases the
// Writer's internal buffer and must not be retained past the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Truncate discards bytes after position n, the encode-side counterpart
// of a failed operation: callers that abort a partial write roll back to
// the length recorded before the aborted call began.
func (w *Writer) Truncate(n int) { w.buf = w.buf[:n] }

func (w *Writer) enterContainer(path string) error {
	if w.depth+1 > w.limits.MaxDepth {
		return errDepthExceeded(path)
	}
	w.depth++
	return nil
}

func (w *Writer) exitContainer() { w.depth-- }

// WriteHead appends a tag/type head. tag must be in 0..=255.
func (w *Writer) WriteHead(path string, tag int, wt WireType) error {
	if tag < 0 || tag > 255 {
		return errOutOfRange(path).withTag(tag)
	}
	w.buf = encodeHead(w.buf, tag, wt)
	return nil
}

// WriteBool writes a bool field: ZeroTag for false, Int1 carrying 1 for
// true (spec.md section 4.3).
func (w *Writer) WriteBool(path string, tag int, v bool) error {
	if !v {
		return w.WriteHead(path, tag, ZeroTag)
	}
	if err := w.WriteHead(path, tag, Int1); err != nil {
		return err
	}
	w.buf = putInt8(w.buf, 1)
	return nil
}

// WriteInt writes an integer field, applying integer compaction: exact
// zero becomes a bare ZeroTag head, otherwise the smallest of
// Int1..Int8 that holds the value in its signed range (spec.md section
// 4.3, testable property 3).
func (w *Writer) WriteInt(path string, tag int, v int64) error {
	switch {
	case v == 0:
		return w.WriteHead(path, tag, ZeroTag)
	case v >= -128 && v <= 127:
		if err := w.WriteHead(path, tag, Int1); err != nil {
			return err
		}
		w.buf = putInt8(w.buf, int8(v))
	case v >= -32768 && v <= 32767:
		if err := w.WriteHead(path, tag, Int2); err != nil {
			return err
		}
		w.putInt16(int16(v))
	case v >= -2147483648 && v <= 2147483647:
		if err := w.WriteHead(path, tag, Int4); err != nil {
			return err
		}
		w.putInt32(int32(v))
	default:
		if err := w.WriteHead(path, tag, Int8); err != nil {
			return err
		}
		w.putInt64(v)
	}
	return nil
}

// WriteFloat writes a double-precision field. A bit-pattern-zero value
// (+0.0, not -0.0 — see SPEC_FULL.md section 4.1's Open Question
// resolution) becomes a bare ZeroTag head; otherwise it's a Double.
func (w *Writer) WriteFloat(path string, tag int, v float64) error {
	if v == 0 && !negativeZero(v) {
		return w.WriteHead(path, tag, ZeroTag)
	}
	if err := w.WriteHead(path, tag, Double); err != nil {
		return err
	}
	w.putFloat64(v)
	return nil
}

// WriteFloat32 writes a single-precision field explicitly as Float,
// for the façade case spec.md section 4.3 calls out: "the façade may
// request Float explicitly."
func (w *Writer) WriteFloat32(path string, tag int, v float32) error {
	if v == 0 && !negativeZero(float64(v)) {
		return w.WriteHead(path, tag, ZeroTag)
	}
	if err := w.WriteHead(path, tag, Float); err != nil {
		return err
	}
	w.putFloat32(v)
	return nil
}

func negativeZero(v float64) bool {
	return v == 0 && (1/v) < 0
}

// WriteString writes a field choosing String1 when the byte length fits
// in a u8, String4 otherwise.
func (w *Writer) WriteString(path string, tag int, s []byte) error {
	if len(s) <= 255 {
		if err := w.WriteHead(path, tag, String1); err != nil {
			return err
		}
		w.buf = putUint8(w.buf, uint8(len(s)))
	} else {
		if err := w.WriteHead(path, tag, String4); err != nil {
			return err
		}
		w.putInt32(int32(len(s)))
	}
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBytes always emits the compact SimpleList form: outer head, inner
// (tag=0, Int1) head, Int1-encoded length at tag 0, payload (spec.md
// section 4.3 and the wire layout pinned in section 6).
func (w *Writer) WriteBytes(path string, tag int, b []byte) error {
	if err := w.WriteHead(path, tag, SimpleList); err != nil {
		return err
	}
	if err := w.WriteHead(path, 0, Int1); err != nil {
		return err
	}
	if err := w.WriteInt(path, 0, int64(len(b))); err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	return nil
}

// WriteList writes a List field of n elements: the List head, the count
// as a compacted integer at tag 0, then n elements written by elem, each at
// tag 0 (spec.md section 6).
func (w *Writer) WriteList(path string, tag int, n int, elem func(i int) error) error {
	if err := w.WriteHead(path, tag, List); err != nil {
		return err
	}
	if err := w.WriteInt(path, 0, int64(n)); err != nil {
		return err
	}
	if err := w.enterContainer(path); err != nil {
		return err
	}
	defer w.exitContainer()
	for i := 0; i < n; i++ {
		if err := elem(i); err != nil {
			return err
		}
	}
	return nil
}

// WriteMap writes a Map field of n pairs: the Map head, the pair count as
// a compacted integer at tag 0, then n pairs written by pair, each key at tag 0
// and value at tag 1, in the iteration order the caller supplies.
func (w *Writer) WriteMap(path string, tag int, n int, pair func(i int) error) error {
	if err := w.WriteHead(path, tag, Map); err != nil {
		return err
	}
	if err := w.WriteInt(path, 0, int64(n)); err != nil {
		return err
	}
	if err := w.enterContainer(path); err != nil {
		return err
	}
	defer w.exitContainer()
	for i := 0; i < n; i++ {
		if err := pair(i); err != nil {
			return err
		}
	}
	return nil
}

// WriteStruct frames body between StructBegin and StructEnd. body writes
// fields using this same Writer. Top-level structs bypass this framing
// entirely and call their field writers directly (spec.md section 6: "A
// top-level encoded struct is emitted as a bare sequence of its fields").
func (w *Writer) WriteStruct(path string, tag int, body func() error) error {
	if err := w.WriteHead(path, tag, StructBegin); err != nil {
		return err
	}
	if err := w.enterContainer(path); err != nil {
		return err
	}
	defer w.exitContainer()
	if err := body(); err != nil {
		return err
	}
	return w.WriteHead(path, 0, StructEnd)
}

func (w *Writer) putInt16(v int16) {
	if w.endian == LittleEndian {
		w.buf = putInt16LE(w.buf, v)
	} else {
		w.buf = putInt16BE(w.buf, v)
	}
}

func (w *Writer) putInt32(v int32) {
	if w.endian == LittleEndian {
		w.buf = putInt32LE(w.buf, v)
	} else {
		w.buf = putInt32BE(w.buf, v)
	}
}

func (w *Writer) putInt64(v int64) {
	if w.endian == LittleEndian {
		w.buf = putInt64LE(w.buf, v)
	} else {
		w.buf = putInt64BE(w.buf, v)
	}
}

func (w *Writer) putFloat32(v float32) {
	if w.endian == LittleEndian {
		w.buf = putFloat32LE(w.buf, v)
	} else {
		w.buf = putFloat32BE(w.buf, v)
	}
}

func (w *Writer) putFloat64(v float64) {
	if w.endian == LittleEndian {
		w.buf = putFloat64LE(w.buf, v)
	} else {
		w.buf = putFloat64BE(w.buf, v)
	}
}
