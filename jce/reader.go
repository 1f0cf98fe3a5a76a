package jce

// Reader is a cursor over a byte slice (spec.md section 4.2, component
// C2). It never allocates except when materialising an owned string or
// byte payload, and it never panics: every read that can fail returns an
// error instead, matching the teacher's decbuf (vom/decbuf.go)
// no-panic-on-short-input discipline, adapted from a streaming
// io.Reader-backed buffer to a plain slice-plus-position cursor, since
// the whole payload is already in memory by the time the engine sees it.
type Reader struct {
	buf    []byte
	pos    int
	depth  int
	limits Limits
	endian Endianness
}

// NewReader returns a Reader over buf using the engine's default Limits
// and big-endian byte order.
func NewReader(buf []byte) *Reader {
	return NewReaderWithOptions(buf, DefaultLimits(), BigEndian)
}

// NewReaderWithOptions returns a Reader over buf with explicit Limits and
// Endianness; a zero-value Limits falls back to the engine defaults.
func NewReaderWithOptions(buf []byte, limits Limits, endian Endianness) *Reader {
	return &Reader{buf: buf, limits: limits.orDefault(), endian: endian}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of bytes remaining unread.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// AtEnd reports whether the cursor has consumed the entire buffer.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.buf) }

func (r *Reader) remaining() []byte { return r.buf[r.pos:] }

func (r *Reader) enterContainer(path string) error {
	if r.depth+1 > r.limits.MaxDepth {
		return errDepthExceeded(path)
	}
	r.depth++
	return nil
}

func (r *Reader) exitContainer() { r.depth-- }

// ReadHead reads the head at the cursor and advances past it.
func (r *Reader) ReadHead(path string) (tag int, wt WireType, err error) {
	tag, wt, n, err := decodeHead(r.buf, r.pos, path)
	if err != nil {
		return 0, 0, err
	}
	r.pos += n
	return tag, wt, nil
}

// PeekHead reads the head at the cursor without advancing, letting a
// caller decide whether to consume the field or skip it.
func (r *Reader) PeekHead(path string) (tag int, wt WireType, err error) {
	tag, wt, _, err = decodeHead(r.buf, r.pos, path)
	return tag, wt, err
}

func (r *Reader) need(path string, n int) error {
	if r.Len() < n {
		return errTruncated(path)
	}
	return nil
}

func (r *Reader) takeFixed(path string, n int) ([]byte, error) {
	if err := r.need(path, n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadInt interprets Int1..Int8 or ZeroTag as the promoted 64-bit signed
// integer. Range narrowing to a smaller declared width is the caller's
// responsibility (done by the schema decoder, not here).
func (r *Reader) ReadInt(path string, wt WireType) (int64, error) {
	switch wt {
	case ZeroTag:
		return 0, nil
	case Int1:
		b, err := r.takeFixed(path, 1)
		if err != nil {
			return 0, err
		}
		return int64(getInt8(b)), nil
	case Int2:
		b, err := r.takeFixed(path, 2)
		if err != nil {
			return 0, err
		}
		return int64(r.int16(b)), nil
	case Int4:
		b, err := r.takeFixed(path, 4)
		if err != nil {
			return 0, err
		}
		return int64(r.int32(b)), nil
	case Int8:
		b, err := r.takeFixed(path, 8)
		if err != nil {
			return 0, err
		}
		return r.int64(b), nil
	default:
		return 0, errTypeMismatch(path).withWire(wt)
	}
}

// ReadFloat interprets Float, Double, or ZeroTag as a float64.
func (r *Reader) ReadFloat(path string, wt WireType) (float64, error) {
	switch wt {
	case ZeroTag:
		return 0, nil
	case Float:
		b, err := r.takeFixed(path, 4)
		if err != nil {
			return 0, err
		}
		return float64(r.float32(b)), nil
	case Double:
		b, err := r.takeFixed(path, 8)
		if err != nil {
			return 0, err
		}
		return r.float64(b), nil
	default:
		return 0, errTypeMismatch(path).withWire(wt)
	}
}

// ReadString reads a length-prefixed string payload. String1 carries a
// u8 length, String4 a u32 length; the length is validated against the
// remaining buffer before any bytes are read.
func (r *Reader) ReadString(path string, wt WireType) ([]byte, error) {
	var n int64
	switch wt {
	case String1:
		b, err := r.takeFixed(path, 1)
		if err != nil {
			return nil, err
		}
		n = int64(getUint8(b))
	case String4:
		b, err := r.takeFixed(path, 4)
		if err != nil {
			return nil, err
		}
		n = int64(uint32(r.int32(b)))
	default:
		return nil, errTypeMismatch(path).withWire(wt)
	}
	if n > int64(r.limits.MaxStringLen) {
		return nil, errLimitExceeded(path)
	}
	if n > int64(r.Len()) {
		return nil, errTruncated(path)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// ReadSimpleList reads a SimpleList payload: the caller has already
// consumed the outer head. This reads the mandatory inner (tag=0,
// Int1) element-type head, the Int1-tagged length, and exactly that
// many raw bytes.
func (r *Reader) ReadSimpleList(path string) ([]byte, error) {
	tag, wt, err := r.ReadHead(path)
	if err != nil {
		return nil, err
	}
	if tag != 0 || wt != Int1 {
		return nil, errBadType(path).withWire(wt).withReason("SimpleList inner head must be (tag=0, Int1)")
	}
	ltag, lwt, err := r.ReadHead(path)
	if err != nil {
		return nil, err
	}
	if ltag != 0 {
		return nil, errBadType(path).withReason("SimpleList length must be at tag 0")
	}
	n, err := r.ReadInt(path, lwt)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > int64(r.limits.MaxBytesLen) {
		return nil, errLimitExceeded(path)
	}
	if n > int64(r.Len()) {
		return nil, errTruncated(path)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// ReadListHeader reads the tag-0 integer length of a List, after the
// caller has consumed the outer List head.
func (r *Reader) ReadListHeader(path string) (int, error) {
	return r.readCount(path)
}

// ReadMapHeader reads the tagged pair count of a Map, after the caller
// has consumed the outer Map head.
func (r *Reader) ReadMapHeader(path string) (int, error) {
	return r.readCount(path)
}

func (r *Reader) readCount(path string) (int, error) {
	tag, wt, err := r.ReadHead(path)
	if err != nil {
		return 0, err
	}
	if tag != 0 {
		return 0, errBadType(path).withReason("container length must be at tag 0")
	}
	n, err := r.ReadInt(path, wt)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > int64(r.limits.MaxContainerLen) {
		return 0, errLimitExceeded(path)
	}
	// Every element (or pair) needs at least one head byte, so a count
	// larger than the remaining buffer can never be satisfied.
	if n > int64(r.Len()) {
		return 0, errTruncated(path)
	}
	return int(n), nil
}

// EnterContainer increments the recursion depth and checks it against
// Limits.MaxDepth; callers of ReadListHeader/ReadMapHeader/struct bodies
// must bracket the container's element reads with EnterContainer/
// ExitContainer so depth accounting stays correct across List-of-List,
// Map-of-Struct, etc.
func (r *Reader) EnterContainer(path string) error { return r.enterContainer(path) }

// ExitContainer decrements the recursion depth; must be paired with a
// prior successful EnterContainer.
func (r *Reader) ExitContainer() { r.exitContainer() }

// StructFieldFunc is called once per field encountered inside
// ReadStructBody, with the field's tag and wire type already consumed
// from the head. It must either consume the value or call SkipField.
type StructFieldFunc func(tag int, wt WireType) error

// ReadStructBody reads successive fields until StructEnd, calling cb for
// each. It brackets the read with EnterContainer/ExitContainer so nested
// structs are bounded by Limits.MaxDepth (spec.md section 4.2's state
// machine: Expect_Head -> Consuming_Value -> End).
func (r *Reader) ReadStructBody(path string, cb StructFieldFunc) error {
	if err := r.enterContainer(path); err != nil {
		return err
	}
	defer r.exitContainer()
	for {
		tag, wt, err := r.ReadHead(path)
		if err != nil {
			return err
		}
		if wt == StructEnd {
			return nil
		}
		if err := cb(tag, wt); err != nil {
			return err
		}
	}
}

// SkipField skips a single field's payload without allocating a
// container proportional to its length beyond what ReadString/
// ReadSimpleList already bound: scalars skip fixed widths, strings skip
// their length-prefixed body, lists/maps recursively skip N items,
// structs read nested fields until StructEnd, SimpleList skips its
// inner header and body.
func (r *Reader) SkipField(path string, wt WireType) error {
	switch wt {
	case ZeroTag:
		return nil
	case Int1:
		_, err := r.takeFixed(path, 1)
		return err
	case Int2:
		_, err := r.takeFixed(path, 2)
		return err
	case Int4:
		_, err := r.takeFixed(path, 4)
		return err
	case Int8:
		_, err := r.takeFixed(path, 8)
		return err
	case Float:
		_, err := r.takeFixed(path, 4)
		return err
	case Double:
		_, err := r.takeFixed(path, 8)
		return err
	case String1, String4:
		_, err := r.ReadString(path, wt)
		return err
	case SimpleList:
		_, err := r.ReadSimpleList(path)
		return err
	case List:
		n, err := r.ReadListHeader(path)
		if err != nil {
			return err
		}
		if err := r.enterContainer(path); err != nil {
			return err
		}
		defer r.exitContainer()
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return err
			}
			if err := r.SkipField(path, ewt); err != nil {
				return err
			}
		}
		return nil
	case Map:
		n, err := r.ReadMapHeader(path)
		if err != nil {
			return err
		}
		if err := r.enterContainer(path); err != nil {
			return err
		}
		defer r.exitContainer()
		for i := 0; i < n; i++ {
			_, kwt, err := r.ReadHead(path)
			if err != nil {
				return err
			}
			if err := r.SkipField(path, kwt); err != nil {
				return err
			}
			_, vwt, err := r.ReadHead(path)
			if err != nil {
				return err
			}
			if err := r.SkipField(path, vwt); err != nil {
				return err
			}
		}
		return nil
	case StructBegin:
		return r.ReadStructBody(path, func(tag int, fwt WireType) error {
			return r.SkipField(path, fwt)
		})
	default:
		return errBadType(path).withWire(wt)
	}
}

func (r *Reader) int16(b []byte) int16 {
	if r.endian == LittleEndian {
		return getInt16LE(b)
	}
	return getInt16BE(b)
}

func (r *Reader) int32(b []byte) int32 {
	if r.endian == LittleEndian {
		return getInt32LE(b)
	}
	return getInt32BE(b)
}

func (r *Reader) int64(b []byte) int64 {
	if r.endian == LittleEndian {
		return getInt64LE(b)
	}
	return getInt64BE(b)
}

func (r *Reader) float32(b []byte) float32 {
	if r.endian == LittleEndian {
		return getFloat32LE(b)
	}
	return getFloat32BE(b)
}

func (r *Reader) float64(b []byte) float64 {
	if r.endian == LittleEndian {
		return getFloat64LE(b)
	}
	return getFloat64BE(b)
}
