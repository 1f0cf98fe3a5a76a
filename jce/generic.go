package jce


// Generic (schemaless) codec, component C7 (spec.md section 4.7). It
// round-trips an arbitrary tag-keyed Value tree using only wire type
// codes: no defaults, no constraints, no named fields, and no integer
// narrowing (ints stay the promoted 64-bit form).
//
// Bool has no wire type code of its own: WriteBool reuses ZeroTag/Int1,
// exactly what WriteInt emits for 0/1. Without a schema to say "this tag
// is a bool", DecodeGeneric cannot recover that distinction, so every
// ZeroTag/Int1/Int2/Int4/Int8 value decodes to KindInt. Encoding a Bool
// and decoding it back yields an equal-valued Int, not the original
// Bool — a one-way promotion, not a round trip.
//
// The top level of the wire format is always a bare sequence of a
// struct's fields (spec.md section 6), so EncodeGeneric/DecodeGeneric
// operate on a KindStructMap at the top level, the same way every real
// Tars RPC payload is some struct's field list. A StructMap nested
// inside a list, map, or another struct's field is framed with
// StructBegin/StructEnd, exactly mirroring the schema-driven encoder.

// EncodeGeneric writes v as a top-level struct body. v must be a
// KindStructMap; every other kind is a TypeMismatch, since there is no
// top-level wire shape for a bare scalar, list, or map outside a
// struct's fields (callers that want to round-trip one scalar wrap it in
// a single-entry StructMap, the same way a generated RPC argument struct
// wraps a single parameter).
func EncodeGeneric(v Value, limits Limits) ([]byte, error) {
	if v.Kind != KindStructMap {
		return nil, errTypeMismatch("<root>").withReason("EncodeGeneric requires a StructMap at the top level")
	}
	w := NewWriterWithOptions(limits, BigEndian)
	for _, entry := range v.StructMap {
		if entry.Tag < 0 || entry.Tag > 255 {
			return nil, errOutOfRange("<root>").withTag(entry.Tag)
		}
		if err := encodeGenericAt(w, "<root>", entry.Tag, entry.Value); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func encodeGenericAt(w *Writer, path string, tag int, v Value) error {
	switch v.Kind {
	case KindBool:
		return w.WriteBool(path, tag, v.Bool)
	case KindInt:
		return w.WriteInt(path, tag, v.Int)
	case KindFloat:
		return w.WriteFloat32(path, tag, v.Float32)
	case KindDouble:
		return w.WriteFloat(path, tag, v.Float64)
	case KindStr:
		return w.WriteString(path, tag, []byte(v.Str))
	case KindBytes:
		return w.WriteBytes(path, tag, v.Bytes)
	case KindList:
		return w.WriteList(path, tag, len(v.List), func(i int) error {
			return encodeGenericAt(w, path, 0, v.List[i])
		})
	case KindMap:
		return w.WriteMap(path, tag, len(v.Map), func(i int) error {
			if err := encodeGenericAt(w, path, 0, v.Map[i].Key); err != nil {
				return err
			}
			return encodeGenericAt(w, path, 1, v.Map[i].Value)
		})
	case KindStructMap:
		return w.WriteStruct(path, tag, func() error {
			for _, entry := range v.StructMap {
				if entry.Tag < 0 || entry.Tag > 255 {
					return errOutOfRange(path).withTag(entry.Tag)
				}
				if err := encodeGenericAt(w, path, entry.Tag, entry.Value); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return errBadType(path)
	}
}

// DecodeGeneric reads a top-level struct body (a bare field sequence
// running to end-of-buffer, per spec.md section 6) and returns it as a
// KindStructMap Value.
func DecodeGeneric(buf []byte, limits Limits) (Value, error) {
	r := NewReaderWithOptions(buf, limits, BigEndian)
	entries, err := decodeGenericFields(r, "<root>", func() bool { return r.AtEnd() })
	if err != nil {
		return Value{}, err
	}
	return StructMapValue(entries), nil
}

// decodeGenericFields reads (tag, type, value) triples until done()
// reports true (end-of-buffer at the top level, or a StructEnd head
// consumed by the caller for nested structs).
func decodeGenericFields(r *Reader, path string, done func() bool) ([]StructEntry, error) {
	var entries []StructEntry
	for !done() {
		tag, wt, err := r.ReadHead(path)
		if err != nil {
			return nil, err
		}
		v, err := decodeGenericValue(r, path, wt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, StructEntry{Tag: tag, Value: v})
	}
	return entries, nil
}

func decodeGenericValue(r *Reader, path string, wt WireType) (Value, error) {
	switch wt {
	case ZeroTag:
		return IntValue(0), nil
	case Int1, Int2, Int4, Int8:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case Float:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(float32(f)), nil
	case Double:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return Value{}, err
		}
		return DoubleValue(f), nil
	case String1, String4:
		s, err := r.ReadString(path, wt)
		if err != nil {
			return Value{}, err
		}
		return StrValue(string(s)), nil
	case SimpleList:
		b, err := r.ReadSimpleList(path)
		if err != nil {
			return Value{}, err
		}
		return BytesValue(b), nil
	case List:
		n, err := r.ReadListHeader(path)
		if err != nil {
			return Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return Value{}, err
		}
		defer r.ExitContainer()
		items := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return Value{}, err
			}
			ev, err := decodeGenericValue(r, path, ewt)
			if err != nil {
				return Value{}, err
			}
			items = append(items, ev)
		}
		return ListValue(items), nil
	case Map:
		n, err := r.ReadMapHeader(path)
		if err != nil {
			return Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return Value{}, err
		}
		defer r.ExitContainer()
		pairs := make([]MapEntry, 0, n)
		for i := 0; i < n; i++ {
			_, kwt, err := r.ReadHead(path)
			if err != nil {
				return Value{}, err
			}
			kv, err := decodeGenericValue(r, path, kwt)
			if err != nil {
				return Value{}, err
			}
			_, vwt, err := r.ReadHead(path)
			if err != nil {
				return Value{}, err
			}
			vv, err := decodeGenericValue(r, path, vwt)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, MapEntry{Key: kv, Value: vv})
		}
		return MapValue(pairs), nil
	case StructBegin:
		if err := r.EnterContainer(path); err != nil {
			return Value{}, err
		}
		entries, err := decodeGenericFields(r, path, func() bool {
			_, wt, peekErr := r.PeekHead(path)
			return peekErr == nil && wt == StructEnd
		})
		r.ExitContainer()
		if err != nil {
			return Value{}, err
		}
		// Consume the StructEnd head the done() predicate peeked at.
		if _, _, err := r.ReadHead(path); err != nil {
			return Value{}, err
		}
		return StructMapValue(entries), nil
	default:
		return Value{}, errBadType(path).withWire(wt)
	}
}
