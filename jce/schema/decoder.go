package schema

import "github.com/L-1124/Tarsio/jce"

// DecodeSchema drives a jce.Reader from buf against s (component C6,
// spec.md section 4.6): routes each field by tag through s.TagLookup,
// narrows and validates it, then fills every still-unset slot from its
// compiled default or fails with MissingRequired.
func DecodeSchema(buf []byte, s *CompiledSchema, limits jce.Limits) (*Instance, error) {
	r := jce.NewReaderWithOptions(buf, limits, jce.BigEndian)
	in := NewInstance(s)
	if err := decodeFields(r, "<root>", in, func() bool { return r.AtEnd() }); err != nil {
		return nil, err
	}
	if err := fillDefaults(in); err != nil {
		return nil, err
	}
	return in, nil
}

func fillDefaults(in *Instance) error {
	for i, f := range in.Schema.Fields {
		if in.Present[i] {
			continue
		}
		if !f.HasDefault {
			return &jce.Error{Kind: jce.MissingRequired, Path: "<root>." + f.Name, Tag: f.Tag, Reason: "required field not present on the wire"}
		}
		in.Slots[i] = f.Default
	}
	return nil
}

func decodeFields(r *jce.Reader, path string, in *Instance, done func() bool) error {
	s := in.Schema
	for !done() {
		tag, wt, err := r.ReadHead(path)
		if err != nil {
			return err
		}
		slot, ok := s.SlotForTag(tag)
		if !ok {
			if s.ForbidUnknown {
				return &jce.Error{Kind: jce.UnknownTag, Path: path, Tag: tag, WireType: wt, HasWire: true}
			}
			if err := r.SkipField(path, wt); err != nil {
				return err
			}
			continue
		}
		if in.Present[slot] {
			return &jce.Error{Kind: jce.DuplicateTag, Path: path, Tag: tag, WireType: wt, HasWire: true}
		}
		f := s.Fields[slot]
		fieldPath := path + "." + f.Name
		v, err := decodeValue(r, fieldPath, f.Tag, f.Kind, wt)
		if err != nil {
			return err
		}
		if err := checkConstraints(f, fieldPath, v); err != nil {
			return err
		}
		in.Slots[slot], in.Present[slot] = v, true
	}
	return nil
}

// wireCompatible implements the kind/wire-type compatibility table
// spec.md section 4.6 gives examples for: any Int wire type (including
// ZeroTag) is compatible with any Int/Enum/Bool kind; Float/Double/
// ZeroTag with Float/Double; SimpleList (and List, for Bytes) with
// Bytes; StructBegin with Struct/Any.
func wireCompatible(k Kind, wt jce.WireType) bool {
	switch k.Tag {
	case KBool:
		return wt.IsInt()
	case KInt, KEnum:
		return wt.IsInt()
	case KFloat, KDouble:
		return wt.IsFloat()
	case KStr:
		return wt.IsString()
	case KBytes:
		return wt == jce.SimpleList || wt == jce.List
	case KList, KSet, KTuple:
		return wt == jce.List
	case KMap:
		return wt == jce.Map
	case KStruct:
		return wt == jce.StructBegin
	case KOptional:
		return wireCompatible(*k.Elem, wt)
	case KUnion:
		for _, member := range k.Elems {
			if wireCompatible(member, wt) {
				return true
			}
		}
		return false
	case KAny:
		return true
	default:
		return false
	}
}

func decodeValue(r *jce.Reader, path string, tag int, k Kind, wt jce.WireType) (jce.Value, error) {
	if k.Tag == KOptional {
		return decodeValue(r, path, tag, *k.Elem, wt)
	}
	if !wireCompatible(k, wt) {
		return jce.Value{}, &jce.Error{Kind: jce.TypeMismatch, Path: path, Tag: tag, WireType: wt, HasWire: true, Reason: "wire type " + wt.String() + " is not compatible with declared kind " + k.Tag.String()}
	}

	switch k.Tag {
	case KBool:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.BoolValue(n != 0), nil

	case KInt:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		if err := narrow(n, k.IntWidth, path, tag); err != nil {
			return jce.Value{}, err
		}
		return jce.IntValue(n), nil

	case KEnum:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		if err := narrow(n, k.IntWidth, path, tag); err != nil {
			return jce.Value{}, err
		}
		if len(k.EnumAllowed) > 0 && !int64InSet(n, k.EnumAllowed) {
			return jce.Value{}, &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "value not in the enum's allowed set"}
		}
		return jce.IntValue(n), nil

	case KFloat:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.FloatValue(float32(f)), nil

	case KDouble:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.DoubleValue(f), nil

	case KStr:
		s, err := r.ReadString(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.StrValue(string(s)), nil

	case KBytes:
		if wt == jce.SimpleList {
			b, err := r.ReadSimpleList(path)
			if err != nil {
				return jce.Value{}, err
			}
			return jce.BytesValue(b), nil
		}
		// wt == jce.List: a List<Int8> compatibility fallback (spec.md
		// section 4.6's "SimpleList is compatible with Bytes and with
		// List<Int8>" note, read in reverse for the decode side).
		n, err := r.ReadListHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		out := make([]byte, 0, n)
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			eb, err := r.ReadInt(path, ewt)
			if err != nil {
				return jce.Value{}, err
			}
			out = append(out, byte(eb))
		}
		return jce.BytesValue(out), nil

	case KList, KSet:
		n, err := r.ReadListHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		items := make([]jce.Value, 0, n)
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			ev, err := decodeValue(r, path, 0, *k.Elem, ewt)
			if err != nil {
				return jce.Value{}, err
			}
			items = append(items, ev)
		}
		return jce.ListValue(items), nil

	case KTuple:
		n, err := r.ReadListHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if n != len(k.Elems) {
			return jce.Value{}, &jce.Error{Kind: jce.TypeMismatch, Path: path, Tag: tag, Reason: "tuple arity mismatch on the wire"}
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		items := make([]jce.Value, 0, n)
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			ev, err := decodeValue(r, path, 0, k.Elems[i], ewt)
			if err != nil {
				return jce.Value{}, err
			}
			items = append(items, ev)
		}
		return jce.ListValue(items), nil

	case KMap:
		n, err := r.ReadMapHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		pairs := make([]jce.MapEntry, 0, n)
		for i := 0; i < n; i++ {
			_, kwt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			kv, err := decodeValue(r, path, 0, *k.Key, kwt)
			if err != nil {
				return jce.Value{}, err
			}
			_, vwt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			vv, err := decodeValue(r, path, 1, *k.Val, vwt)
			if err != nil {
				return jce.Value{}, err
			}
			pairs = append(pairs, jce.MapEntry{Key: kv, Value: vv})
		}
		return jce.MapValue(pairs), nil

	case KStruct:
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		child := NewInstance(k.Struct)
		err := decodeFields(r, path, child, func() bool {
			_, peekWt, peekErr := r.PeekHead(path)
			return peekErr == nil && peekWt == jce.StructEnd
		})
		r.ExitContainer()
		if err != nil {
			return jce.Value{}, err
		}
		if _, _, err := r.ReadHead(path); err != nil { // consume StructEnd
			return jce.Value{}, err
		}
		if err := fillDefaults(child); err != nil {
			return jce.Value{}, err
		}
		return structMapFromInstance(child), nil

	case KUnion:
		for _, member := range k.Elems {
			if wireCompatible(member, wt) {
				return decodeValue(r, path, tag, member, wt)
			}
		}
		return jce.Value{}, &jce.Error{Kind: jce.TypeMismatch, Path: path, Tag: tag, WireType: wt, HasWire: true, Reason: "no union variant accepts this wire type"}

	case KAny:
		return decodeAny(r, path, wt)

	default:
		return jce.Value{}, &jce.Error{Kind: jce.BadType, Path: path, Tag: tag, WireType: wt, HasWire: true}
	}
}

// decodeAny mirrors jce.DecodeGeneric's internal decodeGenericValue,
// duplicated here for the same reason encodeAny is: an Any-kind field
// has no CompiledSchema to recurse with.
func decodeAny(r *jce.Reader, path string, wt jce.WireType) (jce.Value, error) {
	switch wt {
	case jce.ZeroTag:
		return jce.IntValue(0), nil
	case jce.Int1, jce.Int2, jce.Int4, jce.Int8:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.IntValue(n), nil
	case jce.Float:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.FloatValue(float32(f)), nil
	case jce.Double:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.DoubleValue(f), nil
	case jce.String1, jce.String4:
		s, err := r.ReadString(path, wt)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.StrValue(string(s)), nil
	case jce.SimpleList:
		b, err := r.ReadSimpleList(path)
		if err != nil {
			return jce.Value{}, err
		}
		return jce.BytesValue(b), nil
	case jce.List:
		n, err := r.ReadListHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		items := make([]jce.Value, 0, n)
		for i := 0; i < n; i++ {
			_, ewt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			ev, err := decodeAny(r, path, ewt)
			if err != nil {
				return jce.Value{}, err
			}
			items = append(items, ev)
		}
		return jce.ListValue(items), nil
	case jce.Map:
		n, err := r.ReadMapHeader(path)
		if err != nil {
			return jce.Value{}, err
		}
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		defer r.ExitContainer()
		pairs := make([]jce.MapEntry, 0, n)
		for i := 0; i < n; i++ {
			_, kwt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			kv, err := decodeAny(r, path, kwt)
			if err != nil {
				return jce.Value{}, err
			}
			_, vwt, err := r.ReadHead(path)
			if err != nil {
				return jce.Value{}, err
			}
			vv, err := decodeAny(r, path, vwt)
			if err != nil {
				return jce.Value{}, err
			}
			pairs = append(pairs, jce.MapEntry{Key: kv, Value: vv})
		}
		return jce.MapValue(pairs), nil
	case jce.StructBegin:
		if err := r.EnterContainer(path); err != nil {
			return jce.Value{}, err
		}
		var entries []jce.StructEntry
		err := func() error {
			for {
				_, peekWt, peekErr := r.PeekHead(path)
				if peekErr == nil && peekWt == jce.StructEnd {
					return nil
				}
				ftag, fwt, err := r.ReadHead(path)
				if err != nil {
					return err
				}
				fv, err := decodeAny(r, path, fwt)
				if err != nil {
					return err
				}
				entries = append(entries, jce.StructEntry{Tag: ftag, Value: fv})
			}
		}()
		r.ExitContainer()
		if err != nil {
			return jce.Value{}, err
		}
		if _, _, err := r.ReadHead(path); err != nil {
			return jce.Value{}, err
		}
		return jce.StructMapValue(entries), nil
	default:
		return jce.Value{}, &jce.Error{Kind: jce.BadType, Path: path, WireType: wt, HasWire: true}
	}
}

func structMapFromInstance(in *Instance) jce.Value {
	entries := make([]jce.StructEntry, len(in.Schema.Fields))
	for i, f := range in.Schema.Fields {
		entries[i] = jce.StructEntry{Tag: f.Tag, Value: in.Slots[i]}
	}
	return jce.StructMapValue(entries)
}

func int64InSet(n int64, set []int64) bool {
	for _, s := range set {
		if n == s {
			return true
		}
	}
	return false
}

// narrow checks n fits the target integer width's signed range; width 0
// means unconstrained (the promoted 64-bit value is kept as-is).
func narrow(n int64, width int, path string, tag int) error {
	var lo, hi int64
	switch width {
	case 0:
		return nil
	case 1:
		lo, hi = -128, 127
	case 2:
		lo, hi = -32768, 32767
	case 4:
		lo, hi = -2147483648, 2147483647
	case 8:
		return nil
	default:
		return nil
	}
	if n < lo || n > hi {
		return &jce.Error{Kind: jce.OutOfRange, Path: path, Tag: tag, Reason: "integer value does not fit the declared width"}
	}
	return nil
}
