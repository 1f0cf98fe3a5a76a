package schema

import "github.com/L-1124/Tarsio/jce"

// EncodeSchema drives a jce.Writer from in (component C5, spec.md
// section 4.5): a bare field sequence at the top level, without the
// StructBegin/StructEnd framing jce.Writer.WriteStruct adds for nested
// structs.
func EncodeSchema(in *Instance, limits jce.Limits) ([]byte, error) {
	w := jce.NewWriterWithOptions(limits, jce.BigEndian)
	if err := encodeFields(w, "<root>", in); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeFields(w *jce.Writer, path string, in *Instance) error {
	s := in.Schema
	for i, f := range s.Fields {
		present := in.Present[i]
		if f.Kind.Tag == KOptional && !present {
			continue // spec.md 4.5 step 1: an absent Optional field is skipped entirely.
		}
		v := in.Slots[i]
		if !present {
			if !f.HasDefault {
				return &jce.Error{Kind: jce.MissingRequired, Path: path, Tag: f.Tag, Reason: "field " + f.Name + " has no value and no default to encode"}
			}
			v = f.Default
		}
		if s.OmitDefaults && f.HasDefault && v.Equal(f.Default) {
			continue // spec.md 4.5 step 2.
		}
		if err := encodeValue(w, fieldPath(path, f.Name), f.Tag, f.Kind, v); err != nil {
			return err
		}
	}
	return nil
}

func fieldPath(parent, name string) string { return parent + "." + name }

func encodeValue(w *jce.Writer, path string, tag int, k Kind, v jce.Value) error {
	switch k.Tag {
	case KBool:
		return w.WriteBool(path, tag, v.Bool)
	case KInt, KEnum:
		return w.WriteInt(path, tag, v.Int)
	case KFloat:
		return w.WriteFloat32(path, tag, v.Float32)
	case KDouble:
		return w.WriteFloat(path, tag, v.Float64)
	case KStr:
		return w.WriteString(path, tag, []byte(v.Str))
	case KBytes:
		return w.WriteBytes(path, tag, v.Bytes)
	case KOptional:
		return encodeValue(w, path, tag, *k.Elem, v)
	case KList, KSet:
		return w.WriteList(path, tag, len(v.List), func(i int) error {
			return encodeValue(w, path, 0, *k.Elem, v.List[i])
		})
	case KTuple:
		if len(v.List) != len(k.Elems) {
			return &jce.Error{Kind: jce.TypeMismatch, Path: path, Tag: tag, Reason: "tuple arity mismatch"}
		}
		return w.WriteList(path, tag, len(v.List), func(i int) error {
			return encodeValue(w, path, 0, k.Elems[i], v.List[i])
		})
	case KMap:
		return w.WriteMap(path, tag, len(v.Map), func(i int) error {
			if err := encodeValue(w, path, 0, *k.Key, v.Map[i].Key); err != nil {
				return err
			}
			return encodeValue(w, path, 1, *k.Val, v.Map[i].Value)
		})
	case KStruct:
		child, err := instanceFromStructMap(k.Struct, v)
		if err != nil {
			return err
		}
		return w.WriteStruct(path, tag, func() error {
			return encodeFields(w, path, child)
		})
	case KUnion:
		for _, member := range k.Elems {
			if valueMatchesKind(member, v) {
				return encodeValue(w, path, tag, member, v)
			}
		}
		return &jce.Error{Kind: jce.TypeMismatch, Path: path, Tag: tag, Reason: "no union variant matches the runtime value"}
	case KAny:
		return encodeAny(w, path, tag, v)
	default:
		return &jce.Error{Kind: jce.BadType, Path: path, Tag: tag}
	}
}

// encodeAny mirrors the dispatch jce.EncodeGeneric's internal
// encodeGenericAt performs, duplicated here (rather than exported from
// jce) because Any-kind fields are schemaless by definition — there is
// no CompiledSchema to recurse with, only the runtime Value shape.
func encodeAny(w *jce.Writer, path string, tag int, v jce.Value) error {
	switch v.Kind {
	case jce.KindBool:
		return w.WriteBool(path, tag, v.Bool)
	case jce.KindInt:
		return w.WriteInt(path, tag, v.Int)
	case jce.KindFloat:
		return w.WriteFloat32(path, tag, v.Float32)
	case jce.KindDouble:
		return w.WriteFloat(path, tag, v.Float64)
	case jce.KindStr:
		return w.WriteString(path, tag, []byte(v.Str))
	case jce.KindBytes:
		return w.WriteBytes(path, tag, v.Bytes)
	case jce.KindList:
		return w.WriteList(path, tag, len(v.List), func(i int) error {
			return encodeAny(w, path, 0, v.List[i])
		})
	case jce.KindMap:
		return w.WriteMap(path, tag, len(v.Map), func(i int) error {
			if err := encodeAny(w, path, 0, v.Map[i].Key); err != nil {
				return err
			}
			return encodeAny(w, path, 1, v.Map[i].Value)
		})
	case jce.KindStructMap:
		return w.WriteStruct(path, tag, func() error {
			for _, entry := range v.StructMap {
				if err := encodeAny(w, path, entry.Tag, entry.Value); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return &jce.Error{Kind: jce.BadType, Path: path, Tag: tag}
	}
}

// instanceFromStructMap routes a StructMap's tag-keyed entries into
// child's slots, the encode-side half of "recurse with child schema"
// (spec.md section 4.5). Tags with no routing slot in child are
// ignored (unlike Instance.SetByTag, which returns an error for them):
// this is in-memory data a caller built, not an untrusted wire payload,
// so there is no UnknownTag failure mode here.
func instanceFromStructMap(child *CompiledSchema, v jce.Value) (*Instance, error) {
	if v.Kind != jce.KindStructMap {
		return nil, &jce.Error{Kind: jce.TypeMismatch, Path: child.Name, Reason: "struct-kind field requires a StructMap value"}
	}
	in := NewInstance(child)
	for _, e := range v.StructMap {
		if slot, ok := child.SlotForTag(e.Tag); ok {
			in.Slots[slot], in.Present[slot] = e.Value, true
		}
	}
	return in, nil
}

// valueMatchesKind is the "first variant whose runtime type matches"
// test spec.md section 4.5's Union handling calls for.
func valueMatchesKind(k Kind, v jce.Value) bool {
	switch k.Tag {
	case KBool:
		return v.Kind == jce.KindBool
	case KInt, KEnum:
		return v.Kind == jce.KindInt
	case KFloat:
		return v.Kind == jce.KindFloat
	case KDouble:
		return v.Kind == jce.KindDouble
	case KStr:
		return v.Kind == jce.KindStr
	case KBytes:
		return v.Kind == jce.KindBytes
	case KList, KSet, KTuple:
		return v.Kind == jce.KindList
	case KMap:
		return v.Kind == jce.KindMap
	case KStruct:
		return v.Kind == jce.KindStructMap
	case KOptional:
		return valueMatchesKind(*k.Elem, v)
	case KAny:
		return true
	default:
		return false
	}
}
