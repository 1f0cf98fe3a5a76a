package jce

// ValueKind identifies which variant of Value is populated. Value is the
// engine's dynamic value type (TarsValue in spec.md), used by the
// schemaless codec (generic.go) and as the materialised form of a field
// declared Any.
type ValueKind uint8

const (
	KindBool ValueKind = iota
	KindInt
	KindFloat
	KindDouble
	KindStr
	KindBytes
	KindList
	KindMap
	// KindStructMap is a struct-shaped map: keys are tags (0..=255), and
	// it is written/read as StructBegin..StructEnd on the wire. It is
	// kept as a distinct variant from KindMap (an ordinary wire Map) so
	// the generic codec can re-emit the correct wire type code even
	// though both hold key/value pairs in memory (spec.md section 3).
	KindStructMap
)

// MapEntry is one key/value pair of an ordinary Value map, kept as a
// slice of pairs (rather than a Go map keyed by Value) so iteration
// order is exactly the order the caller supplied or the wire order the
// decoder observed (spec.md section 5: "the decoder MUST accept pairs in
// wire order and MUST NOT reorder them").
type MapEntry struct {
	Key   Value
	Value Value
}

// StructEntry is one tag/value pair of a KindStructMap value.
type StructEntry struct {
	Tag   int
	Value Value
}

// Value is a tagged union over the scalar and container shapes the wire
// format can carry without a schema. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind      ValueKind
	Bool      bool
	Int       int64
	Float32   float32
	Float64   float64
	Str       string
	Bytes     []byte
	List      []Value
	Map       []MapEntry
	StructMap []StructEntry
}

func BoolValue(v bool) Value    { return Value{Kind: KindBool, Bool: v} }
func IntValue(v int64) Value    { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float32) Value { return Value{Kind: KindFloat, Float32: v} }
func DoubleValue(v float64) Value { return Value{Kind: KindDouble, Float64: v} }
func StrValue(v string) Value   { return Value{Kind: KindStr, Str: v} }
func BytesValue(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }
func ListValue(v []Value) Value { return Value{Kind: KindList, List: v} }
func MapValue(v []MapEntry) Value { return Value{Kind: KindMap, Map: v} }
func StructMapValue(v []StructEntry) Value { return Value{Kind: KindStructMap, StructMap: v} }

// Equal reports deep equality, used by round-trip tests (spec.md section
// 8, universal invariant 2).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float32 == o.Float32
	case KindDouble:
		return v.Float64 == o.Float64
	case KindStr:
		return v.Str == o.Str
	case KindBytes:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for i := range v.Map {
			if !v.Map[i].Key.Equal(o.Map[i].Key) || !v.Map[i].Value.Equal(o.Map[i].Value) {
				return false
			}
		}
		return true
	case KindStructMap:
		if len(v.StructMap) != len(o.StructMap) {
			return false
		}
		for i := range v.StructMap {
			if v.StructMap[i].Tag != o.StructMap[i].Tag || !v.StructMap[i].Value.Equal(o.StructMap[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
