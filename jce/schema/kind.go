// Package schema implements the schema compiler, schema-driven encoder
// and decoder (components C4–C6): it turns declarative field
// descriptions into a CompiledSchema with a tag-routing table, default
// values and constraint closures, then drives the jce package's Reader
// and Writer from that compiled description instead of from a bare
// tag/value stream.
package schema

// KindTag identifies which variant of Kind is populated. It mirrors the
// closed Kind variant of spec.md section 3: Bool, Int{width}, Float,
// Double, Str, Bytes, List, Set, Tuple, Map, Struct, Optional, Enum,
// Union, Any.
type KindTag uint8

const (
	KBool KindTag = iota
	KInt
	KFloat
	KDouble
	KStr
	KBytes
	KList
	KSet
	KTuple
	KMap
	KStruct
	KOptional
	KEnum
	KUnion
	KAny
)

func (k KindTag) String() string {
	switch k {
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KDouble:
		return "Double"
	case KStr:
		return "Str"
	case KBytes:
		return "Bytes"
	case KList:
		return "List"
	case KSet:
		return "Set"
	case KTuple:
		return "Tuple"
	case KMap:
		return "Map"
	case KStruct:
		return "Struct"
	case KOptional:
		return "Optional"
	case KEnum:
		return "Enum"
	case KUnion:
		return "Union"
	case KAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// Kind describes the declared shape of one field or one nested slot of a
// container/union kind. Only the members relevant to Tag are meaningful;
// Go has no sum type, so Kind is a small hand-rolled tagged union rather
// than an interface hierarchy, the same shape jce.Value uses for
// TarsValue.
type Kind struct {
	Tag KindTag

	// IntWidth is the declared byte width for KInt (1, 2, 4 or 8) and the
	// backing integer width for KEnum. 0 means "unconstrained" (the
	// encoder applies ordinary compaction, the decoder accepts any width
	// and keeps the 64-bit promoted value).
	IntWidth int

	// Elem is the element kind for List, Set and Optional.
	Elem *Kind

	// Elems is the ordered member-kind list for Tuple and Union.
	Elems []Kind

	// Key and Val are the key/value kinds for Map.
	Key *Kind
	Val *Kind

	// Struct is the child schema for KStruct. It is a pointer so
	// self-referential and mutually recursive schemas can be declared
	// via Registry.Declare before the referencing schema is Compiled
	// (spec.md section 4.4, item 2's lazy resolution allowance).
	Struct *CompiledSchema

	// EnumAllowed is the closed set of backing-integer values a KEnum
	// kind accepts; empty means "any value of the backing width".
	EnumAllowed []int64
}

// BoolKind, IntKind, ... are convenience constructors for leaf kinds.
func BoolKind() Kind   { return Kind{Tag: KBool} }
func FloatKind() Kind  { return Kind{Tag: KFloat} }
func DoubleKind() Kind { return Kind{Tag: KDouble} }
func StrKind() Kind    { return Kind{Tag: KStr} }
func BytesKind() Kind  { return Kind{Tag: KBytes} }
func AnyKind() Kind    { return Kind{Tag: KAny} }

// IntKind returns an integer kind narrowed to width bytes (1, 2, 4 or 8);
// width 0 means unconstrained (promoted 64-bit, no narrowing on decode).
func IntKind(width int) Kind { return Kind{Tag: KInt, IntWidth: width} }

func ListKind(elem Kind) Kind { return Kind{Tag: KList, Elem: &elem} }
func SetKind(elem Kind) Kind  { return Kind{Tag: KSet, Elem: &elem} }
func TupleKind(elems ...Kind) Kind { return Kind{Tag: KTuple, Elems: elems} }
func MapKind(key, val Kind) Kind { return Kind{Tag: KMap, Key: &key, Val: &val} }
func OptionalKind(elem Kind) Kind { return Kind{Tag: KOptional, Elem: &elem} }
func UnionKind(members ...Kind) Kind { return Kind{Tag: KUnion, Elems: members} }

// StructKind returns a kind referencing child, typically a stub returned
// by Registry.Declare for a schema still being built.
func StructKind(child *CompiledSchema) Kind { return Kind{Tag: KStruct, Struct: child} }

// EnumKind returns an enum kind backed by an integer of width bytes,
// restricted to allowed values (an empty allowed set accepts anything
// the backing width can hold).
func EnumKind(width int, allowed []int64) Kind {
	return Kind{Tag: KEnum, IntWidth: width, EnumAllowed: allowed}
}

// IsContainer reports whether values of this kind recurse into C5/C6
// again for their elements.
func (k Kind) IsContainer() bool {
	switch k.Tag {
	case KList, KSet, KTuple, KMap, KStruct, KOptional, KUnion:
		return true
	default:
		return false
	}
}
