package jce

// WireType is one of the fourteen wire type codes the JCE head can carry.
// It occupies the low 4 bits of a one-byte head, or the low 4 bits of the
// first byte of a two-byte head.
type WireType uint8

const (
	Int1        WireType = 0
	Int2        WireType = 1
	Int4        WireType = 2
	Int8        WireType = 3
	Float       WireType = 4
	Double      WireType = 5
	String1     WireType = 6
	String4     WireType = 7
	Map         WireType = 8
	List        WireType = 9
	StructBegin WireType = 10
	StructEnd   WireType = 11
	ZeroTag     WireType = 12
	SimpleList  WireType = 13
)

// maxWireType is the largest wire type code the protocol defines; a head
// byte carrying a nibble above this is BadType.
const maxWireType = SimpleList

func (t WireType) valid() bool { return t <= maxWireType }

func (t WireType) String() string {
	switch t {
	case Int1:
		return "Int1"
	case Int2:
		return "Int2"
	case Int4:
		return "Int4"
	case Int8:
		return "Int8"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case String1:
		return "String1"
	case String4:
		return "String4"
	case Map:
		return "Map"
	case List:
		return "List"
	case StructBegin:
		return "StructBegin"
	case StructEnd:
		return "StructEnd"
	case ZeroTag:
		return "ZeroTag"
	case SimpleList:
		return "SimpleList"
	default:
		return "Unknown"
	}
}

// isInt reports whether t is one of the integer-bearing wire types,
// including ZeroTag (which stands in for integer zero).
func (t WireType) isInt() bool {
	switch t {
	case Int1, Int2, Int4, Int8, ZeroTag:
		return true
	default:
		return false
	}
}

// isFloat reports whether t is one of the floating-point-bearing wire
// types, including ZeroTag (which stands in for 0.0).
func (t WireType) isFloat() bool {
	switch t {
	case Float, Double, ZeroTag:
		return true
	default:
		return false
	}
}

// isString reports whether t is one of the two string wire types.
func (t WireType) isString() bool {
	return t == String1 || t == String4
}

// IsInt, IsFloat and IsString are the exported forms of the compatibility
// predicates above, used by jce/schema to decide whether an observed
// wire type is compatible with a declared field kind (spec.md section
// 4.6's kind/type compatibility table).
func (t WireType) IsInt() bool    { return t.isInt() }
func (t WireType) IsFloat() bool  { return t.isFloat() }
func (t WireType) IsString() bool { return t.isString() }
