package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/L-1124/Tarsio/jce"
)

func simpleSchema(t *testing.T, opts SchemaOptions) *CompiledSchema {
	t.Helper()
	s, err := Compile("Person", []FieldDescriptor{
		{Name: "id", Tag: 0, Kind: IntKind(4)},
		{Name: "name", Tag: 1, Kind: StrKind()},
	}, opts, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func TestRoundTripWithSchema(t *testing.T) {
	s := simpleSchema(t, SchemaOptions{})
	in := NewInstance(s)
	_ = in.SetByName("id", jce.IntValue(42))
	_ = in.SetByName("name", jce.StrValue("Alice"))

	buf, err := EncodeSchema(in, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSchema(buf, s, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	id, _ := got.Get("id")
	name, _ := got.Get("name")
	if id.Int != 42 || name.Str != "Alice" {
		t.Fatalf("decoded mismatch: id=%v name=%v", id, name)
	}
}

func TestDuplicateTagIsTagUniqueAtCompile(t *testing.T) {
	_, err := Compile("Bad", []FieldDescriptor{
		{Name: "a", Tag: 0, Kind: IntKind(4)},
		{Name: "b", Tag: 0, Kind: IntKind(4)},
	}, SchemaOptions{}, nil)
	if err == nil {
		t.Fatal("expected duplicate-tag compile error")
	}
}

func TestUnknownTagToleratedByDefault(t *testing.T) {
	wide, err := Compile("Wide", []FieldDescriptor{
		{Name: "id", Tag: 0, Kind: IntKind(4)},
		{Name: "name", Tag: 1, Kind: StrKind()},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := NewInstance(wide)
	_ = w.SetByName("id", jce.IntValue(1))
	_ = w.SetByName("name", jce.StrValue("Alice"))
	buf, err := EncodeSchema(w, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}

	narrow, err := Compile("Narrow", []FieldDescriptor{
		{Name: "id", Tag: 0, Kind: IntKind(4)},
	}, SchemaOptions{ForbidUnknown: false}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSchema(buf, narrow, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	id, _ := got.Get("id")
	if id.Int != 1 {
		t.Fatalf("got id=%v, want 1", id)
	}
}

func TestUnknownTagRejectedWhenForbidden(t *testing.T) {
	wide := simpleSchema(t, SchemaOptions{})
	w := NewInstance(wide)
	_ = w.SetByName("id", jce.IntValue(1))
	_ = w.SetByName("name", jce.StrValue("x"))
	buf, err := EncodeSchema(w, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}

	narrow, err := Compile("Narrow2", []FieldDescriptor{
		{Name: "id", Tag: 0, Kind: IntKind(4)},
	}, SchemaOptions{ForbidUnknown: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecodeSchema(buf, narrow, jce.DefaultLimits())
	if !jce.Is(err, jce.UnknownTag) {
		t.Fatalf("want UnknownTag, got %v", err)
	}
}

func TestMissingRequiredField(t *testing.T) {
	s := simpleSchema(t, SchemaOptions{})
	in := NewInstance(s)
	_ = in.SetByName("id", jce.IntValue(1))
	// "name" left unset and has no default -> required.
	_, err := EncodeSchema(in, jce.DefaultLimits())
	if !jce.Is(err, jce.MissingRequired) {
		t.Fatalf("want MissingRequired on encode, got %v", err)
	}
}

func TestOmitDefaultsSkipsFieldAtCompiledDefault(t *testing.T) {
	def := jce.IntValue(0)
	s, err := Compile("WithDefault", []FieldDescriptor{
		{Name: "flag", Tag: 0, Kind: IntKind(4), Default: &def},
	}, SchemaOptions{OmitDefaults: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	in := NewInstance(s)
	_ = in.SetByName("flag", jce.IntValue(0))
	buf, err := EncodeSchema(in, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 0 {
		t.Fatalf("expected omit_defaults to skip the default-valued field, got % x", buf)
	}

	got, err := DecodeSchema(buf, s, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	flag, present := got.Get("flag")
	if present {
		t.Fatal("expected flag to be filled from default, not marked present")
	}
	if flag.Int != 0 {
		t.Fatalf("got flag=%v, want the compiled default 0", flag)
	}
}

func TestIntegerNarrowingOutOfRange(t *testing.T) {
	s, err := Compile("Narrowed", []FieldDescriptor{
		{Name: "small", Tag: 0, Kind: IntKind(1)},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := jce.NewWriter()
	_ = w.WriteInt("small", 0, 1000) // doesn't fit in a signed byte
	_, err = DecodeSchema(w.Bytes(), s, jce.DefaultLimits())
	if !jce.Is(err, jce.OutOfRange) {
		t.Fatalf("want OutOfRange, got %v", err)
	}
}

func TestNestedStructRoundTrip(t *testing.T) {
	addr, err := Compile("Address", []FieldDescriptor{
		{Name: "city", Tag: 0, Kind: StrKind()},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	person, err := Compile("PersonWithAddress", []FieldDescriptor{
		{Name: "id", Tag: 0, Kind: IntKind(4)},
		{Name: "home", Tag: 1, Kind: StructKind(addr)},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	in := NewInstance(person)
	_ = in.SetByName("id", jce.IntValue(1))
	_ = in.SetByName("home", jce.StructMapValue([]jce.StructEntry{
		{Tag: 0, Value: jce.StrValue("Shenzhen")},
	}))
	buf, err := EncodeSchema(in, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSchema(buf, person, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	home, _ := got.Get("home")
	if home.Kind != jce.KindStructMap || len(home.StructMap) != 1 || home.StructMap[0].Value.Str != "Shenzhen" {
		t.Fatalf("nested struct mismatch: %+v", home)
	}
}

func TestSelfReferentialSchemaViaRegistry(t *testing.T) {
	reg := NewRegistry()
	nodeStub := reg.Declare("Node")
	_, node, err := reg.Define("Node", []FieldDescriptor{
		{Name: "value", Tag: 0, Kind: IntKind(4)},
		{Name: "next", Tag: 1, Kind: OptionalKind(StructKind(nodeStub))},
	}, SchemaOptions{})
	if err != nil {
		t.Fatal(err)
	}

	head := NewInstance(node)
	_ = head.SetByName("value", jce.IntValue(1))
	_ = head.SetByName("next", jce.StructMapValue([]jce.StructEntry{
		{Tag: 0, Value: jce.IntValue(2)},
	}))

	buf, err := EncodeSchema(head, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSchema(buf, node, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	next, present := got.Get("next")
	if !present || next.StructMap[0].Value.Int != 2 {
		t.Fatalf("self-referential decode mismatch: %+v", next)
	}
}

func TestEnumConstraintRejectsDisallowedValue(t *testing.T) {
	s, err := Compile("WithEnum", []FieldDescriptor{
		{Name: "status", Tag: 0, Kind: EnumKind(1, []int64{0, 1, 2})},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := jce.NewWriter()
	_ = w.WriteInt("status", 0, 9)
	_, err = DecodeSchema(w.Bytes(), s, jce.DefaultLimits())
	if !jce.Is(err, jce.Validation) {
		t.Fatalf("want Validation, got %v", err)
	}
}

func TestPatternConstraint(t *testing.T) {
	s, err := Compile("WithPattern", []FieldDescriptor{
		{Name: "code", Tag: 0, Kind: StrKind(), Constraints: []Constraint{Pattern(`[A-Z]{3}\d{3}`)}},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	good := jce.NewWriter()
	_ = good.WriteString("code", 0, []byte("ABC123"))
	if _, err := DecodeSchema(good.Bytes(), s, jce.DefaultLimits()); err != nil {
		t.Fatalf("expected pattern match to pass, got %v", err)
	}

	bad := jce.NewWriter()
	_ = bad.WriteString("code", 0, []byte("nope"))
	_, err = DecodeSchema(bad.Bytes(), s, jce.DefaultLimits())
	if !jce.Is(err, jce.Validation) {
		t.Fatalf("want Validation, got %v", err)
	}
}

func TestMinMaxLenConstraint(t *testing.T) {
	s, err := Compile("WithLen", []FieldDescriptor{
		{Name: "name", Tag: 0, Kind: StrKind(), Constraints: []Constraint{MinLen(2), MaxLen(5)}},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := jce.NewWriter()
	_ = w.WriteString("name", 0, []byte("x"))
	_, err = DecodeSchema(w.Bytes(), s, jce.DefaultLimits())
	if !jce.Is(err, jce.Validation) {
		t.Fatalf("want Validation for too-short value, got %v", err)
	}
}

func TestUnionPicksFirstMatchingVariant(t *testing.T) {
	s, err := Compile("WithUnion", []FieldDescriptor{
		{Name: "v", Tag: 0, Kind: UnionKind(IntKind(4), StrKind())},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	in := NewInstance(s)
	_ = in.SetByName("v", jce.StrValue("hi"))
	buf, err := EncodeSchema(in, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSchema(buf, s, jce.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	v, _ := got.Get("v")
	if v.Kind != jce.KindStr || v.Str != "hi" {
		t.Fatalf("union round trip mismatch: %+v", v)
	}
}

func TestTypeMismatchOnIncompatibleWireType(t *testing.T) {
	s, err := Compile("Strict", []FieldDescriptor{
		{Name: "n", Tag: 0, Kind: IntKind(4)},
	}, SchemaOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := jce.NewWriter()
	_ = w.WriteString("n", 0, []byte("not an int"))
	_, err = DecodeSchema(w.Bytes(), s, jce.DefaultLimits())
	if !jce.Is(err, jce.TypeMismatch) {
		t.Fatalf("want TypeMismatch, got %v", err)
	}
}

func TestFieldNameImplementsSchemaNamer(t *testing.T) {
	s := simpleSchema(t, SchemaOptions{})
	var namer jce.SchemaNamer = s
	name, ok := namer.FieldName(1)
	if !ok || name != "name" {
		t.Fatalf("FieldName(1) = (%q, %v), want (\"name\", true)", name, ok)
	}
	if _, ok := namer.FieldName(99); ok {
		t.Fatal("FieldName(99) should report not-found")
	}
}

func TestRegistryFingerprintIsStableAndDistinct(t *testing.T) {
	reg := NewRegistry()
	id1, _, err := reg.Define("A", []FieldDescriptor{{Name: "x", Tag: 0, Kind: IntKind(4)}}, SchemaOptions{})
	if err != nil {
		t.Fatal(err)
	}
	reg2 := NewRegistry()
	id2, _, err := reg2.Define("A", []FieldDescriptor{{Name: "x", Tag: 0, Kind: IntKind(4)}}, SchemaOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("expected identical schema shape to fingerprint identically: %v != %v", id1, id2)
	}
	id3, _, err := reg.Define("B", []FieldDescriptor{{Name: "y", Tag: 0, Kind: IntKind(4)}}, SchemaOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id3 {
		t.Fatal("expected distinct schemas to fingerprint distinctly")
	}
}

func TestRegistryDefaultLoggerIsSilent(t *testing.T) {
	// NewRegistry must not panic or write anywhere observable when no
	// logger is injected; it relies on zerolog.Nop() discarding events.
	reg := NewRegistry()
	if _, _, err := reg.Define("A", []FieldDescriptor{{Name: "x", Tag: 0, Kind: IntKind(4)}}, SchemaOptions{}); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryLogsRegistrationAndRedefinition(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	reg := NewRegistryWithLogger(logger)

	if _, _, err := reg.Define("A", []FieldDescriptor{{Name: "x", Tag: 0, Kind: IntKind(4)}}, SchemaOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "schema registered") {
		t.Fatalf("expected a registration log line, got: %s", buf.String())
	}

	buf.Reset()
	// Redefining "A" with a different shape overwrites the already-compiled
	// schema already bound to that name — the registry's stand-in for an
	// eviction event.
	if _, _, err := reg.Define("A", []FieldDescriptor{{Name: "x", Tag: 0, Kind: IntKind(8)}}, SchemaOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "schema redefinition evicted previous binding") {
		t.Fatalf("expected a redefinition log line, got: %s", buf.String())
	}
}
