package schema

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/L-1124/Tarsio/jce"
)

// ConstraintKind identifies one of the decode-time field constraints
// spec.md section 3 lists: gt, lt, ge, le, min_len, max_len, pattern.
type ConstraintKind uint8

const (
	CGt ConstraintKind = iota
	CLt
	CGe
	CLe
	CMinLen
	CMaxLen
	CPattern
)

// Constraint is one uncompiled constraint as the façade declares it.
// Num carries the comparand for Gt/Lt/Ge/Le, Len for MinLen/MaxLen,
// Pattern the regex source for CPattern (matched anchored, full-string,
// per spec.md section 4.6).
type Constraint struct {
	Kind    ConstraintKind
	Num     float64
	Len     int
	Pattern string
}

// Gt, Lt, Ge, Le, MinLen, MaxLen, Pattern are convenience constructors.
func Gt(n float64) Constraint     { return Constraint{Kind: CGt, Num: n} }
func Lt(n float64) Constraint     { return Constraint{Kind: CLt, Num: n} }
func Ge(n float64) Constraint     { return Constraint{Kind: CGe, Num: n} }
func Le(n float64) Constraint     { return Constraint{Kind: CLe, Num: n} }
func MinLen(n int) Constraint     { return Constraint{Kind: CMinLen, Len: n} }
func MaxLen(n int) Constraint     { return Constraint{Kind: CMaxLen, Len: n} }
func Pattern(re string) Constraint { return Constraint{Kind: CPattern, Pattern: re} }

// compiledConstraint is a Constraint with its pattern matcher, if any,
// already compiled — the callable closure spec.md section 4.4 item 5
// describes, specialised here to a switch over ConstraintKind rather
// than a literal per-field closure value, since Go has no convenient
// anonymous-closure-per-slot ergonomics without an interface allocation
// per field.
type compiledConstraint struct {
	Constraint
	matcher *regexp2.Regexp
}

func compileConstraint(c Constraint) (compiledConstraint, error) {
	cc := compiledConstraint{Constraint: c}
	if c.Kind == CPattern {
		// Anchored full-match: wrap in ^(?:...)\z rather than relying on
		// regexp2.Regexp.MatchString's substring semantics (\z, unlike $,
		// does not also match before a trailing newline).
		re, err := regexp2.Compile(`^(?:`+c.Pattern+`)\z`, regexp2.None)
		if err != nil {
			return compiledConstraint{}, fmt.Errorf("schema: bad pattern %q: %w", c.Pattern, err)
		}
		cc.matcher = re
	}
	return cc, nil
}

// FieldDescriptor is one field as the façade declares it, the input to
// Compile (spec.md section 4.4): name, tag, kind, an optional explicit
// default and decode-time constraints.
//
// HasCustomSerializer and HasCustomDeserializer carry through from the
// original's struct.py/schema.rs field flags (SPEC_FULL.md section 3):
// the engine never calls either hook itself, it only preserves the flag
// on the compiled field for a façade to inspect and act on before/after
// calling into the engine.
type FieldDescriptor struct {
	Name                  string
	Tag                   int
	Kind                  Kind
	Default               *jce.Value // nil means "use the kind's implicit default"
	Constraints           []Constraint
	HasCustomSerializer   bool
	HasCustomDeserializer bool
}

// FieldDef is the compiled counterpart of FieldDescriptor, held in
// CompiledSchema.Fields in tag-ascending order.
type FieldDef struct {
	Name                  string
	Tag                   int
	Kind                  Kind
	Default               jce.Value
	HasDefault            bool
	Constraints           []compiledConstraint
	HasCustomSerializer   bool
	HasCustomDeserializer bool
}
