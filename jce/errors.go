package jce

import "fmt"

// Kind identifies a category of decode/encode failure, mirroring the
// closed error taxonomy of spec.md section 7. It plays the role the
// teacher's verror.ID plays for veyron errors: a small stable identity
// callers can branch on instead of matching error strings.
type Kind int

const (
	// Truncated means the buffer ended mid-value.
	Truncated Kind = iota
	// BadType means a type code was outside 0..13, or a SimpleList's
	// inner head was malformed.
	BadType
	// TypeMismatch means the wire type observed is incompatible with a
	// field's declared kind.
	TypeMismatch
	// OutOfRange means an integer failed to narrow into its declared
	// width, or a tag exceeded 255.
	OutOfRange
	// DepthExceeded means the configured recursion limit was hit.
	DepthExceeded
	// LimitExceeded means a container/string/bytes length limit was hit.
	LimitExceeded
	// UnknownTag means a tag had no routing slot and forbid_unknown is set.
	UnknownTag
	// DuplicateTag means the same tag was routed to an already-set slot.
	DuplicateTag
	// MissingRequired means a required slot was still unset at StructEnd.
	MissingRequired
	// Validation means a field constraint failed.
	Validation
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "Truncated"
	case BadType:
		return "BadType"
	case TypeMismatch:
		return "TypeMismatch"
	case OutOfRange:
		return "OutOfRange"
	case DepthExceeded:
		return "DepthExceeded"
	case LimitExceeded:
		return "LimitExceeded"
	case UnknownTag:
		return "UnknownTag"
	case DuplicateTag:
		return "DuplicateTag"
	case MissingRequired:
		return "MissingRequired"
	case Validation:
		return "Validation"
	default:
		return "Unknown"
	}
}

// Error is the engine's single concrete error type. It always carries a
// Kind and the path of the field being processed when the failure
// occurred; Tag and WireType are filled in when known.
type Error struct {
	Kind     Kind
	Path     string
	Tag      int // -1 when not applicable
	WireType WireType
	HasWire  bool
	Reason   string // extra detail, e.g. a constraint description
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "" && e.HasWire:
		return fmt.Sprintf("jce: %s at %s (tag=%d, wire=%s): %s", e.Kind, e.Path, e.Tag, e.WireType, e.Reason)
	case e.HasWire:
		return fmt.Sprintf("jce: %s at %s (tag=%d, wire=%s)", e.Kind, e.Path, e.Tag, e.WireType)
	case e.Reason != "":
		return fmt.Sprintf("jce: %s at %s: %s", e.Kind, e.Path, e.Reason)
	default:
		return fmt.Sprintf("jce: %s at %s", e.Kind, e.Path)
	}
}

// Is reports whether err is a *jce.Error of the given kind, so callers can
// branch on error identity the way verror.Is lets callers branch on
// verror.ID without string matching.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

func newErr(kind Kind, path string) *Error {
	return &Error{Kind: kind, Path: path, Tag: -1}
}

func (e *Error) withTag(tag int) *Error {
	e.Tag = tag
	return e
}

func (e *Error) withWire(wt WireType) *Error {
	e.WireType = wt
	e.HasWire = true
	return e
}

func (e *Error) withReason(format string, args ...interface{}) *Error {
	e.Reason = fmt.Sprintf(format, args...)
	return e
}

func errTruncated(path string) *Error      { return newErr(Truncated, path) }
func errBadType(path string) *Error        { return newErr(BadType, path) }
func errTypeMismatch(path string) *Error   { return newErr(TypeMismatch, path) }
func errOutOfRange(path string) *Error     { return newErr(OutOfRange, path) }
func errDepthExceeded(path string) *Error  { return newErr(DepthExceeded, path) }
func errLimitExceeded(path string) *Error  { return newErr(LimitExceeded, path) }
func errUnknownTag(path string) *Error     { return newErr(UnknownTag, path) }
func errDuplicateTag(path string) *Error   { return newErr(DuplicateTag, path) }
func errMissingRequired(path string) *Error { return newErr(MissingRequired, path) }
func errValidation(path string) *Error     { return newErr(Validation, path) }
