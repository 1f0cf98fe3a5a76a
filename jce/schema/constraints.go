package schema

import "github.com/L-1124/Tarsio/jce"

// checkConstraints runs every compiled constraint on a just-decoded
// field value (spec.md section 4.6, "Constraint evaluation"). Decode
// order only — constraints are not evaluated on encode.
func checkConstraints(f FieldDef, path string, v jce.Value) error {
	for _, c := range f.Constraints {
		if err := checkOne(c, path, f.Tag, v); err != nil {
			return err
		}
	}
	return nil
}

func checkOne(c compiledConstraint, path string, tag int, v jce.Value) error {
	switch c.Kind {
	case CGt, CLt, CGe, CLe:
		n, ok := numericOf(v)
		if !ok {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "comparison constraint applied to a non-numeric value"}
		}
		if !compareOk(c.Kind, n, c.Num) {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: constraintReason(c.Kind)}
		}
	case CMinLen, CMaxLen:
		n, ok := lengthOf(v)
		if !ok {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "length constraint applied to a value with no length"}
		}
		if c.Kind == CMinLen && n < c.Len {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "value shorter than min_len"}
		}
		if c.Kind == CMaxLen && n > c.Len {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "value longer than max_len"}
		}
	case CPattern:
		if v.Kind != jce.KindStr {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "pattern constraint applied to a non-string value"}
		}
		ok, err := c.matcher.MatchString(v.Str)
		if err != nil {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "pattern matcher error: " + err.Error()}
		}
		if !ok {
			return &jce.Error{Kind: jce.Validation, Path: path, Tag: tag, Reason: "value does not match the required pattern"}
		}
	}
	return nil
}

func compareOk(k ConstraintKind, n, bound float64) bool {
	switch k {
	case CGt:
		return n > bound
	case CLt:
		return n < bound
	case CGe:
		return n >= bound
	case CLe:
		return n <= bound
	default:
		return true
	}
}

func constraintReason(k ConstraintKind) string {
	switch k {
	case CGt:
		return "value must be greater than the bound"
	case CLt:
		return "value must be less than the bound"
	case CGe:
		return "value must be greater than or equal to the bound"
	case CLe:
		return "value must be less than or equal to the bound"
	default:
		return "constraint failed"
	}
}

func numericOf(v jce.Value) (float64, bool) {
	switch v.Kind {
	case jce.KindInt:
		return float64(v.Int), true
	case jce.KindFloat:
		return float64(v.Float32), true
	case jce.KindDouble:
		return v.Float64, true
	default:
		return 0, false
	}
}

func lengthOf(v jce.Value) (int, bool) {
	switch v.Kind {
	case jce.KindStr:
		return len(v.Str), true
	case jce.KindBytes:
		return len(v.Bytes), true
	case jce.KindList:
		return len(v.List), true
	case jce.KindMap:
		return len(v.Map), true
	case jce.KindStructMap:
		return len(v.StructMap), true
	default:
		return 0, false
	}
}
