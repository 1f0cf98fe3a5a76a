package schema

// noSlot marks a tag_lookup entry with no routed field.
const noSlot = -1

// CompiledSchema is the immutable, tag-routed description of one struct
// type (spec.md section 3's "Compiled schema"). It is produced once by
// Compile or Registry.Define and never mutated afterward, so concurrent
// encode/decode calls may share one *CompiledSchema by read-only
// reference without locking (spec.md section 5).
type CompiledSchema struct {
	Name   string
	Fields []FieldDef // ordered by tag ascending

	// TagLookup routes a wire tag (0..=255) to an index into Fields, or
	// noSlot if the tag is unrouted. Kept as a fixed array rather than a
	// map for O(1) branch-free lookup on the decode hot path (spec.md
	// section 3).
	TagLookup [256]int

	// RequiredMask and DefaultMask are indexed by slot (position in
	// Fields), not by tag. A plain []bool rather than a packed bitset:
	// struct field counts are small (tens, not thousands), so a bitset
	// buys nothing here and a []bool keeps the compiler/decoder code a
	// straight index instead of word/bit arithmetic.
	RequiredMask []bool
	DefaultMask  []bool

	OmitDefaults  bool
	ForbidUnknown bool

	nameLookup map[string]int
}

// FieldByName returns the compiled field declared under name, if any.
func (s *CompiledSchema) FieldByName(name string) (FieldDef, bool) {
	idx, ok := s.nameLookup[name]
	if !ok {
		return FieldDef{}, false
	}
	return s.Fields[idx], true
}

// FieldName implements jce.SchemaNamer, letting jce.DecodeTrace annotate
// trace nodes with field names without jce importing this package.
func (s *CompiledSchema) FieldName(tag int) (string, bool) {
	if tag < 0 || tag > 255 {
		return "", false
	}
	slot := s.TagLookup[tag]
	if slot == noSlot {
		return "", false
	}
	return s.Fields[slot].Name, true
}

// SlotForTag returns the field index routed to tag, or (-1, false) if
// tag is unrouted.
func (s *CompiledSchema) SlotForTag(tag int) (int, bool) {
	if tag < 0 || tag > 255 {
		return noSlot, false
	}
	slot := s.TagLookup[tag]
	return slot, slot != noSlot
}
