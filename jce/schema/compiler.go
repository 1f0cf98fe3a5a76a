package schema

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dlclark/regexp2"

	"github.com/L-1124/Tarsio/jce"
)

// SchemaOptions are the per-struct compile-time options spec.md section
// 3 lists alongside the compiled schema itself.
type SchemaOptions struct {
	// OmitDefaults, when true, skips encoding a field whose runtime value
	// bit-equals its compiled default (spec.md section 4.5, step 2).
	OmitDefaults bool
	// ForbidUnknown, when true, turns an unrouted tag on decode into
	// UnknownTag instead of a silent skip (spec.md section 4.6, step 2).
	ForbidUnknown bool
}

// patternCache deduplicates compiled regexp2 matchers across fields and
// schemas that declare the same pattern string — façades frequently
// reuse a handful of validators (email, UUID, etc.) across many struct
// types, and compiling a regexp2.Regexp is not free.
var (
	patternCacheOnce sync.Once
	patternCache     *lru.Cache
)

func getPatternCache() *lru.Cache {
	patternCacheOnce.Do(func() {
		patternCache, _ = lru.New(256)
	})
	return patternCache
}

// Compile validates descriptors and builds an immutable CompiledSchema.
// Pass the stub returned by Registry.Declare as into when compiling a
// schema that other schemas' Kind.Struct fields already reference (the
// self-referential / forward-reference case, spec.md section 4.4 item
// 2); pass nil to have Compile allocate a fresh CompiledSchema.
func Compile(name string, descriptors []FieldDescriptor, opts SchemaOptions, into *CompiledSchema) (*CompiledSchema, error) {
	s := into
	if s == nil {
		s = &CompiledSchema{}
	}
	s.Name = name
	s.OmitDefaults = opts.OmitDefaults
	s.ForbidUnknown = opts.ForbidUnknown
	for i := range s.TagLookup {
		s.TagLookup[i] = noSlot
	}

	fields := make([]FieldDef, 0, len(descriptors))
	nameLookup := make(map[string]int, len(descriptors))
	seenTag := make(map[int]bool, len(descriptors))

	for _, d := range descriptors {
		if d.Tag < 0 || d.Tag > 255 {
			return nil, fmt.Errorf("schema %s: field %q tag %d out of range 0..255", name, d.Name, d.Tag)
		}
		if seenTag[d.Tag] {
			return nil, fmt.Errorf("schema %s: duplicate tag %d", name, d.Tag)
		}
		if _, dup := nameLookup[d.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field name %q", name, d.Name)
		}
		if d.Kind.Tag == KStruct && d.Kind.Struct == nil {
			return nil, fmt.Errorf("schema %s: field %q declares Struct kind with a nil child schema", name, d.Name)
		}

		fd := FieldDef{
			Name:                  d.Name,
			Tag:                   d.Tag,
			Kind:                  d.Kind,
			HasCustomSerializer:   d.HasCustomSerializer,
			HasCustomDeserializer: d.HasCustomDeserializer,
		}
		switch {
		case d.Default != nil:
			fd.Default, fd.HasDefault = *d.Default, true
		case d.Kind.Tag == KOptional:
			fd.Default, fd.HasDefault = jce.Value{}, true
		case d.Kind.Tag == KList || d.Kind.Tag == KSet:
			fd.Default, fd.HasDefault = jce.ListValue(nil), true
		case d.Kind.Tag == KMap:
			fd.Default, fd.HasDefault = jce.MapValue(nil), true
		}

		compiled, err := compileFieldConstraints(d.Constraints)
		if err != nil {
			return nil, fmt.Errorf("schema %s: field %q: %w", name, d.Name, err)
		}
		fd.Constraints = compiled

		seenTag[d.Tag] = true
		nameLookup[d.Name] = len(fields)
		fields = append(fields, fd)
	}

	// Iteration order is tag-ascending regardless of the order the
	// façade declared fields in (spec.md section 3: "fields: ordered
	// list of FieldDef (ordered by tag ascending for iteration...)").
	sort.Slice(fields, func(i, j int) bool { return fields[i].Tag < fields[j].Tag })
	nameLookup = make(map[string]int, len(fields))
	for i, f := range fields {
		nameLookup[f.Name] = i
	}

	s.Fields = fields
	s.nameLookup = nameLookup
	s.RequiredMask = make([]bool, len(fields))
	s.DefaultMask = make([]bool, len(fields))
	for i, f := range fields {
		s.DefaultMask[i] = f.HasDefault
		s.RequiredMask[i] = !f.HasDefault
		s.TagLookup[f.Tag] = i
	}
	return s, nil
}

func compileFieldConstraints(raw []Constraint) ([]compiledConstraint, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]compiledConstraint, 0, len(raw))
	for _, c := range raw {
		if c.Kind != CPattern {
			out = append(out, compiledConstraint{Constraint: c})
			continue
		}
		cache := getPatternCache()
		if v, ok := cache.Get(c.Pattern); ok {
			out = append(out, compiledConstraint{Constraint: c, matcher: v.(*regexp2.Regexp)})
			continue
		}
		cc, err := compileConstraint(c)
		if err != nil {
			return nil, err
		}
		cache.Add(c.Pattern, cc.matcher)
		out = append(out, cc)
	}
	return out, nil
}
