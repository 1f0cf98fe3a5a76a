package schema

import (
	"fmt"

	"github.com/L-1124/Tarsio/jce"
)

// Instance is a decoded (or to-be-encoded) value for one CompiledSchema,
// addressable by field index or tag — the "value view (positional
// accessor by slot)" spec.md section 4.5 describes. The host-language
// façade that would normally wrap this in a generated struct type is an
// explicit out-of-scope collaborator (spec.md's Overview); Instance is
// the engine-side stand-in it binds to.
type Instance struct {
	Schema *CompiledSchema
	Slots  []jce.Value
	// Present marks which slots were explicitly supplied by the caller
	// (on encode) or read off the wire (on decode), as opposed to
	// filled in from a compiled default.
	Present []bool
}

// NewInstance returns an Instance for s with every slot unset.
func NewInstance(s *CompiledSchema) *Instance {
	return &Instance{
		Schema:  s,
		Slots:   make([]jce.Value, len(s.Fields)),
		Present: make([]bool, len(s.Fields)),
	}
}

// SetByName assigns v to the field named name.
func (in *Instance) SetByName(name string, v jce.Value) error {
	idx, ok := in.Schema.nameLookup[name]
	if !ok {
		return errUnknownField(name)
	}
	in.Slots[idx], in.Present[idx] = v, true
	return nil
}

// SetByTag assigns v to the field routed to tag.
func (in *Instance) SetByTag(tag int, v jce.Value) error {
	slot, ok := in.Schema.SlotForTag(tag)
	if !ok {
		return errUnknownFieldTag(tag)
	}
	in.Slots[slot], in.Present[slot] = v, true
	return nil
}

// Get returns the field named name and whether it was explicitly
// present (as opposed to defaulted).
func (in *Instance) Get(name string) (jce.Value, bool) {
	idx, ok := in.Schema.nameLookup[name]
	if !ok {
		return jce.Value{}, false
	}
	return in.Slots[idx], in.Present[idx]
}

func errUnknownField(name string) error {
	return fmt.Errorf("schema: no field named %q", name)
}

func errUnknownFieldTag(tag int) error {
	return fmt.Errorf("schema: no field routed to tag %d", tag)
}
