package schema

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// SchemaId identifies a registered schema. It is derived from the
// schema's name and field shape via BLAKE3 rather than handed out as a
// sequential counter, so registering the same struct definition twice
// (e.g. from two independently loaded façade modules) yields the same
// id instead of two aliases for one wire shape.
type SchemaId [16]byte

func (id SchemaId) String() string { return fmt.Sprintf("%x", id[:]) }

// Registry is the process-wide, read-optimised schema table spec.md
// section 5 asks for: "readers never block readers, and write lock is
// acquired only during schema registration." A sync.RWMutex gives
// exactly that without a bespoke lock.
type Registry struct {
	mu     sync.RWMutex
	byId   map[SchemaId]*CompiledSchema
	stubs  map[string]*CompiledSchema
	logger zerolog.Logger
}

// NewRegistry returns an empty Registry that logs nothing: zerolog.Nop()
// discards every event, so the engine stays silent
// unless a façade opts in via NewRegistryWithLogger. Most programs
// need only one Registry; it is safe to share across goroutines.
func NewRegistry() *Registry {
	return NewRegistryWithLogger(zerolog.Nop())
}

// NewRegistryWithLogger is NewRegistry with registration and
// redefinition events logged at debug level through logger, the way a
// façade that wants visibility into what got loaded (and what got
// silently replaced) would wire jce/config.NewLogger in.
func NewRegistryWithLogger(logger zerolog.Logger) *Registry {
	return &Registry{
		byId:   make(map[SchemaId]*CompiledSchema),
		stubs:  make(map[string]*CompiledSchema),
		logger: logger,
	}
}

// Declare reserves name and returns an unfilled *CompiledSchema stub
// that Kind.Struct fields of other, concurrently-being-built schemas may
// reference immediately — the fixup pass spec.md section 4.4 item 2
// allows for self-referential and mutually recursive struct kinds.
// Calling Declare twice for the same name returns the existing stub.
func (r *Registry) Declare(name string) *CompiledSchema {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stubs[name]; ok {
		return s
	}
	s := &CompiledSchema{Name: name}
	for i := range s.TagLookup {
		s.TagLookup[i] = noSlot
	}
	r.stubs[name] = s
	return s
}

// Define compiles descriptors into the stub previously returned by
// Declare (or a fresh CompiledSchema if name was never declared),
// computes its SchemaId from the compiled shape, and registers it.
// Calling Define again for a name that already holds a compiled schema
// binds the name to a newly compiled schema and logs the redefinition.
func (r *Registry) Define(name string, descriptors []FieldDescriptor, opts SchemaOptions) (SchemaId, *CompiledSchema, error) {
	r.mu.Lock()
	stub, alreadyDeclared := r.stubs[name]
	// A stub's Fields is nil until Compile fills it in, so a non-nil
	// Fields here means this name already names a fully compiled schema
	// whose binding Define is about to replace — the registry's only
	// notion of "eviction," since it keeps no bounded, LRU-style cache
	// of its own (jce/schema/compiler.go's pattern cache is separate).
	wasCompiled := alreadyDeclared && stub.Fields != nil
	var previousId SchemaId
	if wasCompiled {
		previousId = fingerprint(stub)
	}
	r.mu.Unlock()

	// Only an unfilled stub is compiled in place; a name that already
	// holds a compiled schema gets a fresh CompiledSchema, so the old one
	// stays unchanged for anything still referencing it.
	var into *CompiledSchema
	if alreadyDeclared && !wasCompiled {
		into = stub
	}
	s, err := Compile(name, descriptors, opts, into)
	if err != nil {
		return SchemaId{}, nil, err
	}

	id := fingerprint(s)

	r.mu.Lock()
	r.stubs[name] = s
	r.byId[id] = s
	r.mu.Unlock()

	if wasCompiled {
		r.logger.Debug().
			Str("schema", name).
			Str("previous_id", previousId.String()).
			Str("id", id.String()).
			Msg("schema redefinition evicted previous binding")
	} else {
		r.logger.Debug().
			Str("schema", name).
			Str("id", id.String()).
			Msg("schema registered")
	}
	return id, s, nil
}

// Lookup returns the compiled schema registered under id.
func (r *Registry) Lookup(id SchemaId) (*CompiledSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byId[id]
	return s, ok
}

// LookupByName returns the compiled (or still-stub) schema registered
// under name.
func (r *Registry) LookupByName(name string) (*CompiledSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stubs[name]
	return s, ok
}

// fingerprint derives a SchemaId from a compiled schema's name and field
// shape: name, then each field's tag, kind tag, int width and field name
// in tag order. Two schemas with identical wire shape but different Go-side
// constraint closures still hash identically, which is the point — the
// id identifies the wire contract, not the validation logic riding
// alongside it.
func fingerprint(s *CompiledSchema) SchemaId {
	h := blake3.New()
	_, _ = h.Write([]byte(s.Name))
	var buf [8]byte
	for _, f := range s.Fields {
		binary.BigEndian.PutUint32(buf[0:4], uint32(f.Tag))
		binary.BigEndian.PutUint32(buf[4:8], uint32(f.Kind.Tag))
		_, _ = h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(f.Kind.IntWidth))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(f.Name))
	}
	sum := h.Sum(nil)
	var id SchemaId
	copy(id[:], sum)
	return id
}
