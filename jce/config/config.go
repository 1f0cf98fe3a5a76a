// Package config loads the engine's ambient settings — resource limits
// and per-schema encode/decode options — from a TOML file, the same
// shape the teacher's own edge-service configs use (one struct per
// concern, decoded with BurntSushi/toml, validated after decode rather
// than field-by-field during it).
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/L-1124/Tarsio/jce"
)

// File is the on-disk shape of a Tarsio engine config file.
type File struct {
	Limits  LimitsConfig            `toml:"limits"`
	Schemas map[string]SchemaConfig `toml:"schema"`
}

// LimitsConfig mirrors jce.Limits field-for-field so it round-trips
// through TOML without a custom unmarshaler; zero fields fall back to
// jce.DefaultLimits() the same way a zero-value jce.Limits does.
type LimitsConfig struct {
	MaxDepth        int `toml:"max_depth"`
	MaxContainerLen int `toml:"max_container_len"`
	MaxStringLen    int `toml:"max_string_len"`
	MaxBytesLen     int `toml:"max_bytes_len"`
}

// SchemaConfig carries the per-struct behavior flags spec.md section 3
// lists alongside the compiled schema (omit_defaults, forbid_unknown),
// keyed by schema name in the TOML file so one config file can tune
// several registered schemas at once.
type SchemaConfig struct {
	OmitDefaults  bool `toml:"omit_defaults"`
	ForbidUnknown bool `toml:"forbid_unknown"`
}

// Load reads and parses path into a File, then validates it.
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := Validate(f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate rejects a config with a negative limit, which BurntSushi/toml
// would otherwise decode without complaint.
func Validate(f File) error {
	for _, n := range []struct {
		name string
		v    int
	}{
		{"limits.max_depth", f.Limits.MaxDepth},
		{"limits.max_container_len", f.Limits.MaxContainerLen},
		{"limits.max_string_len", f.Limits.MaxStringLen},
		{"limits.max_bytes_len", f.Limits.MaxBytesLen},
	} {
		if n.v < 0 {
			return fmt.Errorf("config: %s must not be negative, got %d", n.name, n.v)
		}
	}
	for name := range f.Schemas {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("config: schema table has an empty name")
		}
	}
	return nil
}

// ResolveLimits converts the config's LimitsConfig into a jce.Limits.
// Zero fields are left at zero rather than eagerly resolved here: every
// jce.NewReaderWithOptions/NewWriterWithOptions call already falls back
// to jce.DefaultLimits() field-by-field for a zero-value Limits, so
// config doesn't need to duplicate that logic.
func (f File) ResolveLimits() jce.Limits {
	return jce.Limits{
		MaxDepth:        f.Limits.MaxDepth,
		MaxContainerLen: f.Limits.MaxContainerLen,
		MaxStringLen:    f.Limits.MaxStringLen,
		MaxBytesLen:     f.Limits.MaxBytesLen,
	}
}
