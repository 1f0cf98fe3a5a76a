// Package jce implements the wire-level engine for Tencent's Tars/JCE
// binary serialization protocol: a self-describing tag-type-value format.
//
// The package is split by concern, one file per piece, in the style of a
// hand-rolled binary codec rather than a reflection-heavy one: head.go and
// numeric.go hold the wire primitives, reader.go and writer.go hold the
// cursor/buffer types driven by the schema-aware layers in jce/schema,
// value.go and generic.go hold the schemaless TarsValue path, and probe.go
// and trace.go hold the structure-probing and diagnostic-tracing helpers.
//
// Nothing in this package panics on malformed input; every operation that
// can fail returns an error, and recursion/container sizes are bounded by
// a caller-supplied or default Limits.
package jce
