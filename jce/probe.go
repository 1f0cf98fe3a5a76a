package jce

// ProbeStruct attempts a complete schemaless decode of buf and reports
// whether it is *exactly* a single top-level struct: every byte is
// consumed and no error occurs. Any error, or any leftover/deficit of
// bytes, yields (Value{}, false) rather than an error, since probing is
// a predicate, not a parse (spec.md section 4.8).
//
// Probing shares DecodeGeneric's depth/size limits, so a malicious input
// crafted to look like a struct cannot exhaust resources while being
// probed.
func ProbeStruct(buf []byte, limits Limits) (Value, bool) {
	v, err := DecodeGeneric(buf, limits)
	if err != nil {
		return Value{}, false
	}
	return v, true
}
