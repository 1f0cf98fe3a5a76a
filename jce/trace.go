package jce

import "strconv"

// SchemaNamer is the minimal contract DecodeTrace needs from a compiled
// schema to annotate trace nodes with field names: given a tag, return
// the field name declared for it, if any. jce/schema.CompiledSchema
// implements this; jce itself has no notion of a schema, which is what
// keeps this package free of an import cycle with jce/schema.
type SchemaNamer interface {
	FieldName(tag int) (name string, ok bool)
}

// TraceNode is one node of the diagnostic tree decode_trace produces
// (spec.md section 4.8): every tag/type/value-if-scalar encountered
// during a decode, with child nodes for containers, optional field/type
// names when a schema is supplied, a dotted/indexed Path, and an Err
// recorded in place rather than aborting the walk.
type TraceNode struct {
	Tag      int
	WireType WireType
	Path     string
	Name     string // field name, if a schema was supplied and resolved one
	HasName  bool
	Scalar   Value // populated only for scalar wire types
	IsScalar bool
	Children []*TraceNode
	Err      error
}

// MaxDepth returns the deepest nesting level reached at or below this
// node (0 for a leaf), supplementing spec.md's own decode_trace contract
// with the diagnostic the Python original's context.py exposes to
// callers (see SPEC_FULL.md section 3).
func (n *TraceNode) MaxDepth() int {
	if n == nil || len(n.Children) == 0 {
		return 0
	}
	best := 0
	for _, c := range n.Children {
		if d := c.MaxDepth() + 1; d > best {
			best = d
		}
	}
	return best
}

// DecodeTrace walks buf the way DecodeGeneric does, but does not abort on
// a value error: it records the error at the offending node and continues
// with the next field. A head that cannot be read (truncated, or a type
// nibble above 13) is recorded as an error node and ends the walk of that
// field sequence, since the cursor cannot advance past it. It never
// rejects an unknown tag (there is no forbid_unknown concept here —
// decode_trace is for offline analysis, not validation). schema may be
// nil for a schemaless trace.
func DecodeTrace(buf []byte, schema SchemaNamer, limits Limits) *TraceNode {
	r := NewReaderWithOptions(buf, limits, BigEndian)
	root := &TraceNode{Tag: -1, Path: "<root>"}
	root.Children = traceFields(r, "<root>", schema, func() bool { return r.AtEnd() })
	return root
}

func traceFields(r *Reader, path string, schema SchemaNamer, done func() bool) []*TraceNode {
	var nodes []*TraceNode
	for !done() {
		tag, wt, err := r.ReadHead(path)
		if err != nil {
			nodes = append(nodes, &TraceNode{Path: path, Err: err})
			return nodes
		}
		fieldPath := childPath(path, tag)
		node := &TraceNode{Tag: tag, WireType: wt, Path: fieldPath}
		if schema != nil {
			if name, ok := schema.FieldName(tag); ok {
				node.Name, node.HasName = name, true
			}
		}
		traceValue(r, node, fieldPath, schema, wt)
		nodes = append(nodes, node)
	}
	return nodes
}

func traceValue(r *Reader, node *TraceNode, path string, schema SchemaNamer, wt WireType) {
	switch wt {
	case ZeroTag:
		node.IsScalar = true
		node.Scalar = IntValue(0)
	case Int1, Int2, Int4, Int8:
		n, err := r.ReadInt(path, wt)
		if err != nil {
			node.Err = err
			return
		}
		node.IsScalar = true
		node.Scalar = IntValue(n)
	case Float:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			node.Err = err
			return
		}
		node.IsScalar = true
		node.Scalar = FloatValue(float32(f))
	case Double:
		f, err := r.ReadFloat(path, wt)
		if err != nil {
			node.Err = err
			return
		}
		node.IsScalar = true
		node.Scalar = DoubleValue(f)
	case String1, String4:
		s, err := r.ReadString(path, wt)
		if err != nil {
			node.Err = err
			return
		}
		node.IsScalar = true
		node.Scalar = StrValue(string(s))
	case SimpleList:
		b, err := r.ReadSimpleList(path)
		if err != nil {
			node.Err = err
			return
		}
		node.IsScalar = true
		node.Scalar = BytesValue(b)
	case List:
		n, err := r.ReadListHeader(path)
		if err != nil {
			node.Err = err
			return
		}
		if err := r.EnterContainer(path); err != nil {
			node.Err = err
			return
		}
		defer r.ExitContainer()
		for i := 0; i < n; i++ {
			elemPath := indexPath(path, i)
			_, ewt, err := r.ReadHead(elemPath)
			if err != nil {
				node.Children = append(node.Children, &TraceNode{Path: elemPath, Err: err})
				if node.Err == nil {
					node.Err = err
				}
				return
			}
			child := &TraceNode{Tag: 0, WireType: ewt, Path: elemPath}
			traceValue(r, child, elemPath, schema, ewt)
			node.Children = append(node.Children, child)
			if child.Err != nil && node.Err == nil {
				node.Err = child.Err
			}
		}
	case Map:
		n, err := r.ReadMapHeader(path)
		if err != nil {
			node.Err = err
			return
		}
		if err := r.EnterContainer(path); err != nil {
			node.Err = err
			return
		}
		defer r.ExitContainer()
		for i := 0; i < n; i++ {
			pairPath := indexPath(path, i)
			_, kwt, err := r.ReadHead(pairPath)
			if err != nil {
				node.Children = append(node.Children, &TraceNode{Path: pairPath, Err: err})
				if node.Err == nil {
					node.Err = err
				}
				return
			}
			key := &TraceNode{Tag: 0, WireType: kwt, Path: pairPath + ".key"}
			traceValue(r, key, pairPath+".key", schema, kwt)
			node.Children = append(node.Children, key)
			if key.Err != nil && node.Err == nil {
				node.Err = key.Err
			}
			_, vwt, err := r.ReadHead(pairPath)
			if err != nil {
				node.Children = append(node.Children, &TraceNode{Path: pairPath, Err: err})
				if node.Err == nil {
					node.Err = err
				}
				return
			}
			val := &TraceNode{Tag: 1, WireType: vwt, Path: pairPath + ".value"}
			traceValue(r, val, pairPath+".value", schema, vwt)
			node.Children = append(node.Children, val)
			if val.Err != nil && node.Err == nil {
				node.Err = val.Err
			}
		}
	case StructBegin:
		if err := r.EnterContainer(path); err != nil {
			node.Err = err
			return
		}
		node.Children = traceFields(r, path, schema, func() bool {
			_, wt, peekErr := r.PeekHead(path)
			return peekErr == nil && wt == StructEnd
		})
		r.ExitContainer()
		for _, c := range node.Children {
			if c.Err != nil && node.Err == nil {
				node.Err = c.Err
			}
		}
		// Always attempt to consume the closing StructEnd head, even when
		// a child field errored, so the cursor resyncs and sibling fields
		// after this struct at the parent level still get traced.
		if _, _, err := r.ReadHead(path); err != nil && node.Err == nil {
			node.Err = err
		}
	default:
		node.Err = errBadType(path).withWire(wt)
	}
}

func childPath(parent string, tag int) string {
	return parent + ".tag" + strconv.Itoa(tag)
}

func indexPath(parent string, idx int) string {
	return parent + "[" + strconv.Itoa(idx) + "]"
}
