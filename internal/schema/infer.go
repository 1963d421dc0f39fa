// Package schema infers an Arrow schema from decoded JSON records and
// coerces record values to it.
package schema

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"

	"convert-json-to-parquet/internal/records"
)

type kind int

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindStruct
	kindList
)

// node is the inferred type of one value position.
type node struct {
	kind     kind
	children map[string]*node
	elem     *node
}

// Infer returns the schema covering every record. Fields are sorted by
// name and nullable. Conflicting types resolve to string; all-null and
// empty-object fields are strings as well.
func Infer(recs []records.Record) *arrow.Schema {
	root := &node{kind: kindStruct, children: make(map[string]*node)}
	for _, r := range recs {
		root = merge(root, observeObject(r))
	}
	if len(root.children) == 0 {
		return arrow.NewSchema(nil, nil)
	}
	st := root.arrowType().(*arrow.StructType)
	return arrow.NewSchema(st.Fields(), nil)
}

func observeObject(m map[string]any) *node {
	n := &node{kind: kindStruct, children: make(map[string]*node, len(m))}
	for k, v := range m {
		n.children[k] = observe(v)
	}
	return n
}

func observe(v any) *node {
	switch t := v.(type) {
	case nil:
		return &node{kind: kindNull}
	case bool:
		return &node{kind: kindBool}
	case json.Number:
		if _, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return &node{kind: kindInt}
		}
		return &node{kind: kindFloat}
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return &node{kind: kindInt}
	case float32, float64:
		return &node{kind: kindFloat}
	case string:
		return &node{kind: kindString}
	case map[string]any:
		return observeObject(t)
	case records.Record:
		return observeObject(t)
	case []any:
		n := &node{kind: kindList}
		for _, e := range t {
			n.elem = merge(n.elem, observe(e))
		}
		return n
	default:
		return &node{kind: kindString}
	}
}

// merge folds b into a and returns the result. a may be modified.
func merge(a, b *node) *node {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.kind == kindNull:
		return b
	case b.kind == kindNull:
		return a
	}

	if a.kind == b.kind {
		switch a.kind {
		case kindStruct:
			for k, child := range b.children {
				a.children[k] = merge(a.children[k], child)
			}
		case kindList:
			a.elem = merge(a.elem, b.elem)
		}
		return a
	}

	if (a.kind == kindInt && b.kind == kindFloat) || (a.kind == kindFloat && b.kind == kindInt) {
		return &node{kind: kindFloat}
	}
	return &node{kind: kindString}
}

func (n *node) arrowType() arrow.DataType {
	if n == nil {
		return arrow.BinaryTypes.String
	}
	switch n.kind {
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindStruct:
		if len(n.children) == 0 {
			return arrow.BinaryTypes.String
		}
		names := make([]string, 0, len(n.children))
		for k := range n.children {
			names = append(names, k)
		}
		sort.Strings(names)
		fields := make([]arrow.Field, len(names))
		for i, name := range names {
			fields[i] = arrow.Field{Name: name, Type: n.children[name].arrowType(), Nullable: true}
		}
		return arrow.StructOf(fields...)
	case kindList:
		return arrow.ListOf(n.elem.arrowType())
	default:
		return arrow.BinaryTypes.String
	}
}
