package schema

import "sort"

// String creates a string scalar node.
func String() Node {
	return Node{Kind: KindScalar, Name: "string"}
}

// Integer creates an integer scalar node.
func Integer() Node {
	return Node{Kind: KindScalar, Name: "integer"}
}

// Number creates a floating-point scalar node.
func Number() Node {
	return Node{Kind: KindScalar, Name: "number"}
}

// Bool creates a boolean scalar node.
func Bool() Node {
	return Node{Kind: KindScalar, Name: "boolean"}
}

// Bytes creates a byte-string scalar node.
func Bytes() Node {
	return Node{Kind: KindScalar, Name: "bytes"}
}

// Null creates the null scalar node, the unit type of optional fields.
func Null() Node {
	return Node{Kind: KindScalar, Name: "null"}
}

// Any creates a scalar node that accepts any type.
func Any() Node {
	return Node{Kind: KindScalar, Name: "any"}
}

// List creates a list container holding items of the given schema.
func List(item Node) Node {
	return Node{Kind: KindContainer, Name: "list", Children: []Node{item}}
}

// Set creates a set container holding items of the given schema.
func Set(item Node) Node {
	return Node{Kind: KindContainer, Name: "set", Children: []Node{item}}
}

// MapOf creates a map container with the given key and value schemas.
func MapOf(key, value Node) Node {
	return Node{Kind: KindContainer, Name: "map", Children: []Node{key, value}}
}

// Union creates a union of the given member schemas. Member order does not
// affect the identifier unless union-order tracking is enabled.
func Union(members ...Node) Node {
	return Node{Kind: KindUnion, Children: members}
}

// Optional wraps a schema in a union with null, the conventional shape of an
// optional field.
func Optional(n Node) Node {
	return Union(n, Null())
}

// Literal creates an enumeration of allowed values. Values are rendered
// canonically at construction time; their order does not affect the
// identifier unless union-order tracking is enabled.
func Literal(values ...any) Node {
	rendered := make([]string, 0, len(values))
	for _, v := range values {
		rendered = append(rendered, canonicalValue(v))
	}
	return Node{Kind: KindLiteral, Values: rendered}
}

// Field pairs a field name with its schema for order-preserving model
// construction.
type Field struct {
	Name   string
	Schema Node
}

// F is shorthand for constructing a Field.
func F(name string, n Node) Field {
	return Field{Name: name, Schema: n}
}

// Object creates a model node from a field map. Fields are stored sorted by
// name; use ObjectOf when declaration order matters (it only does when
// field-order tracking is enabled).
func Object(fields map[string]Node) Node {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	children := make([]Node, 0, len(fields))
	for _, name := range names {
		children = append(children, fields[name].withFieldName(name))
	}
	return Node{Kind: KindModel, Children: children}
}

// ObjectOf creates a model node from an ordered field list, preserving
// declaration order.
func ObjectOf(fields ...Field) Node {
	children := make([]Node, 0, len(fields))
	for _, f := range fields {
		children = append(children, f.Schema.withFieldName(f.Name))
	}
	return Node{Kind: KindModel, Children: children}
}

// Ref creates a reference to a named entry in the graph's definitions table.
func Ref(name string) Node {
	return Node{Kind: KindReference, Name: name}
}
