package schemaid

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/schema-tools/schemaid/schema"
)

// Source is a model description the engine can fingerprint. A Source is the
// boundary to the external model-description provider: it describes the
// schema, it does not validate data.
type Source interface {
	// Describe produces the schema graph for the model.
	Describe() (schema.Graph, error)

	// CacheKey returns the model's identity-cache key. Sources whose
	// identity cannot be named return ok=false and are computed fresh on
	// every call.
	CacheKey() (key string, ok bool)
}

// Type creates a Source from a Go value or reflect.Type using reflection.
// Named types are cached under their package path and type name.
func Type(v any) Source {
	return typeSource{v: v}
}

type typeSource struct {
	v any
}

func (s typeSource) Describe() (schema.Graph, error) {
	return schema.FromType(s.v)
}

func (s typeSource) CacheKey() (string, bool) {
	key, ok := schema.TypeKey(s.v)
	if !ok {
		return "", false
	}
	return "type:" + key, true
}

// Static creates a Source from an explicit schema graph. The name keys the
// identity cache; an empty name makes the source uncacheable.
func Static(name string, g schema.Graph) Source {
	return staticSource{name: name, graph: g}
}

type staticSource struct {
	name  string
	graph schema.Graph
}

func (s staticSource) Describe() (schema.Graph, error) {
	return s.graph, nil
}

func (s staticSource) CacheKey() (string, bool) {
	if s.name == "" {
		return "", false
	}
	return "static:" + s.name, true
}

// Proto creates a Source from a protobuf message descriptor, cached under
// the message's full protobuf name.
func Proto(md protoreflect.MessageDescriptor) Source {
	return protoSource{md: md}
}

type protoSource struct {
	md protoreflect.MessageDescriptor
}

func (s protoSource) Describe() (schema.Graph, error) {
	return schema.FromDescriptor(s.md)
}

func (s protoSource) CacheKey() (string, bool) {
	return "proto:" + string(s.md.FullName()), true
}
