package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// FromDescriptor extracts a schema graph from a protobuf message descriptor.
// Message types become entries in the definitions table keyed by their full
// protobuf name, so recursive and mutually recursive messages terminate.
//
// Mapping:
//   - integral kinds -> integer, float/double -> number
//   - string -> string, bytes -> bytes, bool -> boolean
//   - enums -> literal of the enum value names
//   - repeated -> list, map fields -> map
//   - non-synthetic oneofs -> union fields
//   - explicit proto3 optional -> union with null
//
// Fields carrying an explicit proto2 default are marked default-present.
func FromDescriptor(md protoreflect.MessageDescriptor) (Graph, error) {
	e := &descriptorExtractor{
		definitions: make(map[string]Node),
		seen:        make(map[protoreflect.FullName]bool),
	}
	root, err := e.message(md)
	if err != nil {
		return Graph{}, err
	}
	return Graph{Root: root, Definitions: e.definitions}, nil
}

type descriptorExtractor struct {
	definitions map[string]Node
	seen        map[protoreflect.FullName]bool
}

// message builds a definition for the message and returns a reference to it.
func (e *descriptorExtractor) message(md protoreflect.MessageDescriptor) (Node, error) {
	name := string(md.FullName())
	if e.seen[md.FullName()] {
		return Ref(name), nil
	}
	e.seen[md.FullName()] = true

	var fields []Field
	handledOneofs := make(map[protoreflect.FullName]bool)

	for i := 0; i < md.Fields().Len(); i++ {
		fd := md.Fields().Get(i)

		if od := fd.ContainingOneof(); od != nil && !od.IsSynthetic() {
			if handledOneofs[od.FullName()] {
				continue
			}
			handledOneofs[od.FullName()] = true
			union, err := e.oneof(od)
			if err != nil {
				return Node{}, err
			}
			fields = append(fields, F(string(od.Name()), union))
			continue
		}

		node, err := e.field(fd)
		if err != nil {
			return Node{}, err
		}
		fields = append(fields, F(string(fd.Name()), node))
	}

	e.definitions[name] = ObjectOf(fields...)
	return Ref(name), nil
}

// oneof builds a union whose members keep their field names: oneof members
// are real named message fields (they name the JSON keys), so renaming one
// must change the schema's identity.
func (e *descriptorExtractor) oneof(od protoreflect.OneofDescriptor) (Node, error) {
	members := make([]Node, 0, od.Fields().Len())
	for i := 0; i < od.Fields().Len(); i++ {
		fd := od.Fields().Get(i)
		member, err := e.field(fd)
		if err != nil {
			return Node{}, err
		}
		members = append(members, member.withFieldName(string(fd.Name())))
	}
	return Union(members...), nil
}

func (e *descriptorExtractor) field(fd protoreflect.FieldDescriptor) (Node, error) {
	if fd.IsMap() {
		key, err := e.value(fd.MapKey())
		if err != nil {
			return Node{}, err
		}
		value, err := e.value(fd.MapValue())
		if err != nil {
			return Node{}, err
		}
		return MapOf(key, value), nil
	}

	node, err := e.value(fd)
	if err != nil {
		return Node{}, err
	}

	if fd.IsList() {
		node = List(node)
	}
	if fd.HasOptionalKeyword() {
		node = Optional(node)
	}
	if fd.HasDefault() {
		node = node.WithDefault(fd.Default().Interface())
	}
	return node, nil
}

// value maps a field descriptor's kind to a schema node, ignoring cardinality.
func (e *descriptorExtractor) value(fd protoreflect.FieldDescriptor) (Node, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return Bool(), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind,
		protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return Integer(), nil

	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return Number(), nil

	case protoreflect.StringKind:
		return String(), nil

	case protoreflect.BytesKind:
		return Bytes(), nil

	case protoreflect.EnumKind:
		values := fd.Enum().Values()
		names := make([]any, 0, values.Len())
		for i := 0; i < values.Len(); i++ {
			names = append(names, string(values.Get(i).Name()))
		}
		return Literal(names...), nil

	case protoreflect.MessageKind, protoreflect.GroupKind:
		return e.message(fd.Message())

	default:
		return Node{}, fmt.Errorf("%w: protobuf kind %v (field %s)",
			ErrUnsupportedNode, fd.Kind(), fd.FullName())
	}
}
