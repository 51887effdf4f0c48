package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/schema-tools/schemaid/behavior"
)

// FromType extracts a schema graph from a Go type using reflection. The
// argument may be a value or a reflect.Type.
//
// Struct tags:
//   - `json:"name"`: uses the JSON tag name for the field
//   - `json:"-"`: skips the field
//   - `json:"name,omitempty"`: field is treated as having a default
//   - `description:"..."`: field documentation
//   - `default:"..."`: field default value
//   - `check:"expr"`: attaches a CEL expression behavior to the field
//   - `minLength`, `maxLength`, `pattern`, `minimum`, `maximum`,
//     `multipleOf`, `minItems`, `maxItems`, `format`: validation constraints
//
// Named struct types become entries in the graph's definitions table and are
// referenced by name, so self-referential and mutually recursive types
// terminate. The definition names are internal handles; the resulting
// identifier depends only on the structural schema.
//
// Go constructs with no schema meaning (channels, functions, complex numbers,
// unsafe pointers) fail with ErrUnsupportedNode.
func FromType(v any) (Graph, error) {
	var t reflect.Type
	switch typed := v.(type) {
	case nil:
		return Graph{}, fmt.Errorf("%w: nil value has no type", ErrUnsupportedNode)
	case reflect.Type:
		t = typed
	default:
		t = reflect.TypeOf(v)
	}

	e := &typeExtractor{
		definitions: make(map[string]Node),
		seen:        make(map[reflect.Type]string),
	}
	root, err := e.node(t)
	if err != nil {
		return Graph{}, err
	}
	return Graph{Root: root, Definitions: e.definitions}, nil
}

// TypeKey returns the stable identity handle for a Go type: its package path
// and name for named types, or its type string otherwise. Used as the
// identity-cache key for reflection sources.
func TypeKey(v any) (string, bool) {
	t, ok := v.(reflect.Type)
	if !ok {
		if v == nil {
			return "", false
		}
		t = reflect.TypeOf(v)
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name(), true
	}
	return "", false
}

type typeExtractor struct {
	definitions map[string]Node

	// seen maps struct types to their definition names. A type is entered
	// before its body is built, so a revisit along the current expansion path
	// resolves to a reference instead of recursing.
	seen map[reflect.Type]string
}

var timeType = reflect.TypeOf(time.Time{})

func (e *typeExtractor) node(t reflect.Type) (Node, error) {
	if t.Kind() == reflect.Ptr {
		elem, err := e.node(t.Elem())
		if err != nil {
			return Node{}, err
		}
		return Optional(elem), nil
	}

	if t == timeType {
		return String().WithConstraints(Format("date-time")), nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return e.structRef(t)

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes(), nil
		}
		item, err := e.node(t.Elem())
		if err != nil {
			return Node{}, err
		}
		return List(item), nil

	case reflect.Map:
		key, err := e.node(t.Key())
		if err != nil {
			return Node{}, err
		}
		value, err := e.node(t.Elem())
		if err != nil {
			return Node{}, err
		}
		return MapOf(key, value), nil

	case reflect.String:
		return String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil

	case reflect.Float32, reflect.Float64:
		return Number(), nil

	case reflect.Bool:
		return Bool(), nil

	case reflect.Interface:
		return Any(), nil

	default:
		return Node{}, fmt.Errorf("%w: Go kind %s (%s)", ErrUnsupportedNode, t.Kind(), t)
	}
}

// structRef builds a definition for a named struct type and returns a
// reference to it. Anonymous structs are inlined.
func (e *typeExtractor) structRef(t reflect.Type) (Node, error) {
	if t.Name() == "" {
		return e.structNode(t)
	}

	name := t.String()
	if t.PkgPath() != "" {
		name = t.PkgPath() + "." + t.Name()
	}

	if existing, ok := e.seen[t]; ok {
		return Ref(existing), nil
	}
	e.seen[t] = name

	body, err := e.structNode(t)
	if err != nil {
		return Node{}, err
	}
	e.definitions[name] = body
	return Ref(name), nil
}

func (e *typeExtractor) structNode(t reflect.Type) (Node, error) {
	var fields []Field

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		hasDefault := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					hasDefault = true
					break
				}
			}
		}

		fieldSchema, err := e.node(field.Type)
		if err != nil {
			return Node{}, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema = fieldSchema.WithDescription(desc)
		}
		if def, ok := field.Tag.Lookup("default"); ok {
			fieldSchema = fieldSchema.WithDefault(def)
		} else if hasDefault {
			fieldSchema = fieldSchema.WithDefault(nil)
		}
		if check := field.Tag.Get("check"); check != "" {
			fieldSchema = fieldSchema.WithBehaviors(behavior.Expr(check))
		}
		if constraints, err := tagConstraints(field.Tag); err != nil {
			return Node{}, fmt.Errorf("field %s: %w", field.Name, err)
		} else if len(constraints) > 0 {
			fieldSchema = fieldSchema.WithConstraints(constraints...)
		}

		fields = append(fields, F(fieldName, fieldSchema))
	}

	return ObjectOf(fields...), nil
}

// tagConstraints reads validation-constraint struct tags in a fixed order so
// that tag-derived constraints render deterministically.
func tagConstraints(tag reflect.StructTag) ([]Constraint, error) {
	var constraints []Constraint

	intTags := []struct {
		tag  string
		ctor func(int) Constraint
	}{
		{"minLength", MinLength},
		{"maxLength", MaxLength},
		{"minItems", MinItems},
		{"maxItems", MaxItems},
	}
	for _, it := range intTags {
		if raw, ok := tag.Lookup(it.tag); ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s tag: %w", it.tag, err)
			}
			constraints = append(constraints, it.ctor(n))
		}
	}

	floatTags := []struct {
		tag  string
		ctor func(float64) Constraint
	}{
		{"minimum", Minimum},
		{"maximum", Maximum},
		{"multipleOf", MultipleOf},
	}
	for _, ft := range floatTags {
		if raw, ok := tag.Lookup(ft.tag); ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s tag: %w", ft.tag, err)
			}
			constraints = append(constraints, ft.ctor(v))
		}
	}

	if raw, ok := tag.Lookup("pattern"); ok {
		constraints = append(constraints, Pattern(raw))
	}
	if raw, ok := tag.Lookup("format"); ok {
		constraints = append(constraints, Format(raw))
	}
	return constraints, nil
}
