package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/schema-tools/schemaid/behavior"
)

// ErrUnsupportedNode indicates a model construct that this engine version
// cannot canonicalize. It is always a hard failure: silently omitting a
// construct would let two different schemas produce the same identifier.
var ErrUnsupportedNode = errors.New("unsupported schema node")

// Kind classifies a schema node.
type Kind uint8

const (
	// KindScalar is a primitive type position; Name holds the scalar type
	// ("string", "integer", "number", "boolean", "bytes", "null", "any").
	KindScalar Kind = iota + 1

	// KindContainer is a homogeneous collection; Name holds the variety
	// ("list", "map", "set"). Lists and sets hold one child, maps hold a key
	// child and a value child.
	KindContainer

	// KindUnion holds one child per union member.
	KindUnion

	// KindLiteral is an enumeration of allowed values, held in Values.
	KindLiteral

	// KindModel is an object with named fields, one child per field; each
	// child carries its FieldName.
	KindModel

	// KindReference names an entry in the graph's definitions table instead
	// of inlining it. References are how recursive schemas stay finite.
	KindReference
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindContainer:
		return "container"
	case KindUnion:
		return "union"
	case KindLiteral:
		return "literal"
	case KindModel:
		return "model"
	case KindReference:
		return "reference"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Constraint is one named validation bound attached to a node, with its value
// rendered in a canonical string form.
type Constraint struct {
	Name  string
	Value string
}

// Node is one type position in a schema graph. Node is a value type: the
// With* modifiers return copies, and sharing a Node between two fields never
// aliases mutable state.
type Node struct {
	// Kind classifies the node.
	Kind Kind

	// Name is kind-dependent: the scalar type name, the container variety,
	// or the reference target. Empty for unions, literals, and models.
	Name string

	// FieldName is set when the node is a named field of a model, or a named
	// member of a field-level union such as a protobuf oneof.
	FieldName string

	// Description is the node's documentation text. Excluded from the
	// identifier unless description tracking is enabled.
	Description string

	// Constraints are the node's validation bounds.
	Constraints []Constraint

	// Children are kind-dependent child positions; see Kind.
	Children []Node

	// Values are the canonical renderings of a literal's allowed values.
	Values []string

	// DefaultPresent records that the node has a default. Identifiers track
	// default presence, not default values: the identity target is validation
	// semantics, not configuration data.
	DefaultPresent bool

	// Default is the default value itself. It participates in the identifier
	// only when default-value tracking is enabled.
	Default any

	// Behaviors are validator/serializer attachments on this node.
	Behaviors []behavior.Behavior
}

// IsZero reports whether the node is the zero value (no kind assigned).
func (n Node) IsZero() bool {
	return n.Kind == 0
}

// WithConstraints returns a copy of the node with the given constraints
// appended. The receiver is not modified.
func (n Node) WithConstraints(constraints ...Constraint) Node {
	result := n
	result.Constraints = append(append([]Constraint(nil), n.Constraints...), constraints...)
	return result
}

// WithDefault returns a copy of the node marked as having a default value.
func (n Node) WithDefault(value any) Node {
	result := n
	result.DefaultPresent = true
	result.Default = value
	return result
}

// WithDescription returns a copy of the node with the given description.
func (n Node) WithDescription(desc string) Node {
	result := n
	result.Description = desc
	return result
}

// WithBehaviors returns a copy of the node with the given behavior
// attachments appended.
func (n Node) WithBehaviors(behaviors ...behavior.Behavior) Node {
	result := n
	result.Behaviors = append(append([]behavior.Behavior(nil), n.Behaviors...), behaviors...)
	return result
}

// withFieldName returns a copy of the node bound to a model field name.
func (n Node) withFieldName(name string) Node {
	result := n
	result.FieldName = name
	return result
}

// Graph is a schema graph: a root node plus the definitions table that
// reference nodes resolve against. Definition keys are internal handles; they
// never participate in the canonical form.
type Graph struct {
	Root        Node
	Definitions map[string]Node
}

// Constraint constructors. Values are rendered canonically so that the same
// bound always produces the same constraint string.

// MinLength constrains the minimum length of a string.
func MinLength(n int) Constraint { return Constraint{Name: "minLength", Value: strconv.Itoa(n)} }

// MaxLength constrains the maximum length of a string.
func MaxLength(n int) Constraint { return Constraint{Name: "maxLength", Value: strconv.Itoa(n)} }

// Pattern constrains a string to match a regular expression.
func Pattern(expr string) Constraint { return Constraint{Name: "pattern", Value: expr} }

// Minimum constrains the minimum numeric value.
func Minimum(v float64) Constraint { return Constraint{Name: "minimum", Value: formatNumber(v)} }

// Maximum constrains the maximum numeric value.
func Maximum(v float64) Constraint { return Constraint{Name: "maximum", Value: formatNumber(v)} }

// MultipleOf constrains a number to be a multiple of v.
func MultipleOf(v float64) Constraint { return Constraint{Name: "multipleOf", Value: formatNumber(v)} }

// MinItems constrains the minimum number of container elements.
func MinItems(n int) Constraint { return Constraint{Name: "minItems", Value: strconv.Itoa(n)} }

// MaxItems constrains the maximum number of container elements.
func MaxItems(n int) Constraint { return Constraint{Name: "maxItems", Value: strconv.Itoa(n)} }

// Format constrains a string to a named format such as "date-time" or "uuid".
func Format(name string) Constraint { return Constraint{Name: "format", Value: name} }

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// canonicalValue renders an arbitrary value in a deterministic string form
// for literal enumerations. JSON is used because encoding/json sorts map keys.
func canonicalValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
