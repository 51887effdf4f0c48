package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/schema-tools/schemaid/behavior"
)

// Document is a declarative schema description loaded from YAML:
//
//	name: tree
//	definitions:
//	  tree:
//	    type: object
//	    fields:
//	      value: {type: integer, minimum: 0}
//	      children: {type: list, items: {ref: tree}}
//	root: {ref: tree}
//
// Field order inside a document is not significant: YAML mappings carry no
// reliable order, and identifiers are field-order independent by default.
type Document struct {
	// Name identifies the document for identity caching. Unnamed documents
	// are computed fresh on every call.
	Name string `yaml:"name,omitempty"`

	// Definitions are named schemas that ref nodes resolve against.
	Definitions map[string]docNode `yaml:"definitions,omitempty"`

	// Root is the document's top-level schema.
	Root docNode `yaml:"root"`
}

// docNode is the YAML shape of one schema node.
type docNode struct {
	Type        string             `yaml:"type,omitempty"`
	Ref         string             `yaml:"ref,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Fields      map[string]docNode `yaml:"fields,omitempty"`
	Items       *docNode           `yaml:"items,omitempty"`
	Keys        *docNode           `yaml:"keys,omitempty"`
	Values      *docNode           `yaml:"values,omitempty"`
	Members     []docNode          `yaml:"members,omitempty"`
	Enum        []any              `yaml:"enum,omitempty"`
	Optional    bool               `yaml:"optional,omitempty"`
	Default     optionalValue      `yaml:"default,omitempty"`

	// Constraints
	MinLength  *int     `yaml:"minLength,omitempty"`
	MaxLength  *int     `yaml:"maxLength,omitempty"`
	Pattern    string   `yaml:"pattern,omitempty"`
	Minimum    *float64 `yaml:"minimum,omitempty"`
	Maximum    *float64 `yaml:"maximum,omitempty"`
	MultipleOf *float64 `yaml:"multipleOf,omitempty"`
	MinItems   *int     `yaml:"minItems,omitempty"`
	MaxItems   *int     `yaml:"maxItems,omitempty"`
	Format     string   `yaml:"format,omitempty"`

	// Behaviors
	Checks    []string `yaml:"checks,omitempty"`    // CEL expressions
	Validator string   `yaml:"validator,omitempty"` // qualified function name
}

// optionalValue distinguishes an absent default from an explicit null one.
type optionalValue struct {
	set   bool
	value any
}

func (o *optionalValue) UnmarshalYAML(node *yaml.Node) error {
	o.set = true
	return node.Decode(&o.value)
}

func (o optionalValue) MarshalYAML() (any, error) {
	return o.value, nil
}

// ParseDocument parses a YAML schema document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	return &doc, nil
}

// Graph compiles the document into a schema graph. Unrecognized type names
// fail with ErrUnsupportedNode.
func (d *Document) Graph() (Graph, error) {
	definitions := make(map[string]Node, len(d.Definitions))
	for name, dn := range d.Definitions {
		node, err := dn.compile()
		if err != nil {
			return Graph{}, fmt.Errorf("definition %q: %w", name, err)
		}
		definitions[name] = node
	}

	root, err := d.Root.compile()
	if err != nil {
		return Graph{}, fmt.Errorf("root: %w", err)
	}
	return Graph{Root: root, Definitions: definitions}, nil
}

// CacheKey implements the identity-cache contract for documents. Only named
// documents are cacheable.
func (d *Document) CacheKey() (string, bool) {
	if d.Name == "" {
		return "", false
	}
	return "doc:" + d.Name, true
}

// Describe implements the schema source contract.
func (d *Document) Describe() (Graph, error) {
	return d.Graph()
}

func (dn docNode) compile() (Node, error) {
	node, err := dn.base()
	if err != nil {
		return Node{}, err
	}

	node.Description = dn.Description
	node.Constraints = dn.constraints()
	if dn.Default.set {
		node = node.WithDefault(dn.Default.value)
	}
	for _, check := range dn.Checks {
		node = node.WithBehaviors(behavior.Expr(check))
	}
	if dn.Validator != "" {
		node = node.WithBehaviors(behavior.Named(dn.Validator))
	}

	if dn.Optional {
		node = Optional(node)
	}
	return node, nil
}

func (dn docNode) base() (Node, error) {
	if dn.Ref != "" {
		return Ref(dn.Ref), nil
	}
	if len(dn.Enum) > 0 {
		return Literal(dn.Enum...), nil
	}

	switch dn.Type {
	case "string":
		return String(), nil
	case "integer":
		return Integer(), nil
	case "number":
		return Number(), nil
	case "boolean":
		return Bool(), nil
	case "bytes":
		return Bytes(), nil
	case "null":
		return Null(), nil
	case "any", "":
		return Any(), nil

	case "list", "set":
		if dn.Items == nil {
			return Node{}, fmt.Errorf("%w: %s without items", ErrUnsupportedNode, dn.Type)
		}
		item, err := dn.Items.compile()
		if err != nil {
			return Node{}, err
		}
		if dn.Type == "set" {
			return Set(item), nil
		}
		return List(item), nil

	case "map":
		key := String()
		if dn.Keys != nil {
			compiled, err := dn.Keys.compile()
			if err != nil {
				return Node{}, err
			}
			key = compiled
		}
		if dn.Values == nil {
			return Node{}, fmt.Errorf("%w: map without values", ErrUnsupportedNode)
		}
		value, err := dn.Values.compile()
		if err != nil {
			return Node{}, err
		}
		return MapOf(key, value), nil

	case "union":
		if len(dn.Members) == 0 {
			return Node{}, fmt.Errorf("%w: union without members", ErrUnsupportedNode)
		}
		members := make([]Node, 0, len(dn.Members))
		for _, m := range dn.Members {
			member, err := m.compile()
			if err != nil {
				return Node{}, err
			}
			members = append(members, member)
		}
		return Union(members...), nil

	case "object":
		fields := make(map[string]Node, len(dn.Fields))
		for name, fdn := range dn.Fields {
			field, err := fdn.compile()
			if err != nil {
				return Node{}, fmt.Errorf("field %q: %w", name, err)
			}
			fields[name] = field
		}
		return Object(fields), nil

	default:
		return Node{}, fmt.Errorf("%w: type %q", ErrUnsupportedNode, dn.Type)
	}
}

func (dn docNode) constraints() []Constraint {
	var constraints []Constraint
	if dn.MinLength != nil {
		constraints = append(constraints, MinLength(*dn.MinLength))
	}
	if dn.MaxLength != nil {
		constraints = append(constraints, MaxLength(*dn.MaxLength))
	}
	if dn.Pattern != "" {
		constraints = append(constraints, Pattern(dn.Pattern))
	}
	if dn.Minimum != nil {
		constraints = append(constraints, Minimum(*dn.Minimum))
	}
	if dn.Maximum != nil {
		constraints = append(constraints, Maximum(*dn.Maximum))
	}
	if dn.MultipleOf != nil {
		constraints = append(constraints, MultipleOf(*dn.MultipleOf))
	}
	if dn.MinItems != nil {
		constraints = append(constraints, MinItems(*dn.MinItems))
	}
	if dn.MaxItems != nil {
		constraints = append(constraints, MaxItems(*dn.MaxItems))
	}
	if dn.Format != "" {
		constraints = append(constraints, Format(dn.Format))
	}
	return constraints
}
