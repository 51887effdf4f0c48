// Package schema models the structural description of a data model as a
// graph of nodes, and extracts that graph from several model description
// sources.
//
// A Node is a value type describing one type position: a scalar, a container,
// a union, a literal enumeration, a model with named fields, or a reference
// to a named definition. Possibly-cyclic graphs are expressed through a
// definitions table: reference nodes name an entry in the table instead of
// pointing at another node, so a schema graph is always a finite tree plus a
// finite table, never a pointer cycle.
//
// # Building schemas
//
// Nodes are built with constructor functions and immutable With* modifiers:
//
//	user := schema.Object(map[string]schema.Node{
//		"name":  schema.String().WithConstraints(schema.MinLength(1)),
//		"email": schema.String().WithBehaviors(behavior.Expr(`value.contains("@")`)),
//		"age":   schema.Optional(schema.Integer()).WithDefault(nil),
//	})
//
// Recursive schemas use Ref together with a definitions table:
//
//	g := schema.Graph{
//		Root: schema.Ref("tree"),
//		Definitions: map[string]schema.Node{
//			"tree": schema.Object(map[string]schema.Node{
//				"value":    schema.Integer(),
//				"children": schema.List(schema.Ref("tree")),
//			}),
//		},
//	}
//
// # Extractors
//
// Three extractors produce Graphs from external model descriptions:
//
//   - FromType reflects over a Go type, honoring json, description, default,
//     and check struct tags.
//   - ParseDocument reads a declarative YAML schema document.
//   - FromDescriptor walks a protobuf message descriptor.
//
// All three detect recursion through an in-progress definition set and emit
// reference nodes instead of expanding forever. Constructs an extractor does
// not recognize are a hard ErrUnsupportedNode failure, never a silent
// omission: skipping a construct would make two different schemas fingerprint
// identically.
//
// Definition names (Go type paths, protobuf full names) are internal handles
// only. They key the definitions table but never reach the canonical byte
// form, so the identity of a schema depends only on its structure.
package schema
