package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schema-tools/schemaid/behavior"
	"github.com/schema-tools/schemaid/schema"
)

func encode(t *testing.T, g schema.Graph, opts Options) []byte {
	t.Helper()
	data, err := Encode(g, opts)
	require.NoError(t, err)
	return data
}

func TestEncodeDeterminism(t *testing.T) {
	g := schema.Graph{
		Root: schema.Object(map[string]schema.Node{
			"name": schema.String().WithConstraints(schema.MinLength(1), schema.MaxLength(64)),
			"age":  schema.Optional(schema.Integer()),
			"tags": schema.List(schema.String()),
		}),
	}

	first := encode(t, g, Options{})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, encode(t, g, Options{}))
	}
}

func TestFieldOrderInvariance(t *testing.T) {
	a := schema.Graph{Root: schema.ObjectOf(
		schema.F("x", schema.Integer()),
		schema.F("y", schema.String()),
	)}
	b := schema.Graph{Root: schema.ObjectOf(
		schema.F("y", schema.String()),
		schema.F("x", schema.Integer()),
	)}

	t.Run("order independent by default", func(t *testing.T) {
		assert.Equal(t, encode(t, a, Options{}), encode(t, b, Options{}))
	})

	t.Run("order significant when tracked", func(t *testing.T) {
		opts := Options{TrackFieldOrder: true}
		assert.NotEqual(t, encode(t, a, opts), encode(t, b, opts))
	})

	t.Run("field names stay bound to their schemas", func(t *testing.T) {
		// {x:int, y:str} vs {x:str, y:int} must differ even though the sorted
		// name set and the child multiset are the same.
		swapped := schema.Graph{Root: schema.ObjectOf(
			schema.F("x", schema.String()),
			schema.F("y", schema.Integer()),
		)}
		assert.NotEqual(t, encode(t, a, Options{}), encode(t, swapped, Options{}))
	})
}

func TestUnionOrderInvariance(t *testing.T) {
	ab := schema.Graph{Root: schema.Union(schema.Integer(), schema.String())}
	ba := schema.Graph{Root: schema.Union(schema.String(), schema.Integer())}

	t.Run("order independent by default", func(t *testing.T) {
		assert.Equal(t, encode(t, ab, Options{}), encode(t, ba, Options{}))
	})

	t.Run("order significant when tracked", func(t *testing.T) {
		opts := Options{TrackUnionOrder: true}
		assert.NotEqual(t, encode(t, ab, opts), encode(t, ba, opts))
	})

	t.Run("literal value order", func(t *testing.T) {
		abc := schema.Graph{Root: schema.Literal("a", "b", "c")}
		cba := schema.Graph{Root: schema.Literal("c", "b", "a")}
		assert.Equal(t, encode(t, abc, Options{}), encode(t, cba, Options{}))
		assert.NotEqual(t,
			encode(t, abc, Options{TrackUnionOrder: true}),
			encode(t, cba, Options{TrackUnionOrder: true}))
	})
}

func TestSensitivity(t *testing.T) {
	base := func() map[string]schema.Node {
		return map[string]schema.Node{
			"x": schema.Integer(),
			"y": schema.String(),
		}
	}
	baseline := encode(t, schema.Graph{Root: schema.Object(base())}, Options{})

	t.Run("adding a constraint changes the bytes", func(t *testing.T) {
		fields := base()
		fields["y"] = fields["y"].WithConstraints(schema.MinLength(1))
		assert.NotEqual(t, baseline, encode(t, schema.Graph{Root: schema.Object(fields)}, Options{}))
	})

	t.Run("changing a field type changes the bytes", func(t *testing.T) {
		fields := base()
		fields["x"] = schema.Number()
		assert.NotEqual(t, baseline, encode(t, schema.Graph{Root: schema.Object(fields)}, Options{}))
	})

	t.Run("renaming a field changes the bytes", func(t *testing.T) {
		fields := base()
		delete(fields, "x")
		fields["z"] = schema.Integer()
		assert.NotEqual(t, baseline, encode(t, schema.Graph{Root: schema.Object(fields)}, Options{}))
	})

	t.Run("attaching a behavior changes the bytes", func(t *testing.T) {
		fields := base()
		fields["y"] = fields["y"].WithBehaviors(behavior.Expr("value.size() > 0"))
		assert.NotEqual(t, baseline, encode(t, schema.Graph{Root: schema.Object(fields)}, Options{}))
	})

	t.Run("renaming a union member changes the bytes", func(t *testing.T) {
		named := func(name string) schema.Graph {
			member := schema.Integer()
			member.FieldName = name
			return schema.Graph{Root: schema.Union(member, schema.String())}
		}
		assert.NotEqual(t, encode(t, named("amount"), Options{}), encode(t, named("count"), Options{}))
	})

	t.Run("behavior strategy is part of the bytes", func(t *testing.T) {
		// A named behavior and an expression behavior must differ even if a
		// payload collision were engineered; the strategy tag separates them.
		named := base()
		named["y"] = named["y"].WithBehaviors(behavior.Named("pkg.Check"))
		expr := base()
		expr["y"] = expr["y"].WithBehaviors(behavior.Expr("pkg.Check"))
		assert.NotEqual(t,
			encode(t, schema.Graph{Root: schema.Object(named)}, Options{}),
			encode(t, schema.Graph{Root: schema.Object(expr)}, Options{}))
	})
}

func TestReferenceAttachments(t *testing.T) {
	// Attachments live on the referencing field, not on the definition, so
	// they must reach the bytes even though the node is a reference.
	graph := func(ref schema.Node) schema.Graph {
		return schema.Graph{
			Root: schema.Object(map[string]schema.Node{"c": ref}),
			Definitions: map[string]schema.Node{
				"child": schema.Object(map[string]schema.Node{"x": schema.Integer()}),
			},
		}
	}
	bare := encode(t, graph(schema.Ref("child")), Options{})

	t.Run("behavior on a reference field", func(t *testing.T) {
		checked := graph(schema.Ref("child").WithBehaviors(behavior.Expr("value.x > 0")))
		assert.NotEqual(t, bare, encode(t, checked, Options{}))
	})

	t.Run("constraint on a reference field", func(t *testing.T) {
		constrained := graph(schema.Ref("child").WithConstraints(schema.MinItems(1)))
		assert.NotEqual(t, bare, encode(t, constrained, Options{}))
	})

	t.Run("default presence on a reference field", func(t *testing.T) {
		defaulted := graph(schema.Ref("child").WithDefault(nil))
		assert.NotEqual(t, bare, encode(t, defaulted, Options{}))
	})
}

func TestDefaults(t *testing.T) {
	with := func(def any) []byte {
		fields := map[string]schema.Node{"a": schema.List(schema.Any()).WithDefault(def)}
		return encode(t, schema.Graph{Root: schema.Object(fields)}, Options{})
	}
	without := encode(t, schema.Graph{
		Root: schema.Object(map[string]schema.Node{"a": schema.List(schema.Any())}),
	}, Options{})

	t.Run("presence participates", func(t *testing.T) {
		assert.NotEqual(t, without, with([]int{1, 2, 3}))
	})

	t.Run("value does not participate by default", func(t *testing.T) {
		assert.Equal(t, with([]int{1, 2, 3}), with([]int{3, 2, 1}))
	})

	t.Run("value participates when tracked", func(t *testing.T) {
		opts := Options{TrackDefaultValues: true}
		fields := func(def any) schema.Graph {
			return schema.Graph{Root: schema.Object(map[string]schema.Node{
				"a": schema.List(schema.Any()).WithDefault(def),
			})}
		}
		a, err := Encode(fields([]int{1, 2, 3}), opts)
		require.NoError(t, err)
		b, err := Encode(fields([]int{3, 2, 1}), opts)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestDescriptions(t *testing.T) {
	doc := func(desc string) schema.Graph {
		return schema.Graph{Root: schema.Object(map[string]schema.Node{
			"a": schema.Integer().WithDescription(desc),
		})}
	}

	t.Run("untracked by default", func(t *testing.T) {
		assert.Equal(t, encode(t, doc("RED"), Options{}), encode(t, doc("YELLOW"), Options{}))
	})

	t.Run("tracked on request", func(t *testing.T) {
		opts := Options{TrackDescriptions: true}
		assert.NotEqual(t, encode(t, doc("RED"), opts), encode(t, doc("YELLOW"), opts))
	})
}

func TestRecursion(t *testing.T) {
	t.Run("self-referential model terminates", func(t *testing.T) {
		g := schema.Graph{
			Root: schema.Ref("node"),
			Definitions: map[string]schema.Node{
				"node": schema.Object(map[string]schema.Node{
					"value":    schema.Integer(),
					"children": schema.List(schema.Ref("node")),
				}),
			},
		}
		first := encode(t, g, Options{})
		assert.Equal(t, first, encode(t, g, Options{}))
	})

	t.Run("mutually recursive pair terminates", func(t *testing.T) {
		g := schema.Graph{
			Root: schema.Ref("a"),
			Definitions: map[string]schema.Node{
				"a": schema.Object(map[string]schema.Node{"b": schema.Ref("b")}),
				"b": schema.Object(map[string]schema.Node{"a": schema.Optional(schema.Ref("a"))}),
			},
		}
		first := encode(t, g, Options{})
		assert.Equal(t, first, encode(t, g, Options{}))
	})

	t.Run("recursive topology is part of identity", func(t *testing.T) {
		recursive := schema.Graph{
			Root: schema.Ref("node"),
			Definitions: map[string]schema.Node{
				"node": schema.Object(map[string]schema.Node{
					"next": schema.Optional(schema.Ref("node")),
				}),
			},
		}
		flat := schema.Graph{
			Root: schema.Ref("node"),
			Definitions: map[string]schema.Node{
				"node": schema.Object(map[string]schema.Node{
					"next": schema.Optional(schema.Integer()),
				}),
			},
		}
		assert.NotEqual(t, encode(t, recursive, Options{}), encode(t, flat, Options{}))
	})
}

func TestDeduplication(t *testing.T) {
	t.Run("structurally identical definitions merge", func(t *testing.T) {
		person := func() schema.Node {
			return schema.Object(map[string]schema.Node{
				"name": schema.String(),
				"age":  schema.Integer(),
			})
		}

		twoDefs := schema.Graph{
			Root: schema.ObjectOf(
				schema.F("author", schema.Ref("author")),
				schema.F("editor", schema.Ref("editor")),
			),
			Definitions: map[string]schema.Node{
				"author": person(),
				"editor": person(),
			},
		}
		oneDef := schema.Graph{
			Root: schema.ObjectOf(
				schema.F("author", schema.Ref("person")),
				schema.F("editor", schema.Ref("person")),
			),
			Definitions: map[string]schema.Node{
				"person": person(),
			},
		}
		assert.Equal(t, encode(t, twoDefs, Options{}), encode(t, oneDef, Options{}))
	})

	t.Run("isomorphic recursive definitions merge", func(t *testing.T) {
		// Two mutually recursive definitions with identical structure are
		// bisimilar to a single self-referential one.
		pair := schema.Graph{
			Root: schema.Ref("a"),
			Definitions: map[string]schema.Node{
				"a": schema.Object(map[string]schema.Node{"next": schema.Optional(schema.Ref("b"))}),
				"b": schema.Object(map[string]schema.Node{"next": schema.Optional(schema.Ref("a"))}),
			},
		}
		single := schema.Graph{
			Root: schema.Ref("n"),
			Definitions: map[string]schema.Node{
				"n": schema.Object(map[string]schema.Node{"next": schema.Optional(schema.Ref("n"))}),
			},
		}
		assert.Equal(t, encode(t, pair, Options{}), encode(t, single, Options{}))
	})

	t.Run("duplicate recursive definitions do not shift table order", func(t *testing.T) {
		// Two isomorphic self-referential definitions plus a distinct one:
		// the duplicated table must serialize exactly like the merged table,
		// including the relative order of the two surviving entries and the
		// indexes the root's references resolve to.
		selfRef := func(name string) schema.Node {
			return schema.Object(map[string]schema.Node{
				"next": schema.Optional(schema.Ref(name)),
			})
		}
		other := func() schema.Node {
			return schema.Object(map[string]schema.Node{"tag": schema.String()})
		}

		duplicated := schema.Graph{
			Root: schema.ObjectOf(
				schema.F("first", schema.Ref("ra")),
				schema.F("second", schema.Ref("rb")),
				schema.F("other", schema.Ref("s")),
			),
			Definitions: map[string]schema.Node{
				"ra": selfRef("ra"),
				"rb": selfRef("rb"),
				"s":  other(),
			},
		}
		merged := schema.Graph{
			Root: schema.ObjectOf(
				schema.F("first", schema.Ref("r")),
				schema.F("second", schema.Ref("r")),
				schema.F("other", schema.Ref("s")),
			),
			Definitions: map[string]schema.Node{
				"r": selfRef("r"),
				"s": other(),
			},
		}
		assert.Equal(t, encode(t, duplicated, Options{}), encode(t, merged, Options{}))
	})

	t.Run("definition names never reach the bytes", func(t *testing.T) {
		named := func(name string) schema.Graph {
			return schema.Graph{
				Root: schema.Ref(name),
				Definitions: map[string]schema.Node{
					name: schema.Object(map[string]schema.Node{"x": schema.Integer()}),
				},
			}
		}
		assert.Equal(t, encode(t, named("com/acme.User"), Options{}), encode(t, named("org/other.Account"), Options{}))
	})

	t.Run("unreachable definitions are ignored", func(t *testing.T) {
		bare := schema.Graph{Root: schema.Integer()}
		cluttered := schema.Graph{
			Root: schema.Integer(),
			Definitions: map[string]schema.Node{
				"unused": schema.Object(map[string]schema.Node{"x": schema.String()}),
			},
		}
		assert.Equal(t, encode(t, bare, Options{}), encode(t, cluttered, Options{}))
	})
}

func TestEncodeErrors(t *testing.T) {
	t.Run("dangling reference", func(t *testing.T) {
		g := schema.Graph{Root: schema.Ref("missing")}
		_, err := Encode(g, Options{})
		assert.ErrorIs(t, err, ErrUnknownDefinition)
	})

	t.Run("node limit", func(t *testing.T) {
		wide := make(map[string]schema.Node, 100)
		for i := 0; i < 100; i++ {
			wide[string(rune('a'+i%26))+string(rune('0'+i%10))] = schema.Integer()
		}
		g := schema.Graph{Root: schema.Object(wide)}
		_, err := Encode(g, Options{MaxNodes: 10})
		assert.ErrorIs(t, err, ErrNodeLimit)
	})

	t.Run("zero node is unsupported", func(t *testing.T) {
		g := schema.Graph{Root: schema.Node{}}
		_, err := Encode(g, Options{})
		assert.ErrorIs(t, err, schema.ErrUnsupportedNode)
	})

	t.Run("unserializable extra data", func(t *testing.T) {
		g := schema.Graph{Root: schema.Integer()}
		_, err := Encode(g, Options{ExtraData: make(chan int)})
		assert.Error(t, err)
	})
}

func TestExtraData(t *testing.T) {
	g := schema.Graph{Root: schema.Integer()}

	plain := encode(t, g, Options{})
	a := encode(t, g, Options{ExtraData: []string{"a", "b"}})
	b := encode(t, g, Options{ExtraData: []string{"foo", "bar"}})

	assert.NotEqual(t, plain, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, encode(t, g, Options{ExtraData: []string{"a", "b"}}))
}

func TestConstraintOrderInvariance(t *testing.T) {
	a := schema.Graph{Root: schema.String().WithConstraints(schema.MinLength(1), schema.MaxLength(9))}
	b := schema.Graph{Root: schema.String().WithConstraints(schema.MaxLength(9), schema.MinLength(1))}
	assert.Equal(t, encode(t, a, Options{}), encode(t, b, Options{}))
}

func TestContainerShape(t *testing.T) {
	// list[int] and map[string]int must not collide, nor map key/value swaps.
	list := encode(t, schema.Graph{Root: schema.List(schema.Integer())}, Options{})
	m := encode(t, schema.Graph{Root: schema.MapOf(schema.String(), schema.Integer())}, Options{})
	swapped := encode(t, schema.Graph{Root: schema.MapOf(schema.Integer(), schema.String())}, Options{})

	assert.NotEqual(t, list, m)
	assert.NotEqual(t, m, swapped)
}
