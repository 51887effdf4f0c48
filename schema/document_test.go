package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeDocument = `
name: tree
definitions:
  tree:
    type: object
    fields:
      value:
        type: integer
        minimum: 0
      label:
        type: string
        optional: true
        description: display name
      children:
        type: list
        items: {ref: tree}
root: {ref: tree}
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(treeDocument))
	require.NoError(t, err)

	assert.Equal(t, "tree", doc.Name)
	assert.Contains(t, doc.Definitions, "tree")
	assert.Equal(t, "tree", doc.Root.Ref)

	key, ok := doc.CacheKey()
	require.True(t, ok)
	assert.Equal(t, "doc:tree", key)
}

func TestDocumentGraph(t *testing.T) {
	doc, err := ParseDocument([]byte(treeDocument))
	require.NoError(t, err)

	graph, err := doc.Graph()
	require.NoError(t, err)

	require.Equal(t, KindReference, graph.Root.Kind)
	assert.Equal(t, "tree", graph.Root.Name)

	body, ok := graph.Definitions["tree"]
	require.True(t, ok)
	require.Equal(t, KindModel, body.Kind)
	require.Len(t, body.Children, 3)

	fields := make(map[string]Node, len(body.Children))
	for _, child := range body.Children {
		fields[child.FieldName] = child
	}

	value := fields["value"]
	assert.Equal(t, "integer", value.Name)
	assert.Equal(t, []Constraint{{Name: "minimum", Value: "0"}}, value.Constraints)

	label := fields["label"]
	require.Equal(t, KindUnion, label.Kind, "optional fields compile to a union with null")
	assert.Equal(t, "display name", label.Children[0].Description)

	children := fields["children"]
	assert.Equal(t, "list", children.Name)
	require.Len(t, children.Children, 1)
	assert.Equal(t, KindReference, children.Children[0].Kind)
}

func TestDocumentNodeShapes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want func(t *testing.T, n Node)
	}{
		{
			name: "enum",
			yaml: `root: {enum: [red, green, blue]}`,
			want: func(t *testing.T, n Node) {
				assert.Equal(t, KindLiteral, n.Kind)
				assert.Equal(t, []string{`"red"`, `"green"`, `"blue"`}, n.Values)
			},
		},
		{
			name: "union",
			yaml: `
root:
  type: union
  members:
    - {type: string}
    - {type: integer}
`,
			want: func(t *testing.T, n Node) {
				assert.Equal(t, KindUnion, n.Kind)
				assert.Len(t, n.Children, 2)
			},
		},
		{
			name: "map with default string keys",
			yaml: `
root:
  type: map
  values: {type: number}
`,
			want: func(t *testing.T, n Node) {
				require.Len(t, n.Children, 2)
				assert.Equal(t, "string", n.Children[0].Name)
				assert.Equal(t, "number", n.Children[1].Name)
			},
		},
		{
			name: "set",
			yaml: `
root:
  type: set
  items: {type: string}
`,
			want: func(t *testing.T, n Node) {
				assert.Equal(t, "set", n.Name)
			},
		},
		{
			name: "explicit null default",
			yaml: `
root:
  type: string
  default: null
`,
			want: func(t *testing.T, n Node) {
				assert.True(t, n.DefaultPresent, "an explicit null default still counts as present")
				assert.Nil(t, n.Default)
			},
		},
		{
			name: "absent default",
			yaml: `root: {type: string}`,
			want: func(t *testing.T, n Node) {
				assert.False(t, n.DefaultPresent)
			},
		},
		{
			name: "checks and validator",
			yaml: `
root:
  type: string
  checks:
    - size(value) > 0
  validator: myapp/validators.NonEmpty
`,
			want: func(t *testing.T, n Node) {
				require.Len(t, n.Behaviors, 2)
				assert.Equal(t, "size(value) > 0", n.Behaviors[0].Expr)
				assert.Equal(t, "myapp/validators.NonEmpty", n.Behaviors[1].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.yaml))
			require.NoError(t, err)
			graph, err := doc.Graph()
			require.NoError(t, err)
			tt.want(t, graph.Root)
		})
	}
}

func TestDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown type", `root: {type: tuple}`},
		{"list without items", `root: {type: list}`},
		{"map without values", `root: {type: map}`},
		{"union without members", `root: {type: union}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = doc.Graph()
			assert.ErrorIs(t, err, ErrUnsupportedNode)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseDocument([]byte("root: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("unnamed documents are uncacheable", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`root: {type: string}`))
		require.NoError(t, err)
		_, ok := doc.CacheKey()
		assert.False(t, ok)
	})
}

func TestDocumentDescribe(t *testing.T) {
	doc, err := ParseDocument([]byte(treeDocument))
	require.NoError(t, err)

	fromDescribe, err := doc.Describe()
	require.NoError(t, err)
	fromGraph, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, fromGraph, fromDescribe)
}
