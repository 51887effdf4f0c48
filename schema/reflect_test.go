package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type person struct {
	Name     string             `json:"name" minLength:"1" maxLength:"80"`
	Age      int                `json:"age" minimum:"0"`
	Email    string             `json:"email,omitempty" format:"email"`
	Hidden   string             `json:"-"`
	internal string             `json:"internal"`
	Home     address            `json:"home"`
	Tags     []string           `json:"tags"`
	Extra    map[string]any     `json:"extra"`
	Joined   time.Time          `json:"joined"`
	Nickname *string            `json:"nickname"`
	Photo    []byte             `json:"photo"`
	Scores   map[string]float64 `json:"scores"`
}

type linked struct {
	Value string  `json:"value"`
	Next  *linked `json:"next"`
}

type nodeA struct {
	B *nodeB `json:"b"`
}

type nodeB struct {
	A *nodeA `json:"a"`
}

func TestFromType(t *testing.T) {
	graph, err := FromType(person{})
	require.NoError(t, err)

	require.Equal(t, KindReference, graph.Root.Kind)
	body, ok := graph.Definitions[graph.Root.Name]
	require.True(t, ok)
	require.Equal(t, KindModel, body.Kind)

	fields := make(map[string]Node, len(body.Children))
	for _, child := range body.Children {
		fields[child.FieldName] = child
	}

	t.Run("json tag names win", func(t *testing.T) {
		assert.Contains(t, fields, "name")
		assert.NotContains(t, fields, "Name")
	})

	t.Run("skipped and unexported fields are dropped", func(t *testing.T) {
		assert.NotContains(t, fields, "Hidden")
		assert.NotContains(t, fields, "internal")
	})

	t.Run("constraint tags", func(t *testing.T) {
		name := fields["name"]
		assert.Equal(t, []Constraint{
			{Name: "minLength", Value: "1"},
			{Name: "maxLength", Value: "80"},
		}, name.Constraints)

		age := fields["age"]
		assert.Equal(t, []Constraint{{Name: "minimum", Value: "0"}}, age.Constraints)
	})

	t.Run("omitempty implies default presence", func(t *testing.T) {
		assert.True(t, fields["email"].DefaultPresent)
		assert.False(t, fields["name"].DefaultPresent)
	})

	t.Run("nested struct becomes a reference", func(t *testing.T) {
		home := fields["home"]
		assert.Equal(t, KindReference, home.Kind)
		assert.Contains(t, graph.Definitions, home.Name)
	})

	t.Run("collections", func(t *testing.T) {
		assert.Equal(t, "list", fields["tags"].Name)
		assert.Equal(t, "map", fields["extra"].Name)
		assert.Equal(t, "bytes", fields["photo"].Name)

		scores := fields["scores"]
		require.Len(t, scores.Children, 2)
		assert.Equal(t, "string", scores.Children[0].Name)
		assert.Equal(t, "number", scores.Children[1].Name)
	})

	t.Run("time is a date-time string", func(t *testing.T) {
		joined := fields["joined"]
		assert.Equal(t, "string", joined.Name)
		assert.Equal(t, []Constraint{{Name: "format", Value: "date-time"}}, joined.Constraints)
	})

	t.Run("pointer is optional", func(t *testing.T) {
		nickname := fields["nickname"]
		require.Equal(t, KindUnion, nickname.Kind)
		require.Len(t, nickname.Children, 2)
		assert.Equal(t, "null", nickname.Children[1].Name)
	})
}

func TestFromTypeRecursion(t *testing.T) {
	t.Run("self-referential", func(t *testing.T) {
		graph, err := FromType(linked{})
		require.NoError(t, err)
		require.Len(t, graph.Definitions, 1)

		body := graph.Definitions[graph.Root.Name]
		var next Node
		for _, child := range body.Children {
			if child.FieldName == "next" {
				next = child
			}
		}
		// Next is *linked: optional union whose first member refers back.
		require.Equal(t, KindUnion, next.Kind)
		assert.Equal(t, KindReference, next.Children[0].Kind)
		assert.Equal(t, graph.Root.Name, next.Children[0].Name)
	})

	t.Run("mutually recursive", func(t *testing.T) {
		graph, err := FromType(nodeA{})
		require.NoError(t, err)
		assert.Len(t, graph.Definitions, 2)
	})
}

func TestFromTypeInputs(t *testing.T) {
	t.Run("reflect.Type argument", func(t *testing.T) {
		fromValue, err := FromType(address{})
		require.NoError(t, err)
		fromType, err := FromType(reflect.TypeOf(address{}))
		require.NoError(t, err)
		assert.Equal(t, fromValue, fromType)
	})

	t.Run("nil is unsupported", func(t *testing.T) {
		_, err := FromType(nil)
		assert.ErrorIs(t, err, ErrUnsupportedNode)
	})

	t.Run("channel is unsupported", func(t *testing.T) {
		_, err := FromType(make(chan int))
		assert.ErrorIs(t, err, ErrUnsupportedNode)
	})

	t.Run("unsupported field names the field", func(t *testing.T) {
		type bad struct {
			Callback func() `json:"callback"`
		}
		_, err := FromType(bad{})
		require.ErrorIs(t, err, ErrUnsupportedNode)
		assert.Contains(t, err.Error(), "Callback")
	})

	t.Run("malformed constraint tag", func(t *testing.T) {
		type bad struct {
			Name string `json:"name" maxLength:"lots"`
		}
		_, err := FromType(bad{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maxLength")
	})
}

func TestTypeKey(t *testing.T) {
	key, ok := TypeKey(person{})
	require.True(t, ok)
	assert.Equal(t, "github.com/schema-tools/schemaid/schema.person", key)

	_, ok = TypeKey(map[string]int{})
	assert.False(t, ok, "unnamed types have no stable key")

	_, ok = TypeKey(nil)
	assert.False(t, ok)

	key, ok = TypeKey(reflect.TypeOf(address{}))
	require.True(t, ok)
	assert.Equal(t, "github.com/schema-tools/schemaid/schema.address", key)
}
