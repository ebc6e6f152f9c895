package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/tailcallhq/tailcall-go/internal/schema"
)

func interfaceFragmentSchema() *schema.Schema {
	return &schema.Schema{
		QueryType: "Query",
		Types: map[string]*schema.Type{
			"Query":  {Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{{Name: "node", Type: schema.NamedType("Node")}}},
			"Node":   {Name: "Node", Kind: schema.TypeKindInterface, PossibleTypes: []string{"Dog"}, Fields: []*schema.Field{{Name: "id", Type: schema.NamedType("String")}}},
			"Dog":    {Name: "Dog", Kind: schema.TypeKindObject, Interfaces: []string{"Node"}, Fields: []*schema.Field{{Name: "id", Type: schema.NamedType("String")}, {Name: "bark", Type: schema.NamedType("String")}}},
			"String": {Name: "String", Kind: schema.TypeKindScalar},
		},
	}
}

func TestInlineFragmentOnImplementedInterfaceIsIncluded(t *testing.T) {
	sch := interfaceFragmentSchema()
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.node": NewMockValueResolver(map[string]any{"__typename": "Dog", "id": "1", "bark": "woof"}),
		"Dog.id":     NewMockValueResolver("1"),
		"Dog.bark":   NewMockValueResolver("woof"),
	})
	exec := NewExecutor(rt, sch)
	doc := mustParseQuery(t, "{ node { id ... on Node { id } ... on Dog { bark } } }")

	result := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	node := data["node"].(map[string]any)
	assert.Equal(t, "woof", node["bark"])
}

func TestInlineFragmentOnUnrelatedTypeIsExcluded(t *testing.T) {
	sch := interfaceFragmentSchema()
	sch.Types["Cat"] = &schema.Type{Name: "Cat", Kind: schema.TypeKindObject, Fields: []*schema.Field{{Name: "meow", Type: schema.NamedType("String")}}}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.node": NewMockValueResolver(map[string]any{"__typename": "Dog", "id": "1"}),
	})
	exec := NewExecutor(rt, sch)
	doc := mustParseQuery(t, "{ node { id ... on Cat { meow } } }")

	result := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	node := data["node"].(map[string]any)
	_, hasMeow := node["meow"]
	assert.False(t, hasMeow)
}
