package schemaruntime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/blueprint"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/eval"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/schema"
)

func stringType() *schema.TypeRef {
	return &schema.TypeRef{Kind: schema.TypeRefKindNamed, Named: "String"}
}

func nonNullStringType() *schema.TypeRef {
	return &schema.TypeRef{Kind: schema.TypeRefKindNonNull, OfType: stringType()}
}

func TestResolveSyncNullableFieldMissingPathIsNull(t *testing.T) {
	bp := blueprint.New()
	bp.QueryType = "Query"
	bp.Object(blueprint.ObjectDef{
		Name: "Query",
		Fields: []blueprint.FieldDef{
			{Name: "nickname", Type: stringType(), Resolver: ir.Path{
				Base:     ir.ContextPath{Segments: dynval.Path{"value"}},
				Segments: dynval.Path{"nickname"},
			}},
		},
	})

	rt := New(bp, evalctx.Clients{}, nil)
	v, err := rt.ResolveSync(context.Background(), "Query", "nickname", map[string]any{}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestResolveSyncNonNullFieldMissingPathFailsWithPathNotFound(t *testing.T) {
	bp := blueprint.New()
	bp.QueryType = "Query"
	bp.Object(blueprint.ObjectDef{
		Name: "Query",
		Fields: []blueprint.FieldDef{
			{Name: "name", Type: nonNullStringType(), Resolver: ir.Path{
				Base:     ir.ContextPath{Segments: dynval.Path{"value"}},
				Segments: dynval.Path{"name"},
			}},
		},
	})

	rt := New(bp, evalctx.Clients{}, nil)
	_, err := rt.ResolveSync(context.Background(), "Query", "name", map[string]any{}, nil)
	require.Error(t, err)
	evalErr, ok := err.(*eval.Error)
	require.True(t, ok, "expected *eval.Error, got %T", err)
	assert.Equal(t, eval.PathNotFound, evalErr.Kind)
}

func TestResolveSyncNonNullFieldPresentValueSucceeds(t *testing.T) {
	bp := blueprint.New()
	bp.QueryType = "Query"
	bp.Object(blueprint.ObjectDef{
		Name: "Query",
		Fields: []blueprint.FieldDef{
			{Name: "name", Type: nonNullStringType(), Resolver: ir.Path{
				Base:     ir.ContextPath{Segments: dynval.Path{"value"}},
				Segments: dynval.Path{"name"},
			}},
		},
	})

	rt := New(bp, evalctx.Clients{}, nil)
	v, err := rt.ResolveSync(context.Background(), "Query", "name", map[string]any{"name": "Ada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)
}
