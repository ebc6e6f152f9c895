package discriminator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

func TestByField(t *testing.T) {
	r := NewRegistry()
	r.Register("byTypename", ByField("__typename"))

	obj := dynval.Object(map[string]dynval.Value{"__typename": dynval.String("Dog")})
	name, err := r.Resolve("byTypename", obj)
	require.NoError(t, err)
	assert.Equal(t, "Dog", name)
}

func TestByFieldFailsWithoutField(t *testing.T) {
	r := NewRegistry()
	r.Register("byTypename", ByField("__typename"))
	_, err := r.Resolve("byTypename", dynval.Object(map[string]dynval.Value{}))
	assert.Error(t, err)
}

func TestByTable(t *testing.T) {
	r := NewRegistry()
	r.Register("byKind", ByTable("kind", map[string]string{"1": "Cat", "2": "Dog"}))
	obj := dynval.Object(map[string]dynval.Value{"kind": dynval.Number(2)})
	name, err := r.Resolve("byKind", obj)
	require.NoError(t, err)
	assert.Equal(t, "Dog", name)
}

func TestResolveUnknownDiscriminator(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("missing", dynval.Null)
	assert.Error(t, err)
}
