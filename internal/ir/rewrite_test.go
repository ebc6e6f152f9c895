package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/auth"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

func sampleIO() IO {
	return IO{
		Kind: OpHTTP,
		Template: &template.RequestTemplate{
			Kind: template.KindHTTP,
			HTTP: &template.HTTPTemplate{
				Method: template.MethodGet,
				URL:    dynval.Compile("https://api.example.com/users/{{args.id}}"),
			},
		},
	}
}

func TestModifyIdentityPreservesTree(t *testing.T) {
	root := Pipe{
		A: sampleIO(),
		B: Path{Base: ContextPath{Segments: dynval.Path{"value"}}, Segments: dynval.Path{"name"}},
	}
	out := Modify(root, func(n Node) Node { return n })
	assert.Equal(t, root, out)
}

func TestCacheWrapWrapsEveryIOLeaf(t *testing.T) {
	root := Pipe{
		A: sampleIO(),
		B: Protect{AuthID: auth.ID("default"), Inner: sampleIO()},
	}
	before := CountIO(root)
	wrapped := CacheWrap(30*time.Second, root)
	after := CountIO(wrapped)
	assert.Equal(t, before, after)

	pipe, ok := wrapped.(Pipe)
	require.True(t, ok)
	_, aIsCache := pipe.A.(Cache)
	assert.True(t, aIsCache)

	protect, ok := pipe.B.(Protect)
	require.True(t, ok)
	_, innerIsCache := protect.Inner.(Cache)
	assert.True(t, innerIsCache)
}

func TestCacheWrapIsIdempotent(t *testing.T) {
	root := sampleIO()
	once := CacheWrap(time.Minute, root)
	twice := CacheWrap(time.Minute, once)
	assert.Equal(t, CountIO(once), CountIO(twice))

	c, ok := twice.(Cache)
	require.True(t, ok)
	_, nested := any(c.IO).(Cache)
	assert.False(t, nested)
}

func TestCacheWrapLeavesNonIONodesUntouched(t *testing.T) {
	root := Map{
		Input: ContextPath{Segments: dynval.Path{"args", "kind"}},
		Table: map[string]dynval.Value{"a": dynval.String("A")},
	}
	wrapped := CacheWrap(time.Second, root)
	m, ok := wrapped.(Map)
	require.True(t, ok)
	assert.Equal(t, root.Table, m.Table)
	_, stillContextPath := m.Input.(ContextPath)
	assert.True(t, stillContextPath)
}

func TestPipeOrderPreservedByModify(t *testing.T) {
	root := Pipe{A: Dynamic{Value: dynval.String("a")}, B: Dynamic{Value: dynval.String("b")}}
	visited := []string{}
	out := Modify(root, func(n Node) Node {
		if d, ok := n.(Dynamic); ok {
			visited = append(visited, d.Value.ToString())
		}
		return n
	})
	assert.Equal(t, []string{`"a"`, `"b"`}, visited)
	pipe := out.(Pipe)
	assert.Equal(t, root.A, pipe.A)
	assert.Equal(t, root.B, pipe.B)
}
