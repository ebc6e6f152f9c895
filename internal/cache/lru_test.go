package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

func TestLRUSetThenGet(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(0)
	key := template.IoID(1)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, dynval.String("hello"), time.Minute))
	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", v.ToAny())
}

func TestLRUEntryExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(0)
	key := template.IoID(2)

	require.NoError(t, c.Set(ctx, key, dynval.String("soon-gone"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2)

	require.NoError(t, c.Set(ctx, template.IoID(1), dynval.Number(1), time.Minute))
	require.NoError(t, c.Set(ctx, template.IoID(2), dynval.Number(2), time.Minute))

	_, ok, _ := c.Get(ctx, template.IoID(1)) // refresh 1, making 2 the LRU
	assert.True(t, ok)

	require.NoError(t, c.Set(ctx, template.IoID(3), dynval.Number(3), time.Minute))
	assert.Equal(t, 2, c.Len())

	_, ok, _ = c.Get(ctx, template.IoID(2))
	assert.False(t, ok, "key 2 should have been evicted as least recently used")

	_, ok, _ = c.Get(ctx, template.IoID(1))
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, template.IoID(3))
	assert.True(t, ok)
}
