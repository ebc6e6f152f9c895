package eval

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/cache"
	"github.com/tailcallhq/tailcall-go/internal/dataloader"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

type countingClient struct {
	calls atomic.Int64
	fn    func(template.Rendered) (dynval.Value, error)
}

func (c *countingClient) Do(_ context.Context, rendered template.Rendered) (dynval.Value, error) {
	c.calls.Add(1)
	return c.fn(rendered)
}

func httpIO(url string) ir.IO {
	return ir.IO{
		Kind: ir.OpHTTP,
		Template: &template.RequestTemplate{Kind: template.KindHTTP, HTTP: &template.HTTPTemplate{
			Method: template.MethodGet,
			URL:    dynval.Compile(url),
		}},
	}
}

func TestEvalIODispatchesToConfiguredClient(t *testing.T) {
	ctx := newCtx()
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		return dynval.String("ok"), nil
	}}
	ctx.Clients.HTTP = client

	v, _, err := Eval(ctx, httpIO("https://api.example.com/ping"))
	require.Nil(t, err)
	assert.Equal(t, "ok", v.ToAny())
	assert.EqualValues(t, 1, client.calls.Load())
}

func TestEvalIOMissingClientIsUpstreamIOError(t *testing.T) {
	ctx := newCtx()
	_, _, err := Eval(ctx, httpIO("https://api.example.com/ping"))
	require.NotNil(t, err)
	assert.Equal(t, UpstreamIO, err.Kind)
}

func TestEvalIOWrapsStatusError(t *testing.T) {
	ctx := newCtx()
	ctx.Clients.HTTP = &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		return dynval.Null, &runtime.StatusError{Code: 404, Message: "not found"}
	}}
	_, _, err := Eval(ctx, httpIO("https://api.example.com/missing"))
	require.NotNil(t, err)
	assert.Equal(t, UpstreamStatus, err.Kind)
	assert.Equal(t, 404, err.StatusCode)
}

func TestEvalIODedupeCollapsesConcurrentCalls(t *testing.T) {
	ctx := newCtx()
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		// Keep the first call in flight until the other callers have joined it.
		time.Sleep(50 * time.Millisecond)
		return dynval.String("v"), nil
	}}
	ctx.Clients.HTTP = client

	node := httpIO("https://api.example.com/fixed")
	node.Dedupe = true

	done := make(chan struct{})
	const n = 50
	for i := 0; i < n; i++ {
		go func() {
			_, _, _ = Eval(ctx, node)
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	assert.EqualValues(t, 1, client.calls.Load())
}

func TestEvalIOViaLoaderBatchesByKey(t *testing.T) {
	ctx := newCtx()
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) { return dynval.Null, nil }}
	ctx.Clients.HTTP = client

	var batchCalls atomic.Int64
	ctx.Loaders = dataloader.NewRegistry()
	ctx.Loaders.Register("users", dataloader.Config{
		GroupBy:      dynval.Path{"id"},
		MaxBatchSize: 10,
		BatchDelay:   5 * time.Millisecond,
		Batch: func(_ context.Context, keys []dynval.Value) ([]dynval.Value, error) {
			batchCalls.Add(1)
			out := make([]dynval.Value, len(keys))
			for i, k := range keys {
				out[i] = dynval.Object(map[string]dynval.Value{"id": k, "name": dynval.String("user-" + k.StringVal())})
			}
			return out, nil
		},
	})

	node := ir.IO{
		Kind:         ir.OpHTTP,
		Template:     httpIO("https://api.example.com/users").Template,
		DataLoaderID: "users",
		Key:          dynval.Compile("{{args.id}}"),
	}

	results := make(chan dynval.Value, 3)
	for _, id := range []string{"1", "2", "3"} {
		go func(id string) {
			callCtx := ctx.WithArgs(dynval.Object(map[string]dynval.Value{"id": dynval.String(id)}))
			v, _, _ := Eval(callCtx, node)
			results <- v
		}(id)
	}
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		v := <-results
		seen[v.Object()["id"].StringVal()] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true, "3": true}, seen)
	assert.EqualValues(t, 1, batchCalls.Load())
}

func TestEvalCacheStoresAndReusesResult(t *testing.T) {
	ctx := newCtx()
	ctx.Cache = cache.NewLRU(0)
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		return dynval.String("fresh"), nil
	}}
	ctx.Clients.HTTP = client

	node := ir.Cache{MaxAge: time.Minute, IO: httpIO("https://api.example.com/cached")}

	v1, _, err := Eval(ctx, node)
	require.Nil(t, err)
	v2, _, err := Eval(ctx, node)
	require.Nil(t, err)

	assert.Equal(t, "fresh", v1.ToAny())
	assert.Equal(t, "fresh", v2.ToAny())
	assert.EqualValues(t, 1, client.calls.Load())
}

func TestEvalCacheZeroMaxAgeNeverWritesToBackend(t *testing.T) {
	ctx := newCtx()
	backend := cache.NewLRU(0)
	ctx.Cache = backend
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		return dynval.String("fresh"), nil
	}}
	ctx.Clients.HTTP = client

	node := ir.Cache{MaxAge: 0, IO: httpIO("https://api.example.com/uncacheable")}
	_, _, err1 := Eval(ctx, node)
	_, _, err2 := Eval(ctx, node)
	require.Nil(t, err1)
	require.Nil(t, err2)
	// max_age=0 disables storage entirely: every call should re-hit the client.
	assert.EqualValues(t, 2, client.calls.Load())
}

func TestEvalCacheWithoutBackendBypassesCaching(t *testing.T) {
	ctx := newCtx()
	client := &countingClient{fn: func(template.Rendered) (dynval.Value, error) {
		return dynval.String("fresh"), nil
	}}
	ctx.Clients.HTTP = client

	node := ir.Cache{MaxAge: time.Minute, IO: httpIO("https://api.example.com/uncached")}
	_, _, err1 := Eval(ctx, node)
	_, _, err2 := Eval(ctx, node)
	require.Nil(t, err1)
	require.Nil(t, err2)
	assert.EqualValues(t, 2, client.calls.Load())
}
