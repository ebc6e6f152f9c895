package eval

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/eventbus"
	"github.com/tailcallhq/tailcall-go/internal/events"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
)

func kindName(k ir.OpKind) string {
	switch k {
	case ir.OpHTTP:
		return "http"
	case ir.OpGRPC:
		return "grpc"
	case ir.OpGraphQL:
		return "graphql"
	case ir.OpJS:
		return "js"
	default:
		return "unknown"
	}
}

func clientFor(ctx *evalctx.Context, kind ir.OpKind) (runtime.Client, *Error) {
	var handle any
	switch kind {
	case ir.OpHTTP:
		handle = ctx.Clients.HTTP
	case ir.OpGRPC:
		handle = ctx.Clients.GRPC
	case ir.OpGraphQL:
		handle = ctx.Clients.GraphQL
	case ir.OpJS:
		handle = ctx.Clients.JS
	}
	client, ok := handle.(runtime.Client)
	if !ok || client == nil {
		return nil, newError(UpstreamIO, "no runtime client configured for op kind %d", kind)
	}
	return client, nil
}

func evalIO(ctx *evalctx.Context, n ir.IO) (dynval.Value, *Error) {
	if err := ctx.Go.Err(); err != nil {
		return dynval.Null, &Error{Kind: Cancelled, Cause: err}
	}

	client, cerr := clientFor(ctx, n.Kind)
	if cerr != nil {
		return dynval.Null, cerr
	}

	if n.Template == nil {
		return dynval.Null, newError(TemplateRenderFailed, "io node has no request template")
	}

	if n.DataLoaderID != "" {
		return evalIOViaLoader(ctx, n, client)
	}

	call := func() (dynval.Value, error) {
		start := time.Now()
		rendered := n.Template.Render(ctx)
		v, err := client.Do(ctx.Go, rendered)
		eventbus.Publish(ctx.Go, events.IOFinish{Kind: kindName(n.Kind), Duration: time.Since(start), Err: err})
		if err != nil {
			return dynval.Null, err
		}
		return applyHTTPFilter(n, v), nil
	}

	if n.Dedupe {
		key := dedupeKey(ctx, n)
		joined := ctx.RequestDedupe.InFlight(key)
		v, err := ctx.RequestDedupe.Call(key, call)
		if joined {
			eventbus.Publish(ctx.Go, events.DedupeJoin{Key: strconv.FormatUint(key, 10)})
		}
		if err != nil {
			return dynval.Null, wrapUpstreamErr(err)
		}
		return v, nil
	}

	v, err := call()
	if err != nil {
		return dynval.Null, wrapUpstreamErr(err)
	}
	return v, nil
}

func evalIOViaLoader(ctx *evalctx.Context, n ir.IO, client runtime.Client) (dynval.Value, *Error) {
	if ctx.Loaders == nil {
		return dynval.Null, newError(BatchPartition, "no data-loader registry configured")
	}
	loader, ok := ctx.Loaders.Get(n.DataLoaderID)
	if !ok {
		return dynval.Null, newError(BatchPartition, "no data-loader registered for %q", n.DataLoaderID)
	}

	var key dynval.Value
	if n.Key != nil {
		key = n.Key.RenderValue(ctx)
	} else {
		key = dynval.Number(float64(n.Template.CacheKey(ctx)))
	}

	start := time.Now()
	v, err := loader.Load(ctx.Go, key)
	eventbus.Publish(ctx.Go, events.IOFinish{Kind: kindName(n.Kind), Duration: time.Since(start), Err: err})
	if err != nil {
		if ctx.Go.Err() != nil {
			return dynval.Null, &Error{Kind: Cancelled, Cause: err}
		}
		return dynval.Null, &Error{Kind: BatchPartition, Message: err.Error(), Cause: err}
	}
	return applyHTTPFilter(n, v), nil
}

// dedupeKey fingerprints the fully rendered request: request-level dedupe
// collapses calls that would hit the exact same upstream request, which is
// a stronger identity than the per-call Key used for batching.
func dedupeKey(ctx *evalctx.Context, n ir.IO) uint64 {
	return uint64(n.Template.CacheKey(ctx))
}

func applyHTTPFilter(n ir.IO, v dynval.Value) dynval.Value {
	if n.Kind != ir.OpHTTP || len(n.HTTPFilter) == 0 {
		return v
	}
	filtered, ok := dynval.Select(v, n.HTTPFilter)
	if !ok {
		return dynval.Null
	}
	return filtered
}

func wrapUpstreamErr(err error) *Error {
	if statusErr, ok := asStatusError(err); ok {
		return &Error{Kind: UpstreamStatus, StatusCode: statusErr.Code, Message: statusErr.Error(), Cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Cause: err}
	}
	return &Error{Kind: UpstreamIO, Message: err.Error(), Cause: err}
}

func asStatusError(err error) (*runtime.StatusError, bool) {
	se, ok := err.(*runtime.StatusError)
	return se, ok
}

func evalCache(ctx *evalctx.Context, n ir.Cache) (dynval.Value, *Error) {
	// max_age <= 0 means "never store": skip the cache backend entirely
	// rather than calling Set with a zero TTL, which a backend like Redis
	// would interpret as "no expiry" (cache forever) instead of "don't cache".
	if ctx.Cache == nil || n.MaxAge <= 0 {
		return evalIO(ctx, n.IO)
	}
	key := n.IO.Template.CacheKey(ctx)
	keyStr := strconv.FormatUint(uint64(key), 10)
	if v, ok, err := ctx.Cache.Get(ctx.Go, key); err == nil && ok {
		eventbus.Publish(ctx.Go, events.CacheHit{Key: keyStr})
		return v, nil
	}
	eventbus.Publish(ctx.Go, events.CacheMiss{Key: keyStr})

	v, everr := evalIO(ctx, n.IO)
	if everr != nil {
		return dynval.Null, everr
	}
	_ = ctx.Cache.Set(ctx.Go, key, v, n.MaxAge)
	return v, nil
}
