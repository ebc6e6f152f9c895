// Package evalctx implements the per-request evaluation context: a layered,
// read-mostly environment threaded through IR evaluation without being owned
// by it.
package evalctx

import (
	"context"

	"github.com/tailcallhq/tailcall-go/internal/auth"
	"github.com/tailcallhq/tailcall-go/internal/cache"
	"github.com/tailcallhq/tailcall-go/internal/dataloader"
	"github.com/tailcallhq/tailcall-go/internal/discriminator"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// Clients groups the upstream client handles a Context exposes to IO
// evaluation. Implementations live in internal/httprt, internal/grpcrt,
// internal/graphqlrt, internal/jsrt; evalctx only carries references.
type Clients struct {
	HTTP    any
	GRPC    any
	GraphQL any
	JS      any
}

// Context is a stack-like layered environment: field args, parent .value from
// pipes, request-scoped vars/env/headers, plus non-owning references to shared
// infrastructure. A Context is immutable; WithValue returns a child sharing
// everything but the current .value, giving Pipe's right operand a happens-
// before relationship to the left without mutation races between concurrent
// siblings.
type Context struct {
	Go context.Context

	Args    dynval.Value
	Value   dynval.Value
	Vars    dynval.Value
	Env     dynval.Value
	Headers dynval.Value

	Loaders        *dataloader.Registry
	Clients        Clients
	Discriminators *discriminator.Registry
	Auth           auth.Verifier
	Cache          cache.Cache

	// RequestDedupe is the per-request (non-persistent) dedupe table used by IO
	// ops that declare dedupe but have no DataLoaderID, keyed by cache_key(ctx).
	RequestDedupe *dataloader.Dedupe[uint64, dynval.Value]
}

// New constructs a root Context for a single field-resolution invocation.
func New(goCtx context.Context) *Context {
	return &Context{
		Go:            goCtx,
		Args:          dynval.Null,
		Value:         dynval.Null,
		Vars:          dynval.Null,
		Env:           dynval.Null,
		Headers:       dynval.Null,
		RequestDedupe: dataloader.NewDedupe[uint64, dynval.Value](false),
	}
}

// WithValue returns a child context with .value rebound, used when
// descending into Pipe's right operand.
func (c *Context) WithValue(v dynval.Value) *Context {
	clone := *c
	clone.Value = v
	return &clone
}

// WithArgs returns a child context with .args rebound, used when entering a
// new field's resolution (each field has its own coerced argument map).
func (c *Context) WithArgs(args dynval.Value) *Context {
	clone := *c
	clone.Args = args
	return &clone
}

// ResolvePath implements dynval.Resolver: the path's first segment names one
// of the recognised roots (args, value, vars, env, headers) and the rest is
// selected out of that root. Any other first segment resolves to not found.
func (c *Context) ResolvePath(p dynval.Path) (dynval.Value, bool) {
	if len(p) == 0 {
		return dynval.Null, false
	}
	root, rest := p[0], p[1:]
	var base dynval.Value
	switch root {
	case "args":
		base = c.Args
	case "value":
		base = c.Value
	case "vars":
		base = c.Vars
	case "env":
		base = c.Env
	case "headers":
		base = c.Headers
	default:
		return dynval.Null, false
	}
	if len(rest) == 0 {
		return base, !base.IsNull() || root == "value"
	}
	return dynval.Select(base, rest)
}
