package schema

import (
	"context"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

type contextKey int

const (
	headersContextKey contextKey = iota
	varsContextKey
	envContextKey
)

// WithHeaders attaches the current request's header set to ctx, read back by
// Runtime when constructing an evaluation context for each field resolution
// (headers are one of the layered context roots).
func WithHeaders(ctx context.Context, headers dynval.Value) context.Context {
	return context.WithValue(ctx, headersContextKey, headers)
}

// WithVars attaches blueprint-level server variables (e.g. feature flags,
// per-deployment config) to ctx.
func WithVars(ctx context.Context, vars dynval.Value) context.Context {
	return context.WithValue(ctx, varsContextKey, vars)
}

// WithEnv attaches process environment values exposed to templates.
func WithEnv(ctx context.Context, env dynval.Value) context.Context {
	return context.WithValue(ctx, envContextKey, env)
}

// HeadersFromContext reads back the value WithHeaders attached, or
// dynval.Null if none was set.
func HeadersFromContext(ctx context.Context) dynval.Value {
	if v, ok := ctx.Value(headersContextKey).(dynval.Value); ok {
		return v
	}
	return dynval.Null
}

// VarsFromContext reads back the value WithVars attached, or dynval.Null.
func VarsFromContext(ctx context.Context) dynval.Value {
	if v, ok := ctx.Value(varsContextKey).(dynval.Value); ok {
		return v
	}
	return dynval.Null
}

// EnvFromContext reads back the value WithEnv attached, or dynval.Null.
func EnvFromContext(ctx context.Context) dynval.Value {
	if v, ok := ctx.Value(envContextKey).(dynval.Value); ok {
		return v
	}
	return dynval.Null
}
