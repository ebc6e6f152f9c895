// Package eval implements a structural recursion over internal/ir.Node that
// never panics on a well-typed tree and surfaces every failure as a typed
// *eval.Error.
package eval

import (
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/ir"
)

// Eval evaluates node under ctx, returning its dynamic-value result, whether
// that result was actually found (as opposed to standing in for a missed
// path selection), or a typed failure. It is pure structural recursion:
// every ir.Node kind maps to exactly one case, and the switch is exhaustive
// over the closed Node sum type declared in internal/ir.
//
// found is only ever false when the value bottoms out at a Path selection
// that missed; every other node kind either produces a value outright or
// passes its inner found through unchanged. Callers that don't care about
// the absent/null distinction (e.g. intermediate Pipe/Map steps) can ignore
// it - only the caller resolving a field's final value needs to check it
// against the field's nullability to decide between null and PathNotFound.
func Eval(ctx *evalctx.Context, node ir.Node) (dynval.Value, bool, *Error) {
	switch n := node.(type) {
	case ir.Dynamic:
		return evalDynamic(ctx, n)
	case ir.ContextPath:
		return evalContextPath(ctx, n)
	case ir.Path:
		return evalPath(ctx, n)
	case ir.Pipe:
		return evalPipe(ctx, n)
	case ir.Map:
		return evalMap(ctx, n)
	case ir.Protect:
		return evalProtect(ctx, n)
	case ir.Discriminate:
		return evalDiscriminate(ctx, n)
	case ir.Entity:
		return evalEntity(ctx, n)
	case ir.Service:
		return dynval.String(n.SDL), true, nil
	case ir.Deferred:
		// This engine has no multipart/streaming transport, so @defer
		// degrades to synchronous evaluation of Inner.
		return Eval(ctx, n.Inner)
	case ir.IO:
		v, err := evalIO(ctx, n)
		return v, true, err
	case ir.Cache:
		v, err := evalCache(ctx, n)
		return v, true, err
	default:
		return dynval.Null, true, newError(DeserializeFailed, "unrecognized node kind %T", node)
	}
}

func evalDynamic(ctx *evalctx.Context, n ir.Dynamic) (dynval.Value, bool, *Error) {
	rendered := dynval.Render(n.Value, ctx)
	return rendered, true, nil
}

func evalContextPath(ctx *evalctx.Context, n ir.ContextPath) (dynval.Value, bool, *Error) {
	v, ok := ctx.ResolvePath(n.Segments)
	if !ok {
		return dynval.Null, true, nil
	}
	return v, true, nil
}

func evalPath(ctx *evalctx.Context, n ir.Path) (dynval.Value, bool, *Error) {
	base, _, err := Eval(ctx, n.Base)
	if err != nil {
		return dynval.Null, true, err
	}
	v, ok := dynval.Select(base, n.Segments)
	if !ok {
		// Missing paths resolve to absent: the value is Null, but found is
		// false so a non-null leaf can still fail with PathNotFound.
		return dynval.Null, false, nil
	}
	return v, true, nil
}

func evalPipe(ctx *evalctx.Context, n ir.Pipe) (dynval.Value, bool, *Error) {
	a, _, err := Eval(ctx, n.A)
	if err != nil {
		return dynval.Null, true, err
	}
	return Eval(ctx.WithValue(a), n.B)
}

func evalMap(ctx *evalctx.Context, n ir.Map) (dynval.Value, bool, *Error) {
	key, _, err := Eval(ctx, n.Input)
	if err != nil {
		return dynval.Null, true, err
	}
	out, ok := n.Table[mapKey(key)]
	if !ok {
		return dynval.Null, true, newError(MapKeyMissing, "no entry for key %q", mapKey(key))
	}
	return out, true, nil
}

func mapKey(v dynval.Value) string {
	if v.Kind() == dynval.KindString {
		return v.StringVal()
	}
	return v.ToString()
}

func evalProtect(ctx *evalctx.Context, n ir.Protect) (dynval.Value, bool, *Error) {
	if ctx.Auth == nil || !ctx.Auth.Verify(n.AuthID, ctx.Headers) {
		return dynval.Null, true, newError(Unauthorized, "auth %q denied", n.AuthID)
	}
	return Eval(ctx, n.Inner)
}

func evalDiscriminate(ctx *evalctx.Context, n ir.Discriminate) (dynval.Value, bool, *Error) {
	v, found, err := Eval(ctx, n.Inner)
	if err != nil {
		return dynval.Null, true, err
	}
	if ctx.Discriminators == nil {
		return dynval.Null, true, newError(DiscriminatorFailed, "no discriminator registry configured")
	}
	typename, derr := ctx.Discriminators.Resolve(n.DiscriminatorID, v)
	if derr != nil {
		return dynval.Null, true, &Error{Kind: DiscriminatorFailed, Message: derr.Error(), Cause: derr}
	}
	return withTypename(v, typename), found, nil
}

func withTypename(v dynval.Value, typename string) dynval.Value {
	if v.Kind() != dynval.KindObject {
		return v
	}
	fields := make(map[string]dynval.Value, len(v.Object())+1)
	for k, fv := range v.Object() {
		fields[k] = fv
	}
	fields["__typename"] = dynval.String(typename)
	return dynval.Object(fields)
}

func evalEntity(ctx *evalctx.Context, n ir.Entity) (dynval.Value, bool, *Error) {
	typ, ok := dynval.Select(ctx.Value, dynval.Path{"__typename"})
	if !ok || typ.Kind() != dynval.KindString {
		return dynval.Null, true, newError(DiscriminatorFailed, "entity representation missing __typename")
	}
	inner, ok := n.ByTypename[typ.StringVal()]
	if !ok {
		return dynval.Null, true, newError(DiscriminatorFailed, "no entity resolver for typename %q", typ.StringVal())
	}
	return Eval(ctx, inner)
}
