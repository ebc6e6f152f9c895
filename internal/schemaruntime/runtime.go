// Package schemaruntime adapts a compiled blueprint.Blueprint into the
// executor.Runtime contract by delegating every field resolution to
// internal/eval, adapting a Blueprint plus its evaluator into GraphQL resolver
// callbacks.
package schemaruntime

import (
	"context"
	"fmt"
	"sync"

	"github.com/tailcallhq/tailcall-go/internal/auth"
	"github.com/tailcallhq/tailcall-go/internal/blueprint"
	"github.com/tailcallhq/tailcall-go/internal/cache"
	"github.com/tailcallhq/tailcall-go/internal/dataloader"
	"github.com/tailcallhq/tailcall-go/internal/discriminator"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/eval"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/executor"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/schema"
)

// Runtime is the process-wide executor.Runtime backed by one compiled
// blueprint. It owns every piece of shared, non-request-scoped state the
// evaluator needs: the data-loader registry, the discriminator registry,
// the auth registry, and (optionally) the cache primitive.
type Runtime struct {
	bp *blueprint.Blueprint

	clients        evalctx.Clients
	loaders        *dataloader.Registry
	discriminators *discriminator.Registry
	authRegistry   *auth.Registry
	cacheBackend   cache.Cache
}

// New constructs a Runtime from a compiled blueprint and the set of
// upstream clients (each implementing internal/runtime.Client) it should
// dispatch IO nodes through.
func New(bp *blueprint.Blueprint, clients evalctx.Clients, cacheBackend cache.Cache) *Runtime {
	r := &Runtime{
		bp:             bp,
		clients:        clients,
		loaders:        dataloader.NewRegistry(),
		discriminators: discriminator.NewRegistry(),
		authRegistry:   auth.NewRegistry(),
		cacheBackend:   cacheBackend,
	}
	for id, cfg := range bp.Loaders {
		r.loaders.Register(id, cfg)
	}
	for id, fn := range bp.Discriminators {
		if fn != nil {
			r.discriminators.Register(id, fn)
		}
	}
	for id, verifier := range bp.AuthProviders {
		r.authRegistry.Register(id, verifier)
	}
	return r
}

func (r *Runtime) newEvalCtx(ctx context.Context, source any, args map[string]any) *evalctx.Context {
	ec := evalctx.New(ctx)
	ec.Value = dynval.FromAny(source)
	ec.Args = dynval.FromAny(args)
	ec.Headers = schema.HeadersFromContext(ctx)
	ec.Vars = schema.VarsFromContext(ctx)
	ec.Env = schema.EnvFromContext(ctx)
	ec.Loaders = r.loaders
	ec.Clients = r.clients
	ec.Discriminators = r.discriminators
	ec.Auth = r.authRegistry
	ec.Cache = r.cacheBackend
	return ec
}

func (r *Runtime) fieldResolver(objectType, field string) (ir.Node, *schema.TypeRef, bool) {
	if obj, ok := r.bp.Objects[objectType]; ok {
		for _, f := range obj.Fields {
			if f.Name == field {
				if f.Resolver != nil {
					return f.Resolver, f.Type, true
				}
				return defaultFieldResolver(field), f.Type, true
			}
		}
	}
	if iface, ok := r.bp.Interfaces[objectType]; ok {
		for _, f := range iface.Fields {
			if f.Name == field {
				if f.Resolver != nil {
					return f.Resolver, f.Type, true
				}
				return defaultFieldResolver(field), f.Type, true
			}
		}
	}
	return nil, nil, false
}

// defaultFieldResolver implements the implicit identity resolver: a field with
// no declared resolver reads the same-named key out of its parent value.
func defaultFieldResolver(field string) ir.Node {
	return ir.Path{Base: ir.ContextPath{Segments: dynval.Path{"value"}}, Segments: dynval.Path{field}}
}

// ResolveSync implements executor.Runtime.
func (r *Runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.bp.QueryType && field == "_service" {
		return map[string]any{"sdl": r.bp.ServiceSDL}, nil
	}
	if objectType == r.bp.QueryType && field == "_entities" {
		return r.resolveEntities(ctx, args)
	}

	node, fieldType, ok := r.fieldResolver(objectType, field)
	if !ok {
		return nil, fmt.Errorf("schemaruntime: no resolver registered for %s.%s", objectType, field)
	}
	ec := r.newEvalCtx(ctx, source, args)
	v, found, everr := eval.Eval(ec, node)
	if everr != nil {
		return nil, everr
	}
	if !found && schema.IsNonNull(fieldType) {
		return nil, &eval.Error{Kind: eval.PathNotFound, Message: fmt.Sprintf("%s.%s: no value at the resolved path", objectType, field)}
	}
	return v.ToAny(), nil
}

func (r *Runtime) resolveEntities(ctx context.Context, args map[string]any) (any, error) {
	raw, _ := args["representations"].([]any)
	out := make([]any, len(raw))
	for i, rep := range raw {
		ec := r.newEvalCtx(ctx, rep, nil)
		v, _, everr := eval.Eval(ec, ir.Entity{ByTypename: r.bp.Entities})
		if everr != nil {
			return nil, everr
		}
		out[i] = v.ToAny()
	}
	return out, nil
}

// BatchResolveAsync implements executor.Runtime by fanning out concurrently;
// cross-field batching happens one level down, inside the data-loader layer,
// keyed by the IO nodes' shared DataLoaderID.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(i int, task executor.AsyncResolveTask) {
			defer wg.Done()
			v, err := r.ResolveSync(ctx, task.ObjectType, task.Field, task.Source, task.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
		}(i, task)
	}
	wg.Wait()
	return results
}

// ResolveType implements executor.Runtime for interface/union abstract
// types: the concrete type name was already tagged onto the value by
// internal/eval's Discriminate node (field "__typename").
func (r *Runtime) ResolveType(_ context.Context, abstractType string, value any) (string, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return "", fmt.Errorf("schemaruntime: cannot resolve concrete type of %T for %s", value, abstractType)
	}
	tn, ok := m["__typename"].(string)
	if !ok {
		return "", fmt.Errorf("schemaruntime: value for %s missing __typename", abstractType)
	}
	return tn, nil
}

// ResolveUnionConcreteValue implements executor.Runtime. The evaluator's
// dynval.Value.ToAny() already produces the concrete representation, so
// this is a pass-through.
func (r *Runtime) ResolveUnionConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

// ResolveInterfaceConcreteValue implements executor.Runtime; see
// ResolveUnionConcreteValue.
func (r *Runtime) ResolveInterfaceConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

// SerializeLeafValue implements executor.Runtime. Values already arrive as
// JSON-safe Go types from dynval.Value.ToAny(); ID is coerced to string per
// GraphQL's ID serialization rule.
func (r *Runtime) SerializeLeafValue(_ context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if scalarOrEnumTypeName == "ID" {
		switch v := value.(type) {
		case float64:
			return fmt.Sprintf("%g", v), nil
		case string:
			return v, nil
		}
	}
	return value, nil
}
