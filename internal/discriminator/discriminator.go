// Package discriminator implements the rule that picks a concrete object type
// for a union/interface return value.
package discriminator

import (
	"fmt"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// ID identifies one discriminator strategy within a blueprint, analogous to
// LoaderID/ResolverID.
type ID string

// Func inspects a resolved value and returns the concrete GraphQL type name it
// should be completed as. Returning ok=false means the discriminator could not
// decide.
type Func func(v dynval.Value) (typeName string, ok bool)

// Registry holds every discriminator declared by the blueprint, keyed by
// ID, plus built-in strategies reusable across fields.
type Registry struct {
	funcs map[ID]Func
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry { return &Registry{funcs: make(map[ID]Func)} }

// Register installs fn under id.
func (r *Registry) Register(id ID, fn Func) { r.funcs[id] = fn }

// Resolve runs the discriminator named id against v.
func (r *Registry) Resolve(id ID, v dynval.Value) (string, error) {
	fn, ok := r.funcs[id]
	if !ok {
		return "", fmt.Errorf("discriminator: unknown discriminator %q", id)
	}
	name, ok := fn(v)
	if !ok {
		return "", fmt.Errorf("discriminator: %q could not resolve a concrete type", id)
	}
	return name, nil
}

// ByField builds the common strategy of reading a field (typically
// "__typename") off the resolved object and using its string value
// directly as the concrete type name.
func ByField(field string) Func {
	return func(v dynval.Value) (string, bool) {
		tn, ok := dynval.Select(v, dynval.Path{field})
		if !ok || tn.Kind() != dynval.KindString {
			return "", false
		}
		return tn.StringVal(), true
	}
}

// ByTable builds a strategy that evaluates a field's value then looks the
// result up in a static value->typename table, used when the upstream
// signals a variant with an enum/code rather than a literal type name.
func ByTable(field string, table map[string]string) Func {
	return func(v dynval.Value) (string, bool) {
		key, ok := dynval.Select(v, dynval.Path{field})
		if !ok {
			return "", false
		}
		name, ok := table[key.ToString()]
		return name, ok
	}
}
