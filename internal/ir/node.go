// Package ir implements a lazy tree of resolver primitives, composed once per
// field at blueprint compile time and evaluated by internal/eval at field-
// resolution time.
package ir

import (
	"sort"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/auth"
	"github.com/tailcallhq/tailcall-go/internal/dataloader"
	"github.com/tailcallhq/tailcall-go/internal/discriminator"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Node is any resolver-algebra primitive. It is a closed sum type: every
// concrete kind lives in this package and implements the unexported marker
// method so external packages cannot add new kinds (the evaluator's type switch
// must remain exhaustive).
type Node interface {
	isNode()
	// Children returns this node's direct sub-nodes, in evaluation order,
	// for use by Modify's bottom-up traversal. Leaves return nil.
	Children() []Node
	// WithChildren returns a copy of this node with its children replaced,
	// in the same order Children() reported them. Leaves return themselves.
	WithChildren([]Node) Node
}

// Dynamic evaluates to the rendered dynamic value.
type Dynamic struct {
	Value dynval.Value
}

func (Dynamic) isNode()                  {}
func (Dynamic) Children() []Node         { return nil }
func (n Dynamic) WithChildren([]Node) Node { return n }

// OpKind identifies the upstream/script kind of an IO node.
type OpKind int

const (
	OpHTTP OpKind = iota
	OpGRPC
	OpGraphQL
	OpJS
)

// IO issues an upstream or script call.
type IO struct {
	Kind OpKind

	Template *template.RequestTemplate

	// Key, when non-nil, is rendered against the evaluation context to
	// produce the per-call identity used for batching (DataLoaderID) and
	// request-level dedupe/caching fingerprints. It is typically a short
	// template like "{{value.id}}" rather than the whole rendered request.
	// A nil Key falls back to fingerprinting the fully rendered Template.
	Key *dynval.Template

	// GroupBy, when non-nil, makes this op batchable: sibling IO calls
	// that differ only by the key read via GroupBy are merged into one
	// upstream call by the data-loader layer.
	GroupBy dynval.Path
	IsList  bool

	// DataLoaderID binds this op to a shared Loader instance; empty means
	// this op is never batched (it may still be deduped, see Dedupe).
	DataLoaderID dataloader.LoaderID

	// HTTPFilter, when set (OpHTTP only), projects the raw JSON response through a
	// small path-based filter before it is handed back to the evaluator.
	HTTPFilter dynval.Path

	// Dedupe requests per-call-fingerprint deduplication even without a
	// DataLoaderID; if Dedupe is set and no loader is configured, the per-request
	// dedupe table is used instead.
	Dedupe bool

	// IsDependent marks an op whose template references ".value" and
	// therefore cannot be fingerprinted/batched ahead of its Pipe parent
	// resolving. It holds whatever the node's builder sets: no pass in this
	// module derives it from the templates, and the evaluator does not read it.
	IsDependent bool
}

func (IO) isNode()                  {}
func (IO) Children() []Node         { return nil }
func (n IO) WithChildren([]Node) Node { return n }

// Cache wraps a single IO with TTL caching.
type Cache struct {
	MaxAge time.Duration
	IO     IO
}

func (Cache) isNode() {}
func (c Cache) Children() []Node { return []Node{c.IO} }
func (c Cache) WithChildren(ch []Node) Node {
	io, ok := ch[0].(IO)
	if !ok {
		return c
	}
	c.IO = io
	return c
}

// Path evaluates Base then selects Segments out of the result.
type Path struct {
	Base     Node
	Segments dynval.Path
}

func (Path) isNode() {}
func (p Path) Children() []Node { return []Node{p.Base} }
func (p Path) WithChildren(ch []Node) Node {
	p.Base = ch[0]
	return p
}

// ContextPath reads a value directly from the evaluation context: args, value,
// env, vars, headers.
type ContextPath struct {
	Segments dynval.Path
}

func (ContextPath) isNode()                  {}
func (ContextPath) Children() []Node         { return nil }
func (n ContextPath) WithChildren([]Node) Node { return n }

// Protect requires an auth predicate to hold before evaluating Inner.
type Protect struct {
	AuthID auth.ID
	Inner  Node
}

func (Protect) isNode() {}
func (p Protect) Children() []Node { return []Node{p.Inner} }
func (p Protect) WithChildren(ch []Node) Node {
	p.Inner = ch[0]
	return p
}

// Map evaluates Input to a string key then looks it up in Table.
type Map struct {
	Input Node
	Table map[string]dynval.Value
}

func (Map) isNode() {}
func (m Map) Children() []Node { return []Node{m.Input} }
func (m Map) WithChildren(ch []Node) Node {
	m.Input = ch[0]
	return m
}

// Pipe evaluates A, binds its result as ".value" in a child context, then
// evaluates B. A strictly happens-before B.
type Pipe struct {
	A, B Node
}

func (Pipe) isNode() {}
func (p Pipe) Children() []Node { return []Node{p.A, p.B} }
func (p Pipe) WithChildren(ch []Node) Node {
	p.A, p.B = ch[0], ch[1]
	return p
}

// Discriminate evaluates Inner, then tags the result with a concrete type name
// via the named discriminator.
type Discriminate struct {
	DiscriminatorID discriminator.ID
	Inner           Node
}

func (Discriminate) isNode() {}
func (d Discriminate) Children() []Node { return []Node{d.Inner} }
func (d Discriminate) WithChildren(ch []Node) Node {
	d.Inner = ch[0]
	return d
}

// Entity implements Apollo Federation's _entities dispatch: the current
// representation's __typename selects which sub-tree to evaluate.
type Entity struct {
	ByTypename map[string]Node
}

func (Entity) isNode() {}
func (e Entity) Children() []Node {
	out := make([]Node, 0, len(e.ByTypename))
	for _, k := range sortedTypenames(e.ByTypename) {
		out = append(out, e.ByTypename[k])
	}
	return out
}
func (e Entity) WithChildren(ch []Node) Node {
	// Children and WithChildren both walk ByTypename in sorted typename
	// order, so ch[i] replaces the sub-tree Children reported at position i.
	// A slice of the wrong length leaves e unchanged.
	if len(ch) != len(e.ByTypename) {
		return e
	}
	out := make(map[string]Node, len(e.ByTypename))
	for i, k := range sortedTypenames(e.ByTypename) {
		out[k] = ch[i]
	}
	e.ByTypename = out
	return e
}

func sortedTypenames(m map[string]Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Service returns the Apollo _service SDL literal.
type Service struct {
	SDL string
}

func (Service) isNode()                  {}
func (Service) Children() []Node         { return nil }
func (n Service) WithChildren([]Node) Node { return n }

// Deferred marks Inner for later evaluation under GraphQL @defer. This
// engine evaluates Inner synchronously and ignores Label/streaming, since
// the executor has no multipart transport.
type Deferred struct {
	ID    string
	Label string
	Inner Node
	Path  dynval.Path
}

func (Deferred) isNode() {}
func (d Deferred) Children() []Node { return []Node{d.Inner} }
func (d Deferred) WithChildren(ch []Node) Node {
	d.Inner = ch[0]
	return d
}
