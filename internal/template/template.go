// Package template implements the request template: a precompiled form of
// an upstream request, rendered against an evaluation context and
// fingerprinted into a cache key.
package template

import (
	"hash/maphash"
	"sort"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// Kind identifies which upstream a RequestTemplate targets.
type Kind int

const (
	KindHTTP Kind = iota
	KindGRPC
	KindGraphQL
	KindJS
)

// HTTPMethod enumerates the small set of HTTP verbs a directive can use.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// QueryParam is one "?k=v_template" pair of an HTTP template.
type QueryParam struct {
	Key      string
	Template *dynval.Template
}

// HTTPTemplate is the precompiled form of an @http directive.
type HTTPTemplate struct {
	Method      HTTPMethod
	URL         *dynval.Template // scheme+host+path with templated segments
	Query       []QueryParam
	Headers     []QueryParam
	Body        *dynval.Template // raw string or JSON-structured body template
	BatchKey    string           // query/path key used for key-based URL batching
	IsList      bool
}

// GRPCTemplate is the precompiled form of an @grpc directive.
type GRPCTemplate struct {
	FullMethod string // fully-qualified "/pkg.Service/Method"
	Request    *dynval.Template
	GroupBy    dynval.Path
}

// GraphQLOperation identifies the upstream operation kind to forward.
type GraphQLOperation int

const (
	GraphQLQuery GraphQLOperation = iota
	GraphQLMutation
)

// GraphQLTemplate is the precompiled form of an @graphql directive.
type GraphQLTemplate struct {
	Operation    GraphQLOperation
	Field        string
	Args         map[string]*dynval.Template
	Selection    string // forwarded selection subtree, rendered as SDL text
	SupportsBatch bool
}

// JSTemplate is the precompiled form of a @js directive: a named function
// exported by a shared script, invoked as call(name, value).
type JSTemplate struct {
	FunctionName string
	Arg          *dynval.Template
}

// RequestTemplate is a tagged union over the four upstream kinds an IO node
// can target.
type RequestTemplate struct {
	Kind Kind
	HTTP *HTTPTemplate
	GRPC *GRPCTemplate
	GraphQL *GraphQLTemplate
	JS *JSTemplate
}

// Rendered is the fully-rendered wire form used both to perform the call
// and to compute IoID.
type Rendered struct {
	Kind Kind

	// HTTP
	Method  HTTPMethod
	URL     string
	Query   []KV
	Headers []KV
	Body    dynval.Value

	// GRPC
	GRPCMethod  string
	GRPCMessage dynval.Value

	// GraphQL
	GQLOperation GraphQLOperation
	GQLField     string
	GQLArgs      map[string]dynval.Value
	GQLSelection string

	// JS
	JSFunction string
	JSArg      dynval.Value
}

// KV is an ordered key/value pair (query params and headers are ordered
// and may repeat a key, unlike a map).
type KV struct {
	Key   string
	Value string
}

// IoID is the 64-bit content-addressed fingerprint of a fully-rendered
// request.
type IoID uint64

var seed = maphash.MakeSeed()

// Render renders t against r into its wire form.
func (t *RequestTemplate) Render(r dynval.Resolver) Rendered {
	switch t.Kind {
	case KindHTTP:
		return renderHTTP(t.HTTP, r)
	case KindGRPC:
		return renderGRPC(t.GRPC, r)
	case KindGraphQL:
		return renderGraphQL(t.GraphQL, r)
	case KindJS:
		return renderJS(t.JS, r)
	default:
		return Rendered{}
	}
}

func renderJS(t *JSTemplate, r dynval.Resolver) Rendered {
	out := Rendered{Kind: KindJS, JSFunction: t.FunctionName}
	if t.Arg != nil {
		out.JSArg = t.Arg.RenderValue(r)
	}
	return out
}

func renderHTTP(t *HTTPTemplate, r dynval.Resolver) Rendered {
	out := Rendered{Kind: KindHTTP, Method: t.Method}
	if t.URL != nil {
		out.URL = t.URL.Render(r)
	}
	for _, q := range t.Query {
		out.Query = append(out.Query, KV{Key: q.Key, Value: q.Template.Render(r)})
	}
	for _, h := range t.Headers {
		out.Headers = append(out.Headers, KV{Key: h.Key, Value: h.Template.Render(r)})
	}
	if t.Body != nil {
		out.Body = t.Body.RenderValue(r)
	}
	return out
}

func renderGRPC(t *GRPCTemplate, r dynval.Resolver) Rendered {
	out := Rendered{Kind: KindGRPC, GRPCMethod: t.FullMethod}
	if t.Request != nil {
		out.GRPCMessage = t.Request.RenderValue(r)
	}
	return out
}

func renderGraphQL(t *GraphQLTemplate, r dynval.Resolver) Rendered {
	out := Rendered{
		Kind:         KindGraphQL,
		GQLOperation: t.Operation,
		GQLField:     t.Field,
		GQLSelection: t.Selection,
		GQLArgs:      make(map[string]dynval.Value, len(t.Args)),
	}
	for k, tpl := range t.Args {
		out.GQLArgs[k] = tpl.RenderValue(r)
	}
	return out
}

// Fingerprint computes the IoID of a rendered request. It must cover every
// field that can change the upstream's answer -- method, path, body,
// headers, query params, selection set -- since equal fingerprints are
// treated as equal answers for the cache and dedupe TTL window.
func (rendered Rendered) Fingerprint() IoID {
	var h maphash.Hash
	h.SetSeed(seed)
	switch rendered.Kind {
	case KindHTTP:
		h.WriteString("http|")
		h.WriteString(string(rendered.Method))
		h.WriteByte('|')
		h.WriteString(rendered.URL)
		h.WriteByte('|')
		writeKVs(&h, rendered.Query)
		h.WriteByte('|')
		writeKVs(&h, rendered.Headers)
		h.WriteByte('|')
		h.WriteString(rendered.Body.ToString())
	case KindGRPC:
		h.WriteString("grpc|")
		h.WriteString(rendered.GRPCMethod)
		h.WriteByte('|')
		h.WriteString(rendered.GRPCMessage.ToString())
	case KindGraphQL:
		h.WriteString("graphql|")
		h.WriteString([]string{"query", "mutation"}[rendered.GQLOperation])
		h.WriteByte('|')
		h.WriteString(rendered.GQLField)
		h.WriteByte('|')
		h.WriteString(rendered.GQLSelection)
		h.WriteByte('|')
		keys := make([]string, 0, len(rendered.GQLArgs))
		for k := range rendered.GQLArgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.WriteString(k)
			h.WriteByte('=')
			h.WriteString(rendered.GQLArgs[k].ToString())
			h.WriteByte(';')
		}
	case KindJS:
		h.WriteString("js|")
		h.WriteString(rendered.JSFunction)
		h.WriteByte('|')
		h.WriteString(rendered.JSArg.ToString())
	}
	return IoID(h.Sum64())
}

func writeKVs(h *maphash.Hash, kvs []KV) {
	// Query params and headers are order-sensitive in the wire form but a
	// stable fingerprint should not depend on incidental template
	// declaration order, so sort a copy before hashing.
	sorted := append([]KV(nil), kvs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value < sorted[j].Value
	})
	for _, kv := range sorted {
		h.WriteString(kv.Key)
		h.WriteByte('=')
		h.WriteString(kv.Value)
		h.WriteByte(';')
	}
}

// CacheKey renders t against r and returns its fingerprint directly.
func (t *RequestTemplate) CacheKey(r dynval.Resolver) IoID {
	return t.Render(r).Fingerprint()
}
