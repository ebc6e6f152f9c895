// Package blueprint builds a compiled, immutable description of a GraphQL
// schema plus the resolver-algebra tree bound to each field. Ingestion (parsing
// SDL, discovering services, compiling directives into IR) is out of scope — a
// Blueprint is assembled directly by Go code.
package blueprint

import (
	"time"

	"github.com/google/uuid"

	"github.com/tailcallhq/tailcall-go/internal/auth"
	"github.com/tailcallhq/tailcall-go/internal/dataloader"
	"github.com/tailcallhq/tailcall-go/internal/discriminator"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/schema"
)

// FieldDef binds one field's GraphQL shape to its resolver-algebra tree. A nil
// Resolver means "default": select a same-named key out of the parent's .value,
// matching the implicit identity resolver.
type FieldDef struct {
	Name              string
	Description       string
	Type              *schema.TypeRef
	Args              []*schema.InputValue
	Resolver          ir.Node
	IsDeprecated      bool
	DeprecationReason string
}

// ObjectDef is one OBJECT type, its fields each carrying their own
// resolver tree.
type ObjectDef struct {
	Name        string
	Description string
	Interfaces  []string
	Fields      []FieldDef
}

// InterfaceDef mirrors ObjectDef for GraphQL interfaces, plus the
// discriminator used to resolve a concrete runtime type.
type InterfaceDef struct {
	Name            string
	Description     string
	Interfaces      []string
	Fields          []FieldDef
	DiscriminatorID discriminator.ID
}

// UnionDef is one UNION type and the discriminator used to resolve its
// concrete member.
type UnionDef struct {
	Name            string
	Description     string
	PossibleTypes   []string
	DiscriminatorID discriminator.ID
}

type EnumDef struct {
	Name        string
	Description string
	Values      []*schema.EnumValue
}

type InputDef struct {
	Name        string
	Description string
	Fields      []*schema.InputValue
	OneOf       bool
}

type ScalarDef struct {
	Name        string
	Description string
}

// Server groups the HTTP-facing settings: port, GraphQL endpoint path,
// GraphiQL, CORS, request timeout, batching.
type Server struct {
	Port             int
	GraphQLPath      string
	EnableGraphiQL   bool
	EnableIntrospection bool
	EnableBatching   bool
	RequestTimeout   time.Duration
	CORSOrigins      []string
}

// DefaultServer returns the baseline server configuration before any
// functional options are applied.
func DefaultServer() Server {
	return Server{
		Port:                8080,
		GraphQLPath:         "/graphql",
		EnableGraphiQL:      true,
		EnableIntrospection: true,
		EnableBatching:      true,
		RequestTimeout:      30 * time.Second,
	}
}

// Blueprint is the complete compiled gateway description: every object's
// field resolvers, the federation entity table, and process-wide
// infrastructure (auth providers, discriminators, data-loader configs).
type Blueprint struct {
	QueryType        string
	MutationType     string
	SubscriptionType string

	Objects    map[string]*ObjectDef
	Interfaces map[string]*InterfaceDef
	Unions     map[string]*UnionDef
	Enums      map[string]*EnumDef
	Inputs     map[string]*InputDef
	Scalars    map[string]*ScalarDef

	// ServiceSDL is returned verbatim by Apollo Federation's _service field.
	ServiceSDL string
	// Entities maps a federation-enabled object's __typename to the
	// resolver tree evaluated against a .value bound to its representation.
	Entities map[string]ir.Node

	AuthProviders  map[auth.ID]auth.Verifier
	Discriminators map[discriminator.ID]discriminator.Func
	Loaders        map[dataloader.LoaderID]dataloader.Config

	Server Server
}

// New constructs an empty Blueprint ready for Object/Interface/... calls.
func New() *Blueprint {
	return &Blueprint{
		Objects:        map[string]*ObjectDef{},
		Interfaces:     map[string]*InterfaceDef{},
		Unions:         map[string]*UnionDef{},
		Enums:          map[string]*EnumDef{},
		Inputs:         map[string]*InputDef{},
		Scalars:        map[string]*ScalarDef{},
		Entities:       map[string]ir.Node{},
		AuthProviders:  map[auth.ID]auth.Verifier{},
		Discriminators: map[discriminator.ID]discriminator.Func{},
		Loaders:        map[dataloader.LoaderID]dataloader.Config{},
		Server:         DefaultServer(),
	}
}

func (b *Blueprint) Object(def ObjectDef) *Blueprint {
	b.Objects[def.Name] = &def
	return b
}

func (b *Blueprint) Interface(def InterfaceDef) *Blueprint {
	b.Interfaces[def.Name] = &def
	return b
}

func (b *Blueprint) Union(def UnionDef) *Blueprint {
	b.Unions[def.Name] = &def
	return b
}

func (b *Blueprint) Enum(def EnumDef) *Blueprint {
	b.Enums[def.Name] = &def
	return b
}

func (b *Blueprint) Input(def InputDef) *Blueprint {
	b.Inputs[def.Name] = &def
	return b
}

func (b *Blueprint) Scalar(def ScalarDef) *Blueprint {
	b.Scalars[def.Name] = &def
	return b
}

// Entity registers typename's federation resolver, bound to the Entity node's
// dispatch through the "_entities" query.
func (b *Blueprint) Entity(typename string, resolver ir.Node) *Blueprint {
	b.Entities[typename] = resolver
	return b
}

// Defer wraps inner as an @defer-eligible resolver tree. label identifies the
// deferred payload to the client across the response stream's increments; when
// the directive omits label (the common case - @defer's label argument is
// optional per the GraphQL spec), pass "" and a stable synthetic one is
// generated instead, since an empty label would collide across every
// anonymous @defer on the same field path.
func (b *Blueprint) Defer(inner ir.Node, path dynval.Path, label string) ir.Node {
	if label == "" {
		label = uuid.NewString()
	}
	return ir.Deferred{
		ID:    uuid.NewString(),
		Label: label,
		Inner: inner,
		Path:  path,
	}
}

func (b *Blueprint) RegisterAuth(id auth.ID, verifier auth.Verifier) *Blueprint {
	b.AuthProviders[id] = verifier
	return b
}

func (b *Blueprint) RegisterDiscriminator(id discriminator.ID, fn discriminator.Func) *Blueprint {
	b.Discriminators[id] = fn
	return b
}

func (b *Blueprint) RegisterLoader(id dataloader.LoaderID, cfg dataloader.Config) *Blueprint {
	b.Loaders[id] = cfg
	return b
}
