// Package tailcall re-exports the handful of types an embedding application
// needs to assemble and serve its own gateway: a Blueprint builder, the
// compiled Schema, the process-wide Runtime, and the HTTP server.
// internal/* stays internal; this file is the only supported import path
// outside this module.
package tailcall

import (
	"github.com/tailcallhq/tailcall-go/internal/blueprint"
	"github.com/tailcallhq/tailcall-go/internal/cache"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/schema"
	"github.com/tailcallhq/tailcall-go/internal/schemaruntime"
	"github.com/tailcallhq/tailcall-go/internal/server"
)

// Blueprint is the compiled gateway description: object/interface/union
// types, their field resolver trees, and process-wide infrastructure
// registrations. Construct one with NewBlueprint and the fluent methods it
// returns (Object, Interface, Union, Enum, Input, Scalar, Entity,
// RegisterAuth, RegisterDiscriminator, RegisterLoader).
type Blueprint = blueprint.Blueprint

// NewBlueprint constructs an empty Blueprint.
func NewBlueprint() *Blueprint { return blueprint.New() }

// Clients groups the upstream client handles a Runtime dispatches IO nodes
// through: internal/httprt.Client, internal/grpcrt.Client,
// internal/graphqlrt.Client, internal/jsrt.Client, or any type implementing
// internal/runtime.Client.
type Clients = evalctx.Clients

// Cache is the TTL-bounded store IO nodes marked for caching read and write
// through. cache.NewLRU and cache.NewRedis are the provided implementations.
type Cache = cache.Cache

// Schema is the GraphQL-universal type system built from a Blueprint.
type Schema = schema.Schema

// BuildSchema projects bp into its executable Schema.
func BuildSchema(bp *Blueprint) (*Schema, error) { return schema.BuildFromBlueprint(bp) }

// NewRuntime constructs the process-wide executor backing bp's resolvers.
func NewRuntime(bp *Blueprint, clients Clients, cacheBackend Cache) *schemaruntime.Runtime {
	return schemaruntime.New(bp, clients, cacheBackend)
}

// ServerOption configures the HTTP handler returned by NewServer.
type ServerOption = server.Option

var (
	WithTimeout         = server.WithTimeout
	WithPretty          = server.WithPretty
	WithMaxBodyBytes    = server.WithMaxBodyBytes
	WithCORS            = server.WithCORS
	WithMetadataHeaders = server.WithMetadataHeaders
	WithGraphiQL        = server.WithGraphiQL
)

// NewServer builds the GraphQL HTTP handler for rt/sch.
func NewServer(rt *schemaruntime.Runtime, sch *Schema, opts ...ServerOption) (*server.Handler, error) {
	return server.New(rt, sch, opts...)
}
