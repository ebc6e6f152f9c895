package main

import (
	"github.com/tailcallhq/tailcall-go/internal/blueprint"
	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/ir"
	"github.com/tailcallhq/tailcall-go/internal/schema"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// demoBlueprint builds a tiny, self-contained gateway used by the serve and
// validate subcommands when no embedding application supplies its own
// blueprint.Blueprint: a Query type with a field computed purely from its
// arguments, one field that proxies an HTTP upstream, and a deferred field
// wrapping that same upstream call, enough to exercise the wiring (schema,
// evaluator, upstream client) end to end. No field carries a Cache node.
// A real deployment embeds this binary's packages and assembles its own
// Blueprint with blueprint.New() instead of calling this function.
func demoBlueprint(upstreamBaseURL string) *blueprint.Blueprint {
	nonNullString := schema.NonNullType(schema.NamedType("String"))
	nullableString := schema.NamedType("String")

	greeting := blueprint.FieldDef{
		Name: "greeting",
		Type: nonNullString,
		Args: []*schema.InputValue{
			{Name: "name", Type: nonNullString},
		},
		Resolver: ir.Dynamic{
			Value: dynval.Mustache(dynval.Compile("Hello, {{args.name}}!")),
		},
	}

	weather := blueprint.FieldDef{
		Name: "weather",
		Type: nullableString,
		Args: []*schema.InputValue{
			{Name: "city", Type: nonNullString},
		},
		Resolver: ir.IO{
			Kind: ir.OpHTTP,
			Template: &template.RequestTemplate{
				Kind: template.KindHTTP,
				HTTP: &template.HTTPTemplate{
					Method: template.MethodGet,
					URL:    dynval.Compile(upstreamBaseURL + "/weather"),
					Query: []template.QueryParam{
						{Key: "city", Template: dynval.Compile("{{args.city}}")},
					},
				},
			},
			HTTPFilter: dynval.Path{"summary"},
		},
	}

	bp := blueprint.New()

	forecast := blueprint.FieldDef{
		Name: "forecast",
		Type: nullableString,
		Args: []*schema.InputValue{
			{Name: "city", Type: nonNullString},
		},
		// @defer has no streaming transport here, so this just demonstrates
		// Defer's id/label assignment; evaluation still happens synchronously.
		Resolver: bp.Defer(weather.Resolver, dynval.Path{"forecast"}, ""),
	}

	bp.QueryType = "Query"
	bp.Object(blueprint.ObjectDef{
		Name:   "Query",
		Fields: []blueprint.FieldDef{greeting, weather, forecast},
	})
	return bp
}
