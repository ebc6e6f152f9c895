package schema

import (
	"sort"

	"github.com/tailcallhq/tailcall-go/internal/blueprint"
)

// BuildFromBlueprint projects a blueprint.Blueprint into the executable
// Schema type system the executor walks. Resolver trees themselves stay on
// the Blueprint; BuildFromBlueprint only reads their declared shape
// (name/type/args) and whether a resolver is present, which marks the field
// async.
func BuildFromBlueprint(bp *blueprint.Blueprint) (*Schema, error) {
	s := &Schema{
		QueryType:        bp.QueryType,
		MutationType:     bp.MutationType,
		SubscriptionType: bp.SubscriptionType,
		Types:            map[string]*Type{},
		Directives:       map[string]*Directive{},
	}

	s.Types[stringType.Name] = stringType
	s.Types[intType.Name] = intType
	s.Types[floatType.Name] = floatType
	s.Types[booleanType.Name] = booleanType
	s.Types[idType.Name] = idType
	s.Directives[includeDirective.Name] = includeDirective
	s.Directives[skipDirective.Name] = skipDirective

	for _, name := range sortedKeys(bp.Objects) {
		s.Types[name] = buildObjectFromBlueprint(bp.Objects[name])
	}
	for _, name := range sortedKeys(bp.Interfaces) {
		s.Types[name] = buildInterfaceFromBlueprint(bp.Interfaces[name])
	}
	for _, name := range sortedKeys(bp.Unions) {
		s.Types[name] = buildUnionFromBlueprint(bp.Unions[name])
	}
	for _, name := range sortedKeys(bp.Enums) {
		s.Types[name] = buildEnumFromBlueprint(bp.Enums[name])
	}
	for _, name := range sortedKeys(bp.Inputs) {
		s.Types[name] = buildInputFromBlueprint(bp.Inputs[name])
	}
	for _, name := range sortedKeys(bp.Scalars) {
		s.Types[name] = &Type{Name: name, Kind: TypeKindScalar, Description: bp.Scalars[name].Description}
	}

	return s, nil
}

func buildObjectFromBlueprint(def *blueprint.ObjectDef) *Type {
	t := &Type{Name: def.Name, Kind: TypeKindObject, Description: def.Description}
	t.Interfaces = append(t.Interfaces, def.Interfaces...)
	sort.Strings(t.Interfaces)
	for _, f := range def.Fields {
		t.Fields = append(t.Fields, buildFieldFromBlueprint(f))
	}
	return t
}

func buildInterfaceFromBlueprint(def *blueprint.InterfaceDef) *Type {
	t := &Type{Name: def.Name, Kind: TypeKindInterface, Description: def.Description}
	t.Interfaces = append(t.Interfaces, def.Interfaces...)
	sort.Strings(t.Interfaces)
	for _, f := range def.Fields {
		t.Fields = append(t.Fields, buildFieldFromBlueprint(f))
	}
	return t
}

func buildUnionFromBlueprint(def *blueprint.UnionDef) *Type {
	t := &Type{Name: def.Name, Kind: TypeKindUnion, Description: def.Description}
	t.PossibleTypes = append(t.PossibleTypes, def.PossibleTypes...)
	sort.Strings(t.PossibleTypes)
	return t
}

func buildEnumFromBlueprint(def *blueprint.EnumDef) *Type {
	return &Type{Name: def.Name, Kind: TypeKindEnum, Description: def.Description, EnumValues: def.Values}
}

func buildInputFromBlueprint(def *blueprint.InputDef) *Type {
	return &Type{Name: def.Name, Kind: TypeKindInputObject, Description: def.Description, InputFields: def.Fields, OneOf: def.OneOf}
}

func buildFieldFromBlueprint(def blueprint.FieldDef) *Field {
	return &Field{
		Name:              def.Name,
		Description:       def.Description,
		Type:              def.Type,
		Arguments:         def.Args,
		Async:             def.Resolver != nil,
		IsDeprecated:      def.IsDeprecated,
		DeprecationReason: def.DeprecationReason,
	}
}

// sortedKeys returns m's keys in lexical order, so schema construction is
// deterministic regardless of Go's randomized map iteration.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
