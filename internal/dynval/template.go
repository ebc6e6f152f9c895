package dynval

import (
	"strings"
)

// Resolver resolves a dotted path against whatever evaluation context owns it.
// internal/evalctx.Context implements this; dynval stays independent of
// evalctx to avoid an import cycle.
type Resolver interface {
	ResolvePath(p Path) (Value, bool)
}

// Template is a precompiled Mustache template: literal text interspersed
// with "{{.path}}" holes. Compiling once at blueprint build time means
// Render never re-parses the source string.
type Template struct {
	source string
	parts  []part
}

type part struct {
	literal string // used when path == nil
	path    Path   // used when literal == ""
}

// Compile parses a Mustache template string into a Template. It never
// fails: a malformed "{{" with no matching "}}" is treated as literal text.
func Compile(source string) *Template {
	t := &Template{source: source}
	rest := source
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			if len(rest) > 0 {
				t.parts = append(t.parts, part{literal: rest})
			}
			break
		}
		if start > 0 {
			t.parts = append(t.parts, part{literal: rest[:start]})
		}
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end == -1 {
			// Unterminated hole: treat the rest as literal instead of failing.
			t.parts = append(t.parts, part{literal: "{{" + rest})
			break
		}
		expr := strings.TrimSpace(rest[:end])
		expr = strings.TrimPrefix(expr, ".")
		t.parts = append(t.parts, part{path: SplitPath(expr)})
		rest = rest[end+2:]
	}
	return t
}

// Source returns the original template text.
func (t *Template) Source() string { return t.source }

// IsStatic reports whether the template has no holes at all (a pure
// literal), letting callers skip rendering entirely.
func (t *Template) IsStatic() bool {
	for _, p := range t.parts {
		if p.path != nil {
			return false
		}
	}
	return true
}

// ReferencedPaths returns the full path of every hole in this template, in
// order and without removing duplicates, e.g. for "{{.value.id}}-{{.args.x}}" -> [["value","id"],["args","x"]].
func (t *Template) ReferencedPaths() []Path {
	var out []Path
	for _, p := range t.parts {
		if p.path != nil {
			out = append(out, p.path)
		}
	}
	return out
}

// Render substitutes every hole by resolving its path against r and
// returns the fully rendered string. A missing path renders as empty
// string when used inside a larger literal (matching common Mustache
// semantics); evaluator-level PathNotFound enforcement happens one layer
// up, against the Value tree, not inside string templates.
func (t *Template) Render(r Resolver) string {
	if len(t.parts) == 1 && t.parts[0].path == nil {
		return t.parts[0].literal
	}
	var b strings.Builder
	for _, p := range t.parts {
		if p.path == nil {
			b.WriteString(p.literal)
			continue
		}
		v, ok := r.ResolvePath(p.path)
		if !ok || v.IsNull() {
			continue
		}
		b.WriteString(valueToText(v))
	}
	return b.String()
}

// RenderValue behaves like Render for a pure single-hole template (e.g.
// "{{.value}}" with no surrounding literal) but preserves the resolved
// Value's shape (object/array/number) instead of stringifying it. This is
// what JSON-structured request bodies use: "{{.args.filter}}" should embed
// the filter object as JSON, not its text form.
func (t *Template) RenderValue(r Resolver) Value {
	if len(t.parts) == 1 && t.parts[0].path != nil {
		v, ok := r.ResolvePath(t.parts[0].path)
		if !ok {
			return Null
		}
		return v
	}
	return String(t.Render(r))
}

func valueToText(v Value) string {
	switch v.Kind() {
	case KindString:
		return v.StringVal()
	case KindNull:
		return ""
	default:
		return v.ToString()
	}
}
