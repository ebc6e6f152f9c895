package dynval

// Render walks v recursively, replacing every Mustache leaf with the value
// produced by resolving its template against r, and returns a value tree with
// no template holes remaining. Render is pure given r.
func Render(v Value, r Resolver) Value {
	switch v.kind {
	case KindMustache:
		if v.template == nil {
			return Null
		}
		return v.template.RenderValue(r)
	case KindArray:
		out := make([]Value, len(v.array))
		for i, item := range v.array {
			out[i] = Render(item, r)
		}
		return Array(out...)
	case KindObject:
		out := make(map[string]Value, len(v.object))
		for k, item := range v.object {
			out[k] = Render(item, r)
		}
		return Object(out)
	default:
		return v
	}
}
