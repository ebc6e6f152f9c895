package dynval

import "strconv"

// Path is a sequence of selectors used to navigate a Value: each segment is
// either an object key or, when the segment parses as a non-negative integer, a
// list index.
type Path []string

// Select walks v following p. It never panics; a missing path returns
// (Null, false) — the caller decides whether that is a GraphQL null or a
// PathNotFound failure depending on the field's nullability.
func Select(v Value, p Path) (Value, bool) {
	cur := v
	for _, seg := range p {
		switch cur.kind {
		case KindObject:
			next, ok := cur.object[seg]
			if !ok {
				return Null, false
			}
			cur = next
		case KindArray:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.array) {
				return Null, false
			}
			cur = cur.array[idx]
		default:
			return Null, false
		}
	}
	return cur, true
}

// String renders the path back to its dotted form, e.g. "args.id".
func (p Path) String() string {
	s := ""
	for i, seg := range p {
		if i > 0 {
			s += "."
		}
		s += seg
	}
	return s
}

// SplitPath splits a dotted identifier ("args.id") into a Path. Empty
// segments (leading/trailing/duplicate dots) are dropped.
func SplitPath(dotted string) Path {
	var segs []string
	start := 0
	for i := 0; i <= len(dotted); i++ {
		if i == len(dotted) || dotted[i] == '.' {
			if i > start {
				segs = append(segs, dotted[start:i])
			}
			start = i + 1
		}
	}
	return Path(segs)
}
