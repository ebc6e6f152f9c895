package ir

import "time"

// Modify applies f to every node of root in post-order (children before
// parents), rebuilding the tree bottom-up so parent nodes see already rewritten
// children, so structural transforms compose by bottom-up rewrite. Modify(root,
// identity) returns a tree equal to root.
func Modify(root Node, f func(Node) Node) Node {
	children := root.Children()
	if len(children) > 0 {
		rewritten := make([]Node, len(children))
		for i, c := range children {
			rewritten[i] = Modify(c, f)
		}
		root = root.WithChildren(rewritten)
	}
	return f(root)
}

// CacheWrap rewrites every IO leaf reachable from root into a Cache node with
// the given TTL, leaving every other node shape untouched: every IO reachable
// from node becomes Cache{max_age, io}, recursively, without touching non-IO
// nodes. An IO already inside a Cache is left alone: wrapping is idempotent and
// never nests Cache nodes.
func CacheWrap(maxAge time.Duration, root Node) Node {
	return Modify(root, func(n Node) Node {
		io, ok := n.(IO)
		if !ok {
			return n
		}
		return Cache{MaxAge: maxAge, IO: io}
	})
}

// CountIO returns the number of IO leaves reachable from root, counting
// IO nodes nested inside a Cache wrapper. Used by tests to assert that
// CacheWrap preserves the IO-leaf set.
func CountIO(root Node) int {
	count := 0
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case IO:
			count++
		case Cache:
			count++
		default:
			for _, c := range n.Children() {
				walk(c)
			}
		}
	}
	walk(root)
	return count
}
