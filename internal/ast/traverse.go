package ast

import "iter"

// Preorder returns a lazy pre-order sequence over n and its descendants.
// Consumers can break out of a range loop without the remainder of the
// tree ever being visited (spec §4.B: "traverse_preorder(node) -> lazy
// sequence of Node").
func Preorder(n *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(*Node) bool
		walk = func(cur *Node) bool {
			if cur == nil {
				return true
			}
			if !yield(cur) {
				return false
			}
			for _, c := range cur.children {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// PreorderSlice eagerly collects Preorder into a slice. Prefer Preorder
// in hot paths; this exists for call sites (tests, small trees) where a
// slice is more convenient than an iterator.
func PreorderSlice(n *Node) []*Node {
	var out []*Node
	for cur := range Preorder(n) {
		out = append(out, cur)
	}
	return out
}

// Find returns the first node in pre-order for which pred returns true.
func Find(n *Node, pred func(*Node) bool) (*Node, bool) {
	for cur := range Preorder(n) {
		if pred(cur) {
			return cur, true
		}
	}
	return nil, false
}
