package index

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
)

// NodeSet is a node_id membership set, the common currency composite
// queries operate on (spec §4.D: "Composite queries are specified
// abstractly: And, Or, Filter(predicate), NodesInRange(start,end),
// ContainingNode(position)").
type NodeSet map[ast.NodeID]bool

func setOf(ids []ast.NodeID) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Slice returns s's members in no particular order.
func (s NodeSet) Slice() []ast.NodeID {
	out := make([]ast.NodeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// And returns the intersection of sets.
func And(sets ...NodeSet) NodeSet {
	if len(sets) == 0 {
		return NodeSet{}
	}
	out := make(NodeSet)
	for id := range sets[0] {
		inAll := true
		for _, s := range sets[1:] {
			if !s[id] {
				inAll = false
				break
			}
		}
		if inAll {
			out[id] = true
		}
	}
	return out
}

// Or returns the union of sets.
func Or(sets ...NodeSet) NodeSet {
	out := make(NodeSet)
	for _, s := range sets {
		for id := range s {
			out[id] = true
		}
	}
	return out
}

// Predicate is a single-node test a Filter query applies. The named
// predicates below implement the ones spec §4.D calls out by name
// ("has type info", "is pure", "has effect X", "matches pattern P");
// callers compose arbitrary ones too.
type Predicate func(idx *Indices, n *ast.Node) bool

// Filter returns the subset of candidates for which pred holds.
func Filter(idx *Indices, candidates NodeSet, pred Predicate) NodeSet {
	out := make(NodeSet)
	for id := range candidates {
		n, ok := idx.Node(id)
		if !ok {
			continue
		}
		if pred(idx, n) {
			out[id] = true
		}
	}
	return out
}

// HasTypeInfo is true for nodes the checker has already annotated.
func HasTypeInfo(idx *Indices, n *ast.Node) bool {
	return n.TypeInfo() != nil
}

// IsPure is true for ValueDef nodes syntactically declared pure.
func IsPure(idx *Indices, n *ast.Node) bool {
	p, ok := n.Payload().(ast.ValueDefPayload)
	return ok && p.Purity == ast.PurityPure
}

// HasEffect returns a Predicate true for nodes whose inferred effect row
// contains effect (requires HasTypeInfo to already hold for a meaningful
// answer — an untyped node never matches).
func HasEffect(effect string) Predicate {
	return func(idx *Indices, n *ast.Node) bool {
		scheme := n.TypeInfo()
		if scheme == nil || scheme.Type == nil || scheme.Type.Kind != types.KindFunc {
			return false
		}
		return scheme.Type.Eff.Contains(effect)
	}
}

// MatchesPattern returns a Predicate true for nodes matching template.
func MatchesPattern(template *Pattern) Predicate {
	return func(idx *Indices, n *ast.Node) bool {
		return Match(n, template)
	}
}

// ByKindSet is a NodeSet-returning convenience over Indices.ByKind.
func (idx *Indices) ByKindSet(k ast.Kind) NodeSet { return setOf(idx.ByKind(k)) }

// DefiningSet is a NodeSet-returning convenience over Indices.Defining.
func (idx *Indices) DefiningSet(sym symbol.ID) NodeSet { return setOf(idx.Defining(sym)) }

// ReferencingSet is a NodeSet-returning convenience over Indices.Referencing.
func (idx *Indices) ReferencingSet(sym symbol.ID) NodeSet { return setOf(idx.Referencing(sym)) }

// InRangeSet is a NodeSet-returning convenience over Indices.NodesInRange.
func (idx *Indices) InRangeSet(start, end int) NodeSet { return setOf(idx.NodesInRange(start, end)) }
