// Package index implements the five cooperating indices the editor keeps
// over a codebase's persistent AST (spec §4.D): Type, Symbol, Position,
// Dependency and Hierarchy. None of them are authoritative — they are
// derived, rebuildable projections over the AST, kept in sync
// incrementally as the editor replaces subtrees.
package index

import (
	"context"
	"sort"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// SymbolEntry records every node that binds or references a given symbol.
type SymbolEntry struct {
	Defining    []ast.NodeID
	Referencing []ast.NodeID
}

// span pairs an indexed node with the byte range the parser recorded for
// it, sorted by Start for the Position Index's binary search.
type span struct {
	start, end int
	id         ast.NodeID
}

// Indices bundles all five index structures plus the node_id -> *Node
// lookup table every one of them is built against. The zero value is not
// usable; construct with Build.
type Indices struct {
	nodes map[ast.NodeID]*ast.Node

	typeIndex   map[ast.Kind]map[ast.NodeID]bool
	symbolIndex map[symbol.ID]*SymbolEntry
	spans       []span // sorted by start, rebuilt wholesale by Build/reindexSubtree
	hierarchy   map[ast.NodeID]ast.NodeID
	dependency  map[ast.Digest]map[ast.Digest]bool
}

// SymbolResolver maps a (possibly qualified) symbolic reference to the
// definition hash it resolves to, letting BuildDependency fold
// ReferenceSymbolicPayload edges into the same map as
// ReferenceHashAnchoredPayload ones. A resolver that cannot resolve a
// name returns ok=false and the reference is simply omitted — the
// Dependency Index only ever records edges it can name with certainty.
type SymbolResolver func(qualified []symbol.ID, name symbol.ID) (ast.Digest, bool)

// New builds an empty Indices. Populate with Build or the incremental
// Reindex* methods.
func New() *Indices {
	return &Indices{
		nodes:       make(map[ast.NodeID]*ast.Node),
		typeIndex:   make(map[ast.Kind]map[ast.NodeID]bool),
		symbolIndex: make(map[symbol.ID]*SymbolEntry),
		hierarchy:   make(map[ast.NodeID]ast.NodeID),
		dependency:  make(map[ast.Digest]map[ast.Digest]bool),
	}
}

// Build performs a full rebuild of the Type, Symbol, Position and
// Hierarchy indices from root (spec §4.D's Editor-maintained indices,
// here exposed as a pure function of a tree so the editor can call it
// once per commit or incrementally via ReindexSubtree). The Dependency
// Index is built separately via BuildDependency, one call per top-level
// definition, since it operates at definition granularity, not node
// granularity.
func Build(root *ast.Node) *Indices {
	idx := New()
	idx.indexSubtree(root, 0, true)
	idx.sortSpans()
	return idx
}

// ReindexSubtree removes every entry rooted at (and including) old —
// looked up by walking old itself, since Indices never stores a reverse
// "which subtree is this node part of" pointer — and re-adds entries for
// replacement, re-parented under parent (0 if replacement is a new
// root). This is the editor's incremental-update primitive: a single
// subtree replacement costs O(size of the changed subtrees), not O(size
// of the whole tree).
func (idx *Indices) ReindexSubtree(old, replacement *ast.Node, parent ast.NodeID) {
	if old != nil {
		idx.removeSubtree(old)
	}
	if replacement != nil {
		idx.indexSubtree(replacement, parent, parent == 0)
	}
	idx.sortSpans()
}

func (idx *Indices) indexSubtree(n *ast.Node, parent ast.NodeID, isRoot bool) {
	if n == nil {
		return
	}
	idx.nodes[n.ID()] = n
	if !isRoot {
		idx.hierarchy[n.ID()] = parent
	}

	if idx.typeIndex[n.Kind()] == nil {
		idx.typeIndex[n.Kind()] = make(map[ast.NodeID]bool)
	}
	idx.typeIndex[n.Kind()][n.ID()] = true

	s := n.Span()
	idx.spans = append(idx.spans, span{start: s.Start, end: s.End, id: n.ID()})

	if sym, ok := ast.SymbolOf(n); ok {
		e := idx.entryFor(sym)
		e.Defining = append(e.Defining, n.ID())
	}
	if ref, ok := n.Payload().(ast.ReferenceSymbolicPayload); ok {
		e := idx.entryFor(ref.Name)
		e.Referencing = append(e.Referencing, n.ID())
	}

	for _, c := range n.Children() {
		idx.indexSubtree(c, n.ID(), false)
	}
}

func (idx *Indices) removeSubtree(n *ast.Node) {
	if n == nil {
		return
	}
	delete(idx.nodes, n.ID())
	delete(idx.hierarchy, n.ID())
	if set := idx.typeIndex[n.Kind()]; set != nil {
		delete(set, n.ID())
	}
	filtered := idx.spans[:0]
	for _, s := range idx.spans {
		if s.id != n.ID() {
			filtered = append(filtered, s)
		}
	}
	idx.spans = filtered

	if sym, ok := ast.SymbolOf(n); ok {
		if e := idx.symbolIndex[sym]; e != nil {
			e.Defining = removeID(e.Defining, n.ID())
		}
	}
	if ref, ok := n.Payload().(ast.ReferenceSymbolicPayload); ok {
		if e := idx.symbolIndex[ref.Name]; e != nil {
			e.Referencing = removeID(e.Referencing, n.ID())
		}
	}

	for _, c := range n.Children() {
		idx.removeSubtree(c)
	}
}

func removeID(ids []ast.NodeID, target ast.NodeID) []ast.NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func (idx *Indices) entryFor(sym symbol.ID) *SymbolEntry {
	e, ok := idx.symbolIndex[sym]
	if !ok {
		e = &SymbolEntry{}
		idx.symbolIndex[sym] = e
	}
	return e
}

func (idx *Indices) sortSpans() {
	sort.Slice(idx.spans, func(i, j int) bool { return idx.spans[i].start < idx.spans[j].start })
}

// Node looks up a node by its id within this version.
func (idx *Indices) Node(id ast.NodeID) (*ast.Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// ByKind returns every node_id of the given kind (spec §4.D Type Index).
func (idx *Indices) ByKind(k ast.Kind) []ast.NodeID {
	set := idx.typeIndex[k]
	out := make([]ast.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Defining returns the node_ids that bind sym (spec §4.D Symbol Index).
func (idx *Indices) Defining(sym symbol.ID) []ast.NodeID {
	if e := idx.symbolIndex[sym]; e != nil {
		return append([]ast.NodeID(nil), e.Defining...)
	}
	return nil
}

// Referencing returns the node_ids that reference sym.
func (idx *Indices) Referencing(sym symbol.ID) []ast.NodeID {
	if e := idx.symbolIndex[sym]; e != nil {
		return append([]ast.NodeID(nil), e.Referencing...)
	}
	return nil
}

// ParentOf answers spec §4.B's parent_of(node_in_version) from the
// Hierarchy Index side table, never from a pointer stored on Node.
func (idx *Indices) ParentOf(id ast.NodeID) (ast.NodeID, bool) {
	p, ok := idx.hierarchy[id]
	return p, ok
}

// ContainingNode returns the innermost indexed node whose span contains
// position (spec §4.D Position Index). Candidates are narrowed with a
// binary search on start offset, then scanned for the smallest
// containing span — a simplified stand-in for a full interval tree that
// is sufficient at the per-file scale this index operates over.
func (idx *Indices) ContainingNode(position int) (ast.NodeID, bool) {
	i := sort.Search(len(idx.spans), func(i int) bool { return idx.spans[i].start > position })
	var best span
	found := false
	for j := 0; j < i; j++ {
		s := idx.spans[j]
		if s.start <= position && position <= s.end {
			if !found || (s.end-s.start) < (best.end-best.start) {
				best = s
				found = true
			}
		}
	}
	if !found {
		return 0, false
	}
	return best.id, true
}

// NodesInRange returns every indexed node whose span lies fully within
// [start, end].
func (idx *Indices) NodesInRange(start, end int) []ast.NodeID {
	var out []ast.NodeID
	lo := sort.Search(len(idx.spans), func(i int) bool { return idx.spans[i].start >= start })
	for i := lo; i < len(idx.spans); i++ {
		s := idx.spans[i]
		if s.start > end {
			break
		}
		if s.end <= end {
			out = append(out, s.id)
		}
	}
	return out
}

// BuildDependency derives the Dependency Index edges for a single
// top-level definition: defHash -> the set of definition hashes it
// directly references, via ReferenceHashAnchoredPayload nodes in its
// subtree and via resolve(...) for ReferenceSymbolicPayload ones (spec
// §4.D: "definition_hash -> set of referenced definition_hashes").
func (idx *Indices) BuildDependency(defHash ast.Digest, def *ast.Node, resolve SymbolResolver) {
	set := idx.dependency[defHash]
	if set == nil {
		set = make(map[ast.Digest]bool)
		idx.dependency[defHash] = set
	}
	for n := range ast.Preorder(def) {
		switch p := n.Payload().(type) {
		case ast.ReferenceHashAnchoredPayload:
			set[p.Hash] = true
		case ast.ReferenceSymbolicPayload:
			if resolve == nil {
				continue
			}
			if h, ok := resolve(p.Qualified, p.Name); ok {
				set[h] = true
			}
		}
	}
}

// DependenciesOf returns the definition hashes defHash directly depends on.
func (idx *Indices) DependenciesOf(defHash ast.Digest) []ast.Digest {
	set := idx.dependency[defHash]
	out := make([]ast.Digest, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	return out
}

// TransitiveDependents computes the reverse dependency closure of target:
// every definition hash that depends on target, directly or indirectly
// (spec §4.D query: "transitive dependents (reverse dependency
// closure)"). This is also the primitive the Namespace Store's
// CyclicDependents and AffectedDependent build on.
func (idx *Indices) TransitiveDependents(target ast.Digest) []ast.Digest {
	out, _ := idx.TransitiveDependentsContext(context.Background(), target)
	return out
}

// TransitiveDependentsContext is TransitiveDependents with cooperative
// cancellation: over a large dependency graph the walk checks ctx
// between nodes and abandons the closure with an OperationCancelled
// error, leaving no index state behind to clean up (the walk only
// reads). Results accumulated before the cancel are discarded — a
// partial closure is indistinguishable from a complete one to callers.
func (idx *Indices) TransitiveDependentsContext(ctx context.Context, target ast.Digest) ([]ast.Digest, error) {
	reverse := make(map[ast.Digest][]ast.Digest)
	for def, deps := range idx.dependency {
		for dep := range deps {
			reverse[dep] = append(reverse[dep], def)
		}
	}

	seen := map[ast.Digest]bool{target: true}
	queue := append([]ast.Digest{}, reverse[target]...)
	var out []ast.Digest
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, diag.New(diag.KindOperationCancelled, diag.Span{}, "transitive dependents query cancelled: %v", err)
		}
		h := queue[0]
		queue = queue[1:]
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
		queue = append(queue, reverse[h]...)
	}
	return out, nil
}
