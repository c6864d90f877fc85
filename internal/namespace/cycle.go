package namespace

import "github.com/ribbonlang/ribbon/internal/ast"

// CyclicDependents reports every definition reachable from target's own
// transitive dependents that is also one of target's transitive
// dependencies — i.e. target participates in a dependency cycle with it
// (spec §4.G: "mutual recursion and cyclic references must be
// detectable, not merely tolerated"). An empty result means target's
// dependency graph, as currently recorded, is acyclic.
func (s *Store) CyclicDependents(target ast.Digest) []ast.Digest {
	s.mu.Lock()
	defer s.mu.Unlock()

	dependents := s.idx.TransitiveDependents(target)

	// Expand target's own transitive dependency set by walking
	// DependenciesOf to a fixed point, since index.Indices exposes only
	// the reverse closure (TransitiveDependents), not a forward one.
	frontier := append([]ast.Digest{}, s.idx.DependenciesOf(target)...)
	seen := map[ast.Digest]bool{}
	for len(frontier) > 0 {
		h := frontier[0]
		frontier = frontier[1:]
		if seen[h] {
			continue
		}
		seen[h] = true
		frontier = append(frontier, s.idx.DependenciesOf(h)...)
	}

	dependentSet := make(map[ast.Digest]bool, len(dependents))
	for _, d := range dependents {
		dependentSet[d] = true
	}

	var out []ast.Digest
	for h := range seen {
		if dependentSet[h] {
			out = append(out, h)
		}
	}
	return out
}

// AffectedDependent marks every transitive dependent of target as
// affected without rewriting any of them (spec §12 supplement / Open
// Question 3: Rename and other semantic edits never silently rewrite a
// reverse dependent; the store only ever reports who needs attention).
// The caller (typically cmd/ribbon) is responsible for surfacing this to
// an author to review and, if needed, re-commit.
func (s *Store) AffectedDependent(target ast.Digest) []*Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Definition
	for _, h := range s.idx.TransitiveDependents(target) {
		if d, ok := s.byHash[h]; ok {
			out = append(out, d)
		}
	}
	return out
}
