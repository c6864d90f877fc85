package namespace

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/semver"
)

// OutdatedRef reports one definition whose recorded dependency hash no
// longer matches the depended-on definition's current head.
type OutdatedRef struct {
	Dependent    *Definition
	DependencyOn *Definition
	RecordedHash ast.Digest
	CurrentHash  ast.Digest
}

// OutdatedReport scans every definition's most recent version for
// recorded dependency hashes that no longer match the current head of
// the definition they point at (spec §4.G: "report definitions whose
// recorded dependency hash is no longer the head of the thing they
// depend on"). It does not rewrite anything — see semantic.Rename and
// Open Question 3 for why the store only ever reports staleness.
func (s *Store) OutdatedReport() []OutdatedRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []OutdatedRef
	var walk func(*Namespace)
	walk = func(ns *Namespace) {
		for _, e := range ns.children {
			if e.def != nil {
				head := e.def.Head()
				if head != nil {
					for depHash := range head.Deps {
						dep, ok := s.byHash[depHash]
						if !ok {
							continue
						}
						depHead := dep.Head()
						if depHead != nil && depHead.Hash != depHash {
							out = append(out, OutdatedRef{
								Dependent:    e.def,
								DependencyOn: dep,
								RecordedHash: depHash,
								CurrentHash:  depHead.Hash,
							})
						}
					}
				}
			}
			if e.ns != nil {
				walk(e.ns)
			}
		}
	}
	walk(s.root)
	return out
}

// ResolveLatest resolves path's tag candidates against constraint and
// returns the hash of the satisfying version (spec §4.H): a thin
// convenience wrapper composing Store.Candidates with semver.Resolve.
func (s *Store) ResolveLatest(path Path, constraint semver.Constraint) (semver.Candidate, error) {
	candidates, err := s.Candidates(path)
	if err != nil {
		return semver.Candidate{}, err
	}
	return semver.Resolve(path.String(s.Registry()), constraint, candidates)
}
