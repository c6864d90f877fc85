package namespace

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// AutoCommit records a new Version for the definition at path if root's
// content hash differs from the current head (spec §4.G: "a definition
// is auto-committed whenever the editor's commit changes its content
// hash; an edit that round-trips back to the prior content produces no
// new version"). author/message are attributed to the caller, not
// inferred. Returns the committed (or unchanged) Version and whether a
// new one was actually appended.
func (s *Store) AutoCommit(path Path, root *ast.Node, author, message string) (*Version, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := hash.DefinitionHash(s.hasher, root)
	if err != nil {
		return nil, false, fmt.Errorf("namespace: commit %s: %w", path.String(s.reg), err)
	}

	_, e, _ := s.lookup(path, true)
	if e.def == nil {
		if e.ns != nil {
			return nil, false, fmt.Errorf("namespace: commit: path collides with an existing namespace")
		}
		e.def = &Definition{Path: append(Path(nil), path...), Name: path[len(path)-1]}
	}
	def := e.def

	if head := def.Head(); head != nil && head.Hash == h {
		return head, false, nil
	}

	s.idx.ReindexSubtree(nil, root, 0)
	s.idx.BuildDependency(h, root, s.resolveLocked)

	v := &Version{
		Hash:      h,
		Timestamp: s.now(),
		Author:    author,
		Message:   message,
		AST:       root,
		Deps:      depsSet(s.idx.DependenciesOf(h)),
	}
	def.History = append(def.History, v)
	s.byHash[h] = def
	return v, true, nil
}

// AutoCommitFrom is AutoCommit for a session that began editing at a
// known base version of path. If the head moved past base while the
// session worked (a concurrent session committed first), the commit
// still lands — last writer wins at the namespace level, and both
// versions stay in history, so nothing is lost — but the caller receives
// a WriteConflict diagnostic naming the version it raced with, to
// surface rather than swallow (spec §5's cross-session ordering rule).
func (s *Store) AutoCommitFrom(path Path, base ast.Digest, root *ast.Node, author, message string) (*Version, bool, []diag.Diagnostic, error) {
	var conflicts []diag.Diagnostic
	s.mu.Lock()
	if _, e, ok := s.lookup(path, false); ok && e.def != nil {
		if head := e.def.Head(); head != nil && head.Hash != base {
			conflicts = append(conflicts, diag.Warn(diag.KindWriteConflict, diag.Span{},
				"%s moved from %s to %s while this session edited it; committing over the newer head, both versions retained",
				path.String(s.reg), hash.ShortDefinition(base), hash.ShortDefinition(head.Hash)))
		}
	}
	s.mu.Unlock()

	v, committed, err := s.AutoCommit(path, root, author, message)
	return v, committed, conflicts, err
}

// CommitMutualGroup commits a set of mutually-recursive definitions
// together so each member's Dependency Index edges include the others
// even though none of them can be hashed in isolation without first
// knowing the others' hashes. Content hashing for a genuinely cyclic
// group has no well-defined fixed point over the plain hash function (a
// reference's hash-anchored payload would need the very hash being
// computed), so group members must reference each other symbolically
// within the group; CommitMutualGroup commits every member's current
// content hash independently (each hashes cleanly since the cross-edges
// are symbolic, not hash-anchored) and then links the Dependency Index
// edges between them as a second pass, rather than attempting an
// iterate-to-a-fixed-point hash scheme spec §4.C does not define.
func (s *Store) CommitMutualGroup(members []struct {
	Path Path
	Root *ast.Node
}, author, message string) ([]*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := make([]ast.Digest, len(members))
	for i, m := range members {
		h, err := hash.DefinitionHash(s.hasher, m.Root)
		if err != nil {
			return nil, fmt.Errorf("namespace: commit mutual group: member %d: %w", i, err)
		}
		hashes[i] = h
	}

	versions := make([]*Version, len(members))
	for i, m := range members {
		_, e, _ := s.lookup(m.Path, true)
		if e.def == nil {
			e.def = &Definition{Path: append(Path(nil), m.Path...), Name: m.Path[len(m.Path)-1]}
		}
		def := e.def

		if head := def.Head(); head != nil && head.Hash == hashes[i] {
			versions[i] = head
			continue
		}

		s.idx.ReindexSubtree(nil, m.Root, 0)
		v := &Version{Hash: hashes[i], Timestamp: s.now(), Author: author, Message: message, AST: m.Root}
		def.History = append(def.History, v)
		s.byHash[hashes[i]] = def
		versions[i] = v
	}

	// Second pass: now that every member's hash is known, resolve each
	// member's symbolic references (including ones pointing at other
	// group members) into Dependency Index edges.
	for i, m := range members {
		s.idx.BuildDependency(hashes[i], m.Root, s.resolveLocked)
		versions[i].Deps = depsSet(s.idx.DependenciesOf(hashes[i]))
	}
	return versions, nil
}

// resolveLocked implements index.SymbolResolver against the store's own
// definition tree: a symbolic reference resolves to the content hash of
// the referenced definition's current head, or ok=false if unresolvable
// (spec §4.D: "a resolver that cannot resolve a name returns ok=false").
// Caller must hold s.mu.
func (s *Store) resolveLocked(qualified []symbol.ID, name symbol.ID) (ast.Digest, bool) {
	full := append(append(Path(nil), qualified...), name)
	_, e, ok := s.lookup(full, false)
	if !ok || e.def == nil {
		return ast.Digest{}, false
	}
	head := e.def.Head()
	if head == nil {
		return ast.Digest{}, false
	}
	return head.Hash, true
}

func depsSet(hs []ast.Digest) map[ast.Digest]bool {
	if len(hs) == 0 {
		return nil
	}
	out := make(map[ast.Digest]bool, len(hs))
	for _, h := range hs {
		out[h] = true
	}
	return out
}
