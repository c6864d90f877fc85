// Package namespace implements the Namespace Store (spec §4.G): a
// path-addressed tree of definitions, each an append-only history of
// content-hashed Versions, auto-committed whenever an editor commit
// changes a definition's content hash.
package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/index"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// Path addresses a definition by its dotted sequence of namespace
// segments (spec glossary: "a definition is addressed by a dotted path
// through nested namespaces, e.g. List.map").
type Path []symbol.ID

// String renders p using reg to resolve each segment's name.
func (p Path) String(reg *symbol.Registry) string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = reg.MustName(id)
	}
	return strings.Join(parts, ".")
}

// ParsePath interns each dot-separated segment of s against reg.
func ParsePath(reg *symbol.Registry, s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("namespace: empty path")
	}
	segments := strings.Split(s, ".")
	out := make(Path, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("namespace: path %q has an empty segment", s)
		}
		out[i] = reg.Intern(seg)
	}
	return out, nil
}

// Version is one committed revision of a definition (spec §4.G: "each
// definition carries an append-only history of Versions"). Hash is the
// content hash of AST's root node at commit time; Deps is the set of
// definition hashes AST directly references, captured at commit time so
// later OutdatedReport queries don't need to re-walk the tree.
type Version struct {
	Hash      ast.Digest
	Timestamp time.Time
	Author    string
	Message   string
	AST       *ast.Node
	Deps      map[ast.Digest]bool
}

// Definition is a named, versioned entry in the namespace tree.
type Definition struct {
	Path    Path
	Name    symbol.ID
	History []*Version // append-only; last element is the current head
}

// Head returns d's current version, or nil if d has never been committed.
func (d *Definition) Head() *Version {
	if len(d.History) == 0 {
		return nil
	}
	return d.History[len(d.History)-1]
}

// VersionByHash finds the History entry whose content hash is h, for
// callers (e.g. `version check`) that resolved a tag or short hash to a
// digest and need the full Version it names.
func (d *Definition) VersionByHash(h ast.Digest) (*Version, bool) {
	for _, v := range d.History {
		if v.Hash == h {
			return v, true
		}
	}
	return nil, false
}

// entry is either a *Definition (leaf) or a *Namespace (nested scope).
type entry struct {
	def *Definition
	ns  *Namespace
}

// Namespace is a node of the path tree: a named scope containing child
// definitions and/or nested namespaces (spec §4.G: "namespaces nest").
type Namespace struct {
	children map[symbol.ID]*entry
}

func newNamespaceNode() *Namespace {
	return &Namespace{children: make(map[symbol.ID]*entry)}
}

// Store is the root of the namespace tree plus the machinery needed to
// commit, tag, and query it: a symbol registry for path resolution, a
// content hasher, a dependency index kept in sync with every committed
// definition, and a version-tag table (spec §4.H: tags name a
// Definition's specific Version by SemVer label).
type Store struct {
	mu     sync.Mutex
	root   *Namespace
	reg    *symbol.Registry
	hasher *hash.Hasher
	idx    *index.Indices
	now    func() time.Time

	byHash        map[ast.Digest]*Definition       // every committed hash, for reverse lookup
	tags          map[string]map[string]ast.Digest // path string -> tag label -> hash
	immutableTags map[string]bool                  // "path@label" -> true once TagImmutable has set it
}

// New builds an empty Store. reg and hasher must resolve against the
// same symbol registry the AST being committed was built with.
func New(reg *symbol.Registry, hasher *hash.Hasher) *Store {
	return &Store{
		root:   newNamespaceNode(),
		reg:    reg,
		hasher: hasher,
		idx:    index.New(),
		now:    time.Now,
		byHash:        make(map[ast.Digest]*Definition),
		tags:          make(map[string]map[string]ast.Digest),
		immutableTags: make(map[string]bool),
	}
}

// Indices exposes the Store's dependency index, e.g. for wiring a
// Checker's ResolveHash/ResolveSymbolic hooks or for CyclicDependents.
func (s *Store) Indices() *index.Indices { return s.idx }

// Registry returns the symbol registry paths are resolved against.
func (s *Store) Registry() *symbol.Registry { return s.reg }

// lookup finds the entry at path, creating intermediate Namespace nodes
// when create is true.
func (s *Store) lookup(path Path, create bool) (*Namespace, *entry, bool) {
	cur := s.root
	for i, seg := range path {
		last := i == len(path)-1
		e, ok := cur.children[seg]
		if !ok {
			if !create {
				return nil, nil, false
			}
			e = &entry{}
			cur.children[seg] = e
		}
		if last {
			return cur, e, true
		}
		if e.ns == nil {
			if e.def != nil {
				return nil, nil, false // path segment collides with an existing definition
			}
			if !create {
				return nil, nil, false
			}
			e.ns = newNamespaceNode()
		}
		cur = e.ns
	}
	return nil, nil, false // empty path
}

// Definition looks up an existing definition by path.
func (s *Store) Definition(path Path) (*Definition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, e, ok := s.lookup(path, false)
	if !ok || e.def == nil {
		return nil, false
	}
	return e.def, true
}

// Child is one named entry directly under a namespace path, as returned
// by Children — either a leaf Definition or a nested Namespace, never
// both (spec §3 "Namespace": "a recursive mapping from name to
// (Definition | Namespace)").
type Child struct {
	Name        string
	IsNamespace bool
}

// Children lists the immediate children of the namespace at path (spec
// §6 "namespace show <path> — list children"). An empty path lists the
// store's root. Returns ok=false if path addresses neither a namespace
// nor a definition.
func (s *Store) Children(path Path) ([]Child, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.root
	if len(path) > 0 {
		_, e, ok := s.lookup(path, false)
		if !ok || e.ns == nil {
			return nil, false
		}
		ns = e.ns
	}

	out := make([]Child, 0, len(ns.children))
	for id, e := range ns.children {
		out = append(out, Child{Name: s.reg.MustName(id), IsNamespace: e.ns != nil})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, true
}

// ByHash looks up the definition owning hash, for reverse lookups from a
// Dependency Index edge back to the definition it names.
func (s *Store) ByHash(h ast.Digest) (*Definition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byHash[h]
	return d, ok
}

// All returns every definition currently in the store, in no particular
// order, for callers that need to enumerate the whole tree (export,
// outdated-reference scans).
func (s *Store) All() []*Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Definition
	var walk func(*Namespace)
	walk = func(ns *Namespace) {
		for _, e := range ns.children {
			if e.def != nil {
				out = append(out, e.def)
			}
			if e.ns != nil {
				walk(e.ns)
			}
		}
	}
	walk(s.root)
	return out
}
