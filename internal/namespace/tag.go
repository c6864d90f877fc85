package namespace

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/semver"
)

// UnknownTag is returned when a tag label has no recorded hash for path.
type UnknownTag struct {
	Path  string
	Label string
}

func (e *UnknownTag) Error() string {
	return fmt.Sprintf("namespace: %s has no tag %q", e.Path, e.Label)
}

// Tag labels the current head version of the definition at path with a
// SemVer label (spec §4.H: "definitions may be tagged with a SemVer
// label pointing at a specific committed hash"). Re-tagging an existing
// label is permitted — tags are mutable pointers, unlike the version
// history they point into, which is append-only.
func (s *Store) Tag(path Path, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	_, e, ok := s.lookup(path, false)
	if !ok || e.def == nil {
		return fmt.Errorf("namespace: tag: no definition at %s", pathStr)
	}
	head := e.def.Head()
	if head == nil {
		return fmt.Errorf("namespace: tag: %s has never been committed", pathStr)
	}
	if _, err := semver.Parse(label); err != nil {
		return fmt.Errorf("namespace: tag: %w", err)
	}

	labels := s.tags[pathStr]
	if labels == nil {
		labels = make(map[string]ast.Digest)
		s.tags[pathStr] = labels
	}
	labels[label] = head.Hash
	return nil
}

// TagImmutable is Tag, but refuses to move a label that already points
// at a different hash — for release tags a team wants pinned once made,
// as opposed to a floating development tag.
func (s *Store) TagImmutable(path Path, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	_, e, ok := s.lookup(path, false)
	if !ok || e.def == nil {
		return fmt.Errorf("namespace: tag: no definition at %s", pathStr)
	}
	head := e.def.Head()
	if head == nil {
		return fmt.Errorf("namespace: tag: %s has never been committed", pathStr)
	}
	if _, err := semver.Parse(label); err != nil {
		return fmt.Errorf("namespace: tag: %w", err)
	}

	labels := s.tags[pathStr]
	if labels == nil {
		labels = make(map[string]ast.Digest)
		s.tags[pathStr] = labels
	}
	if existing, ok := labels[label]; ok && existing != head.Hash {
		return fmt.Errorf("namespace: tag: %s@%s is immutable and already points at a different hash", pathStr, label)
	}
	labels[label] = head.Hash
	s.immutableTags[pathStr+"@"+label] = true
	return nil
}

// ResolveTag returns the hash label names for path, or UnknownTag.
func (s *Store) ResolveTag(path Path, label string) (ast.Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	labels := s.tags[pathStr]
	if labels == nil {
		return ast.Digest{}, &UnknownTag{Path: pathStr, Label: label}
	}
	h, ok := labels[label]
	if !ok {
		return ast.Digest{}, &UnknownTag{Path: pathStr, Label: label}
	}
	return h, nil
}

// Candidates builds the semver.Candidate list for path's tagged versions,
// for use with semver.Resolve (the Version Resolver, spec §4.H).
func (s *Store) Candidates(path Path) ([]semver.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	_, e, ok := s.lookup(path, false)
	if !ok || e.def == nil {
		return nil, fmt.Errorf("namespace: no definition at %s", pathStr)
	}
	byHash := make(map[ast.Digest]*Version, len(e.def.History))
	for _, v := range e.def.History {
		byHash[v.Hash] = v
	}

	var out []semver.Candidate
	for label, h := range s.tags[pathStr] {
		v, ok := byHash[h]
		if !ok {
			continue
		}
		ver, err := semver.Parse(label)
		if err != nil {
			continue // non-semver labels (if any slip in) are not resolution candidates
		}
		out = append(out, semver.Candidate{Version: ver, Hash: h, Timestamp: v.Timestamp})
	}
	return out, nil
}

// TagsOf returns a copy of every label -> hash mapping recorded for
// path, for callers (internal/namespace/storage) that need to persist
// the whole tag table rather than resolve one label at a time.
func (s *Store) TagsOf(path Path) map[string]ast.Digest {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	out := make(map[string]ast.Digest, len(s.tags[pathStr]))
	for label, h := range s.tags[pathStr] {
		out[label] = h
	}
	return out
}

// IsImmutableTag reports whether path@label was set via TagImmutable.
func (s *Store) IsImmutableTag(path Path, label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.immutableTags[path.String(s.reg)+"@"+label]
}

// RestoreTag sets path@label to point directly at hash, bypassing the
// current-head requirement Tag/TagImmutable enforce — used only by
// internal/namespace/storage.Load to replay a tag exactly as persisted,
// since a tag recorded before later commits legitimately points at a
// hash that is no longer the definition's head.
func (s *Store) RestoreTag(path Path, label string, h ast.Digest, immutable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathStr := path.String(s.reg)
	labels := s.tags[pathStr]
	if labels == nil {
		labels = make(map[string]ast.Digest)
		s.tags[pathStr] = labels
	}
	labels[label] = h
	if immutable {
		s.immutableTags[pathStr+"@"+label] = true
	}
}
