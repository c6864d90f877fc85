package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// Hasher computes content hashes over the persistent AST (spec §4.C). It
// caches by Node pointer identity: since unchanged subtrees are shared by
// reference across versions (spec §4.B), a shared subtree's digest is
// computed at most once regardless of how many versions reference it.
type Hasher struct {
	reg   *symbol.Registry
	cache map[*ast.Node][32]byte
}

// New builds a Hasher resolving symbols against reg. Pass symbol.Global
// unless operating in a test-local registry.
func New(reg *symbol.Registry) *Hasher {
	return &Hasher{reg: reg, cache: make(map[*ast.Node][32]byte)}
}

// Hash computes n's content digest: a tag byte, n's kind-specific fields
// in the fixed order fields.go encodes, n's hashable annotations, and
// finally a count-prefixed list of each child's own digest (computed
// first, so hashing is bottom-up).
func (h *Hasher) Hash(n *ast.Node) ([32]byte, error) {
	if n == nil {
		return [32]byte{}, fmt.Errorf("hash: cannot hash a nil node")
	}
	if d, ok := h.cache[n]; ok {
		return d, nil
	}

	// A child slot can legitimately be empty (a Match arm's absent guard,
	// a Do expression statement's pattern position); those serialize as a
	// presence byte with no digest, per the optional-field rule.
	childHashes := make([][32]byte, len(n.Children()))
	for i, c := range n.Children() {
		if c == nil {
			continue
		}
		d, err := h.Hash(c)
		if err != nil {
			return [32]byte{}, fmt.Errorf("hash: child %d of %s: %w", i, n.Kind(), err)
		}
		childHashes[i] = d
	}

	w := NewWriter()
	w.WriteByte(n.Kind().TagByte())
	if err := encodeFields(w, h.reg, n); err != nil {
		return [32]byte{}, fmt.Errorf("hash: %s: %w", n.Kind(), err)
	}
	if err := writeHashableAnnotations(w, n.Annotations()); err != nil {
		return [32]byte{}, fmt.Errorf("hash: %s annotations: %w", n.Kind(), err)
	}
	w.WriteCount(len(childHashes))
	for i, c := range n.Children() {
		w.WritePresence(c != nil)
		if c != nil {
			w.WriteDigest(childHashes[i])
		}
	}

	sum := sha256.Sum256(w.Bytes())
	h.cache[n] = sum
	return sum, nil
}

// writeHashableAnnotations encodes the node's annotation map excluding
// volatile keys (spec §4.C: "node_id, span, and any annotation keys
// marked volatile... excluded").
func writeHashableAnnotations(w *Writer, a ast.Annotations) error {
	keys := a.HashableKeys()
	w.WriteCount(len(keys))
	for _, k := range keys {
		w.WriteText(k)
		v, _ := a.Get(k)
		w.WriteText(v.Text)
		w.WriteBool(v.Bool)
		w.WriteCount(len(v.Strings))
		for _, s := range v.Strings {
			w.WriteText(s)
		}
	}
	return nil
}

// DefinitionHash is the content hash of a top-level definition's root
// node (spec §4.C: "the hash of a top-level definition is the content
// hash of its root node").
func DefinitionHash(h *Hasher, def *ast.Node) (ast.Digest, error) {
	d, err := h.Hash(def)
	if err != nil {
		return ast.Digest{}, err
	}
	return ast.Digest(d), nil
}

// Short renders the first 8 hex characters of a digest (spec §4.C:
// "Short display hash: first 8 hex characters").
func Short(d [32]byte) string {
	return hex.EncodeToString(d[:])[:8]
}

// ShortDefinition is Short for an ast.Digest.
func ShortDefinition(d ast.Digest) string {
	return Short([32]byte(d))
}
