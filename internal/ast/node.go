// Package ast implements the persistent, content-addressable AST (spec
// §3, §4.B). Nodes are immutable after creation; edits produce new nodes
// and a new spine to the root while unchanged sibling subtrees are shared
// by reference, never copied.
package ast

import (
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
)

// NodeID uniquely identifies a node within a single AST version. It is
// monotonically allocated by a Builder and is never reused within that
// version; across versions identity is carried by content hash, not
// NodeID (spec §3 invariant 3).
type NodeID uint64

// Visibility controls whether a definition is exported from its namespace.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "public"
	}
	return "private"
}

// Purity marks whether a ValueDef's body is declared free of effects at
// the syntactic level (the checker still verifies this).
type Purity uint8

const (
	PurityUnspecified Purity = iota
	PurityPure
	PurityImpure
)

// AnnotationValue is the structured value stored under an annotation key.
// Only Text, Bool and Strings are populated, depending on the key's
// convention — a handful of typed optional fields rather than a single
// `any`, so annotation values stay comparable and hashable.
type AnnotationValue struct {
	Text    string
	Bool    bool
	Strings []string
}

// Annotations is an ordered mapping from textual keys to structured
// values (spec §3: "an ordered mapping from textual keys to structured
// values (doc, visibility, purity, deprecation tags, etc.)"). Keys marked
// volatile (doc, author, timestamp, style) are excluded from the content hash.
type Annotations struct {
	keys   []string
	values map[string]AnnotationValue
}

// VolatileAnnotationKeys are excluded from hashing per spec §4.C.
var VolatileAnnotationKeys = map[string]bool{
	"doc":       true,
	"author":    true,
	"timestamp": true,
	// "style" is the parser's preferred-surface-style hint (spec §6):
	// preserved, never hashed.
	"style": true,
}

// NewAnnotations builds an empty ordered annotation map.
func NewAnnotations() Annotations {
	return Annotations{values: make(map[string]AnnotationValue)}
}

// With returns a copy of a with key set to value, preserving insertion
// order (first write wins the position; later writes to the same key
// update the value in place).
func (a Annotations) With(key string, value AnnotationValue) Annotations {
	out := Annotations{values: make(map[string]AnnotationValue, len(a.values)+1)}
	out.keys = append(out.keys, a.keys...)
	for k, v := range a.values {
		out.values[k] = v
	}
	if _, exists := out.values[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.values[key] = value
	return out
}

// Get returns the value stored under key.
func (a Annotations) Get(key string) (AnnotationValue, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns annotation keys in insertion order.
func (a Annotations) Keys() []string {
	return append([]string(nil), a.keys...)
}

// HashableKeys returns the insertion-ordered keys excluding volatile ones.
func (a Annotations) HashableKeys() []string {
	out := make([]string, 0, len(a.keys))
	for _, k := range a.keys {
		if !VolatileAnnotationKeys[k] {
			out = append(out, k)
		}
	}
	return out
}

// Node is a single element of the persistent AST. All fields are
// unexported and immutable once constructed; the only way to obtain a
// modified Node is through a Builder, which allocates a fresh NodeID and
// returns a new value. Node is value-typed and cheap to pass by value —
// its only owned allocation is the Children slice and Payload, both of
// which are shared, not duplicated, across versions.
type Node struct {
	id          NodeID
	kind        Kind
	span        diag.Span
	payload     Payload
	children    []*Node
	typeInfo    *types.Scheme // assigned by the checker; excluded from hash
	annotations Annotations
}

// ID returns the node's identity within its AST version.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's closed-set variant.
func (n *Node) Kind() Kind { return n.kind }

// Span returns the informational source range. Never hashed.
func (n *Node) Span() diag.Span { return n.span }

// Payload returns the kind-specific scalar fields attached to this node.
func (n *Node) Payload() Payload { return n.payload }

// Children returns the node's ordered, owned children. The returned slice
// must not be mutated by callers; use a Builder to produce a modified
// Node.
func (n *Node) Children() []*Node { return n.children }

// Child returns the child at index, or nil if out of range.
func (n *Node) Child(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// TypeInfo returns the scheme assigned by the checker, if any.
func (n *Node) TypeInfo() *types.Scheme { return n.typeInfo }

// Annotations returns the node's ordered annotation map.
func (n *Node) Annotations() Annotations { return n.annotations }

// WithTypeInfo returns a copy of n carrying the given scheme. This does
// not allocate a new NodeID or change the content hash — type_info is
// metadata assigned by the checker onto an existing structural node, not
// a structural edit (spec §3: "type_info: optional, assigned by E").
func (n *Node) WithTypeInfo(scheme *types.Scheme) *Node {
	cp := *n
	cp.typeInfo = scheme
	return &cp
}

// WithAnnotations returns a copy of n with its annotation map replaced.
func (n *Node) WithAnnotations(a Annotations) *Node {
	cp := *n
	cp.annotations = a
	return &cp
}

// Payload is implemented by every kind-specific scalar-field struct (see
// payload.go). Children are NOT part of Payload — they are the Node's own
// ordered slice — Payload carries only the leaf scalar fields the hash
// serializer needs in a fixed per-kind order (spec §4.C).
type Payload interface {
	payloadKind() Kind
}

// SymbolOf is a convenience: if n's payload exposes a primary defining or
// referencing symbol.ID, SymbolOf returns it.
func SymbolOf(n *Node) (symbol.ID, bool) {
	type namer interface{ DefSymbol() symbol.ID }
	if p, ok := n.payload.(namer); ok {
		return p.DefSymbol(), true
	}
	return 0, false
}
