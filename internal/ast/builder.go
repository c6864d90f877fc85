package ast

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/diag"
)

// Builder allocates NodeIDs for a single AST version. NodeIDs are
// monotonically increasing and never reused within that version (spec
// §3 invariant 3); a fresh Builder is created per version so two
// concurrently edited versions never collide on NodeID even though both
// may share unchanged subtrees by pointer.
type Builder struct {
	next NodeID
}

// NewBuilder starts a NodeID allocator at 1 (0 is reserved to mean "no
// node" the same way symbol.ID 0 means "no symbol").
func NewBuilder() *Builder {
	return &Builder{next: 1}
}

func (b *Builder) alloc() NodeID {
	id := b.next
	b.next++
	return id
}

// Build allocates a fresh node_id and returns a new Node of the given
// kind, span and payload, wrapping children in order. It is the
// constructor for brand-new nodes; the edit methods (ReplaceChild,
// InsertChild, DeleteChild, MoveChild, WithPayload) instead copy an
// existing node's kind, span, payload, type info and annotations into a
// new Node with a fresh NodeID.
func (b *Builder) Build(span diag.Span, kind Kind, payload Payload, children ...*Node) *Node {
	if payload != nil && payload.payloadKind() != kind {
		panic(fmt.Sprintf("ast: payload kind %s does not match node kind %s", payload.payloadKind(), kind))
	}
	kids := make([]*Node, len(children))
	copy(kids, children)
	return &Node{
		id:          b.alloc(),
		kind:        kind,
		span:        span,
		payload:     payload,
		children:    kids,
		annotations: NewAnnotations(),
	}
}

// ReplaceChild returns a new node that shares all other children with n
// by reference, with index replaced by newChild. n itself is untouched
// (it remains valid and reachable from any older version that still
// references it) — only the new node receives a fresh NodeID.
func (b *Builder) ReplaceChild(n *Node, index int, newChild *Node) (*Node, error) {
	if index < 0 || index >= len(n.children) {
		return nil, fmt.Errorf("ast: replace_child: index %d out of range [0,%d)", index, len(n.children))
	}
	kids := make([]*Node, len(n.children))
	copy(kids, n.children)
	kids[index] = newChild
	cp := &Node{
		id:          b.alloc(),
		kind:        n.kind,
		span:        n.span,
		payload:     n.payload,
		children:    kids,
		typeInfo:    n.typeInfo,
		annotations: n.annotations,
	}
	return cp, nil
}

// InsertChild returns a new node with newChild spliced in at index,
// shifting the tail right; unaffected children are shared by reference.
func (b *Builder) InsertChild(n *Node, index int, newChild *Node) (*Node, error) {
	if index < 0 || index > len(n.children) {
		return nil, fmt.Errorf("ast: insert_child: index %d out of range [0,%d]", index, len(n.children))
	}
	kids := make([]*Node, 0, len(n.children)+1)
	kids = append(kids, n.children[:index]...)
	kids = append(kids, newChild)
	kids = append(kids, n.children[index:]...)
	cp := &Node{
		id:          b.alloc(),
		kind:        n.kind,
		span:        n.span,
		payload:     n.payload,
		children:    kids,
		typeInfo:    n.typeInfo,
		annotations: n.annotations,
	}
	return cp, nil
}

// DeleteChild returns a new node with the child at index removed.
func (b *Builder) DeleteChild(n *Node, index int) (*Node, error) {
	if index < 0 || index >= len(n.children) {
		return nil, fmt.Errorf("ast: delete_child: index %d out of range [0,%d)", index, len(n.children))
	}
	kids := make([]*Node, 0, len(n.children)-1)
	kids = append(kids, n.children[:index]...)
	kids = append(kids, n.children[index+1:]...)
	cp := &Node{
		id:          b.alloc(),
		kind:        n.kind,
		span:        n.span,
		payload:     n.payload,
		children:    kids,
		typeInfo:    n.typeInfo,
		annotations: n.annotations,
	}
	return cp, nil
}

// MoveChild returns a new node with the child at from relocated to to
// (both indices into the resulting slice's source ordering before the
// move); other children keep their relative order.
func (b *Builder) MoveChild(n *Node, from, to int) (*Node, error) {
	if from < 0 || from >= len(n.children) || to < 0 || to >= len(n.children) {
		return nil, fmt.Errorf("ast: move_child: indices %d,%d out of range [0,%d)", from, to, len(n.children))
	}
	kids := make([]*Node, len(n.children))
	copy(kids, n.children)
	moved := kids[from]
	kids = append(kids[:from], kids[from+1:]...)
	head := append([]*Node{}, kids[:to]...)
	head = append(head, moved)
	head = append(head, kids[to:]...)
	cp := &Node{
		id:          b.alloc(),
		kind:        n.kind,
		span:        n.span,
		payload:     n.payload,
		children:    head,
		typeInfo:    n.typeInfo,
		annotations: n.annotations,
	}
	return cp, nil
}

// WithPayload returns a new node carrying a different payload (the
// Rename semantic op uses this to swap a ValueDefPayload's Name without
// touching children).
func (b *Builder) WithPayload(n *Node, payload Payload) (*Node, error) {
	if payload.payloadKind() != n.kind {
		return nil, fmt.Errorf("ast: with_payload: payload kind %s does not match node kind %s", payload.payloadKind(), n.kind)
	}
	cp := &Node{
		id:          b.alloc(),
		kind:        n.kind,
		span:        n.span,
		payload:     payload,
		children:    n.children,
		typeInfo:    n.typeInfo,
		annotations: n.annotations,
	}
	return cp, nil
}
