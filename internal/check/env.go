// Package check implements the Hindley-Milner type checker extended with
// algebraic effect rows (spec §4.E): Algorithm W over the persistent AST,
// row unification, let-generalization with the effect value restriction,
// handler typing, and a query-driven, memoized incremental recheck.
package check

import (
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
)

// Scope is a lexical binding environment: a chain of symbol-to-scheme
// maps, innermost first. Scopes are themselves immutable once built —
// Bind returns a new Scope — mirroring the persistent-AST discipline the
// rest of the core follows, and letting multiple inference branches share
// an outer scope without racing on it.
type Scope struct {
	parent   *Scope
	bindings map[symbol.ID]*types.Scheme
}

// NewScope returns the empty root scope.
func NewScope() *Scope {
	return &Scope{bindings: map[symbol.ID]*types.Scheme{}}
}

// Bind returns a new child scope with sym bound to scheme, shadowing any
// outer binding of the same symbol without mutating this scope.
func (s *Scope) Bind(sym symbol.ID, scheme *types.Scheme) *Scope {
	child := &Scope{parent: s, bindings: map[symbol.ID]*types.Scheme{sym: scheme}}
	return child
}

// BindAll returns a new child scope with every (symbol, scheme) pair
// bound simultaneously — used for LetRec groups, whose bindings must all
// be visible to each other's bodies before any is generalized.
func (s *Scope) BindAll(pairs map[symbol.ID]*types.Scheme) *Scope {
	child := &Scope{parent: s, bindings: make(map[symbol.ID]*types.Scheme, len(pairs))}
	for sym, scheme := range pairs {
		child.bindings[sym] = scheme
	}
	return child
}

// Lookup walks the scope chain outward, returning the nearest binding of
// sym (spec §4.E query: "resolve_symbol(symbol, scope_id)").
func (s *Scope) Lookup(sym symbol.ID) (*types.Scheme, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if scheme, ok := cur.bindings[sym]; ok {
			return scheme, true
		}
	}
	return nil, false
}
