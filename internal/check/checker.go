package check

import (
	"sync"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
)

// cacheEntry is one memoized Algorithm W result, keyed by the node it was
// computed for. deps records every external definition hash this result's
// correctness relies on, via a ReferenceSymbolic/ReferenceHashAnchored
// resolution — the unit InvalidateByDependency drops on change.
type cacheEntry struct {
	typ   *types.Type
	eff   types.EffectRow
	diags []diag.Diagnostic
	deps  map[ast.Digest]bool
}

// Checker is the query-driven, incrementally-rechecked front end over
// Algorithm W (spec §4.E: "type_of(node_id)", "effects_of(node_id)",
// "resolve_symbol(symbol, scope_id)", plus the four-step incremental
// recheck contract). It is safe for concurrent queries; each query that
// misses the cache runs its own independent inference pass with a fresh
// Unifier, so concurrent misses never corrupt each other's substitution.
type Checker struct {
	reg *symbol.Registry

	// HandlerEffect resolves a With clause's handler expression node to
	// the effect name it handles, for handlers defined outside the
	// checked tree (e.g. behind a namespace-store reference). It is only
	// consulted after the primary derivation fails: an inline HandlerDef
	// or a reference to one collected from the checked tree answers from
	// its own EffectRef first.
	HandlerEffect func(handlerExpr *ast.Node) (effectName string, ok bool)

	// ResolveHash and ResolveSymbolic satisfy references that escape the
	// local lexical Scope by reaching into the namespace store. Both are
	// nil-safe; an unresolved reference becomes an UnresolvedName
	// diagnostic rather than a panic, so Checker has zero dependency on
	// internal/namespace at compile time.
	ResolveHash     func(h ast.Digest) (*types.Scheme, bool)
	ResolveSymbolic func(qualified []symbol.ID, name symbol.ID) (*types.Scheme, ast.Digest, bool)

	mu    sync.Mutex
	cache map[ast.NodeID]*cacheEntry

	// effects and handlers record every EffectDef operation signature
	// and HandlerDef payload seen in checked trees, keyed by declared
	// name. Perform argument/result typing and With's handled-effect
	// derivation read them; Check repopulates them on every cache miss,
	// so a declaration is visible to any query over a tree containing it.
	effects  map[symbol.ID]map[symbol.ID]ast.EffectOperation
	handlers map[symbol.ID]ast.HandlerDefPayload
}

// NewChecker builds an empty Checker over reg, the registry whose symbol
// IDs the checked AST was built against.
func NewChecker(reg *symbol.Registry) *Checker {
	return &Checker{
		reg:      reg,
		cache:    map[ast.NodeID]*cacheEntry{},
		effects:  map[symbol.ID]map[symbol.ID]ast.EffectOperation{},
		handlers: map[symbol.ID]ast.HandlerDefPayload{},
	}
}

// collectDecls registers every EffectDef operation signature and
// HandlerDef payload reachable from n, so inference over any part of the
// tree can resolve Perform and With against the declarations it was
// checked alongside.
func (c *Checker) collectDecls(n *ast.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for node := range ast.Preorder(n) {
		switch p := node.Payload().(type) {
		case ast.EffectDefPayload:
			ops := make(map[symbol.ID]ast.EffectOperation, len(p.Operations))
			for _, op := range p.Operations {
				ops[op.Name] = op
			}
			c.effects[p.Name] = ops
		case ast.HandlerDefPayload:
			c.handlers[p.Name] = p
		}
	}
}

// effectOperation looks up the declared signature of effect.op among the
// EffectDefs collected so far.
func (c *Checker) effectOperation(effect, op symbol.ID) (ast.EffectOperation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops, ok := c.effects[effect]
	if !ok {
		return ast.EffectOperation{}, false
	}
	sig, ok := ops[op]
	return sig, ok
}

// handlerFor looks up a HandlerDef payload by its declared name.
func (c *Checker) handlerFor(name symbol.ID) (ast.HandlerDefPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.handlers[name]
	return p, ok
}

// Check runs (or returns the memoized result of) Algorithm W over n in
// env, returning its monotype, its effect row, and every diagnostic the
// pass collected.
func (c *Checker) Check(n *ast.Node, env *Scope) (*types.Type, types.EffectRow, []diag.Diagnostic) {
	c.mu.Lock()
	if e, ok := c.cache[n.ID()]; ok {
		c.mu.Unlock()
		return e.typ, e.eff, e.diags
	}
	c.mu.Unlock()

	c.collectDecls(n)
	inf := newInference(c)
	t, eff := inf.infer(n, env)
	entry := &cacheEntry{typ: inf.u.Resolve(t), eff: inf.u.ResolveRow(eff), diags: inf.diags, deps: inf.deps}

	c.mu.Lock()
	c.cache[n.ID()] = entry
	c.mu.Unlock()
	return entry.typ, entry.eff, entry.diags
}

// TypeOf answers spec §4.E's type_of(node_id) query.
func (c *Checker) TypeOf(n *ast.Node, env *Scope) (*types.Type, []diag.Diagnostic) {
	t, _, diags := c.Check(n, env)
	return t, diags
}

// EffectsOf answers spec §4.E's effects_of(node_id) query.
func (c *Checker) EffectsOf(n *ast.Node, env *Scope) (types.EffectRow, []diag.Diagnostic) {
	_, eff, diags := c.Check(n, env)
	return eff, diags
}

// ResolveSymbol answers spec §4.E's resolve_symbol(symbol, scope_id)
// query against a particular lexical Scope.
func (c *Checker) ResolveSymbol(sym symbol.ID, env *Scope) (*types.Scheme, bool) {
	return env.Lookup(sym)
}

// InvalidateSpine drops the memoized result for every node on an edit's
// spine (step 1 of the incremental recheck contract: "invalidate cached
// types along the edit's spine"), returning the subset that was actually
// cached so the caller can report it as affected.
func (c *Checker) InvalidateSpine(spine []ast.NodeID) []ast.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var invalidated []ast.NodeID
	for _, id := range spine {
		if _, ok := c.cache[id]; ok {
			delete(c.cache, id)
			invalidated = append(invalidated, id)
		}
	}
	return invalidated
}

// InvalidateByDependency drops every memoized result that depended on one
// of the changed definition hashes (step 2: "propagate to dependents via
// the Dependency Index"), returning the invalidated node IDs. Everything
// else in the cache is left untouched (step 3: "preserve unaffected
// cached results"); callers re-query the returned IDs on demand (step 4:
// "report the affected node set back to the editor"), which is exactly
// what TypeOf/EffectsOf recomputes lazily on their next call.
func (c *Checker) InvalidateByDependency(changed map[ast.Digest]bool) []ast.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var invalidated []ast.NodeID
	for id, e := range c.cache {
		for h := range e.deps {
			if changed[h] {
				delete(c.cache, id)
				invalidated = append(invalidated, id)
				break
			}
		}
	}
	return invalidated
}
