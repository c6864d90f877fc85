package check

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/types"
)

// inferSymbolicReference resolves a name first against the local lexical
// Scope (Lambda/Let/Match bindings), then — if unqualified lookup fails
// or the reference is qualified — against the Checker's ResolveSymbolic
// hook, which the namespace layer supplies once a definition is
// published under a path. The returned definition hash is recorded as a
// dependency so InvalidateByDependency can drop this node's memo entry
// when that definition changes underneath it.
func (inf *inference) inferSymbolicReference(n *ast.Node, p ast.ReferenceSymbolicPayload, env *Scope) (*types.Type, types.EffectRow) {
	if len(p.Qualified) == 0 {
		if scheme, ok := env.Lookup(p.Name); ok {
			return instantiate(scheme, inf.fresh), types.ClosedRow()
		}
	}
	if inf.checker != nil && inf.checker.ResolveSymbolic != nil {
		if scheme, hash, ok := inf.checker.ResolveSymbolic(p.Qualified, p.Name); ok {
			inf.deps[hash] = true
			return instantiate(scheme, inf.fresh), types.ClosedRow()
		}
	}
	inf.errorf(diag.KindUnresolvedName, n.Span(), "unresolved name %q", inf.symbolName(p.Name))
	return inf.fresh.typeVar(), types.ClosedRow()
}

// inferHashReference resolves a content-hash-anchored reference through
// the Checker's ResolveHash hook. Unlike a symbolic reference this can
// never be satisfied by the local Scope — a hash anchor always names a
// committed Namespace Store definition (spec §3 invariant 4).
func (inf *inference) inferHashReference(n *ast.Node, p ast.ReferenceHashAnchoredPayload) (*types.Type, types.EffectRow) {
	if inf.checker != nil && inf.checker.ResolveHash != nil {
		if scheme, ok := inf.checker.ResolveHash(p.Hash); ok {
			inf.deps[p.Hash] = true
			return instantiate(scheme, inf.fresh), types.ClosedRow()
		}
	}
	inf.errorf(diag.KindUnresolvedName, n.Span(), "unresolved hash-anchored reference")
	return inf.fresh.typeVar(), types.ClosedRow()
}
