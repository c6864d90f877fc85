package ast

import "fmt"

// DesugarDo rewrites a Do block into the nested single-binding Let form:
// `do { p <- e; rest }` becomes `let p = e in rest`, a bare expression
// statement binds to a wildcard pattern, and the trailing expression
// statement (if any) becomes the innermost body. A Do whose final
// statement is a bind or let evaluates to unit, so the desugared body is
// a unit literal in that case.
//
// Do stays a first-class node in committed trees — the Position and
// Hierarchy indices address individual statements directly, which nested
// Lets would bury. DesugarDo exists for consumers that want the
// expression view instead (the checker's inference rules for Let already
// cover it). The returned tree shares the statement subtrees with n; it
// is an analysis view, not a replacement to commit back into the same
// AST version alongside n.
func DesugarDo(b *Builder, n *Node) (*Node, error) {
	p, ok := n.Payload().(DoPayload)
	if !ok {
		return nil, fmt.Errorf("ast: desugar: node %d is %s, not Do", n.ID(), n.Kind())
	}
	count := len(p.StmtKinds)
	if count == 0 {
		return b.Build(n.Span(), KindLiteralUnit, LiteralUnitPayload{}), nil
	}

	last := count - 1
	var body *Node
	if p.StmtKinds[last] == DoExpr {
		body = n.Child(last*2 + 1)
		last--
	} else {
		body = b.Build(n.Span(), KindLiteralUnit, LiteralUnitPayload{})
	}

	for i := last; i >= 0; i-- {
		pat := n.Child(i * 2)
		expr := n.Child(i*2 + 1)
		if pat == nil {
			pat = b.Build(expr.Span(), KindPatternWildcard, PatternWildcardPayload{})
		}
		body = b.Build(n.Span(), KindLet, LetPayload{BindingCount: 1}, pat, expr, body)
	}
	return body, nil
}
