package index

import "github.com/ribbonlang/ribbon/internal/ast"

// Pattern is an AST template with holes (spec §4.D: "Pattern P is an AST
// template with holes"). A Pattern with Hole set matches any node
// (including its entire subtree) regardless of kind; otherwise it
// matches nodes of the given Kind whose children match Children
// position-for-position. A nil Children slice with Hole false matches a
// node of Kind with any children — useful for "any Match expression"
// without caring about its arms.
type Pattern struct {
	Hole     bool
	Kind     ast.Kind
	Children []*Pattern
}

// AnyNode is a Pattern matching anything.
func AnyNode() *Pattern { return &Pattern{Hole: true} }

// OfKind is a Pattern matching any node of kind k, ignoring children.
func OfKind(k ast.Kind) *Pattern { return &Pattern{Kind: k} }

// Match reports whether n structurally matches template.
func Match(n *ast.Node, template *Pattern) bool {
	if template == nil {
		return false
	}
	if template.Hole {
		return true
	}
	if n == nil || n.Kind() != template.Kind {
		return false
	}
	if template.Children == nil {
		return true
	}
	if len(template.Children) != len(n.Children()) {
		return false
	}
	for i, childTemplate := range template.Children {
		if !Match(n.Child(i), childTemplate) {
			return false
		}
	}
	return true
}
