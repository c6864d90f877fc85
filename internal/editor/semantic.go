package editor

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/index"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// Rename updates sym's defining node and every reference resolved to it
// within the current AST version (spec §4.F: "updates the defining node
// and every reference in scope"). Reverse-dependents recorded in the
// Namespace Store's dependency index are never rewritten by Rename —
// spec §9's open question #3 resolves that ambiguity: they are only
// marked affected by the caller (namespace.Store), which Rename has no
// dependency on.
func (s *Session) Rename(sym symbol.ID, newName symbol.ID) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defining := s.idx.Defining(sym)
	referencing := s.idx.Referencing(sym)
	if len(defining) == 0 {
		return OperationResult{}, fmt.Errorf("editor: rename: %w: symbol has no defining occurrence in this version", ErrInvalidParent)
	}

	var steps []Step
	for _, id := range defining {
		n, ok := s.idx.Node(id)
		if !ok {
			continue
		}
		renamed, err := renamedPayload(n.Payload(), newName)
		if err != nil {
			return OperationResult{}, fmt.Errorf("editor: rename: %w", err)
		}
		steps = append(steps, StepWithPayload(s.builder, n, renamed))
	}
	for _, id := range referencing {
		n, ok := s.idx.Node(id)
		if !ok {
			continue
		}
		p, ok := n.Payload().(ast.ReferenceSymbolicPayload)
		if !ok {
			continue
		}
		p.Name = newName
		steps = append(steps, StepWithPayload(s.builder, n, p))
	}

	return s.batchLocked(fmt.Sprintf("rename %d", sym), steps)
}

// renamedPayload returns a copy of p with its DefSymbol-bearing field set
// to newName. Every definition payload kind implements DefSymbol (see
// ast.SymbolOf), so this is a closed switch mirroring that set.
func renamedPayload(p ast.Payload, newName symbol.ID) (ast.Payload, error) {
	switch v := p.(type) {
	case ast.ModulePayload:
		v.Name = newName
		return v, nil
	case ast.ValueDefPayload:
		v.Name = newName
		return v, nil
	case ast.TypeDefPayload:
		v.Name = newName
		return v, nil
	case ast.EffectDefPayload:
		v.Name = newName
		return v, nil
	case ast.HandlerDefPayload:
		v.Name = newName
		return v, nil
	default:
		return nil, fmt.Errorf("rename: payload kind %T has no defining symbol to rename", p)
	}
}

// batchLocked runs steps as a single undo/redo unit assuming the caller
// already holds s.mu — Session.Batch cannot be reused directly here
// because it takes the lock itself.
func (s *Session) batchLocked(label string, steps []Step) (OperationResult, error) {
	var merged OperationResult
	var invs []inverse
	for i, step := range steps {
		res, inv, err := step(s)
		if err != nil {
			if len(invs) > 0 {
				s.history.record(batchInverse{label: label, items: reversedInverses(invs)})
			}
			return merged, fmt.Errorf("editor: %q: step %d: %w", label, i, err)
		}
		merged.NewRoot = res.NewRoot
		merged.AffectedNodes = append(merged.AffectedNodes, res.AffectedNodes...)
		merged.Diagnostics = append(merged.Diagnostics, res.Diagnostics...)
		invs = append(invs, inv)
	}
	if len(invs) > 0 {
		s.history.record(batchInverse{label: label, items: reversedInverses(invs)})
	}
	return merged, nil
}

// transactionLocked is Session.Transaction's body, reusable by semantic
// operations that already hold s.mu for the duration of their own index
// lookups — Transaction itself cannot be called there since it takes the
// lock again and Session.mu is not reentrant.
func (s *Session) transactionLocked(label string, steps []Step) (OperationResult, error) {
	var merged OperationResult
	var invs []inverse
	for i, step := range steps {
		res, inv, err := step(s)
		if err != nil {
			for j := len(invs) - 1; j >= 0; j-- {
				if _, rerr := invs[j].undo(s); rerr != nil {
					return OperationResult{}, fmt.Errorf("editor: %q: step %d failed (%v) and rollback of step %d also failed: %w", label, i, err, j, rerr)
				}
			}
			return OperationResult{}, fmt.Errorf("editor: %q: step %d failed, rolled back: %w", label, i, err)
		}
		merged.NewRoot = res.NewRoot
		merged.AffectedNodes = append(merged.AffectedNodes, res.AffectedNodes...)
		merged.Diagnostics = append(merged.Diagnostics, res.Diagnostics...)
		invs = append(invs, inv)
	}
	if len(invs) > 0 {
		s.history.record(batchInverse{label: label, items: reversedInverses(invs)})
	}
	return merged, nil
}

// ExtractDefinition lifts the expression rooted at node out of its
// enclosing body into a new top-level ValueDef named newName inserted
// just before the definition that currently contains node, replacing
// node in place with a ReferenceSymbolic pointing at newName (spec §4.F:
// "ExtractDefinition(range, new_name)" — range is represented here by
// the single node that roots it, since the persistent AST already
// addresses arbitrary subtrees by node identity rather than byte offset).
func (s *Session) ExtractDefinition(node *ast.Node, newName symbol.ID, unit *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enclosingID, ok := findEnclosingDefinition(s.idx, node.ID())
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: extract: %w: node %d has no enclosing definition", ErrInvalidParent, node.ID())
	}
	if _, ok := s.idx.Node(enclosingID); !ok {
		return OperationResult{}, fmt.Errorf("editor: extract: %w: enclosing definition %d not indexed", ErrTreeInvariantViolated, enclosingID)
	}

	newDef := s.builder.Build(node.Span(), ast.KindValueDef,
		ast.ValueDefPayload{Name: newName, Visibility: ast.VisibilityPrivate, Purity: ast.PurityUnspecified},
		node,
	)
	ref := s.builder.Build(node.Span(), ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: newName})

	unitIdx := indexOfChild(unit, enclosingID)
	if unitIdx < 0 {
		return OperationResult{}, fmt.Errorf("editor: extract: %w: enclosing definition %d is not a direct child of the compilation unit", ErrInvalidParent, enclosingID)
	}

	return s.transactionLocked(fmt.Sprintf("extract %d", newName), []Step{
		StepInsert(unit, unitIdx, newDef),
		StepReplace(node, ref),
	})
}

// findEnclosingDefinition walks the Hierarchy Index up from id until it
// reaches a node of a Definition kind (spec §3's Definition set), the
// unit of extraction ExtractDefinition inserts alongside.
func findEnclosingDefinition(idx *index.Indices, id ast.NodeID) (ast.NodeID, bool) {
	cur := id
	for {
		n, ok := idx.Node(cur)
		if ok && n.Kind().IsDefinition() {
			return cur, true
		}
		parent, ok := idx.ParentOf(cur)
		if !ok {
			return 0, false
		}
		cur = parent
	}
}

// InlineDefinition replaces every reference to sym with a copy of its
// ValueDef body, then deletes the now-unreferenced definition from unit
// (spec §4.F: "InlineDefinition(symbol)"). Each reference site receives
// its own structurally-independent copy of the body subtree (re-hashing
// to the same digest, since content hashes don't depend on NodeID), so
// inlining N call sites never aliases one body node across N different
// trees.
func (s *Session) InlineDefinition(sym symbol.ID, unit *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defining := s.idx.Defining(sym)
	if len(defining) != 1 {
		return OperationResult{}, fmt.Errorf("editor: inline: %w: symbol must have exactly one defining occurrence, found %d", ErrInvalidParent, len(defining))
	}
	defNode, ok := s.idx.Node(defining[0])
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: inline: %w: defining node %d not indexed", ErrTreeInvariantViolated, defining[0])
	}
	valueDef, ok := defNode.Payload().(ast.ValueDefPayload)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: inline: %w: symbol does not name a ValueDef", ErrInvalidParent)
	}
	_ = valueDef
	body := defNode.Child(len(defNode.Children()) - 1)
	if body == nil {
		return OperationResult{}, fmt.Errorf("editor: inline: %w: ValueDef %d has no body", ErrTreeInvariantViolated, defNode.ID())
	}

	referencing := s.idx.Referencing(sym)
	var steps []Step
	for _, id := range referencing {
		n, ok := s.idx.Node(id)
		if !ok {
			continue
		}
		steps = append(steps, StepReplace(n, cloneWithFreshIDs(s.builder, body)))
	}
	steps = append(steps, StepDelete(defNode))

	return s.transactionLocked(fmt.Sprintf("inline %d", sym), steps)
}

// cloneWithFreshIDs deep-copies n, allocating a fresh NodeID for every
// node in the subtree via b.Build so the clone can coexist with the
// original without violating the "a node is referenced by at most one
// parent" invariant (spec §3 invariant 2).
func cloneWithFreshIDs(b *ast.Builder, n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	children := make([]*ast.Node, len(n.Children()))
	for i, c := range n.Children() {
		children[i] = cloneWithFreshIDs(b, c)
	}
	clone := b.Build(n.Span(), n.Kind(), n.Payload(), children...)
	return clone.WithAnnotations(n.Annotations())
}

// SignatureChange describes a ChangeSignature edit: the new ordered
// parameter patterns/types for a Lambda-bodied ValueDef, plus how to
// adapt each existing call site's argument list.
type SignatureChange struct {
	NewParams []*ast.Node // new leading Lambda children (patterns), body excluded
	NewTypes  []*ast.TypeExpr

	// AdaptArgs rewrites an Application's existing ordered argument list
	// into one matching NewParams. Returning ok=false means the call
	// site is ambiguous and ChangeSignature reports it as a diagnostic
	// rather than rewriting it blindly (spec §4.F: "automatic call-site
	// adaptation when unambiguous").
	AdaptArgs func(oldArgs []*ast.Node) (newArgs []*ast.Node, ok bool)
}

// ChangeSignature replaces fn's own parameter list and, for every
// Application whose function expression resolves to fn's symbol, adapts
// the call site via change.AdaptArgs when possible (spec §4.F:
// "ChangeSignature(function_node, new_signature) with automatic
// call-site adaptation when unambiguous"). Call sites AdaptArgs declines
// to handle are left untouched; ChangeSignature does not fail because of
// them — an inconsistent call site surfaces later as a TypeMismatch from
// the checker, which is the spec's own non-fatal-diagnostic path for this
// case.
func (s *Session) ChangeSignature(fn *ast.Node, change SignatureChange, unit *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lambda, ok := fn.Payload().(ast.LambdaPayload)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: change signature: %w: node is not a Lambda", ErrInvalidParent)
	}
	if len(change.NewTypes) != len(change.NewParams) {
		return OperationResult{}, fmt.Errorf("editor: change signature: %w: %d new params but %d new types", ErrInvalidParent, len(change.NewParams), len(change.NewTypes))
	}
	_ = lambda

	body := fn.Child(len(fn.Children()) - 1)
	newFn := s.builder.Build(fn.Span(), ast.KindLambda, ast.LambdaPayload{ParamTypes: change.NewTypes}, append(append([]*ast.Node{}, change.NewParams...), body)...)

	owning := findOwningDef(s.idx, fn.ID())
	var sym symbol.ID
	var hasSym bool
	if owning != nil {
		sym, hasSym = ast.SymbolOf(owning)
	}
	var steps []Step
	steps = append(steps, StepReplace(fn, newFn))

	if hasSym && change.AdaptArgs != nil {
		for _, refID := range s.idx.Referencing(sym) {
			refNode, ok := s.idx.Node(refID)
			if !ok {
				continue
			}
			appID, ok := findEnclosingApplication(s.idx, refID)
			if !ok {
				continue
			}
			app, ok := s.idx.Node(appID)
			if !ok {
				continue
			}
			oldArgs := app.Children()[1:]
			newArgs, ok := change.AdaptArgs(oldArgs)
			if !ok {
				continue
			}
			newApp := s.builder.Build(app.Span(), ast.KindApplication, ast.ApplicationPayload{}, append([]*ast.Node{refNode}, newArgs...)...)
			steps = append(steps, StepReplace(app, newApp))
		}
	}

	return s.transactionLocked("change signature", steps)
}

// findOwningDef walks up from id to the nearest enclosing Definition
// node, falling back to id itself if none is found (a top-level Lambda
// with no enclosing ValueDef, e.g. an anonymous closure, has no symbol to
// rewrite call sites for).
func findOwningDef(idx *index.Indices, id ast.NodeID) *ast.Node {
	cur := id
	for {
		n, ok := idx.Node(cur)
		if ok && n.Kind().IsDefinition() {
			return n
		}
		parent, ok := idx.ParentOf(cur)
		if !ok {
			if n, ok := idx.Node(id); ok {
				return n
			}
			return nil
		}
		cur = parent
	}
}

// findEnclosingApplication walks up from id to the nearest Application
// whose function-expression child (index 0) is id itself — i.e. id is
// being called, not merely passed as an argument.
func findEnclosingApplication(idx *index.Indices, id ast.NodeID) (ast.NodeID, bool) {
	parent, ok := idx.ParentOf(id)
	if !ok {
		return 0, false
	}
	n, ok := idx.Node(parent)
	if !ok || n.Kind() != ast.KindApplication {
		return 0, false
	}
	if n.Child(0) == nil || n.Child(0).ID() != id {
		return 0, false
	}
	return parent, true
}
