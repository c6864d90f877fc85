package editor

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
)

// Step is one pending atomic operation, bound to its arguments but not
// yet applied. Batch and Transaction run a sequence of Steps against a
// Session, collecting one inverse per successful step so the whole
// sequence can be undone as a single history entry.
type Step func(s *Session) (OperationResult, inverse, error)

// StepReplace builds a Step equivalent to Session.Replace.
func StepReplace(node, newNode *ast.Node) Step {
	return func(s *Session) (OperationResult, inverse, error) {
		res, err := s.doReplace(node, newNode)
		if err != nil {
			return OperationResult{}, nil, err
		}
		return res, replaceInverse{current: newNode, was: node}, nil
	}
}

// StepWithPayload builds a Step that swaps n's payload for p, a narrower
// form of replace used by Rename.
func StepWithPayload(b *ast.Builder, n *ast.Node, p ast.Payload) Step {
	return func(s *Session) (OperationResult, inverse, error) {
		newNode, err := b.WithPayload(n, p)
		if err != nil {
			return OperationResult{}, nil, fmt.Errorf("editor: %w: %v", ErrInvalidParent, err)
		}
		res, err := s.doReplace(n, newNode)
		if err != nil {
			return OperationResult{}, nil, err
		}
		return res, replaceInverse{current: newNode, was: n}, nil
	}
}

// StepInsert builds a Step equivalent to Session.Insert.
func StepInsert(parent *ast.Node, index int, node *ast.Node) Step {
	return func(s *Session) (OperationResult, inverse, error) {
		res, err := s.doInsert(parent, index, node)
		if err != nil {
			return OperationResult{}, nil, err
		}
		return res, insertInverse{parent: parent.ID(), index: index, node: node}, nil
	}
}

// StepDelete builds a Step equivalent to Session.Delete.
func StepDelete(node *ast.Node) Step {
	return func(s *Session) (OperationResult, inverse, error) {
		parentID, ok := s.idx.ParentOf(node.ID())
		if !ok {
			return OperationResult{}, nil, fmt.Errorf("editor: delete: %w: node %d has no parent", ErrInvalidParent, node.ID())
		}
		parent, ok := s.idx.Node(parentID)
		if !ok {
			return OperationResult{}, nil, fmt.Errorf("editor: delete: %w: parent %d not indexed", ErrTreeInvariantViolated, parentID)
		}
		index := indexOfChild(parent, node.ID())
		if index < 0 {
			return OperationResult{}, nil, fmt.Errorf("editor: delete: %w: node %d not found in parent %d", ErrTreeInvariantViolated, node.ID(), parentID)
		}
		res, err := s.doDelete(node)
		if err != nil {
			return OperationResult{}, nil, err
		}
		return res, deleteInverse{parent: parentID, index: index, node: node}, nil
	}
}

// batchInverse undoes a sequence of inverses in order — the sequence is
// already stored reversed relative to how the steps were originally
// applied, so undoing it replays oldest-undone-last, newest-undone-first.
type batchInverse struct {
	label string
	items []inverse
}

// reversedInverses puts a slice of inverses collected in application
// order into the storage order batchInverse.undo expects: the newest
// applied step must be the first one undone.
func reversedInverses(items []inverse) []inverse {
	out := make([]inverse, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

func (b batchInverse) undo(s *Session) (OperationResult, error) {
	var merged OperationResult
	for _, it := range b.items {
		res, err := it.undo(s)
		if err != nil {
			return merged, err
		}
		merged.NewRoot = res.NewRoot
		merged.AffectedNodes = append(merged.AffectedNodes, res.AffectedNodes...)
		merged.Diagnostics = append(merged.Diagnostics, res.Diagnostics...)
	}
	return merged, nil
}

func (b batchInverse) invert() inverse {
	inverted := make([]inverse, len(b.items))
	for i, it := range b.items {
		inverted[len(b.items)-1-i] = it.invert()
	}
	return batchInverse{label: b.label, items: inverted}
}

// Batch applies steps in order as a single undo/redo unit (spec §4.F:
// "an ordered list of operations applied atomically"). Unlike
// Transaction, a step that fails partway does not roll back the steps
// that already committed — whatever succeeded stays on the tree and in
// history, and the error names which step broke the sequence.
func (s *Session) Batch(label string, steps ...Step) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var merged OperationResult
	var invs []inverse
	for i, step := range steps {
		res, inv, err := step(s)
		if err != nil {
			if len(invs) > 0 {
				s.history.record(batchInverse{label: label, items: reversedInverses(invs)})
			}
			return merged, fmt.Errorf("editor: batch %q: step %d: %w", label, i, err)
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

// Transaction applies steps in order, rolling every already-committed
// step back before surfacing the error if any step fails (spec §4.F: "a
// batch with full rollback on first failure"). A successful Transaction
// records one undo/redo unit, exactly like Batch.
func (s *Session) Transaction(label string, steps ...Step) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var merged OperationResult
	var invs []inverse
	for i, step := range steps {
		res, inv, err := step(s)
		if err != nil {
			for j := len(invs) - 1; j >= 0; j-- {
				if _, rerr := invs[j].undo(s); rerr != nil {
					return OperationResult{}, fmt.Errorf("editor: transaction %q: step %d failed (%v) and rollback of step %d also failed: %w", label, i, err, j, rerr)
				}
			}
			return OperationResult{}, fmt.Errorf("editor: transaction %q: step %d failed, rolled back: %w", label, i, err)
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
