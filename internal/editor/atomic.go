package editor

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
)

// Replace swaps node for newNode wherever node sits in the current tree
// and commits the result as the session's new root (spec §4.B
// "replace_child"). Diagnostics from rechecking the affected spine are
// attached to the result and do not prevent the commit; only a
// structural failure (node not found, bad parent bookkeeping) does, and
// in that case the session's root is left untouched.
func (s *Session) Replace(node, newNode *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.doReplace(node, newNode)
	if err != nil {
		return OperationResult{}, err
	}
	s.history.record(replaceInverse{current: newNode, was: node})
	return res, nil
}

// Delete removes node from the tree.
func (s *Session) Delete(node *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parentID, ok := s.idx.ParentOf(node.ID())
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: delete: %w: node %d has no parent", ErrInvalidParent, node.ID())
	}
	parent, ok := s.idx.Node(parentID)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: delete: %w: parent %d not indexed", ErrTreeInvariantViolated, parentID)
	}
	index := indexOfChild(parent, node.ID())
	if index < 0 {
		return OperationResult{}, fmt.Errorf("editor: delete: %w: node %d not found in parent %d", ErrTreeInvariantViolated, node.ID(), parentID)
	}

	res, err := s.doDelete(node)
	if err != nil {
		return OperationResult{}, err
	}
	s.history.record(deleteInverse{parent: parentID, index: index, node: node})
	return res, nil
}

// Insert splices node into parent's children at index.
func (s *Session) Insert(parent *ast.Node, index int, node *ast.Node) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.doInsert(parent, index, node)
	if err != nil {
		return OperationResult{}, err
	}
	s.history.record(insertInverse{parent: parent.ID(), index: index, node: node})
	return res, nil
}

// Move relocates node to index within newParent's children. Moving
// within the same parent is a single Builder.MoveChild; moving across
// parents is expressed as a delete from the old location followed by an
// insert at the new one, recorded as one undo/redo unit.
func (s *Session) Move(node, newParent *ast.Node, index int) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromParentID, ok := s.idx.ParentOf(node.ID())
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: move: %w: node %d has no parent", ErrInvalidParent, node.ID())
	}
	fromParent, ok := s.idx.Node(fromParentID)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: move: %w: parent %d not indexed", ErrTreeInvariantViolated, fromParentID)
	}
	fromIndex := indexOfChild(fromParent, node.ID())
	if fromIndex < 0 {
		return OperationResult{}, fmt.Errorf("editor: move: %w: node %d not found in parent %d", ErrTreeInvariantViolated, node.ID(), fromParentID)
	}

	var res OperationResult
	var err error
	if fromParentID == newParent.ID() {
		res, err = s.doMoveWithinParent(fromParent, fromIndex, index)
	} else {
		res, err = s.doMoveAcrossParents(node, fromParent, fromIndex, newParent, index)
	}
	if err != nil {
		return OperationResult{}, err
	}
	s.history.record(moveInverse{
		node:         node,
		fromParent:   fromParentID,
		fromIndex:    fromIndex,
		toParent:     newParent.ID(),
		toIndex:      index,
	})
	return res, nil
}

// --- mechanics (no history bookkeeping; also used by undo/redo and Step) --

func (s *Session) doReplace(node, newNode *ast.Node) (OperationResult, error) {
	newRoot, spine, err := rebuildSpine(s.idx, s.builder, s.root, node, newNode)
	if err != nil {
		return OperationResult{}, err
	}
	return s.commit(newRoot, spine, nil), nil
}

func (s *Session) doDelete(node *ast.Node) (OperationResult, error) {
	newRoot, spine, err := rebuildSpine(s.idx, s.builder, s.root, node, nil)
	if err != nil {
		return OperationResult{}, err
	}
	return s.commit(newRoot, spine, nil), nil
}

func (s *Session) doInsert(parent *ast.Node, index int, node *ast.Node) (OperationResult, error) {
	newRoot, spine, err := rebuildSpineInsert(s.idx, s.builder, s.root, parent, index, node)
	if err != nil {
		return OperationResult{}, err
	}
	return s.commit(newRoot, spine, nil), nil
}

func (s *Session) doMoveWithinParent(parent *ast.Node, from, to int) (OperationResult, error) {
	newParent, err := s.builder.MoveChild(parent, from, to)
	if err != nil {
		return OperationResult{}, fmt.Errorf("editor: move: %w: %v", ErrInvalidParent, err)
	}
	newRoot, spine, err := rebuildSpine(s.idx, s.builder, s.root, parent, newParent)
	if err != nil {
		return OperationResult{}, err
	}
	return s.commit(newRoot, spine, nil), nil
}

func (s *Session) doMoveAcrossParents(node, fromParent *ast.Node, fromIndex int, toParent *ast.Node, toIndex int) (OperationResult, error) {
	if _, err := s.doDelete(node); err != nil {
		return OperationResult{}, err
	}
	// toParent is the pre-delete node; re-resolve it in case the delete
	// touched an ancestor it shares with node (they're siblings under a
	// common parent higher up, so toParent itself is unaffected, but its
	// NodeID lookup must go through the refreshed index either way).
	refreshedParent, ok := s.idx.Node(toParent.ID())
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: move: %w: destination parent %d vanished during delete", ErrTreeInvariantViolated, toParent.ID())
	}
	return s.doInsert(refreshedParent, toIndex, node)
}

// --- inverses --------------------------------------------------------------

// inverse is an undo/redo unit: applying it mutates the session directly
// (bypassing the normal history-push path, which Undo/Redo manage
// themselves) and produces its own dual for the opposite stack.
type inverse interface {
	undo(s *Session) (OperationResult, error)
	invert() inverse
}

type replaceInverse struct{ current, was *ast.Node }

func (iv replaceInverse) undo(s *Session) (OperationResult, error) { return s.doReplace(iv.current, iv.was) }
func (iv replaceInverse) invert() inverse                          { return replaceInverse{current: iv.was, was: iv.current} }

// insertInverse describes "node was inserted at (parent, index)"; undoing
// it deletes node again.
type insertInverse struct {
	parent ast.NodeID
	index  int
	node   *ast.Node
}

func (iv insertInverse) undo(s *Session) (OperationResult, error) { return s.doDelete(iv.node) }
func (iv insertInverse) invert() inverse {
	return deleteInverse{parent: iv.parent, index: iv.index, node: iv.node}
}

// deleteInverse describes "node was deleted from (parent, index)";
// undoing it reinserts node there.
type deleteInverse struct {
	parent ast.NodeID
	index  int
	node   *ast.Node
}

func (iv deleteInverse) undo(s *Session) (OperationResult, error) {
	parent, ok := s.idx.Node(iv.parent)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: undo delete: %w: parent %d no longer present", ErrTreeInvariantViolated, iv.parent)
	}
	return s.doInsert(parent, iv.index, iv.node)
}
func (iv deleteInverse) invert() inverse {
	return insertInverse{parent: iv.parent, index: iv.index, node: iv.node}
}

type moveInverse struct {
	node                   *ast.Node
	fromParent, toParent   ast.NodeID
	fromIndex, toIndex     int
}

func (iv moveInverse) undo(s *Session) (OperationResult, error) {
	toParent, ok := s.idx.Node(iv.fromParent)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: undo move: %w: parent %d no longer present", ErrTreeInvariantViolated, iv.fromParent)
	}
	if iv.fromParent == iv.toParent {
		return s.doMoveWithinParent(toParent, iv.toIndex, iv.fromIndex)
	}
	fromParent, ok := s.idx.Node(iv.toParent)
	if !ok {
		return OperationResult{}, fmt.Errorf("editor: undo move: %w: parent %d no longer present", ErrTreeInvariantViolated, iv.toParent)
	}
	return s.doMoveAcrossParents(iv.node, fromParent, iv.toIndex, toParent, iv.fromIndex)
}
func (iv moveInverse) invert() inverse {
	return moveInverse{node: iv.node, fromParent: iv.toParent, fromIndex: iv.toIndex, toParent: iv.fromParent, toIndex: iv.fromIndex}
}
