package editor

import (
	"errors"
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/index"
)

// ErrInvalidParent and ErrTreeInvariantViolated are the structural
// failure modes of a spine rebuild (spec §7: "structural errors ...
// always fatal"). Callers that want to render these as diag.Diagnostic
// can wrap them with diag.KindInvalidParent / diag.KindTreeInvariantViolated;
// the editor itself returns them as plain errors so a failed operation
// never touches the session's committed root.
var (
	ErrInvalidParent         = errors.New("editor: invalid parent")
	ErrTreeInvariantViolated = errors.New("editor: tree invariant violated")
)

// rebuildSpine replaces old with replacement wherever it sits in root —
// which may be arbitrarily deep — by walking up the Hierarchy Index one
// ancestor at a time and rebuilding each via Builder.ReplaceChild (or
// DeleteChild when replacement is nil), so every sibling subtree that
// wasn't on the path from old to root is shared by reference, never
// copied (spec §4.B invariant 2: "replacement produces a new node and a
// new spine to the root"). It incrementally reindexes each level as it
// goes, and returns the new root plus every NodeID on the new spine,
// root-to-replacement order.
func rebuildSpine(idx *index.Indices, b *ast.Builder, root, old, replacement *ast.Node) (*ast.Node, []ast.NodeID, error) {
	if old.ID() == root.ID() {
		if replacement == nil {
			return nil, nil, fmt.Errorf("editor: cannot delete the root node: %w", ErrInvalidParent)
		}
		idx.ReindexSubtree(old, replacement, 0)
		return replacement, []ast.NodeID{replacement.ID()}, nil
	}

	parentID, ok := idx.ParentOf(old.ID())
	if !ok {
		return nil, nil, fmt.Errorf("editor: node %d has no recorded parent: %w", old.ID(), ErrTreeInvariantViolated)
	}
	parentNode, ok := idx.Node(parentID)
	if !ok {
		return nil, nil, fmt.Errorf("editor: parent node %d is not indexed: %w", parentID, ErrTreeInvariantViolated)
	}

	childIdx := indexOfChild(parentNode, old.ID())
	if childIdx < 0 {
		return nil, nil, fmt.Errorf("editor: node %d not found among parent %d's children: %w", old.ID(), parentID, ErrTreeInvariantViolated)
	}

	var newParentNode *ast.Node
	var err error
	if replacement == nil {
		newParentNode, err = b.DeleteChild(parentNode, childIdx)
	} else {
		newParentNode, err = b.ReplaceChild(parentNode, childIdx, replacement)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("editor: %w: %v", ErrInvalidParent, err)
	}

	idx.ReindexSubtree(old, replacement, parentID)

	newRoot, spine, err := rebuildSpine(idx, b, root, parentNode, newParentNode)
	if err != nil {
		return nil, nil, err
	}
	if replacement != nil {
		spine = append(spine, replacement.ID())
	}
	return newRoot, spine, nil
}

// rebuildSpineInsert splices node into parent at index and propagates the
// resulting new parent version up to the root via rebuildSpine, reusing
// the exact same ancestor-rebuild logic a replace or delete uses — an
// insertion is just "parent is replaced by a version of itself with one
// more child" from the spine's point of view.
func rebuildSpineInsert(idx *index.Indices, b *ast.Builder, root, parent *ast.Node, index_ int, node *ast.Node) (*ast.Node, []ast.NodeID, error) {
	newParent, err := b.InsertChild(parent, index_, node)
	if err != nil {
		return nil, nil, fmt.Errorf("editor: %w: %v", ErrInvalidParent, err)
	}
	return rebuildSpine(idx, b, root, parent, newParent)
}

func indexOfChild(parent *ast.Node, id ast.NodeID) int {
	for i, c := range parent.Children() {
		if c != nil && c.ID() == id {
			return i
		}
	}
	return -1
}
