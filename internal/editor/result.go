// Package editor implements the AST editor engine (spec §4.F): the
// atomic tree operations (insert, delete, replace, move), the semantic
// operations built on top of them (rename, extract/inline definition,
// change signature), batching with transactional rollback, and an
// undo/redo history with crash-durable snapshots.
//
// Every operation follows the same four-step contract: pre-validate the
// edit against the Builder (structural errors are fatal and never reach
// the tree), apply it and rebuild the spine from the changed node to the
// root, incrementally update the Index Collection over that spine, then
// run the Type & Effect Checker over the affected definitions — whose
// diagnostics are attached to the result but never roll back an
// otherwise-valid structural edit (spec §7: naming/typing/version errors
// are collected, not fatal).
package editor

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
)

// OperationResult is what every editor operation returns: the new root
// produced by the edit, every node on the edit's spine (the set the
// checker invalidated and the caller should consider "affected"), and
// the diagnostics the checker collected while rechecking them.
type OperationResult struct {
	NewRoot       *ast.Node
	AffectedNodes []ast.NodeID
	Diagnostics   []diag.Diagnostic
}
