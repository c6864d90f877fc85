package editor

import (
	"errors"
	"sync"
)

// ErrNothingToUndo and ErrNothingToRedo are returned when a stack is empty.
var (
	ErrNothingToUndo = errors.New("editor: nothing to undo")
	ErrNothingToRedo = errors.New("editor: nothing to redo")
)

type historyEntry struct {
	label string
	inv   inverse
}

// History is a Session's undo/redo stack. Every committed operation
// (atomic, batched or transactional) pushes one entry and clears the
// redo stack, the conventional editor-history discipline. Undo and Redo
// are each other's dual: undoing an entry pushes its invert() onto the
// opposite stack, so redoing an undo — or undoing a redo — always
// reconstructs exactly the operation that produced it.
type History struct {
	mu   sync.Mutex
	undo []historyEntry
	redo []historyEntry
}

// NewHistory returns an empty undo/redo stack.
func NewHistory() *History {
	return &History{}
}

func (h *History) record(inv inverse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, historyEntry{inv: inv})
	h.redo = nil
}

// recordLabeled is used by Batch/Transaction, which have a caller-given
// label to attach to the undo entry.
func (h *History) recordLabeled(label string, inv inverse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, historyEntry{label: label, inv: inv})
	h.redo = nil
}

// CanUndo reports whether Undo has an entry to apply.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether Redo has an entry to apply.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Undo pops and applies the most recent undo entry, pushing its dual
// onto the redo stack. It does not take Session.mu itself — the caller
// (Session.Undo) holds that lock for the duration of the apply, the same
// as every other mutating Session method.
func (h *History) Undo(s *Session) (OperationResult, error) {
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return OperationResult{}, ErrNothingToUndo
	}
	entry := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.mu.Unlock()

	res, err := entry.inv.undo(s)
	if err != nil {
		h.mu.Lock()
		h.undo = append(h.undo, entry)
		h.mu.Unlock()
		return OperationResult{}, err
	}

	h.mu.Lock()
	h.redo = append(h.redo, historyEntry{label: entry.label, inv: entry.inv.invert()})
	h.mu.Unlock()
	return res, nil
}

// Redo pops and applies the most recent redo entry, pushing its dual
// back onto the undo stack.
func (h *History) Redo(s *Session) (OperationResult, error) {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return OperationResult{}, ErrNothingToRedo
	}
	entry := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.mu.Unlock()

	res, err := entry.inv.undo(s)
	if err != nil {
		h.mu.Lock()
		h.redo = append(h.redo, entry)
		h.mu.Unlock()
		return OperationResult{}, err
	}

	h.mu.Lock()
	h.undo = append(h.undo, historyEntry{label: entry.label, inv: entry.inv.invert()})
	h.mu.Unlock()
	return res, nil
}

// HistorySnapshot is an opaque copy of a History's undo and redo stacks,
// taken with Snapshot and reinstalled with Restore. The entries hold live
// AST node references, so a snapshot is only meaningful against a Session
// over the same AST version lineage it was taken from — rebuilding a
// Session over a definition's committed head and restoring a snapshot
// taken before teardown resumes exactly where the previous session's
// stacks left off.
type HistorySnapshot struct {
	undo []historyEntry
	redo []historyEntry
}

// Snapshot copies the current undo/redo stacks.
func (h *History) Snapshot() HistorySnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HistorySnapshot{
		undo: append([]historyEntry{}, h.undo...),
		redo: append([]historyEntry{}, h.redo...),
	}
}

// Restore replaces the stacks with snap's, discarding whatever the
// History accumulated since.
func (h *History) Restore(snap HistorySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append([]historyEntry{}, snap.undo...)
	h.redo = append([]historyEntry{}, snap.redo...)
}

// Undo pops the Session's most recent undo entry and applies it.
func (s *Session) Undo() (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Undo(s)
}

// Redo re-applies the most recently undone entry.
func (s *Session) Redo() (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Redo(s)
}
