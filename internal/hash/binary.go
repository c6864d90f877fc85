package hash

import (
	"crypto/sha256"
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// Magic identifies the binary AST container: 0x00 'x' 'l' 'g'.
var Magic = [4]byte{0x00, 0x78, 0x6C, 0x67}

// FormatVersion is the current container format version.
const FormatVersion byte = 1

// EncodeUnit serializes a CompilationUnit node into the binary container
// format: magic, version byte, the canonical bytes §4.C already defines
// for hashing, and a SHA-256 integrity footer over everything before it.
// The Bridge's exported files are its textual form, not this container,
// and StructuralDiff compares node trees, not container bytes.
func EncodeUnit(reg *symbol.Registry, unit *ast.Node) ([]byte, error) {
	if unit.Kind() != ast.KindCompilationUnit {
		return nil, fmt.Errorf("hash: EncodeUnit: expected CompilationUnit, got %s", unit.Kind())
	}

	canonical, err := canonicalBytes(reg, unit)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 5+len(canonical)+32)
	out = append(out, Magic[:]...)
	out = append(out, FormatVersion)
	out = append(out, canonical...)
	footer := sha256.Sum256(out)
	out = append(out, footer[:]...)
	return out, nil
}

// canonicalBytes writes each node's tag, fields and hashable annotations
// as Hasher.Hash does, but where the hash input carries a child's digest
// it inlines the child's full canonical bytes — the container embeds the
// full canonical form, not just its hash, so VerifyUnit can recompute the integrity
// footer independently of any in-memory Node tree.
func canonicalBytes(reg *symbol.Registry, n *ast.Node) ([]byte, error) {
	h := New(reg)
	if _, err := h.Hash(n); err != nil {
		return nil, err
	}
	return canonicalNodeBytes(h, reg, n)
}

func canonicalNodeBytes(h *Hasher, reg *symbol.Registry, n *ast.Node) ([]byte, error) {
	w := NewWriter()
	w.WriteByte(n.Kind().TagByte())
	if err := encodeFields(w, reg, n); err != nil {
		return nil, err
	}
	if err := writeHashableAnnotations(w, n.Annotations()); err != nil {
		return nil, err
	}
	w.WriteCount(len(n.Children()))
	for _, c := range n.Children() {
		w.WritePresence(c != nil)
		if c == nil {
			continue
		}
		childBytes, err := canonicalNodeBytes(h, reg, c)
		if err != nil {
			return nil, err
		}
		w.buf = append(w.buf, childBytes...)
	}
	return w.Bytes(), nil
}

// VerifyUnit checks a container's magic, version and integrity footer
// without reconstructing a Node tree — the canonical form is designed to
// be hashed, not re-parsed; full round-trip persistence goes through
// internal/bridge's human-readable per-definition files instead. VerifyUnit
// returns the canonical payload bytes (stripped of container framing) on
// success, for callers that want to feed them to a future structural
// comparison without re-walking the original AST.
func VerifyUnit(data []byte) (payload []byte, version byte, err error) {
	if len(data) < 5+32 {
		return nil, 0, fmt.Errorf("hash: container too short (%d bytes)", len(data))
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != Magic {
		return nil, 0, fmt.Errorf("hash: bad magic %x, want %x", magic, Magic)
	}
	version = data[4]
	if version != FormatVersion {
		return nil, 0, fmt.Errorf("hash: unsupported format version %d", version)
	}
	bodyEnd := len(data) - 32
	gotFooter := sha256.Sum256(data[:bodyEnd])
	var wantFooter [32]byte
	copy(wantFooter[:], data[bodyEnd:])
	if gotFooter != wantFooter {
		return nil, 0, fmt.Errorf("hash: integrity footer mismatch, container is corrupt")
	}
	return data[5:bodyEnd], version, nil
}
