package hash

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
)

// FieldDiff is one location where two node trees diverge structurally.
// Path is a dotted breadcrumb from the diff root (e.g.
// "root.children[2].payload") suitable for display in a compatibility
// report; Old/New are human-readable renderings, not canonical bytes.
type FieldDiff struct {
	Path string
	Old  string
	New  string
}

// StructuralDiff walks two node trees in lockstep and reports every
// point where they diverge, short-circuiting whole subtrees whose content
// hash already matches. The Namespace Store's CompatibilityCheck returns
// its result alongside the patch/minor/major level, showing where two
// versions differ, which the base content hash — a single opaque digest —
// cannot show on its own.
func StructuralDiff(h *Hasher, a, b *ast.Node) ([]FieldDiff, error) {
	var out []FieldDiff
	if err := diffNode(h, a, b, "root", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diffNode(h *Hasher, a, b *ast.Node, path string, out *[]FieldDiff) error {
	if a == nil || b == nil {
		if a != b {
			*out = append(*out, FieldDiff{Path: path, Old: renderOrNil(a), New: renderOrNil(b)})
		}
		return nil
	}

	ha, err := h.Hash(a)
	if err != nil {
		return fmt.Errorf("hash: diff: %s: %w", path, err)
	}
	hb, err := h.Hash(b)
	if err != nil {
		return fmt.Errorf("hash: diff: %s: %w", path, err)
	}
	if ha == hb {
		return nil
	}

	if a.Kind() != b.Kind() {
		*out = append(*out, FieldDiff{Path: path + ".kind", Old: a.Kind().String(), New: b.Kind().String()})
		return nil
	}

	if fmt.Sprintf("%+v", a.Payload()) != fmt.Sprintf("%+v", b.Payload()) {
		*out = append(*out, FieldDiff{
			Path: path + ".payload",
			Old:  fmt.Sprintf("%+v", a.Payload()),
			New:  fmt.Sprintf("%+v", b.Payload()),
		})
	}

	ac, bc := a.Children(), b.Children()
	n := len(ac)
	if len(bc) > n {
		n = len(bc)
	}
	for i := 0; i < n; i++ {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		switch {
		case i >= len(ac):
			*out = append(*out, FieldDiff{Path: childPath, Old: "<absent>", New: bc[i].Kind().String()})
		case i >= len(bc):
			*out = append(*out, FieldDiff{Path: childPath, Old: ac[i].Kind().String(), New: "<absent>"})
		default:
			if err := diffNode(h, ac[i], bc[i], childPath, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderOrNil(n *ast.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Kind().String()
}
