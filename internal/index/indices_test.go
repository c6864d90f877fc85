package index

import (
	"context"
	"testing"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) (*ast.Builder, *ast.Node, symbol.ID) {
	t.Helper()
	reg := symbol.New()
	name := reg.Intern("x")
	b := ast.NewBuilder()

	one := b.Build(diag.Span{Start: 10, End: 11}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})
	pat := b.Build(diag.Span{Start: 4, End: 5}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: name})
	ref := b.Build(diag.Span{Start: 14, End: 15}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: name})
	let := b.Build(diag.Span{Start: 0, End: 16}, ast.KindLet, ast.LetPayload{BindingCount: 1}, pat, one, ref)
	return b, let, name
}

func TestBuildIndexesKindSymbolAndHierarchy(t *testing.T) {
	_, let, name := buildSample(t)
	idx := Build(let)

	assert.Contains(t, idx.ByKind(ast.KindLet), let.ID())
	assert.Equal(t, []ast.NodeID{let.Child(0).ID()}, idx.Defining(name))
	assert.Equal(t, []ast.NodeID{let.Child(2).ID()}, idx.Referencing(name))

	parent, ok := idx.ParentOf(let.Child(1).ID())
	require.True(t, ok)
	assert.Equal(t, let.ID(), parent)

	_, ok = idx.ParentOf(let.ID())
	assert.False(t, ok, "root has no parent in the Hierarchy Index")
}

func TestContainingNodeFindsInnermostSpan(t *testing.T) {
	_, let, _ := buildSample(t)
	idx := Build(let)

	id, ok := idx.ContainingNode(10)
	require.True(t, ok)
	n, _ := idx.Node(id)
	assert.Equal(t, ast.KindLiteralInt, n.Kind())
}

func TestNodesInRangeOnlyReturnsFullyContainedSpans(t *testing.T) {
	_, let, _ := buildSample(t)
	idx := Build(let)

	ids := idx.NodesInRange(4, 11)
	set := setOf(ids)
	assert.True(t, set[let.Child(0).ID()])
	assert.True(t, set[let.Child(1).ID()])
	assert.False(t, set[let.ID()], "the whole Let spans past the requested range")
}

func TestAndOrFilterCompose(t *testing.T) {
	_, let, _ := buildSample(t)
	idx := Build(let)

	lets := idx.ByKindSet(ast.KindLet)
	refs := idx.ByKindSet(ast.KindReferenceSymbolic)
	union := Or(lets, refs)
	assert.Len(t, union, 2)

	empty := And(lets, refs)
	assert.Empty(t, empty)

	pure := Filter(idx, lets, func(idx *Indices, n *ast.Node) bool { return n.Kind() == ast.KindLet })
	assert.Len(t, pure, 1)
}

func TestReindexSubtreeUpdatesIncrementally(t *testing.T) {
	b, let, _ := buildSample(t)
	idx := Build(let)

	replacement := b.Build(diag.Span{Start: 10, End: 11}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 99})
	idx.ReindexSubtree(let.Child(1), replacement, let.ID())

	assert.NotContains(t, idx.ByKind(ast.KindLiteralInt), let.Child(1).ID())
	assert.Contains(t, idx.ByKind(ast.KindLiteralInt), replacement.ID())
	parent, ok := idx.ParentOf(replacement.ID())
	require.True(t, ok)
	assert.Equal(t, let.ID(), parent)
}

func TestDependencyIndexAndTransitiveDependents(t *testing.T) {
	b := ast.NewBuilder()
	hA := ast.Digest{0xA}
	hB := ast.Digest{0xB}
	hC := ast.Digest{0xC}

	refToA := b.Build(diag.Span{}, ast.KindReferenceHashAnchored, ast.ReferenceHashAnchoredPayload{Hash: hA})
	defB := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{}, refToA)

	refToB := b.Build(diag.Span{}, ast.KindReferenceHashAnchored, ast.ReferenceHashAnchoredPayload{Hash: hB})
	defC := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{}, refToB)

	idx := New()
	idx.BuildDependency(hB, defB, nil)
	idx.BuildDependency(hC, defC, nil)

	assert.ElementsMatch(t, []ast.Digest{hA}, idx.DependenciesOf(hB))
	assert.ElementsMatch(t, []ast.Digest{hB}, idx.DependenciesOf(hC))
	assert.ElementsMatch(t, []ast.Digest{hB, hC}, idx.TransitiveDependents(hA))
}

func TestTransitiveDependentsContextHonorsCancellation(t *testing.T) {
	b := ast.NewBuilder()
	hA := ast.Digest{0xA}
	hB := ast.Digest{0xB}

	refToA := b.Build(diag.Span{}, ast.KindReferenceHashAnchored, ast.ReferenceHashAnchoredPayload{Hash: hA})
	defB := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{}, refToA)

	idx := New()
	idx.BuildDependency(hB, defB, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.TransitiveDependentsContext(ctx, hA)
	require.Error(t, err)
	var d diag.Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, diag.KindOperationCancelled, d.Kind)
}

func TestPatternMatchWithHoles(t *testing.T) {
	_, let, _ := buildSample(t)

	whole := &Pattern{Kind: ast.KindLet, Children: []*Pattern{AnyNode(), AnyNode(), AnyNode()}}
	assert.True(t, Match(let, whole))

	wrongArity := &Pattern{Kind: ast.KindLet, Children: []*Pattern{AnyNode()}}
	assert.False(t, Match(let, wrongArity))

	anyKindIgnoreChildren := OfKind(ast.KindLet)
	assert.True(t, Match(let, anyKindIgnoreChildren))

	assert.False(t, Match(let, OfKind(ast.KindIf)))
}
