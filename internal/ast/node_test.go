package ast

import (
	"testing"

	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleLet(t *testing.T, b *Builder) *Node {
	t.Helper()
	one := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	x := b.Build(diag.Span{}, KindPatternVariable, PatternVariablePayload{Name: symbol.Global.Intern("x")})
	ref := b.Build(diag.Span{}, KindReferenceSymbolic, ReferenceSymbolicPayload{Name: symbol.Global.Intern("x")})
	return b.Build(diag.Span{}, KindLet, LetPayload{BindingCount: 1}, x, one, ref)
}

func TestBuilderAllocatesIncreasingNodeIDs(t *testing.T) {
	b := NewBuilder()
	n1 := b.Build(diag.Span{}, KindLiteralUnit, LiteralUnitPayload{})
	n2 := b.Build(diag.Span{}, KindLiteralUnit, LiteralUnitPayload{})
	assert.NotEqual(t, n1.ID(), n2.ID())
	assert.Less(t, n1.ID(), n2.ID())
}

func TestBuildRejectsMismatchedPayloadKind(t *testing.T) {
	b := NewBuilder()
	assert.Panics(t, func() {
		b.Build(diag.Span{}, KindLiteralInt, LiteralFloatPayload{Value: 1.5})
	})
}

func TestReplaceChildSharesUntouchedSiblings(t *testing.T) {
	b := NewBuilder()
	root := buildSampleLet(t, b)
	newBody := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 2})

	replaced, err := b.ReplaceChild(root, 2, newBody)
	require.NoError(t, err)

	assert.NotEqual(t, root.ID(), replaced.ID())
	assert.Same(t, root.Child(0), replaced.Child(0))
	assert.Same(t, root.Child(1), replaced.Child(1))
	assert.NotSame(t, root.Child(2), replaced.Child(2))
	assert.Equal(t, newBody, replaced.Child(2))

	// The original node is untouched — older versions keep seeing the old body.
	assert.Equal(t, KindReferenceSymbolic, root.Child(2).Kind())
}

func TestReplaceChildRejectsOutOfRangeIndex(t *testing.T) {
	b := NewBuilder()
	root := buildSampleLet(t, b)
	_, err := b.ReplaceChild(root, 99, root)
	assert.Error(t, err)
}

func TestInsertAndDeleteChildPreserveOrder(t *testing.T) {
	b := NewBuilder()
	a := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	c := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 3})
	list := b.Build(diag.Span{}, KindLiteralList, LiteralListPayload{}, a, c)

	bb := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 2})
	withB, err := b.InsertChild(list, 1, bb)
	require.NoError(t, err)
	require.Len(t, withB.Children(), 3)
	assert.Equal(t, int64(2), withB.Child(1).Payload().(LiteralIntPayload).Value)

	withoutA, err := b.DeleteChild(withB, 0)
	require.NoError(t, err)
	require.Len(t, withoutA.Children(), 2)
	assert.Equal(t, int64(2), withoutA.Child(0).Payload().(LiteralIntPayload).Value)
	assert.Equal(t, int64(3), withoutA.Child(1).Payload().(LiteralIntPayload).Value)
}

func TestMoveChildReorders(t *testing.T) {
	b := NewBuilder()
	a := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	c := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 2})
	d := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 3})
	list := b.Build(diag.Span{}, KindLiteralList, LiteralListPayload{}, a, c, d)

	moved, err := b.MoveChild(list, 0, 2)
	require.NoError(t, err)
	require.Len(t, moved.Children(), 3)
	assert.Equal(t, []int64{2, 3, 1}, valuesOf(moved))
}

func valuesOf(n *Node) []int64 {
	out := make([]int64, 0, len(n.Children()))
	for _, c := range n.Children() {
		out = append(out, c.Payload().(LiteralIntPayload).Value)
	}
	return out
}

func TestPreorderVisitsParentBeforeChildren(t *testing.T) {
	b := NewBuilder()
	root := buildSampleLet(t, b)
	kinds := make([]Kind, 0)
	for n := range Preorder(root) {
		kinds = append(kinds, n.Kind())
	}
	assert.Equal(t, []Kind{KindLet, KindPatternVariable, KindLiteralInt, KindReferenceSymbolic}, kinds)
}

func TestPreorderStopsEarlyOnBreak(t *testing.T) {
	b := NewBuilder()
	root := buildSampleLet(t, b)
	visited := 0
	for range Preorder(root) {
		visited++
		if visited == 2 {
			break
		}
	}
	assert.Equal(t, 2, visited)
}

func TestFindLocatesFirstMatch(t *testing.T) {
	b := NewBuilder()
	root := buildSampleLet(t, b)
	found, ok := Find(root, func(n *Node) bool { return n.Kind() == KindReferenceSymbolic })
	require.True(t, ok)
	assert.Equal(t, KindReferenceSymbolic, found.Kind())
}

func TestAnnotationsWithPreservesInsertionOrderAndExcludesVolatile(t *testing.T) {
	a := NewAnnotations().
		With("doc", AnnotationValue{Text: "does a thing"}).
		With("deprecated", AnnotationValue{Bool: true}).
		With("doc", AnnotationValue{Text: "updated doc"})

	assert.Equal(t, []string{"doc", "deprecated"}, a.Keys())
	assert.Equal(t, []string{"deprecated"}, a.HashableKeys())

	v, ok := a.Get("doc")
	require.True(t, ok)
	assert.Equal(t, "updated doc", v.Text)
}

func TestWithTypeInfoKeepsIdentityAndLeavesOriginalUntouched(t *testing.T) {
	b := NewBuilder()
	body := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	n := b.Build(diag.Span{}, KindValueDef, ValueDefPayload{Name: symbol.Global.Intern("v")}, body)

	withType := n.WithTypeInfo(&types.Scheme{})
	// Attaching inferred metadata is not an edit: the node keeps its ID
	// and children, and the original copy stays type-free.
	assert.Equal(t, n.ID(), withType.ID())
	assert.Same(t, n.Child(0), withType.Child(0))
	assert.Nil(t, n.TypeInfo())
	assert.NotNil(t, withType.TypeInfo())
}

func TestSymbolOfReturnsDefiningSymbolWhenPresent(t *testing.T) {
	b := NewBuilder()
	name := symbol.Global.Intern("answer")
	n := b.Build(diag.Span{}, KindValueDef, ValueDefPayload{Name: name})
	got, ok := SymbolOf(n)
	require.True(t, ok)
	assert.Equal(t, name, got)

	lit := b.Build(diag.Span{}, KindLiteralUnit, LiteralUnitPayload{})
	_, ok = SymbolOf(lit)
	assert.False(t, ok)
}
