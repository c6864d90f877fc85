package ast

import (
	"testing"

	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesugarDoBindBecomesSingleBindingLet(t *testing.T) {
	b := NewBuilder()
	x := symbol.Global.Intern("x")
	xPat := b.Build(diag.Span{}, KindPatternVariable, PatternVariablePayload{Name: x})
	bound := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	xref := b.Build(diag.Span{}, KindReferenceSymbolic, ReferenceSymbolicPayload{Name: x})
	do := b.Build(diag.Span{}, KindDo, DoPayload{StmtKinds: []DoStmtKind{DoBind, DoExpr}}, xPat, bound, nil, xref)

	got, err := DesugarDo(b, do)
	require.NoError(t, err)
	require.Equal(t, KindLet, got.Kind())
	assert.Equal(t, 1, got.Payload().(LetPayload).BindingCount)
	// The statement subtrees are shared with the Do, not cloned.
	assert.Same(t, xPat, got.Child(0))
	assert.Same(t, bound, got.Child(1))
	assert.Same(t, xref, got.Child(2))
}

func TestDesugarDoExprStatementBindsToWildcard(t *testing.T) {
	b := NewBuilder()
	first := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	second := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 2})
	do := b.Build(diag.Span{}, KindDo, DoPayload{StmtKinds: []DoStmtKind{DoExpr, DoExpr}}, nil, first, nil, second)

	got, err := DesugarDo(b, do)
	require.NoError(t, err)
	require.Equal(t, KindLet, got.Kind())
	assert.Equal(t, KindPatternWildcard, got.Child(0).Kind())
	assert.Same(t, first, got.Child(1))
	assert.Same(t, second, got.Child(2))
}

func TestDesugarDoTrailingBindEvaluatesToUnit(t *testing.T) {
	b := NewBuilder()
	x := symbol.Global.Intern("y")
	xPat := b.Build(diag.Span{}, KindPatternVariable, PatternVariablePayload{Name: x})
	bound := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	do := b.Build(diag.Span{}, KindDo, DoPayload{StmtKinds: []DoStmtKind{DoBind}}, xPat, bound)

	got, err := DesugarDo(b, do)
	require.NoError(t, err)
	require.Equal(t, KindLet, got.Kind())
	assert.Equal(t, KindLiteralUnit, got.Child(2).Kind())
}

func TestDesugarDoEmptyBlockIsUnit(t *testing.T) {
	b := NewBuilder()
	do := b.Build(diag.Span{}, KindDo, DoPayload{})
	got, err := DesugarDo(b, do)
	require.NoError(t, err)
	assert.Equal(t, KindLiteralUnit, got.Kind())
}

func TestDesugarDoRejectsNonDoNode(t *testing.T) {
	b := NewBuilder()
	lit := b.Build(diag.Span{}, KindLiteralInt, LiteralIntPayload{Value: 1})
	_, err := DesugarDo(b, lit)
	assert.Error(t, err)
}
