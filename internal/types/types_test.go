package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedRowNormalizesOrderAndDuplicates(t *testing.T) {
	r := ClosedRow("State", "IO", "State")
	assert.Equal(t, []string{"IO", "State"}, r.Effects)
	assert.Nil(t, r.Tail)
	assert.False(t, r.Empty())
	assert.True(t, ClosedRow().Empty())
}

func TestUnionMergesEffectsAndPropagatesOpenTail(t *testing.T) {
	open := OpenRow(Var(7), "IO")
	closed := ClosedRow("State")

	merged := closed.Union(open)
	assert.Equal(t, []string{"IO", "State"}, merged.Effects)
	require.NotNil(t, merged.Tail)
	assert.Equal(t, Var(7), *merged.Tail)

	// Union of two closed rows stays closed.
	assert.Nil(t, ClosedRow("A").Union(ClosedRow("B")).Tail)
}

func TestMinusRemovesHandledEffectsButKeepsTail(t *testing.T) {
	r := OpenRow(Var(3), "IO", "State")
	got := r.Minus("IO")
	assert.Equal(t, []string{"State"}, got.Effects)
	require.NotNil(t, got.Tail)
	assert.Equal(t, Var(3), *got.Tail)
	assert.False(t, got.Contains("IO"))
	assert.True(t, got.Contains("State"))
}

func TestRowStringRendersEmptyAndOpenForms(t *testing.T) {
	assert.Equal(t, "∅", ClosedRow().String())
	assert.Equal(t, "{IO}", ClosedRow("IO").String())
	assert.Equal(t, "{IO, ρ2}", OpenRow(Var(2), "IO").String())
}

func TestTypeEqualDistinguishesFunctionEffectRows(t *testing.T) {
	intT := &Type{Kind: KindBase, Base: Int}
	pure := &Type{Kind: KindFunc, From: intT, To: intT, Eff: ClosedRow()}
	effectful := &Type{Kind: KindFunc, From: intT, To: intT, Eff: ClosedRow("IO")}

	assert.True(t, pure.Equal(&Type{Kind: KindFunc, From: intT, To: intT, Eff: ClosedRow()}))
	assert.False(t, pure.Equal(effectful))
}

func TestSchemeStringQuantifiesDeclaredVariables(t *testing.T) {
	v := Var(1)
	s := &Scheme{TypeVars: []Var{v}, Type: &Type{Kind: KindVar, Var: v}}
	assert.Equal(t, "∀a1. a1", s.String())
	assert.Equal(t, "Int", Monomorphic(&Type{Kind: KindBase, Base: Int}).String())
	var nilScheme *Scheme
	assert.Equal(t, "<untyped>", nilScheme.String())
}
