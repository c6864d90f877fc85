package check

import "github.com/ribbonlang/ribbon/internal/types"

// freshener allocates unification variables. It is split out of Checker
// so a single inference pass (which may spin up several freshener-using
// helper calls) can be tested in isolation from the memoization machinery.
type freshener struct {
	next types.Var
}

func (f *freshener) typeVar() *types.Type {
	f.next++
	return &types.Type{Kind: types.KindVar, Var: f.next}
}

func (f *freshener) effectVar() types.Var {
	f.next++
	return f.next
}
