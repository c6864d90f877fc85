package check

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/types"
)

// bindPatternInto unifies ty against pat's shape and extends env with a
// monomorphic binding for every variable pat introduces, returning the
// (possibly more specific, after unification) scrutinee type alongside
// the extended scope. Constructor patterns are bound structurally
// against fresh nominal type arguments rather than against a real
// variant field table — internal/check has no access to the Namespace
// Store's TypeDef declarations, so constructor arity/field typing is
// enforced only by internal consistency across the arms of one Match,
// not against the defining TypeDef. A namespace-aware VariantLookup hook
// would remove this gap; see exhaustiveness.go for the matching caveat.
func (inf *inference) bindPatternInto(pat *ast.Node, ty *types.Type, env *Scope) (*Scope, *types.Type) {
	if pat == nil {
		return env, ty
	}
	switch p := pat.Payload().(type) {
	case ast.PatternWildcardPayload:
		return env, ty

	case ast.PatternVariablePayload:
		if _, shadows := env.Lookup(p.Name); shadows {
			inf.diags = append(inf.diags, diag.Warn(diag.KindNameShadowed, pat.Span(),
				"%s shadows an outer binding of the same name", inf.symbolName(p.Name)))
		}
		return env.Bind(p.Name, types.Monomorphic(ty)), ty

	case ast.PatternLiteralPayload:
		var base types.Base
		switch p.LitKind {
		case ast.LitInt:
			base = types.Int
		case ast.LitFloat:
			base = types.Float
		case ast.LitText:
			base = types.Text
		case ast.LitBool:
			base = types.Bool
		}
		if d := inf.u.Unify(ty, &types.Type{Kind: types.KindBase, Base: base}, pat.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		return env, ty

	case ast.PatternConstructorPayload:
		children := pat.Children()
		args := make([]*types.Type, len(children))
		for i := range children {
			args[i] = inf.fresh.typeVar()
		}
		nominal := &types.Type{Kind: types.KindVariant, Nominal: inf.symbolName(p.Name), NominalArgs: args}
		if d := inf.u.Unify(ty, nominal, pat.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		for i, child := range children {
			env, _ = inf.bindPatternInto(child, args[i], env)
		}
		return env, ty

	case ast.PatternRecordPayload:
		children := pat.Children()
		fields := make(map[string]*types.Type, len(p.FieldNames))
		order := make([]string, len(p.FieldNames))
		fieldVars := make([]*types.Type, len(p.FieldNames))
		for i, name := range p.FieldNames {
			nameStr := inf.symbolName(name)
			fv := inf.fresh.typeVar()
			fields[nameStr] = fv
			order[i] = nameStr
			fieldVars[i] = fv
		}
		rowVar := inf.fresh.effectVar()
		want := &types.Type{Kind: types.KindRecord, Fields: fields, FieldOrd: order, RowVar: &rowVar}
		if d := inf.u.Unify(ty, want, pat.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		for i, child := range children {
			env, _ = inf.bindPatternInto(child, fieldVars[i], env)
		}
		return env, ty

	case ast.PatternConsPayload:
		elem := inf.fresh.typeVar()
		listType := &types.Type{Kind: types.KindList, Elem: elem}
		if d := inf.u.Unify(ty, listType, pat.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		env, _ = inf.bindPatternInto(pat.Child(0), elem, env)
		env, _ = inf.bindPatternInto(pat.Child(1), listType, env)
		return env, ty

	case ast.PatternTuplePayload:
		children := pat.Children()
		items := make([]*types.Type, len(children))
		for i := range children {
			items[i] = inf.fresh.typeVar()
		}
		if d := inf.u.Unify(ty, &types.Type{Kind: types.KindTuple, Items: items}, pat.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		for i, child := range children {
			env, _ = inf.bindPatternInto(child, items[i], env)
		}
		return env, ty

	default:
		return env, ty
	}
}

func (inf *inference) bindPattern(pat *ast.Node, ty *types.Type, env *Scope) (*types.Type, *Scope) {
	env, ty = inf.bindPatternInto(pat, ty, env)
	return ty, env
}

func (inf *inference) bindPatternScope(pat *ast.Node, ty *types.Type, env *Scope) (*Scope, *types.Type) {
	return inf.bindPatternInto(pat, ty, env)
}

func (inf *inference) bindPatternScope2(pat *ast.Node, ty *types.Type, env *Scope) *Scope {
	env, _ = inf.bindPatternInto(pat, ty, env)
	return env
}

// bindPatternScheme binds pat against an already-generalized scheme. Only
// a bare PatternVariable can receive true polymorphism (spec §4.E
// generalization is defined over a single let-bound name); destructuring
// patterns fall back to binding their variables against the scheme's
// monotype body, matching ML's usual restriction of let-polymorphism to
// variable bindings.
func (inf *inference) bindPatternScheme(pat *ast.Node, scheme *types.Scheme, env *Scope) *Scope {
	if pat == nil {
		return env
	}
	if p, ok := pat.Payload().(ast.PatternVariablePayload); ok {
		return env.Bind(p.Name, scheme)
	}
	env, _ = inf.bindPatternInto(pat, scheme.Type, env)
	return env
}
