package check

import "github.com/ribbonlang/ribbon/internal/types"

// collectTypeVars walks a resolved type collecting every KindVar it
// mentions. A function's effect row is not visited; collectEffectVars
// collects its tail.
func collectTypeVars(t *types.Type, out map[types.Var]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case types.KindVar:
		out[t.Var] = true
	case types.KindList, types.KindMaybe:
		collectTypeVars(t.Elem, out)
	case types.KindEither, types.KindResult:
		collectTypeVars(t.Left, out)
		collectTypeVars(t.Right, out)
	case types.KindTuple:
		for _, it := range t.Items {
			collectTypeVars(it, out)
		}
	case types.KindRecord:
		for _, ft := range t.Fields {
			collectTypeVars(ft, out)
		}
	case types.KindVariant:
		for _, a := range t.NominalArgs {
			collectTypeVars(a, out)
		}
	case types.KindFunc:
		collectTypeVars(t.From, out)
		collectTypeVars(t.To, out)
	}
}

// collectEffectVars walks a resolved type collecting every open row tail
// variable reachable from it (the effect-variable analogue of
// collectTypeVars; only KindFunc carries an effect row).
func collectEffectVars(t *types.Type, out map[types.Var]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case types.KindList, types.KindMaybe:
		collectEffectVars(t.Elem, out)
	case types.KindEither, types.KindResult:
		collectEffectVars(t.Left, out)
		collectEffectVars(t.Right, out)
	case types.KindTuple:
		for _, it := range t.Items {
			collectEffectVars(it, out)
		}
	case types.KindRecord:
		for _, ft := range t.Fields {
			collectEffectVars(ft, out)
		}
	case types.KindVariant:
		for _, a := range t.NominalArgs {
			collectEffectVars(a, out)
		}
	case types.KindFunc:
		collectEffectVars(t.From, out)
		collectEffectVars(t.To, out)
		if t.Eff.Tail != nil {
			out[*t.Eff.Tail] = true
		}
	}
}

// envFreeVars collects every type and effect variable free in env's
// bindings — i.e. mentioned in a binding's type but not already
// quantified by that binding's own Scheme. These must never be
// generalized over by an inner let, or two unrelated uses of an outer
// variable would be unsoundly allowed to disagree.
func envFreeVars(env *Scope, u *Unifier) (freeTypes, freeEffects map[types.Var]bool) {
	freeTypes, freeEffects = map[types.Var]bool{}, map[types.Var]bool{}
	seen := map[*Scope]bool{}
	for cur := env; cur != nil && !seen[cur]; cur = cur.parent {
		seen[cur] = true
		for _, scheme := range cur.bindings {
			boundT := map[types.Var]bool{}
			for _, v := range scheme.TypeVars {
				boundT[v] = true
			}
			boundE := map[types.Var]bool{}
			for _, v := range scheme.EffectVars {
				boundE[v] = true
			}
			resolved := u.Resolve(scheme.Type)
			all := map[types.Var]bool{}
			collectTypeVars(resolved, all)
			for v := range all {
				if !boundT[v] {
					freeTypes[v] = true
				}
			}
			allE := map[types.Var]bool{}
			collectEffectVars(resolved, allE)
			for v := range allE {
				if !boundE[v] {
					freeEffects[v] = true
				}
			}
		}
	}
	return freeTypes, freeEffects
}

// generalize closes over t, quantifying every type/effect variable free
// in t but not free in env (spec §4.E: "Let-generalization over both
// type and effect variables"). isValue marks whether the let-bound
// expression is a syntactic value (a Lambda, a literal or a reference;
// see isSyntacticValue) — when it is not, or when its
// inferred effect row is non-empty, effect variables are withheld from
// generalization (spec: "values with observable effects are not
// generalized over effect variables (value restriction for effects)").
func generalize(env *Scope, t *types.Type, eff types.EffectRow, isValue bool, u *Unifier) *types.Scheme {
	resolved := u.Resolve(t)
	envTypeVars, envEffectVars := envFreeVars(env, u)

	all := map[types.Var]bool{}
	collectTypeVars(resolved, all)
	var typeVars []types.Var
	for v := range all {
		if !envTypeVars[v] {
			typeVars = append(typeVars, v)
		}
	}

	var effectVars []types.Var
	resolvedEff := u.ResolveRow(eff)
	if isValue && resolvedEff.Empty() {
		allE := map[types.Var]bool{}
		collectEffectVars(resolved, allE)
		for v := range allE {
			if !envEffectVars[v] {
				effectVars = append(effectVars, v)
			}
		}
	}

	return &types.Scheme{TypeVars: typeVars, EffectVars: effectVars, Type: resolved}
}

// instantiate replaces every quantified variable in scheme with a fresh
// one, producing a monotype usable at a particular reference site.
func instantiate(scheme *types.Scheme, fresh *freshener) *types.Type {
	if len(scheme.TypeVars) == 0 && len(scheme.EffectVars) == 0 {
		return scheme.Type
	}
	typeSub := make(map[types.Var]*types.Type, len(scheme.TypeVars))
	for _, v := range scheme.TypeVars {
		typeSub[v] = fresh.typeVar()
	}
	effectSub := make(map[types.Var]types.Var, len(scheme.EffectVars))
	for _, v := range scheme.EffectVars {
		effectSub[v] = fresh.effectVar()
	}
	return substitute(scheme.Type, typeSub, effectSub)
}

func substitute(t *types.Type, typeSub map[types.Var]*types.Type, effectSub map[types.Var]types.Var) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KindVar:
		if fresh, ok := typeSub[t.Var]; ok {
			return fresh
		}
		return t
	case types.KindList, types.KindMaybe:
		return &types.Type{Kind: t.Kind, Elem: substitute(t.Elem, typeSub, effectSub)}
	case types.KindEither, types.KindResult:
		return &types.Type{Kind: t.Kind, Left: substitute(t.Left, typeSub, effectSub), Right: substitute(t.Right, typeSub, effectSub)}
	case types.KindTuple:
		items := make([]*types.Type, len(t.Items))
		for i, it := range t.Items {
			items[i] = substitute(it, typeSub, effectSub)
		}
		return &types.Type{Kind: t.Kind, Items: items}
	case types.KindRecord:
		fields := make(map[string]*types.Type, len(t.Fields))
		for name, ft := range t.Fields {
			fields[name] = substitute(ft, typeSub, effectSub)
		}
		return &types.Type{Kind: t.Kind, Fields: fields, FieldOrd: append([]string(nil), t.FieldOrd...), RowVar: t.RowVar}
	case types.KindVariant:
		args := make([]*types.Type, len(t.NominalArgs))
		for i, a := range t.NominalArgs {
			args[i] = substitute(a, typeSub, effectSub)
		}
		return &types.Type{Kind: t.Kind, Nominal: t.Nominal, NominalArgs: args}
	case types.KindFunc:
		eff := types.EffectRow{Effects: append([]string(nil), t.Eff.Effects...), Tail: t.Eff.Tail}
		if t.Eff.Tail != nil {
			if fresh, ok := effectSub[*t.Eff.Tail]; ok {
				eff.Tail = &fresh
			}
		}
		return &types.Type{
			Kind: t.Kind,
			From: substitute(t.From, typeSub, effectSub),
			To:   substitute(t.To, typeSub, effectSub),
			Eff:  eff,
		}
	default:
		return t
	}
}
