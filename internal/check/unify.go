package check

import (
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/types"
)

// Unifier carries the running substitution for one inference pass: a
// binding from type variable to type, and a separate binding from
// effect-row tail variable to the row it stands for. Keeping the two
// substitutions apart mirrors spec §4.E treating type variables and
// effect (row) variables as distinct quantification sets in Scheme.
type Unifier struct {
	fresh     *freshener
	typeSubst map[types.Var]*types.Type
	rowSubst  map[types.Var]types.EffectRow
}

func newUnifier(fresh *freshener) *Unifier {
	return &Unifier{
		fresh:     fresh,
		typeSubst: map[types.Var]*types.Type{},
		rowSubst:  map[types.Var]types.EffectRow{},
	}
}

// Resolve follows the substitution chain for t, recursively resolving
// every compound field so callers never see a solved-but-still-KindVar
// type hiding inside a List/Record/Func.
func (u *Unifier) Resolve(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KindVar:
		if bound, ok := u.typeSubst[t.Var]; ok {
			return u.Resolve(bound)
		}
		return t
	case types.KindList, types.KindMaybe:
		return &types.Type{Kind: t.Kind, Elem: u.Resolve(t.Elem)}
	case types.KindEither, types.KindResult:
		return &types.Type{Kind: t.Kind, Left: u.Resolve(t.Left), Right: u.Resolve(t.Right)}
	case types.KindTuple:
		items := make([]*types.Type, len(t.Items))
		for i, it := range t.Items {
			items[i] = u.Resolve(it)
		}
		return &types.Type{Kind: t.Kind, Items: items}
	case types.KindRecord:
		fields := make(map[string]*types.Type, len(t.Fields))
		for name, ft := range t.Fields {
			fields[name] = u.Resolve(ft)
		}
		rv := t.RowVar
		if rv != nil {
			if bound, ok := u.rowSubst[*rv]; ok {
				// A resolved row variable folds any extra fields into
				// this record's field set in the caller (field
				// resolution is handled at the record-unification call
				// site, not here); Resolve only propagates the tail.
				rv = bound.Tail
			}
		}
		return &types.Type{Kind: t.Kind, Fields: fields, FieldOrd: append([]string(nil), t.FieldOrd...), RowVar: rv}
	case types.KindVariant:
		args := make([]*types.Type, len(t.NominalArgs))
		for i, a := range t.NominalArgs {
			args[i] = u.Resolve(a)
		}
		return &types.Type{Kind: t.Kind, Nominal: t.Nominal, NominalArgs: args}
	case types.KindFunc:
		return &types.Type{Kind: t.Kind, From: u.Resolve(t.From), To: u.Resolve(t.To), Eff: u.ResolveRow(t.Eff)}
	default:
		return t
	}
}

// ResolveRow follows the tail-variable substitution chain for an effect
// row, merging in whatever effects the bound row contributes.
func (u *Unifier) ResolveRow(r types.EffectRow) types.EffectRow {
	if r.Tail == nil {
		return r
	}
	bound, ok := u.rowSubst[*r.Tail]
	if !ok {
		return r
	}
	merged := r.Union(bound)
	if bound.Tail == nil {
		return types.EffectRow{Effects: merged.Effects}
	}
	return u.ResolveRow(types.EffectRow{Effects: merged.Effects, Tail: bound.Tail})
}

// Unify solves a == b, extending the substitution in place. A non-nil
// Diagnostic means the two types cannot be unified (spec's TypeMismatch
// or OccursCheck failure).
func (u *Unifier) Unify(a, b *types.Type, span diag.Span) *diag.Diagnostic {
	a, b = u.Resolve(a), u.Resolve(b)

	if a.Kind == types.KindVar {
		return u.bindVar(a.Var, b, span)
	}
	if b.Kind == types.KindVar {
		return u.bindVar(b.Var, a, span)
	}
	if a.Kind != b.Kind {
		return mismatch(a, b, span)
	}

	switch a.Kind {
	case types.KindBase:
		if a.Base != b.Base {
			return mismatch(a, b, span)
		}
		return nil
	case types.KindList, types.KindMaybe:
		return u.Unify(a.Elem, b.Elem, span)
	case types.KindEither, types.KindResult:
		if d := u.Unify(a.Left, b.Left, span); d != nil {
			return d
		}
		return u.Unify(a.Right, b.Right, span)
	case types.KindTuple:
		if len(a.Items) != len(b.Items) {
			return mismatch(a, b, span)
		}
		for i := range a.Items {
			if d := u.Unify(a.Items[i], b.Items[i], span); d != nil {
				return d
			}
		}
		return nil
	case types.KindRecord:
		return u.unifyRecords(a, b, span)
	case types.KindVariant:
		if a.Nominal != b.Nominal || len(a.NominalArgs) != len(b.NominalArgs) {
			return mismatch(a, b, span)
		}
		for i := range a.NominalArgs {
			if d := u.Unify(a.NominalArgs[i], b.NominalArgs[i], span); d != nil {
				return d
			}
		}
		return nil
	case types.KindFunc:
		if d := u.Unify(a.From, b.From, span); d != nil {
			return d
		}
		if d := u.Unify(a.To, b.To, span); d != nil {
			return d
		}
		_, d := u.UnifyRow(a.Eff, b.Eff, span)
		return d
	default:
		return mismatch(a, b, span)
	}
}

// unifyRecords implements row-polymorphic record unification: shared
// fields must unify; a field present only on one side is tolerated when
// the other side has an open row variable, which absorbs that extra
// field (spec §4.E: "Records are structurally typed; row
// polymorphism permits extension by a row variable"). Mismatched fields
// with two closed rows are a hard TypeMismatch — this is the "constraint
// postponement" spec mentions only in the sense that the caller may
// choose to defer calling unifyRecords until more field information is
// available; once called, it resolves immediately.
func (u *Unifier) unifyRecords(a, b *types.Type, span diag.Span) *diag.Diagnostic {
	for name, at := range a.Fields {
		if bt, ok := b.Fields[name]; ok {
			if d := u.Unify(at, bt, span); d != nil {
				return d
			}
		} else if b.RowVar == nil {
			return mismatch(a, b, span)
		}
	}
	for name := range b.Fields {
		if _, ok := a.Fields[name]; !ok && a.RowVar == nil {
			return mismatch(a, b, span)
		}
	}
	switch {
	case a.RowVar == nil && b.RowVar == nil:
		return nil
	case a.RowVar != nil && b.RowVar == nil:
		u.typeSubst[*a.RowVar] = &types.Type{Kind: types.KindRecord, Fields: map[string]*types.Type{}}
		return nil
	case a.RowVar == nil && b.RowVar != nil:
		u.typeSubst[*b.RowVar] = &types.Type{Kind: types.KindRecord, Fields: map[string]*types.Type{}}
		return nil
	default:
		u.typeSubst[*a.RowVar] = &types.Type{Kind: types.KindVar, Var: *b.RowVar}
		return nil
	}
}

func (u *Unifier) bindVar(v types.Var, t *types.Type, span diag.Span) *diag.Diagnostic {
	if t.Kind == types.KindVar && t.Var == v {
		return nil
	}
	if occurs(v, t) {
		d := diag.New(diag.KindOccursCheck, span, "type variable a%d occurs in %s", v, t.String())
		return &d
	}
	u.typeSubst[v] = t
	return nil
}

func occurs(v types.Var, t *types.Type) bool {
	switch t.Kind {
	case types.KindVar:
		return t.Var == v
	case types.KindList, types.KindMaybe:
		return occurs(v, t.Elem)
	case types.KindEither, types.KindResult:
		return occurs(v, t.Left) || occurs(v, t.Right)
	case types.KindTuple:
		for _, it := range t.Items {
			if occurs(v, it) {
				return true
			}
		}
		return false
	case types.KindRecord:
		for _, ft := range t.Fields {
			if occurs(v, ft) {
				return true
			}
		}
		return false
	case types.KindVariant:
		for _, a := range t.NominalArgs {
			if occurs(v, a) {
				return true
			}
		}
		return false
	case types.KindFunc:
		return occurs(v, t.From) || occurs(v, t.To)
	default:
		return false
	}
}

// UnifyRow unifies two effect rows (spec §4.E: "treat rows as finite
// multisets plus a tail variable; unify by extracting common prefix,
// opening the shorter with a fresh tail"). Rows here are canonicalized
// sets, not multisets, so "common prefix" becomes "common element set":
// effects present on only one side are folded into the other side's open
// tail if it has one, otherwise the rows are irreconcilable.
func (u *Unifier) UnifyRow(a, b types.EffectRow, span diag.Span) (types.EffectRow, *diag.Diagnostic) {
	a, b = u.ResolveRow(a), u.ResolveRow(b)
	onlyA := a.Minus(b.Effects...).Effects
	onlyB := b.Minus(a.Effects...).Effects

	switch {
	case len(onlyA) == 0 && len(onlyB) == 0:
		switch {
		case a.Tail == nil && b.Tail == nil:
			return a, nil
		case a.Tail != nil && b.Tail == nil:
			u.rowSubst[*a.Tail] = types.ClosedRow()
			return b, nil
		case a.Tail == nil && b.Tail != nil:
			u.rowSubst[*b.Tail] = types.ClosedRow()
			return a, nil
		default:
			u.rowSubst[*a.Tail] = types.EffectRow{Tail: b.Tail}
			return types.EffectRow{Effects: a.Effects, Tail: b.Tail}, nil
		}
	case a.Tail != nil && b.Tail == nil && len(onlyA) == 0:
		u.rowSubst[*a.Tail] = types.ClosedRow(onlyB...)
		return b, nil
	case b.Tail != nil && a.Tail == nil && len(onlyB) == 0:
		u.rowSubst[*b.Tail] = types.ClosedRow(onlyA...)
		return a, nil
	case a.Tail != nil && b.Tail != nil:
		fresh := u.fresh.effectVar()
		u.rowSubst[*a.Tail] = types.OpenRow(fresh, onlyB...)
		u.rowSubst[*b.Tail] = types.OpenRow(fresh, onlyA...)
		return types.EffectRow{Effects: a.Union(b).Effects, Tail: &fresh}, nil
	default:
		d := diag.New(diag.KindEffectConstraintUnsatisfied, span,
			"effect rows %s and %s cannot be unified", a.String(), b.String())
		return types.EffectRow{}, &d
	}
}

func mismatch(a, b *types.Type, span diag.Span) *diag.Diagnostic {
	d := diag.New(diag.KindTypeMismatch, span, "expected %s, found %s", a.String(), b.String())
	return &d
}
