package check

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
)

// inference carries the mutable state of one Algorithm W pass: the
// variable allocator, the running substitution, the diagnostics
// collected so far (the checker never short-circuits — spec §4.E:
// "Errors are collected"), and the set of external definition hashes
// this pass's result depends on, which the Checker attaches to the
// memo entry for incremental invalidation.
type inference struct {
	checker *Checker
	fresh   *freshener
	u       *Unifier
	diags   []diag.Diagnostic
	deps    map[ast.Digest]bool
}

func newInference(c *Checker) *inference {
	fresh := &freshener{}
	return &inference{
		checker: c,
		fresh:   fresh,
		u:       newUnifier(fresh),
		deps:    map[ast.Digest]bool{},
	}
}

func (inf *inference) errorf(kind diag.Kind, span diag.Span, format string, args ...any) {
	inf.diags = append(inf.diags, diag.New(kind, span, format, args...))
}

// infer is Algorithm W over the closed node-kind set: it returns n's
// monotype and the effect row its evaluation contributes, extending
// inf.u's substitution and inf.diags along the way.
func (inf *inference) infer(n *ast.Node, env *Scope) (*types.Type, types.EffectRow) {
	if n == nil {
		return inf.fresh.typeVar(), types.ClosedRow()
	}
	switch p := n.Payload().(type) {
	case ast.LiteralIntPayload:
		return &types.Type{Kind: types.KindBase, Base: types.Int}, types.ClosedRow()
	case ast.LiteralFloatPayload:
		return &types.Type{Kind: types.KindBase, Base: types.Float}, types.ClosedRow()
	case ast.LiteralTextPayload:
		return &types.Type{Kind: types.KindBase, Base: types.Text}, types.ClosedRow()
	case ast.LiteralBoolPayload:
		return &types.Type{Kind: types.KindBase, Base: types.Bool}, types.ClosedRow()
	case ast.LiteralUnitPayload:
		return &types.Type{Kind: types.KindBase, Base: types.Unit}, types.ClosedRow()

	case ast.LiteralListPayload:
		elem := inf.fresh.typeVar()
		row := types.ClosedRow()
		for _, c := range n.Children() {
			ct, ceff := inf.infer(c, env)
			if d := inf.u.Unify(elem, ct, c.Span()); d != nil {
				inf.diags = append(inf.diags, *d)
			}
			row = row.Union(ceff)
		}
		return &types.Type{Kind: types.KindList, Elem: elem}, row

	case ast.LiteralTuplePayload:
		items := make([]*types.Type, len(n.Children()))
		row := types.ClosedRow()
		for i, c := range n.Children() {
			ct, ceff := inf.infer(c, env)
			items[i] = ct
			row = row.Union(ceff)
		}
		return &types.Type{Kind: types.KindTuple, Items: items}, row

	case ast.RecordPayload:
		fields := make(map[string]*types.Type, len(p.FieldNames))
		order := make([]string, len(p.FieldNames))
		row := types.ClosedRow()
		for i, name := range p.FieldNames {
			nameStr := inf.symbolName(name)
			ct, ceff := inf.infer(n.Child(i), env)
			fields[nameStr] = ct
			order[i] = nameStr
			row = row.Union(ceff)
		}
		return &types.Type{Kind: types.KindRecord, Fields: fields, FieldOrd: order}, row

	case ast.RecordAccessPayload:
		target := n.Child(0)
		tt, teff := inf.infer(target, env)
		fieldName := inf.symbolName(p.Field)
		result := inf.fresh.typeVar()
		want := &types.Type{Kind: types.KindRecord, Fields: map[string]*types.Type{fieldName: result}, FieldOrd: []string{fieldName}, RowVar: rowVarPtr(inf.fresh.effectVar())}
		if d := inf.u.Unify(tt, want, n.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		return result, teff

	case ast.RecordUpdatePayload:
		target := n.Child(0)
		tt, row := inf.infer(target, env)
		for i, name := range p.FieldNames {
			vt, veff := inf.infer(n.Child(i+1), env)
			fieldName := inf.symbolName(name)
			want := &types.Type{Kind: types.KindRecord, Fields: map[string]*types.Type{fieldName: vt}, FieldOrd: []string{fieldName}, RowVar: rowVarPtr(inf.fresh.effectVar())}
			if d := inf.u.Unify(tt, want, n.Span()); d != nil {
				inf.diags = append(inf.diags, *d)
			}
			row = row.Union(veff)
		}
		return tt, row

	case ast.LambdaPayload:
		return inf.inferLambda(n, p, env)

	case ast.ApplicationPayload:
		return inf.inferApplication(n, env)

	case ast.LetPayload:
		return inf.inferLet(n, p.BindingCount, env)

	case ast.LetRecPayload:
		return inf.inferLetRec(n, p.BindingCount, env)

	case ast.IfPayload:
		cond, condEff := inf.infer(n.Child(0), env)
		if d := inf.u.Unify(cond, &types.Type{Kind: types.KindBase, Base: types.Bool}, n.Child(0).Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		thenT, thenEff := inf.infer(n.Child(1), env)
		elseT, elseEff := inf.infer(n.Child(2), env)
		if d := inf.u.Unify(thenT, elseT, n.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		row, d := inf.u.UnifyRow(condEff.Union(thenEff), elseEff, n.Span())
		if d != nil {
			inf.diags = append(inf.diags, *d)
		}
		return thenT, row

	case ast.MatchPayload:
		return inf.inferMatch(n, p.ArmCount, env)

	case ast.DoPayload:
		return inf.inferDo(n, p.StmtKinds, env)

	case ast.WithPayload:
		return inf.inferWith(n, p.HandlerCount, env)

	case ast.PerformPayload:
		return inf.inferPerform(n, p, env)

	case ast.PipePayload:
		// Pipe(x, f) == Application(f, x); Children = [value, function].
		return inf.inferPipe(n, env)

	case ast.ReferenceSymbolicPayload:
		return inf.inferSymbolicReference(n, p, env)

	case ast.ReferenceHashAnchoredPayload:
		return inf.inferHashReference(n, p)

	case ast.ValueDefPayload:
		row := types.ClosedRow()
		for _, c := range n.Children() {
			_, ceff := inf.infer(c, env)
			row = row.Union(ceff)
		}
		// A pure-marked definition is a context whose effect row is ∅:
		// any effect its body performs without an enclosing handler is
		// unhandled right here, not at some caller further up.
		if resolved := inf.u.ResolveRow(row); p.Purity == ast.PurityPure && len(resolved.Effects) > 0 {
			inf.errorf(diag.KindUnhandledEffect, n.Span(),
				"%s is declared pure but requires %s in a context whose effect row is ∅",
				inf.symbolName(p.Name), resolved)
		}
		return &types.Type{Kind: types.KindBase, Base: types.Unit}, row

	case ast.HandlerDefPayload:
		return inf.inferHandlerDef(n, p, env)

	// Declaration-shaped kinds never appear inside an expression
	// position; type_of on one of these reports Unit with no effect —
	// the real per-definition scheme lives in the Scheme Module/LetRec
	// binding computes, not in the declaration node's own monotype.
	case ast.CompilationUnitPayload, ast.ModulePayload, ast.ImportPayload,
		ast.TypeDefPayload, ast.EffectDefPayload,
		ast.InterfacePayload:
		row := types.ClosedRow()
		for _, c := range n.Children() {
			_, ceff := inf.infer(c, env)
			row = row.Union(ceff)
		}
		return &types.Type{Kind: types.KindBase, Base: types.Unit}, row

	default:
		if n.Kind().IsPattern() {
			t, _ := inf.bindPattern(n, inf.fresh.typeVar(), env)
			return t, types.ClosedRow()
		}
		inf.errorf(diag.KindTreeInvariantViolated, n.Span(), "check: no inference rule for node kind %s", n.Kind())
		return inf.fresh.typeVar(), types.ClosedRow()
	}
}

func rowVarPtr(v types.Var) *types.Var { return &v }

func (inf *inference) symbolName(id symbol.ID) string {
	if inf.checker == nil || inf.checker.reg == nil {
		return ""
	}
	return inf.checker.reg.MustName(id)
}

func (inf *inference) inferLambda(n *ast.Node, p ast.LambdaPayload, env *Scope) (*types.Type, types.EffectRow) {
	params := n.Children()[:len(n.Children())-1]
	body := n.Children()[len(n.Children())-1]

	scope := env
	paramTypes := make([]*types.Type, len(params))
	for i, param := range params {
		pt := inf.fresh.typeVar()
		if i < len(p.ParamTypes) && p.ParamTypes[i] != nil {
			annotated := inf.elaborateTypeExpr(p.ParamTypes[i], map[string]*types.Type{})
			if d := inf.u.Unify(pt, annotated, param.Span()); d != nil {
				inf.diags = append(inf.diags, *d)
			}
		}
		var boundScope *Scope
		boundScope, pt = inf.bindPatternScope(param, pt, scope)
		scope = boundScope
		paramTypes[i] = pt
	}

	bodyType, bodyEff := inf.infer(body, scope)

	result := bodyType
	eff := bodyEff
	for i := len(paramTypes) - 1; i >= 0; i-- {
		result = &types.Type{Kind: types.KindFunc, From: paramTypes[i], To: result, Eff: eff}
		eff = types.ClosedRow()
	}
	return result, types.ClosedRow()
}

func (inf *inference) inferApplication(n *ast.Node, env *Scope) (*types.Type, types.EffectRow) {
	fn := n.Child(0)
	args := n.Children()[1:]
	fnType, row := inf.infer(fn, env)
	for _, arg := range args {
		argType, argEff := inf.infer(arg, env)
		row = row.Union(argEff)
		result := inf.fresh.typeVar()
		callEff := types.OpenRow(inf.fresh.effectVar())
		want := &types.Type{Kind: types.KindFunc, From: argType, To: result, Eff: callEff}
		if d := inf.u.Unify(fnType, want, n.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		resolvedCallEff := inf.u.ResolveRow(callEff)
		row = row.Union(resolvedCallEff)
		fnType = result
	}
	return fnType, row
}

func (inf *inference) inferPipe(n *ast.Node, env *Scope) (*types.Type, types.EffectRow) {
	value := n.Child(0)
	fn := n.Child(1)
	valueType, valueEff := inf.infer(value, env)
	fnType, fnEff := inf.infer(fn, env)
	result := inf.fresh.typeVar()
	callEff := types.OpenRow(inf.fresh.effectVar())
	want := &types.Type{Kind: types.KindFunc, From: valueType, To: result, Eff: callEff}
	if d := inf.u.Unify(fnType, want, n.Span()); d != nil {
		inf.diags = append(inf.diags, *d)
	}
	row := valueEff.Union(fnEff).Union(inf.u.ResolveRow(callEff))
	return result, row
}

func (inf *inference) inferLet(n *ast.Node, bindingCount int, env *Scope) (*types.Type, types.EffectRow) {
	scope := env
	row := types.ClosedRow()
	for i := 0; i < bindingCount; i++ {
		pat := n.Child(i * 2)
		expr := n.Child(i*2 + 1)
		exprType, exprEff := inf.infer(expr, scope)
		row = row.Union(exprEff)
		scheme := generalize(scope, exprType, exprEff, isSyntacticValue(expr), inf.u)
		scope = inf.bindPatternScheme(pat, scheme, scope)
	}
	body := n.Child(bindingCount * 2)
	bodyType, bodyEff := inf.infer(body, scope)
	return bodyType, row.Union(bodyEff)
}

func (inf *inference) inferLetRec(n *ast.Node, bindingCount int, env *Scope) (*types.Type, types.EffectRow) {
	hypotheses := make([]*types.Type, bindingCount)
	scope := env
	for i := 0; i < bindingCount; i++ {
		pat := n.Child(i * 2)
		hypo := inf.fresh.typeVar()
		hypotheses[i] = hypo
		scope = inf.bindPatternScheme(pat, types.Monomorphic(hypo), scope)
	}

	row := types.ClosedRow()
	exprTypes := make([]*types.Type, bindingCount)
	exprEffs := make([]types.EffectRow, bindingCount)
	exprs := make([]*ast.Node, bindingCount)
	for i := 0; i < bindingCount; i++ {
		expr := n.Child(i*2 + 1)
		exprs[i] = expr
		exprType, exprEff := inf.infer(expr, scope)
		if d := inf.u.Unify(hypotheses[i], exprType, expr.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		exprTypes[i] = exprType
		exprEffs[i] = exprEff
		row = row.Union(exprEff)
	}

	finalScope := env
	for i := 0; i < bindingCount; i++ {
		pat := n.Child(i * 2)
		scheme := generalize(env, hypotheses[i], exprEffs[i], isSyntacticValue(exprs[i]), inf.u)
		finalScope = inf.bindPatternScheme(pat, scheme, finalScope)
	}

	body := n.Child(bindingCount * 2)
	bodyType, bodyEff := inf.infer(body, finalScope)
	return bodyType, row.Union(bodyEff)
}

// isSyntacticValue approximates the classic value restriction: a Lambda,
// literal, or variable reference never performs an effect merely by
// being evaluated, so generalizing over its effect variables is safe.
func isSyntacticValue(n *ast.Node) bool {
	switch n.Kind() {
	case ast.KindLambda, ast.KindLiteralInt, ast.KindLiteralFloat, ast.KindLiteralText,
		ast.KindLiteralBool, ast.KindLiteralUnit, ast.KindReferenceSymbolic, ast.KindReferenceHashAnchored:
		return true
	default:
		return false
	}
}

func (inf *inference) inferMatch(n *ast.Node, armCount int, env *Scope) (*types.Type, types.EffectRow) {
	scrutinee := n.Child(0)
	scrutineeType, row := inf.infer(scrutinee, env)

	resultType := inf.fresh.typeVar()
	var arms []matchArm
	for i := 0; i < armCount; i++ {
		base := 1 + i*3
		pat := n.Child(base)
		guard := n.Child(base + 1)
		body := n.Child(base + 2)

		armScope := inf.bindPatternScope2(pat, scrutineeType, env)
		if guard != nil {
			guardType, guardEff := inf.infer(guard, armScope)
			if d := inf.u.Unify(guardType, &types.Type{Kind: types.KindBase, Base: types.Bool}, guard.Span()); d != nil {
				inf.diags = append(inf.diags, *d)
			}
			row = row.Union(guardEff)
		}
		bodyType, bodyEff := inf.infer(body, armScope)
		if d := inf.u.Unify(resultType, bodyType, body.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
		row = row.Union(bodyEff)
		arms = append(arms, matchArm{pattern: pat, hasGuard: guard != nil})
	}

	checkExhaustiveness(inf, n, scrutineeType, arms)
	return resultType, row
}

func (inf *inference) inferDo(n *ast.Node, kinds []ast.DoStmtKind, env *Scope) (*types.Type, types.EffectRow) {
	scope := env
	row := types.ClosedRow()
	result := &types.Type{Kind: types.KindBase, Base: types.Unit}
	idx := 0
	for _, kind := range kinds {
		pat := n.Child(idx)
		expr := n.Child(idx + 1)
		idx += 2
		exprType, exprEff := inf.infer(expr, scope)
		row = row.Union(exprEff)
		switch kind {
		case ast.DoBind:
			scope = inf.bindPatternScope2(pat, exprType, scope)
			result = &types.Type{Kind: types.KindBase, Base: types.Unit}
		case ast.DoLet:
			scheme := generalize(scope, exprType, exprEff, isSyntacticValue(expr), inf.u)
			scope = inf.bindPatternScheme(pat, scheme, scope)
			result = &types.Type{Kind: types.KindBase, Base: types.Unit}
		case ast.DoExpr:
			result = exprType
		}
	}
	return result, row
}

func (inf *inference) inferWith(n *ast.Node, handlerCount int, env *Scope) (*types.Type, types.EffectRow) {
	handled := make([]string, 0, handlerCount)
	for i := 0; i < handlerCount; i++ {
		if name, ok := inf.handledEffect(n.Child(i), env); ok {
			handled = append(handled, name)
		}
	}

	// An inline HandlerDef used directly as a handler expression is
	// typed here too, so its clause diagnostics surface at the With
	// site; symbolic handler references were already typed where the
	// HandlerDef itself was checked.
	for i := 0; i < handlerCount; i++ {
		if h := n.Child(i); h != nil {
			if _, ok := h.Payload().(ast.HandlerDefPayload); ok {
				inf.infer(h, env)
			}
		}
	}

	body := n.Child(handlerCount)
	bodyType, bodyEff := inf.infer(body, env)
	inf.checkEffectEscape(bodyType, handled, body.Span())
	remaining := inf.u.ResolveRow(bodyEff).Minus(handled...)
	return bodyType, remaining
}

// handledEffect names the effect a With clause's handler expression
// discharges. The primary derivation reads the HandlerDef's own
// EffectRef — directly off an inline HandlerDef node, or through the
// declaration table for a symbolic reference to one collected from the
// checked tree. Only when neither applies does it fall back to the
// HandlerEffect hook (handlers living behind a namespace-store
// resolution) and, last, to reading the effect name off the effect row
// of the handler's inferred thunk-argument type.
func (inf *inference) handledEffect(handlerExpr *ast.Node, env *Scope) (string, bool) {
	if handlerExpr == nil {
		return "", false
	}
	if hp, ok := handlerExpr.Payload().(ast.HandlerDefPayload); ok {
		return inf.symbolName(hp.EffectRef), true
	}
	if rp, ok := handlerExpr.Payload().(ast.ReferenceSymbolicPayload); ok && inf.checker != nil {
		if hp, ok := inf.checker.handlerFor(rp.Name); ok {
			return inf.symbolName(hp.EffectRef), true
		}
	}
	if inf.checker != nil && inf.checker.HandlerEffect != nil {
		if name, ok := inf.checker.HandlerEffect(handlerExpr); ok {
			return name, true
		}
	}
	return inf.heuristicHandledEffect(handlerExpr, env)
}

// checkEffectEscape rejects a with body whose value is a closure still
// carrying one of the just-handled effects in a latent row: once the
// handler's scope ends there is no interpretation left for that effect,
// so calling the escaped closure later would perform it unhandled. The
// walk covers every arrow in a curried chain, since the leak can sit at
// any argument position.
func (inf *inference) checkEffectEscape(bodyType *types.Type, handled []string, span diag.Span) {
	t := inf.u.Resolve(bodyType)
	for t != nil && t.Kind == types.KindFunc {
		row := inf.u.ResolveRow(t.Eff)
		for _, name := range handled {
			if row.Contains(name) {
				inf.errorf(diag.KindEffectEscape, span,
					"handled effect %s escapes its with scope through a returned function of type %s", name, t)
				return
			}
		}
		t = inf.u.Resolve(t.To)
	}
}

// heuristicHandledEffect is the last-resort fallback when neither the
// declaration table nor the HandlerEffect hook can name the handled
// effect: it reads the name off the handler expression's own inferred
// type, whose thunk argument's effect row leads with the handled effect
// by construction of inferHandlerDef's typing rule.
func (inf *inference) heuristicHandledEffect(handlerExpr *ast.Node, env *Scope) (string, bool) {
	t, _ := inf.infer(handlerExpr, env)
	t = inf.u.Resolve(t)
	if t.Kind != types.KindFunc || t.From == nil || t.From.Kind != types.KindFunc {
		return "", false
	}
	row := inf.u.ResolveRow(t.From.Eff)
	if len(row.Effects) == 0 {
		return "", false
	}
	return row.Effects[0], true
}

// inferPerform types an effect operation call. Arguments are inferred
// and their effects unioned into the row alongside the performed effect
// itself (spec §4.E: "each Perform contributes an effect to the current
// inferred row"). When the EffectDef is in scope, each argument unifies
// against the operation's declared input type and the call's type is the
// declared result, so a misapplied operation raises TypeMismatch at the
// offending argument; an effect whose declaration is not visible (e.g.
// defined in another namespace) still contributes its name to the row
// and keeps a fresh result variable.
func (inf *inference) inferPerform(n *ast.Node, p ast.PerformPayload, env *Scope) (*types.Type, types.EffectRow) {
	effectName := inf.symbolName(p.EffectRef)
	row := types.ClosedRow(effectName)

	args := n.Children()
	argTypes := make([]*types.Type, len(args))
	for i, arg := range args {
		at, aeff := inf.infer(arg, env)
		argTypes[i] = at
		row = row.Union(aeff)
	}

	var op ast.EffectOperation
	var ok bool
	if inf.checker != nil {
		op, ok = inf.checker.effectOperation(p.EffectRef, p.Operation)
	}
	if !ok {
		return inf.fresh.typeVar(), row
	}

	if len(args) != len(op.Inputs) {
		inf.errorf(diag.KindTypeMismatch, n.Span(),
			"%s.%s expects %d argument(s), got %d",
			effectName, inf.symbolName(p.Operation), len(op.Inputs), len(args))
	}
	tvars := map[string]*types.Type{}
	for i, in := range op.Inputs {
		if i >= len(args) {
			break
		}
		span := n.Span()
		if args[i] != nil {
			span = args[i].Span()
		}
		want := inf.elaborateTypeExpr(in, tvars)
		if d := inf.u.Unify(argTypes[i], want, span); d != nil {
			inf.diags = append(inf.diags, *d)
		}
	}
	return inf.elaborateTypeExpr(op.Result, tvars), row
}

// inferHandlerDef implements the handler-typing rule (spec §4.E): a
// handler over effect E with operations op_i : τ_i_in → τ_i_out has
// type (() → α <E, r>) → β <r>, where β is determined by the return
// clause (β = α when there is none) and each op clause receives the
// operation's declared inputs followed by a continuation k : τ_i_out → β.
// Clause lambdas are inferred as ordinary Lambdas and unified against
// the clause type the rule expects, so a clause that misapplies its
// continuation or disagrees with the declared operation signature
// raises TypeMismatch at the clause's own span.
func (inf *inference) inferHandlerDef(n *ast.Node, p ast.HandlerDefPayload, env *Scope) (*types.Type, types.EffectRow) {
	alpha := inf.fresh.typeVar()
	beta := inf.fresh.typeVar()
	residual := inf.fresh.effectVar()

	clauses := n.Children()
	base := 0
	if p.HasReturnClause {
		if len(clauses) > 0 && clauses[0] != nil {
			retClause := clauses[0]
			retType, _ := inf.infer(retClause, env)
			want := &types.Type{Kind: types.KindFunc, From: alpha, To: beta, Eff: types.OpenRow(inf.fresh.effectVar())}
			if d := inf.u.Unify(retType, want, retClause.Span()); d != nil {
				inf.diags = append(inf.diags, *d)
			}
		}
		base = 1
	} else if d := inf.u.Unify(alpha, beta, n.Span()); d != nil {
		inf.diags = append(inf.diags, *d)
	}

	for i, opName := range p.OpNames {
		ci := base + i
		if ci >= len(clauses) || clauses[ci] == nil {
			inf.errorf(diag.KindTreeInvariantViolated, n.Span(),
				"handler %s has no clause for operation %s", inf.symbolName(p.Name), inf.symbolName(opName))
			continue
		}
		clause := clauses[ci]
		clauseType, _ := inf.infer(clause, env)

		// The clause's expected shape comes from the operation's
		// declared signature when the EffectDef is in scope; otherwise
		// the clause is still held to the continuation discipline, with
		// fresh variables standing in for the declared types.
		tvars := map[string]*types.Type{}
		var inputs []*types.Type
		var opResult *types.Type
		var op ast.EffectOperation
		var declared bool
		if inf.checker != nil {
			op, declared = inf.checker.effectOperation(p.EffectRef, opName)
		}
		if declared {
			inputs = make([]*types.Type, len(op.Inputs))
			for j, in := range op.Inputs {
				inputs[j] = inf.elaborateTypeExpr(in, tvars)
			}
			opResult = inf.elaborateTypeExpr(op.Result, tvars)
		} else {
			for j := 0; j < len(clause.Children())-2; j++ {
				inputs = append(inputs, inf.fresh.typeVar())
			}
			opResult = inf.fresh.typeVar()
		}

		k := &types.Type{Kind: types.KindFunc, From: opResult, To: beta, Eff: types.OpenRow(inf.fresh.effectVar())}
		expected := &types.Type{Kind: types.KindFunc, From: k, To: beta, Eff: types.OpenRow(inf.fresh.effectVar())}
		for j := len(inputs) - 1; j >= 0; j-- {
			expected = &types.Type{Kind: types.KindFunc, From: inputs[j], To: expected, Eff: types.ClosedRow()}
		}
		if d := inf.u.Unify(clauseType, expected, clause.Span()); d != nil {
			inf.diags = append(inf.diags, *d)
		}
	}

	thunk := &types.Type{
		Kind: types.KindFunc,
		From: &types.Type{Kind: types.KindBase, Base: types.Unit},
		To:   alpha,
		Eff:  types.OpenRow(residual, inf.symbolName(p.EffectRef)),
	}
	return &types.Type{Kind: types.KindFunc, From: thunk, To: beta, Eff: types.OpenRow(residual)}, types.ClosedRow()
}

type matchArm struct {
	pattern  *ast.Node
	hasGuard bool
}
