package check

import (
	"testing"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReg() *symbol.Registry { return symbol.New() }

func TestCheckInfersLiteralTypes(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	intLit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})
	typ, eff, diags := c.Check(intLit, NewScope())
	assert.Empty(t, diags)
	assert.True(t, eff.Empty())
	assert.Equal(t, types.Int, typ.Base)

	textLit := b.Build(diag.Span{}, ast.KindLiteralText, ast.LiteralTextPayload{Value: "hi"})
	typ, _, diags = c.Check(textLit, NewScope())
	assert.Empty(t, diags)
	assert.Equal(t, types.Text, typ.Base)
}

// TestCheckLambdaApplicationIdentity exercises S1-style inference over a
// hand-built λx. x applied to a literal: the application must resolve to
// the argument's own type with no residual effects.
func TestCheckLambdaApplicationIdentity(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	x := reg.Intern("x")
	param := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: x})
	ref := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: x})
	lambda := b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, param, ref)

	arg := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 42})
	app := b.Build(diag.Span{}, ast.KindApplication, ast.ApplicationPayload{}, lambda, arg)

	typ, eff, diags := c.Check(app, NewScope())
	require.Empty(t, diags)
	assert.True(t, eff.Empty())
	assert.Equal(t, types.Int, typ.Base)
}

// TestCheckLetGeneralizesOverPolymorphicIdentity binds `id = λx. x` via
// Let and applies it twice at different types, verifying let-generalization
// actually instantiates a fresh type variable per use site rather than
// unifying the two call sites' argument types together.
func TestCheckLetGeneralizesOverPolymorphicIdentity(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	idSym := reg.Intern("id")
	x := reg.Intern("x")
	param := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: x})
	xref := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: x})
	lambda := b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, param, xref)

	idPat := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: idSym})

	idRefInt := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: idSym})
	intLit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 7})
	appInt := b.Build(diag.Span{}, ast.KindApplication, ast.ApplicationPayload{}, idRefInt, intLit)

	idRefBool := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: idSym})
	boolLit := b.Build(diag.Span{}, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: true})
	appBool := b.Build(diag.Span{}, ast.KindApplication, ast.ApplicationPayload{}, idRefBool, boolLit)

	tuple := b.Build(diag.Span{}, ast.KindLiteralTuple, ast.LiteralTuplePayload{}, appInt, appBool)

	letNode := b.Build(diag.Span{}, ast.KindLet, ast.LetPayload{BindingCount: 1}, idPat, lambda, tuple)

	typ, _, diags := c.Check(letNode, NewScope())
	require.Empty(t, diags)
	require.Equal(t, types.KindTuple, typ.Kind)
	require.Len(t, typ.Items, 2)
	assert.Equal(t, types.Int, typ.Items[0].Base)
	assert.Equal(t, types.Bool, typ.Items[1].Base)
}

func TestCheckUnresolvedNameCollectsDiagnosticRatherThanPanicking(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	ghost := reg.Intern("ghost")
	ref := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: ghost})

	_, _, diags := c.Check(ref, NewScope())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindUnresolvedName, diags[0].Kind)
}

func TestCheckIfBranchMismatchReportsTypeMismatch(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	cond := b.Build(diag.Span{}, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: true})
	thenB := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})
	elseB := b.Build(diag.Span{}, ast.KindLiteralText, ast.LiteralTextPayload{Value: "no"})
	ifNode := b.Build(diag.Span{}, ast.KindIf, ast.IfPayload{}, cond, thenB, elseB)

	_, _, diags := c.Check(ifNode, NewScope())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindTypeMismatch, diags[0].Kind)
}

// TestCheckPerformContributesEffectToRow exercises a Do block that
// performs an effect operation and binds its result: the effect must
// show up in the block's inferred row (spec §4.E: "each Perform
// contributes an effect to the current inferred row").
func TestCheckPerformContributesEffectToRow(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	ioEffect := reg.Intern("IO")
	readOp := reg.Intern("read")
	xSym := reg.Intern("x")

	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})
	xPat := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: xSym})
	xref := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: xSym})
	do := b.Build(diag.Span{}, ast.KindDo, ast.DoPayload{StmtKinds: []ast.DoStmtKind{ast.DoBind}}, xPat, perform, xref)

	_, eff, diags := c.Check(do, NewScope())
	require.Empty(t, diags)
	assert.True(t, eff.Contains("IO"))
}

// TestCheckHandlerRemovesHandledEffectFromResidualRow checks that a With
// body's handled effect is subtracted from the row that escapes the
// With expression, per spec §4.E ("each With handler removes the
// handled effects from the row of its body").
func TestCheckHandlerRemovesHandledEffectFromResidualRow(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	c.HandlerEffect = func(handlerExpr *ast.Node) (string, bool) { return "IO", true }

	ioEffect := reg.Intern("IO")
	readOp := reg.Intern("read")
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})

	handlerRefSym := reg.Intern("ioHandler")
	handlerRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: handlerRefSym})

	with := b.Build(diag.Span{}, ast.KindWith, ast.WithPayload{HandlerCount: 1}, handlerRef, perform)

	env := NewScope().Bind(handlerRefSym, types.Monomorphic(&types.Type{Kind: types.KindBase, Base: types.Unit}))
	_, eff, diags := c.Check(with, env)
	require.Empty(t, diags)
	assert.False(t, eff.Contains("IO"), "With must remove the effect its handler covers: got %s", eff)
}

// TestCheckEffectEscapeRejectsClosureCarryingHandledEffect wraps a With
// around a lambda whose latent row performs the handled effect: the
// closure outlives the handler's scope, so the checker must reject it
// instead of silently re-exposing the effect.
func TestCheckEffectEscapeRejectsClosureCarryingHandledEffect(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	c.HandlerEffect = func(handlerExpr *ast.Node) (string, bool) { return "IO", true }

	ioEffect := reg.Intern("IO")
	readOp := reg.Intern("read")
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})
	param := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: reg.Intern("u")})
	escaping := b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, param, perform)

	handlerRefSym := reg.Intern("ioHandler")
	handlerRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: handlerRefSym})
	with := b.Build(diag.Span{}, ast.KindWith, ast.WithPayload{HandlerCount: 1}, handlerRef, escaping)

	env := NewScope().Bind(handlerRefSym, types.Monomorphic(&types.Type{Kind: types.KindBase, Base: types.Unit}))
	_, _, diags := c.Check(with, env)
	var found bool
	for _, d := range diags {
		if d.Kind == diag.KindEffectEscape {
			found = true
		}
	}
	assert.True(t, found, "a returned closure still carrying the handled effect must be an EffectEscape, got %+v", diags)
}

// TestCheckWithAcceptsNonEscapingValue is the companion negative case: a
// With whose body performs and fully discharges the effect produces no
// EffectEscape.
func TestCheckWithAcceptsNonEscapingValue(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	c.HandlerEffect = func(handlerExpr *ast.Node) (string, bool) { return "IO", true }

	ioEffect := reg.Intern("IO")
	readOp := reg.Intern("read")
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})

	handlerRefSym := reg.Intern("ioHandler")
	handlerRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: handlerRefSym})
	with := b.Build(diag.Span{}, ast.KindWith, ast.WithPayload{HandlerCount: 1}, handlerRef, perform)

	env := NewScope().Bind(handlerRefSym, types.Monomorphic(&types.Type{Kind: types.KindBase, Base: types.Unit}))
	_, _, diags := c.Check(with, env)
	for _, d := range diags {
		assert.NotEqual(t, diag.KindEffectEscape, d.Kind)
	}
}

// TestCheckPureDefinitionPerformingEffectIsUnhandled builds a pure-marked
// ValueDef whose body performs IO with no handler in sight: the
// definition's own ∅ row is the context the effect goes unhandled in.
func TestCheckPureDefinitionPerformingEffectIsUnhandled(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	ioEffect := reg.Intern("IO")
	readOp := reg.Intern("read")
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})
	def := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern("f"), Purity: ast.PurityPure}, perform)

	_, _, diags := c.Check(def, NewScope())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindUnhandledEffect, diags[0].Kind)
}

func TestCheckShadowingBindingWarnsWithoutFailing(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	x := reg.Intern("x")
	outerPat := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: x})
	outerVal := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})

	innerParam := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: x})
	innerRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: x})
	lambda := b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, innerParam, innerRef)

	letNode := b.Build(diag.Span{}, ast.KindLet, ast.LetPayload{BindingCount: 1}, outerPat, outerVal, lambda)

	_, _, diags := c.Check(letNode, NewScope())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindNameShadowed, diags[0].Kind)
	assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
}

func baseTE(name string) *ast.TypeExpr {
	return &ast.TypeExpr{Kind: ast.TypeExprBase, Base: name}
}

// declareReadEffect checks an EffectDef `IO { read : Text → Int }` so
// its operation signature lands in c's declaration table.
func declareReadEffect(t *testing.T, c *Checker, b *ast.Builder, reg *symbol.Registry) (effect, op symbol.ID) {
	t.Helper()
	effect = reg.Intern("IO")
	op = reg.Intern("read")
	def := b.Build(diag.Span{}, ast.KindEffectDef, ast.EffectDefPayload{
		Name: effect,
		Operations: []ast.EffectOperation{
			{Name: op, Inputs: []*ast.TypeExpr{baseTE("Text")}, Result: baseTE("Int")},
		},
	})
	_, _, diags := c.Check(def, NewScope())
	require.Empty(t, diags)
	return effect, op
}

// TestCheckPerformTypesArgumentsAgainstDeclaredOperation resolves a
// Perform against its EffectDef: the argument unifies with the declared
// input type, the call takes the declared result type, and the argument's
// own effects join the row alongside the performed effect.
func TestCheckPerformTypesArgumentsAgainstDeclaredOperation(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	ioEffect, readOp := declareReadEffect(t, c, b, reg)

	arg := b.Build(diag.Span{}, ast.KindLiteralText, ast.LiteralTextPayload{Value: "in.txt"})
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp}, arg)

	typ, eff, diags := c.Check(perform, NewScope())
	require.Empty(t, diags)
	assert.Equal(t, types.Int, typ.Base)
	assert.True(t, eff.Contains("IO"))
}

func TestCheckPerformArgumentEffectsJoinTheRow(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	ioEffect, readOp := declareReadEffect(t, c, b, reg)

	// The argument itself performs an (undeclared) State effect; both
	// effects must surface in the call's row.
	stateEffect := reg.Intern("State")
	arg := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: stateEffect, Operation: reg.Intern("get")})
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp}, arg)

	_, eff, _ := c.Check(perform, NewScope())
	assert.True(t, eff.Contains("IO"))
	assert.True(t, eff.Contains("State"))
}

func TestCheckPerformRejectsMistypedArgument(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	ioEffect, readOp := declareReadEffect(t, c, b, reg)

	arg := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 3})
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp}, arg)

	_, _, diags := c.Check(perform, NewScope())
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.KindTypeMismatch, diags[0].Kind)
}

func TestCheckPerformRejectsWrongArity(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	ioEffect, readOp := declareReadEffect(t, c, b, reg)

	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: ioEffect, Operation: readOp})

	_, _, diags := c.Check(perform, NewScope())
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.KindTypeMismatch, diags[0].Kind)
}

// declareAskEffect checks an EffectDef `Ask { ask : → Int }` (a nullary
// operation) for the handler-typing cases.
func declareAskEffect(t *testing.T, c *Checker, b *ast.Builder, reg *symbol.Registry) (effect, op symbol.ID) {
	t.Helper()
	effect = reg.Intern("Ask")
	op = reg.Intern("ask")
	def := b.Build(diag.Span{}, ast.KindEffectDef, ast.EffectDefPayload{
		Name:       effect,
		Operations: []ast.EffectOperation{{Name: op, Result: baseTE("Int")}},
	})
	_, _, diags := c.Check(def, NewScope())
	require.Empty(t, diags)
	return effect, op
}

// askClause builds the op clause λk. k body — resume the continuation
// with body's value.
func askClause(b *ast.Builder, reg *symbol.Registry, body *ast.Node) *ast.Node {
	k := reg.Intern("k")
	kPat := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: k})
	kRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: k})
	app := b.Build(diag.Span{}, ast.KindApplication, ast.ApplicationPayload{}, kRef, body)
	return b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, kPat, app)
}

// TestCheckHandlerDefFollowsHandlerTypingRule types a handler over
// `Ask { ask : → Int }` whose clause resumes with an Int: the result is
// (() → α <Ask, r>) → β <r> with α = β (no return clause) and the same
// residual tail on both arrows.
func TestCheckHandlerDefFollowsHandlerTypingRule(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	askEffect, askOp := declareAskEffect(t, c, b, reg)

	clause := askClause(b, reg, b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 42}))
	handler := b.Build(diag.Span{}, ast.KindHandlerDef, ast.HandlerDefPayload{
		Name:      reg.Intern("defaultAsk"),
		EffectRef: askEffect,
		OpNames:   []symbol.ID{askOp},
	}, clause)

	typ, eff, diags := c.Check(handler, NewScope())
	require.Empty(t, diags)
	assert.True(t, eff.Empty(), "a handler definition performs nothing by itself")

	require.Equal(t, types.KindFunc, typ.Kind)
	thunk := typ.From
	require.NotNil(t, thunk)
	require.Equal(t, types.KindFunc, thunk.Kind)
	assert.Equal(t, types.Unit, thunk.From.Base)
	assert.True(t, thunk.Eff.Contains("Ask"))
	require.NotNil(t, thunk.Eff.Tail, "the handled computation's row must stay open over the residual")
	require.NotNil(t, typ.Eff.Tail)
	assert.Equal(t, *thunk.Eff.Tail, *typ.Eff.Tail, "thunk row and handler result row share the residual tail")
	// With no return clause, the handler's result is the computation's
	// own result: α and β resolve to the same variable.
	assert.True(t, typ.To.Equal(thunk.To))
}

// TestCheckHandlerClauseMisusingContinuationIsMismatch resumes the
// continuation with Text where the operation declares Int.
func TestCheckHandlerClauseMisusingContinuationIsMismatch(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	askEffect, askOp := declareAskEffect(t, c, b, reg)

	clause := askClause(b, reg, b.Build(diag.Span{}, ast.KindLiteralText, ast.LiteralTextPayload{Value: "no"}))
	handler := b.Build(diag.Span{}, ast.KindHandlerDef, ast.HandlerDefPayload{
		Name:      reg.Intern("badAsk"),
		EffectRef: askEffect,
		OpNames:   []symbol.ID{askOp},
	}, clause)

	_, _, diags := c.Check(handler, NewScope())
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.KindTypeMismatch, diags[0].Kind)
}

// TestCheckHandlerReturnClauseDeterminesResultType wraps the handled
// value in a return clause λx. "done": β becomes Text while α stays the
// computation's own type.
func TestCheckHandlerReturnClauseDeterminesResultType(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)
	askEffect, askOp := declareAskEffect(t, c, b, reg)

	x := reg.Intern("x")
	retPat := b.Build(diag.Span{}, ast.KindPatternVariable, ast.PatternVariablePayload{Name: x})
	retBody := b.Build(diag.Span{}, ast.KindLiteralText, ast.LiteralTextPayload{Value: "done"})
	retClause := b.Build(diag.Span{}, ast.KindLambda, ast.LambdaPayload{ParamTypes: []*ast.TypeExpr{nil}}, retPat, retBody)

	clause := askClause(b, reg, b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 42}))
	handler := b.Build(diag.Span{}, ast.KindHandlerDef, ast.HandlerDefPayload{
		Name:            reg.Intern("describedAsk"),
		EffectRef:       askEffect,
		OpNames:         []symbol.ID{askOp},
		HasReturnClause: true,
	}, retClause, clause)

	typ, _, diags := c.Check(handler, NewScope())
	require.Empty(t, diags)
	require.Equal(t, types.KindFunc, typ.Kind)
	assert.Equal(t, types.Text, typ.To.Base)
}

// TestCheckWithDerivesHandledEffectFromHandlerDef checks a whole unit —
// EffectDef, HandlerDef, and a pure definition whose With body performs
// the effect through a symbolic reference to the handler — without any
// HandlerEffect hook: the handled effect comes from the HandlerDef's own
// EffectRef, so the performed effect is fully discharged and the pure
// marker raises nothing.
func TestCheckWithDerivesHandledEffectFromHandlerDef(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	askEffect := reg.Intern("Ask")
	askOp := reg.Intern("ask")
	effectDef := b.Build(diag.Span{}, ast.KindEffectDef, ast.EffectDefPayload{
		Name:       askEffect,
		Operations: []ast.EffectOperation{{Name: askOp, Result: baseTE("Int")}},
	})

	handlerName := reg.Intern("defaultAsk")
	handlerDef := b.Build(diag.Span{}, ast.KindHandlerDef, ast.HandlerDefPayload{
		Name:      handlerName,
		EffectRef: askEffect,
		OpNames:   []symbol.ID{askOp},
	}, askClause(b, reg, b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})))

	handlerRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: handlerName})
	perform := b.Build(diag.Span{}, ast.KindPerform, ast.PerformPayload{EffectRef: askEffect, Operation: askOp})
	with := b.Build(diag.Span{}, ast.KindWith, ast.WithPayload{HandlerCount: 1}, handlerRef, perform)
	mainDef := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern("main"), Purity: ast.PurityPure}, with)

	unit := b.Build(diag.Span{}, ast.KindCompilationUnit, ast.CompilationUnitPayload{}, effectDef, handlerDef, mainDef)

	_, eff, diags := c.Check(unit, NewScope())
	require.Empty(t, diags)
	assert.True(t, eff.Empty())
}

func TestCheckMemoizesResultsAcrossRepeatedQueries(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	lit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 9})
	t1, _, _ := c.Check(lit, NewScope())
	t2, _, _ := c.Check(lit, NewScope())
	assert.Same(t, t1, t2, "second query must return the memoized result, not a freshly inferred one")
}

func TestInvalidateSpineDropsOnlyListedNodesAndReportsThem(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	litA := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})
	litB := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 2})
	c.Check(litA, NewScope())
	c.Check(litB, NewScope())

	invalidated := c.InvalidateSpine([]ast.NodeID{litA.ID()})
	assert.Equal(t, []ast.NodeID{litA.ID()}, invalidated)

	c.mu.Lock()
	_, stillCachedB := c.cache[litB.ID()]
	_, stillCachedA := c.cache[litA.ID()]
	c.mu.Unlock()
	assert.True(t, stillCachedB, "unaffected node must keep its memo entry")
	assert.False(t, stillCachedA)
}

func TestInvalidateByDependencyDropsOnlyDependentEntries(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	targetHash := ast.Digest{0x1}
	c.ResolveSymbolic = func(qualified []symbol.ID, name symbol.ID) (*types.Scheme, ast.Digest, bool) {
		return types.Monomorphic(&types.Type{Kind: types.KindBase, Base: types.Int}), targetHash, true
	}

	depSym := reg.Intern("dep")
	depRef := b.Build(diag.Span{}, ast.KindReferenceSymbolic, ast.ReferenceSymbolicPayload{Name: depSym})
	independentLit := b.Build(diag.Span{}, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: true})

	c.Check(depRef, NewScope())
	c.Check(independentLit, NewScope())

	invalidated := c.InvalidateByDependency(map[ast.Digest]bool{targetHash: true})
	assert.Equal(t, []ast.NodeID{depRef.ID()}, invalidated)
}

func TestUnifyOccursCheckRejectsInfiniteType(t *testing.T) {
	fresh := &freshener{}
	u := newUnifier(fresh)
	v := fresh.typeVar()
	selfReferential := &types.Type{Kind: types.KindList, Elem: v}

	d := u.Unify(v, selfReferential, diag.Span{})
	require.NotNil(t, d)
	assert.Equal(t, diag.KindOccursCheck, d.Kind)
}

func TestCheckMatchNonExhaustiveOverBoolReportsDiagnostic(t *testing.T) {
	reg := newTestReg()
	b := ast.NewBuilder()
	c := NewChecker(reg)

	scrutinee := b.Build(diag.Span{}, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: true})
	truePat := b.Build(diag.Span{}, ast.KindPatternLiteral, ast.PatternLiteralPayload{LitKind: ast.LitBool, Bool: true})
	body := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 1})
	match := b.Build(diag.Span{}, ast.KindMatch, ast.MatchPayload{ArmCount: 1}, scrutinee, truePat, nil, body)

	_, _, diags := c.Check(match, NewScope())
	var found bool
	for _, d := range diags {
		if d.Kind == diag.KindPatternNonExhaustive {
			found = true
		}
	}
	assert.True(t, found, "matching only `true` over a Bool scrutinee must be reported non-exhaustive, got %+v", diags)
}
