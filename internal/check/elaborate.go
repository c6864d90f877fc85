package check

import "github.com/ribbonlang/ribbon/internal/ast"
import "github.com/ribbonlang/ribbon/internal/types"

// elaborateTypeExpr turns a syntactic annotation into a monotype, reusing
// the same fresh variable for every occurrence of a given surface type
// variable name within one annotation (tvars is scoped to a single
// elaborateTypeExpr call tree by the caller).
func (inf *inference) elaborateTypeExpr(te *ast.TypeExpr, tvars map[string]*types.Type) *types.Type {
	if te == nil {
		return inf.fresh.typeVar()
	}
	switch te.Kind {
	case ast.TypeExprBase:
		return &types.Type{Kind: types.KindBase, Base: types.Base(te.Base)}
	case ast.TypeExprVar:
		if v, ok := tvars[te.Var]; ok {
			return v
		}
		v := inf.fresh.typeVar()
		tvars[te.Var] = v
		return v
	case ast.TypeExprList:
		return &types.Type{Kind: types.KindList, Elem: inf.elaborateTypeExpr(te.Elem, tvars)}
	case ast.TypeExprMaybe:
		return &types.Type{Kind: types.KindMaybe, Elem: inf.elaborateTypeExpr(te.Elem, tvars)}
	case ast.TypeExprEither:
		return &types.Type{Kind: types.KindEither, Left: inf.elaborateTypeExpr(te.Left, tvars), Right: inf.elaborateTypeExpr(te.Right, tvars)}
	case ast.TypeExprResult:
		return &types.Type{Kind: types.KindResult, Left: inf.elaborateTypeExpr(te.Left, tvars), Right: inf.elaborateTypeExpr(te.Right, tvars)}
	case ast.TypeExprTuple:
		items := make([]*types.Type, len(te.Items))
		for i, it := range te.Items {
			items[i] = inf.elaborateTypeExpr(it, tvars)
		}
		return &types.Type{Kind: types.KindTuple, Items: items}
	case ast.TypeExprRecord:
		fields := make(map[string]*types.Type, len(te.FieldOrder))
		for _, name := range te.FieldOrder {
			fields[name] = inf.elaborateTypeExpr(te.Fields[name], tvars)
		}
		var rowVar *types.Var
		if te.RowVar != "" {
			rv := inf.fresh.effectVar()
			asTypeVar := types.Var(rv)
			rowVar = &asTypeVar
		}
		return &types.Type{Kind: types.KindRecord, Fields: fields, FieldOrd: append([]string(nil), te.FieldOrder...), RowVar: rowVar}
	case ast.TypeExprNominal:
		args := make([]*types.Type, len(te.NominalArgs))
		for i, a := range te.NominalArgs {
			args[i] = inf.elaborateTypeExpr(a, tvars)
		}
		return &types.Type{Kind: types.KindVariant, Nominal: te.Nominal, NominalArgs: args}
	case ast.TypeExprFunc:
		row := types.ClosedRow(te.Effects...)
		if te.EffectTailVar != "" {
			if v, ok := tvars["#effect:"+te.EffectTailVar]; ok {
				row.Tail = &v.Var
			} else {
				tail := inf.fresh.effectVar()
				placeholder := &types.Type{Kind: types.KindVar, Var: tail}
				tvars["#effect:"+te.EffectTailVar] = placeholder
				row.Tail = &tail
			}
		}
		return &types.Type{
			Kind: types.KindFunc,
			From: inf.elaborateTypeExpr(te.From, tvars),
			To:   inf.elaborateTypeExpr(te.To, tvars),
			Eff:  row,
		}
	default:
		return inf.fresh.typeVar()
	}
}
