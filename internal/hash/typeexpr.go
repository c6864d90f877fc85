package hash

import "github.com/ribbonlang/ribbon/internal/ast"

// typeExprTag is TypeExpr's own small closed tag table, distinct from
// ast.Kind.TagByte — TypeExpr is syntax embedded in a Payload, not a Node,
// so it never appears in the node-kind tag space.
var typeExprTag = map[ast.TypeExprKind]byte{
	ast.TypeExprBase:    1,
	ast.TypeExprVar:     2,
	ast.TypeExprList:    3,
	ast.TypeExprMaybe:   4,
	ast.TypeExprEither:  5,
	ast.TypeExprResult:  6,
	ast.TypeExprTuple:   7,
	ast.TypeExprRecord:  8,
	ast.TypeExprNominal: 9,
	ast.TypeExprFunc:    10,
}

// writeTypeExpr encodes a syntactic type annotation in the same
// presence-byte-guarded, fixed-field-order style as node payloads (spec
// §4.C: "type-annotation nodes if present in the syntactic form... are
// included" in the hash). Call sites write the presence byte themselves
// so a nil *TypeExpr can be represented as simply "absent".
func writeTypeExpr(w *Writer, t *ast.TypeExpr) {
	w.WriteByte(typeExprTag[t.Kind])
	switch t.Kind {
	case ast.TypeExprBase:
		w.WriteText(t.Base)
	case ast.TypeExprVar:
		w.WriteText(t.Var)
	case ast.TypeExprList, ast.TypeExprMaybe:
		writeTypeExpr(w, t.Elem)
	case ast.TypeExprEither, ast.TypeExprResult:
		writeTypeExpr(w, t.Left)
		writeTypeExpr(w, t.Right)
	case ast.TypeExprTuple:
		w.WriteCount(len(t.Items))
		for _, it := range t.Items {
			writeTypeExpr(w, it)
		}
	case ast.TypeExprRecord:
		w.WriteCount(len(t.FieldOrder))
		for _, name := range t.FieldOrder {
			w.WriteText(name)
			writeTypeExpr(w, t.Fields[name])
		}
		w.WritePresence(t.RowVar != "")
		if t.RowVar != "" {
			w.WriteText(t.RowVar)
		}
	case ast.TypeExprNominal:
		w.WriteText(t.Nominal)
		w.WriteCount(len(t.NominalArgs))
		for _, a := range t.NominalArgs {
			writeTypeExpr(w, a)
		}
	case ast.TypeExprFunc:
		writeTypeExpr(w, t.From)
		writeTypeExpr(w, t.To)
		w.WriteCount(len(t.Effects))
		for _, e := range t.Effects {
			w.WriteText(e)
		}
		w.WritePresence(t.EffectTailVar != "")
		if t.EffectTailVar != "" {
			w.WriteText(t.EffectTailVar)
		}
	}
}

// writeOptionalTypeExpr writes a presence byte followed by t when non-nil.
func writeOptionalTypeExpr(w *Writer, t *ast.TypeExpr) {
	w.WritePresence(t != nil)
	if t != nil {
		writeTypeExpr(w, t)
	}
}
