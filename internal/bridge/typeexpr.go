package bridge

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
)

var typeExprTagAtom = map[ast.TypeExprKind]string{
	ast.TypeExprBase:    "base",
	ast.TypeExprVar:     "var",
	ast.TypeExprList:    "list",
	ast.TypeExprMaybe:   "maybe",
	ast.TypeExprEither:  "either",
	ast.TypeExprResult:  "result",
	ast.TypeExprTuple:   "tuple",
	ast.TypeExprRecord:  "record",
	ast.TypeExprNominal: "nominal",
	ast.TypeExprFunc:    "func",
}

var atomToTypeExprTag = map[string]ast.TypeExprKind{
	"base":    ast.TypeExprBase,
	"var":     ast.TypeExprVar,
	"list":    ast.TypeExprList,
	"maybe":   ast.TypeExprMaybe,
	"either":  ast.TypeExprEither,
	"result":  ast.TypeExprResult,
	"tuple":   ast.TypeExprTuple,
	"record":  ast.TypeExprRecord,
	"nominal": ast.TypeExprNominal,
	"func":    ast.TypeExprFunc,
}

// printTypeExpr mirrors internal/hash/typeexpr.go's writeTypeExpr field
// order, substituting textual atoms for the binary writer's tag bytes.
func printTypeExpr(w *writer, t *ast.TypeExpr) {
	w.open()
	w.atom(typeExprTagAtom[t.Kind])
	switch t.Kind {
	case ast.TypeExprBase:
		w.text(t.Base)
	case ast.TypeExprVar:
		w.text(t.Var)
	case ast.TypeExprList, ast.TypeExprMaybe:
		printTypeExpr(w, t.Elem)
	case ast.TypeExprEither, ast.TypeExprResult:
		printTypeExpr(w, t.Left)
		printTypeExpr(w, t.Right)
	case ast.TypeExprTuple:
		w.open()
		for _, it := range t.Items {
			printTypeExpr(w, it)
		}
		w.close()
	case ast.TypeExprRecord:
		w.open()
		for _, name := range t.FieldOrder {
			w.open()
			w.text(name)
			printTypeExpr(w, t.Fields[name])
			w.close()
		}
		w.close()
		if t.RowVar != "" {
			w.text(t.RowVar)
		} else {
			w.atom(none)
		}
	case ast.TypeExprNominal:
		w.text(t.Nominal)
		w.open()
		for _, a := range t.NominalArgs {
			printTypeExpr(w, a)
		}
		w.close()
	case ast.TypeExprFunc:
		printTypeExpr(w, t.From)
		printTypeExpr(w, t.To)
		w.open()
		for _, e := range t.Effects {
			w.text(e)
		}
		w.close()
		if t.EffectTailVar != "" {
			w.text(t.EffectTailVar)
		} else {
			w.atom(none)
		}
	}
	w.close()
}

// printOptionalTypeExpr writes a presence marker followed by t when non-nil.
func printOptionalTypeExpr(w *writer, t *ast.TypeExpr) {
	if t == nil {
		w.atom(none)
		return
	}
	printTypeExpr(w, t)
}

func parseTypeExpr(r *reader) (*ast.TypeExpr, error) {
	if err := r.expectOpen(); err != nil {
		return nil, err
	}
	tagStr, err := r.atom()
	if err != nil {
		return nil, err
	}
	kind, ok := atomToTypeExprTag[tagStr]
	if !ok {
		return nil, fmt.Errorf("bridge: invalid type-expr tag atom %q", tagStr)
	}
	t := &ast.TypeExpr{Kind: kind}
	switch kind {
	case ast.TypeExprBase:
		if t.Base, err = r.atom(); err != nil {
			return nil, err
		}
	case ast.TypeExprVar:
		if t.Var, err = r.atom(); err != nil {
			return nil, err
		}
	case ast.TypeExprList, ast.TypeExprMaybe:
		if t.Elem, err = parseTypeExpr(r); err != nil {
			return nil, err
		}
	case ast.TypeExprEither, ast.TypeExprResult:
		if t.Left, err = parseTypeExpr(r); err != nil {
			return nil, err
		}
		if t.Right, err = parseTypeExpr(r); err != nil {
			return nil, err
		}
	case ast.TypeExprTuple:
		items, err := parseTypeExprList(r)
		if err != nil {
			return nil, err
		}
		t.Items = items
	case ast.TypeExprRecord:
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		t.Fields = make(map[string]*ast.TypeExpr)
		for !r.peekIsClose() {
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			name, err := r.atom()
			if err != nil {
				return nil, err
			}
			field, err := parseTypeExpr(r)
			if err != nil {
				return nil, err
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
			t.FieldOrder = append(t.FieldOrder, name)
			t.Fields[name] = field
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		rowVar, err := r.atom()
		if err != nil {
			return nil, err
		}
		if rowVar != none {
			t.RowVar = rowVar
		}
	case ast.TypeExprNominal:
		if t.Nominal, err = r.atom(); err != nil {
			return nil, err
		}
		args, err := parseTypeExprList(r)
		if err != nil {
			return nil, err
		}
		t.NominalArgs = args
	case ast.TypeExprFunc:
		if t.From, err = parseTypeExpr(r); err != nil {
			return nil, err
		}
		if t.To, err = parseTypeExpr(r); err != nil {
			return nil, err
		}
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		for !r.peekIsClose() {
			e, err := r.atom()
			if err != nil {
				return nil, err
			}
			t.Effects = append(t.Effects, e)
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		tailVar, err := r.atom()
		if err != nil {
			return nil, err
		}
		if tailVar != none {
			t.EffectTailVar = tailVar
		}
	}
	if err := r.expectClose(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseTypeExprList(r *reader) ([]*ast.TypeExpr, error) {
	if err := r.expectOpen(); err != nil {
		return nil, err
	}
	var out []*ast.TypeExpr
	for !r.peekIsClose() {
		t, err := parseTypeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := r.expectClose(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseOptionalTypeExpr reads either the absence atom or a full TypeExpr.
func parseOptionalTypeExpr(r *reader) (*ast.TypeExpr, error) {
	if r.peekIsOpen() {
		return parseTypeExpr(r)
	}
	tok, err := r.atom()
	if err != nil {
		return nil, err
	}
	if tok != none {
		return nil, fmt.Errorf("bridge: expected absence marker %q, got %q", none, tok)
	}
	return nil, nil
}
