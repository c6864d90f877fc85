package bridge

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// none is the atom printed in place of a zero/absent symbol.ID or a nil
// optional reference, so the textual form never confuses "no value" with
// an interned empty-string symbol.
const none = "_"

// Print renders root as a canonical textual s-expression, one token
// stream covering the whole subtree. Span and Annotations are never
// written: the round trip this package supports explicitly excludes
// source-position and doc-comment preservation (spec §4.I), so the
// printed form only needs to carry what Hash/StructuralDiff also care
// about — Kind, Payload fields, and Children.
func Print(reg *symbol.Registry, root *ast.Node) (string, error) {
	w := newWriter()
	if err := printNode(w, reg, root); err != nil {
		return "", err
	}
	return w.String(), nil
}

func printNode(w *writer, reg *symbol.Registry, n *ast.Node) error {
	w.open()
	w.atom(n.Kind().String())
	if err := printFields(w, reg, n); err != nil {
		return err
	}
	for _, c := range n.Children() {
		if c == nil {
			// An empty child slot (a Match arm's absent guard, a Do
			// expression statement's pattern position) prints as the
			// none atom so the reader can put the nil back.
			w.atom(none)
			continue
		}
		if err := printNode(w, reg, c); err != nil {
			return err
		}
	}
	w.close()
	return nil
}

func printSymbol(w *writer, reg *symbol.Registry, id symbol.ID) error {
	if id == 0 {
		w.atom(none)
		return nil
	}
	name, ok := reg.Name(id)
	if !ok {
		return fmt.Errorf("bridge: symbol id %d not present in registry", id)
	}
	w.text(name)
	return nil
}

func printSymbolList(w *writer, reg *symbol.Registry, ids []symbol.ID) error {
	w.open()
	for _, id := range ids {
		if err := printSymbol(w, reg, id); err != nil {
			return err
		}
	}
	w.close()
	return nil
}

func printInterfaceFunc(w *writer, reg *symbol.Registry, f ast.InterfaceFunc) error {
	w.open()
	if err := printSymbol(w, reg, f.Name); err != nil {
		return err
	}
	w.open()
	for _, p := range f.Params {
		printTypeExpr(w, p)
	}
	w.close()
	printOptionalTypeExpr(w, f.Result)
	w.close()
	return nil
}

// printFields writes n's Payload's scalar fields, in exactly the field
// order internal/hash/fields.go's encodeFields uses — the two must stay
// in lockstep since both are derived from internal/ast/payload.go.
func printFields(w *writer, reg *symbol.Registry, n *ast.Node) error {
	switch p := n.Payload().(type) {
	case ast.CompilationUnitPayload:

	case ast.ModulePayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}
		w.atom(visibilityAtom(p.Visibility))

	case ast.ImportPayload:
		if err := printSymbol(w, reg, p.Path); err != nil {
			return err
		}
		w.text(p.Constraint)
		if err := printSymbolList(w, reg, p.Selective); err != nil {
			return err
		}
		if err := printSymbol(w, reg, p.Alias); err != nil {
			return err
		}

	case ast.ValueDefPayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}
		w.atom(visibilityAtom(p.Visibility))
		w.atom(purityAtom(p.Purity))
		printOptionalTypeExpr(w, p.TypeAnnotation)

	case ast.TypeDefPayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := printSymbolList(w, reg, p.TypeParams); err != nil {
			return err
		}
		w.atom(typeDefVariantAtom(p.Variant))
		switch p.Variant {
		case ast.TypeDefAlias:
			printOptionalTypeExpr(w, p.Alias)
		case ast.TypeDefRecord:
			w.open()
			for _, f := range p.RecordFields {
				if err := printRecordFieldDecl(w, reg, f); err != nil {
					return err
				}
			}
			w.close()
		case ast.TypeDefSum:
			w.open()
			for _, v := range p.Variants {
				w.open()
				if err := printSymbol(w, reg, v.Name); err != nil {
					return err
				}
				w.open()
				for _, f := range v.Fields {
					if err := printRecordFieldDecl(w, reg, f); err != nil {
						return err
					}
				}
				w.close()
				w.close()
			}
			w.close()
		}

	case ast.EffectDefPayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := printSymbolList(w, reg, p.TypeParams); err != nil {
			return err
		}
		w.open()
		for _, op := range p.Operations {
			w.open()
			if err := printSymbol(w, reg, op.Name); err != nil {
				return err
			}
			w.open()
			for _, in := range op.Inputs {
				printTypeExpr(w, in)
			}
			w.close()
			printOptionalTypeExpr(w, op.Result)
			w.close()
		}
		w.close()

	case ast.HandlerDefPayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := printSymbol(w, reg, p.EffectRef); err != nil {
			return err
		}
		if err := printSymbolList(w, reg, p.OpNames); err != nil {
			return err
		}
		w.atom(boolAtom(p.HasReturnClause))

	case ast.InterfacePayload:
		w.text(p.Name)
		w.open()
		for _, f := range p.Functions {
			if err := printInterfaceFunc(w, reg, f); err != nil {
				return err
			}
		}
		w.close()
		w.open()
		for _, r := range p.Resources {
			w.open()
			if err := printSymbol(w, reg, r.Name); err != nil {
				return err
			}
			w.open()
			for _, m := range r.Methods {
				if err := printInterfaceFunc(w, reg, m); err != nil {
					return err
				}
			}
			w.close()
			w.close()
		}
		w.close()

	case ast.LambdaPayload:
		w.open()
		for _, t := range p.ParamTypes {
			printOptionalTypeExpr(w, t)
		}
		w.close()

	case ast.ApplicationPayload:

	case ast.LetPayload:
		w.atom(intAtom(int64(p.BindingCount)))

	case ast.LetRecPayload:
		w.atom(intAtom(int64(p.BindingCount)))

	case ast.IfPayload:

	case ast.MatchPayload:
		w.atom(intAtom(int64(p.ArmCount)))

	case ast.DoPayload:
		w.open()
		for _, k := range p.StmtKinds {
			w.atom(doStmtKindAtom(k))
		}
		w.close()

	case ast.WithPayload:
		w.atom(intAtom(int64(p.HandlerCount)))

	case ast.PerformPayload:
		if err := printSymbol(w, reg, p.EffectRef); err != nil {
			return err
		}
		if err := printSymbol(w, reg, p.Operation); err != nil {
			return err
		}

	case ast.PipePayload:

	case ast.RecordPayload:
		if err := printSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.RecordAccessPayload:
		if err := printSymbol(w, reg, p.Field); err != nil {
			return err
		}

	case ast.RecordUpdatePayload:
		if err := printSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.PatternWildcardPayload:

	case ast.PatternLiteralPayload:
		w.atom(litKindAtom(p.LitKind))
		switch p.LitKind {
		case ast.LitInt:
			w.atom(intAtom(p.Int))
		case ast.LitFloat:
			w.atom(floatAtom(p.Float))
		case ast.LitText:
			w.text(p.Text)
		case ast.LitBool:
			w.atom(boolAtom(p.Bool))
		}

	case ast.PatternVariablePayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.PatternConstructorPayload:
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.PatternRecordPayload:
		if err := printSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.PatternConsPayload:

	case ast.PatternTuplePayload:

	case ast.LiteralIntPayload:
		w.atom(intAtom(p.Value))

	case ast.LiteralFloatPayload:
		w.atom(floatAtom(p.Value))

	case ast.LiteralTextPayload:
		w.text(p.Value)

	case ast.LiteralBoolPayload:
		w.atom(boolAtom(p.Value))

	case ast.LiteralUnitPayload:

	case ast.LiteralListPayload:

	case ast.LiteralTuplePayload:

	case ast.ReferenceSymbolicPayload:
		if err := printSymbolList(w, reg, p.Qualified); err != nil {
			return err
		}
		if err := printSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.ReferenceHashAnchoredPayload:
		w.text(hexDigest(p.Hash))

	default:
		return fmt.Errorf("bridge: unhandled payload type %T for kind %s", p, n.Kind())
	}
	return nil
}

func printRecordFieldDecl(w *writer, reg *symbol.Registry, f ast.RecordFieldDecl) error {
	w.open()
	if err := printSymbol(w, reg, f.Name); err != nil {
		return err
	}
	printOptionalTypeExpr(w, f.Type)
	w.close()
	return nil
}

func hexDigest(d ast.Digest) string {
	return fmt.Sprintf("%x", d[:])
}
