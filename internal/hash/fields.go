package hash

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

func writeSymbol(w *Writer, reg *symbol.Registry, id symbol.ID) error {
	name, ok := reg.Name(id)
	if !ok {
		return fmt.Errorf("hash: symbol id %d not present in registry", id)
	}
	w.WriteText(name)
	return nil
}

func writeOptionalSymbol(w *Writer, reg *symbol.Registry, id symbol.ID) error {
	w.WritePresence(id != 0)
	if id == 0 {
		return nil
	}
	return writeSymbol(w, reg, id)
}

func writeSymbolList(w *Writer, reg *symbol.Registry, ids []symbol.ID) error {
	w.WriteCount(len(ids))
	for _, id := range ids {
		if err := writeSymbol(w, reg, id); err != nil {
			return err
		}
	}
	return nil
}

func writeInterfaceFunc(w *Writer, reg *symbol.Registry, f ast.InterfaceFunc) error {
	if err := writeSymbol(w, reg, f.Name); err != nil {
		return err
	}
	w.WriteCount(len(f.Params))
	for _, p := range f.Params {
		writeTypeExpr(w, p)
	}
	writeTypeExpr(w, f.Result)
	return nil
}

// encodeFields writes n's kind-specific Payload fields, in the fixed
// order documented on each Payload type in internal/ast/payload.go.
// Children are never written here — Hasher appends them uniformly after
// this call returns, as a count followed by each child's digest.
func encodeFields(w *Writer, reg *symbol.Registry, n *ast.Node) error {
	switch p := n.Payload().(type) {
	case ast.CompilationUnitPayload:
		// no scalar fields

	case ast.ModulePayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}
		w.WriteByte(byte(p.Visibility))

	case ast.ImportPayload:
		if err := writeSymbol(w, reg, p.Path); err != nil {
			return err
		}
		w.WriteText(p.Constraint)
		if err := writeSymbolList(w, reg, p.Selective); err != nil {
			return err
		}
		if err := writeOptionalSymbol(w, reg, p.Alias); err != nil {
			return err
		}

	case ast.ValueDefPayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}
		w.WriteByte(byte(p.Visibility))
		w.WriteByte(byte(p.Purity))
		writeOptionalTypeExpr(w, p.TypeAnnotation)

	case ast.TypeDefPayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := writeSymbolList(w, reg, p.TypeParams); err != nil {
			return err
		}
		w.WriteByte(byte(p.Variant))
		switch p.Variant {
		case ast.TypeDefAlias:
			writeTypeExpr(w, p.Alias)
		case ast.TypeDefRecord:
			w.WriteCount(len(p.RecordFields))
			for _, f := range p.RecordFields {
				if err := writeSymbol(w, reg, f.Name); err != nil {
					return err
				}
				writeTypeExpr(w, f.Type)
			}
		case ast.TypeDefSum:
			w.WriteCount(len(p.Variants))
			for _, v := range p.Variants {
				if err := writeSymbol(w, reg, v.Name); err != nil {
					return err
				}
				w.WriteCount(len(v.Fields))
				for _, f := range v.Fields {
					if err := writeSymbol(w, reg, f.Name); err != nil {
						return err
					}
					writeTypeExpr(w, f.Type)
				}
			}
		}

	case ast.EffectDefPayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := writeSymbolList(w, reg, p.TypeParams); err != nil {
			return err
		}
		w.WriteCount(len(p.Operations))
		for _, op := range p.Operations {
			if err := writeSymbol(w, reg, op.Name); err != nil {
				return err
			}
			w.WriteCount(len(op.Inputs))
			for _, in := range op.Inputs {
				writeTypeExpr(w, in)
			}
			writeTypeExpr(w, op.Result)
		}

	case ast.HandlerDefPayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}
		if err := writeSymbol(w, reg, p.EffectRef); err != nil {
			return err
		}
		if err := writeSymbolList(w, reg, p.OpNames); err != nil {
			return err
		}
		w.WriteBool(p.HasReturnClause)

	case ast.InterfacePayload:
		w.WriteText(p.Name)
		w.WriteCount(len(p.Functions))
		for _, f := range p.Functions {
			if err := writeInterfaceFunc(w, reg, f); err != nil {
				return err
			}
		}
		w.WriteCount(len(p.Resources))
		for _, r := range p.Resources {
			if err := writeSymbol(w, reg, r.Name); err != nil {
				return err
			}
			w.WriteCount(len(r.Methods))
			for _, m := range r.Methods {
				if err := writeInterfaceFunc(w, reg, m); err != nil {
					return err
				}
			}
		}

	case ast.LambdaPayload:
		w.WriteCount(len(p.ParamTypes))
		for _, t := range p.ParamTypes {
			writeOptionalTypeExpr(w, t)
		}

	case ast.ApplicationPayload:
		// no scalar fields

	case ast.LetPayload:
		w.WriteVarint(uint64(p.BindingCount))

	case ast.LetRecPayload:
		w.WriteVarint(uint64(p.BindingCount))

	case ast.IfPayload:
		// no scalar fields

	case ast.MatchPayload:
		w.WriteVarint(uint64(p.ArmCount))

	case ast.DoPayload:
		w.WriteCount(len(p.StmtKinds))
		for _, k := range p.StmtKinds {
			w.WriteByte(byte(k))
		}

	case ast.WithPayload:
		w.WriteVarint(uint64(p.HandlerCount))

	case ast.PerformPayload:
		if err := writeSymbol(w, reg, p.EffectRef); err != nil {
			return err
		}
		if err := writeSymbol(w, reg, p.Operation); err != nil {
			return err
		}

	case ast.PipePayload:
		// no scalar fields

	case ast.RecordPayload:
		if err := writeSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.RecordAccessPayload:
		if err := writeSymbol(w, reg, p.Field); err != nil {
			return err
		}

	case ast.RecordUpdatePayload:
		if err := writeSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.PatternWildcardPayload:
		// no scalar fields

	case ast.PatternLiteralPayload:
		w.WriteByte(byte(p.LitKind))
		switch p.LitKind {
		case ast.LitInt:
			w.WriteZigzag(p.Int)
		case ast.LitFloat:
			w.WriteFloat(p.Float)
		case ast.LitText:
			w.WriteText(p.Text)
		case ast.LitBool:
			w.WriteBool(p.Bool)
		}

	case ast.PatternVariablePayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.PatternConstructorPayload:
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.PatternRecordPayload:
		if err := writeSymbolList(w, reg, p.FieldNames); err != nil {
			return err
		}

	case ast.PatternConsPayload:
		// no scalar fields

	case ast.PatternTuplePayload:
		// no scalar fields

	case ast.LiteralIntPayload:
		w.WriteZigzag(p.Value)

	case ast.LiteralFloatPayload:
		w.WriteFloat(p.Value)

	case ast.LiteralTextPayload:
		w.WriteText(p.Value)

	case ast.LiteralBoolPayload:
		w.WriteBool(p.Value)

	case ast.LiteralUnitPayload:
		// no scalar fields

	case ast.LiteralListPayload:
		// no scalar fields

	case ast.LiteralTuplePayload:
		// no scalar fields

	case ast.ReferenceSymbolicPayload:
		if err := writeSymbolList(w, reg, p.Qualified); err != nil {
			return err
		}
		if err := writeSymbol(w, reg, p.Name); err != nil {
			return err
		}

	case ast.ReferenceHashAnchoredPayload:
		w.WriteDigest([32]byte(p.Hash))

	default:
		return fmt.Errorf("hash: unhandled payload type %T for kind %s", p, n.Kind())
	}
	return nil
}
