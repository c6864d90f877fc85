package bridge

import (
	"encoding/hex"
	"fmt"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

func parseDigest(s string) (ast.Digest, error) {
	var d ast.Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("bridge: invalid hex digest %q: %w", s, err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("bridge: digest %q has %d bytes, want %d", s, len(b), len(d))
	}
	copy(d[:], b)
	return d, nil
}

var kindByName = map[string]ast.Kind{
	ast.KindCompilationUnit.String():       ast.KindCompilationUnit,
	ast.KindModule.String():                ast.KindModule,
	ast.KindImport.String():                ast.KindImport,
	ast.KindValueDef.String():              ast.KindValueDef,
	ast.KindTypeDef.String():               ast.KindTypeDef,
	ast.KindEffectDef.String():             ast.KindEffectDef,
	ast.KindHandlerDef.String():            ast.KindHandlerDef,
	ast.KindInterface.String():             ast.KindInterface,
	ast.KindLambda.String():                ast.KindLambda,
	ast.KindApplication.String():           ast.KindApplication,
	ast.KindLet.String():                   ast.KindLet,
	ast.KindLetRec.String():                ast.KindLetRec,
	ast.KindIf.String():                    ast.KindIf,
	ast.KindMatch.String():                 ast.KindMatch,
	ast.KindDo.String():                    ast.KindDo,
	ast.KindWith.String():                  ast.KindWith,
	ast.KindPerform.String():               ast.KindPerform,
	ast.KindPipe.String():                  ast.KindPipe,
	ast.KindRecord.String():                ast.KindRecord,
	ast.KindRecordAccess.String():          ast.KindRecordAccess,
	ast.KindRecordUpdate.String():          ast.KindRecordUpdate,
	ast.KindPatternWildcard.String():       ast.KindPatternWildcard,
	ast.KindPatternLiteral.String():        ast.KindPatternLiteral,
	ast.KindPatternVariable.String():       ast.KindPatternVariable,
	ast.KindPatternConstructor.String():    ast.KindPatternConstructor,
	ast.KindPatternRecord.String():         ast.KindPatternRecord,
	ast.KindPatternCons.String():           ast.KindPatternCons,
	ast.KindPatternTuple.String():          ast.KindPatternTuple,
	ast.KindLiteralInt.String():            ast.KindLiteralInt,
	ast.KindLiteralFloat.String():          ast.KindLiteralFloat,
	ast.KindLiteralText.String():           ast.KindLiteralText,
	ast.KindLiteralBool.String():           ast.KindLiteralBool,
	ast.KindLiteralUnit.String():           ast.KindLiteralUnit,
	ast.KindLiteralList.String():           ast.KindLiteralList,
	ast.KindLiteralTuple.String():          ast.KindLiteralTuple,
	ast.KindReferenceSymbolic.String():     ast.KindReferenceSymbolic,
	ast.KindReferenceHashAnchored.String(): ast.KindReferenceHashAnchored,
}

// Parse reads src, a tree produced by Print, back into an AST built
// against reg (the same registry symbols were printed against). A fresh
// Builder is used so every parsed node gets a freshly allocated NodeID;
// content hashes are unaffected since NodeID never participates in
// hashing (spec §3 invariant 3).
func Parse(reg *symbol.Registry, src string) (*ast.Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	r := newReader(toks)
	b := ast.NewBuilder()
	n, err := parseNode(r, b, reg)
	if err != nil {
		return nil, err
	}
	if !r.done() {
		return nil, fmt.Errorf("bridge: trailing tokens after top-level node")
	}
	return n, nil
}

func parseNode(r *reader, b *ast.Builder, reg *symbol.Registry) (*ast.Node, error) {
	if err := r.expectOpen(); err != nil {
		return nil, err
	}
	kindStr, err := r.atom()
	if err != nil {
		return nil, err
	}
	kind, ok := kindByName[kindStr]
	if !ok {
		return nil, fmt.Errorf("bridge: unknown node kind %q", kindStr)
	}
	payload, err := parseFields(r, reg, kind)
	if err != nil {
		return nil, fmt.Errorf("bridge: parsing %s fields: %w", kindStr, err)
	}
	var children []*ast.Node
	for !r.peekIsClose() {
		if !r.peekIsOpen() {
			tok, err := r.atom()
			if err != nil {
				return nil, err
			}
			if tok != none {
				return nil, fmt.Errorf("bridge: expected child node or %q in %s, got %q", none, kindStr, tok)
			}
			children = append(children, nil)
			continue
		}
		c, err := parseNode(r, b, reg)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if err := r.expectClose(); err != nil {
		return nil, err
	}
	return b.Build(diag.Span{}, kind, payload, children...), nil
}

func parseSymbol(r *reader, reg *symbol.Registry) (symbol.ID, error) {
	tok, err := r.atom()
	if err != nil {
		return 0, err
	}
	if tok == none {
		return 0, nil
	}
	return reg.Intern(tok), nil
}

func parseSymbolList(r *reader, reg *symbol.Registry) ([]symbol.ID, error) {
	if err := r.expectOpen(); err != nil {
		return nil, err
	}
	var out []symbol.ID
	for !r.peekIsClose() {
		id, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := r.expectClose(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseInterfaceFunc(r *reader, reg *symbol.Registry) (ast.InterfaceFunc, error) {
	var f ast.InterfaceFunc
	if err := r.expectOpen(); err != nil {
		return f, err
	}
	name, err := parseSymbol(r, reg)
	if err != nil {
		return f, err
	}
	f.Name = name
	if err := r.expectOpen(); err != nil {
		return f, err
	}
	for !r.peekIsClose() {
		p, err := parseTypeExpr(r)
		if err != nil {
			return f, err
		}
		f.Params = append(f.Params, p)
	}
	if err := r.expectClose(); err != nil {
		return f, err
	}
	result, err := parseOptionalTypeExpr(r)
	if err != nil {
		return f, err
	}
	f.Result = result
	if err := r.expectClose(); err != nil {
		return f, err
	}
	return f, nil
}

func parseRecordFieldDecl(r *reader, reg *symbol.Registry) (ast.RecordFieldDecl, error) {
	var f ast.RecordFieldDecl
	if err := r.expectOpen(); err != nil {
		return f, err
	}
	name, err := parseSymbol(r, reg)
	if err != nil {
		return f, err
	}
	f.Name = name
	typ, err := parseOptionalTypeExpr(r)
	if err != nil {
		return f, err
	}
	f.Type = typ
	if err := r.expectClose(); err != nil {
		return f, err
	}
	return f, nil
}

// parseFields reads kind's scalar Payload fields, in the same order
// printFields wrote them, and returns the reconstructed Payload. Children
// are left for the caller to parse afterward.
func parseFields(r *reader, reg *symbol.Registry, kind ast.Kind) (ast.Payload, error) {
	switch kind {
	case ast.KindCompilationUnit:
		return ast.CompilationUnitPayload{}, nil

	case ast.KindModule:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		visStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		vis, err := parseVisibility(visStr)
		if err != nil {
			return nil, err
		}
		return ast.ModulePayload{Name: name, Visibility: vis}, nil

	case ast.KindImport:
		path, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		constraint, err := r.atom()
		if err != nil {
			return nil, err
		}
		selective, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		alias, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.ImportPayload{Path: path, Constraint: constraint, Selective: selective, Alias: alias}, nil

	case ast.KindValueDef:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		visStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		vis, err := parseVisibility(visStr)
		if err != nil {
			return nil, err
		}
		purStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		pur, err := parsePurity(purStr)
		if err != nil {
			return nil, err
		}
		ann, err := parseOptionalTypeExpr(r)
		if err != nil {
			return nil, err
		}
		return ast.ValueDefPayload{Name: name, Visibility: vis, Purity: pur, TypeAnnotation: ann}, nil

	case ast.KindTypeDef:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		typeParams, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		variantStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		variant, err := parseTypeDefVariant(variantStr)
		if err != nil {
			return nil, err
		}
		p := ast.TypeDefPayload{Name: name, TypeParams: typeParams, Variant: variant}
		switch variant {
		case ast.TypeDefAlias:
			alias, err := parseOptionalTypeExpr(r)
			if err != nil {
				return nil, err
			}
			p.Alias = alias
		case ast.TypeDefRecord:
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			for !r.peekIsClose() {
				f, err := parseRecordFieldDecl(r, reg)
				if err != nil {
					return nil, err
				}
				p.RecordFields = append(p.RecordFields, f)
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
		case ast.TypeDefSum:
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			for !r.peekIsClose() {
				if err := r.expectOpen(); err != nil {
					return nil, err
				}
				vname, err := parseSymbol(r, reg)
				if err != nil {
					return nil, err
				}
				if err := r.expectOpen(); err != nil {
					return nil, err
				}
				var fields []ast.RecordFieldDecl
				for !r.peekIsClose() {
					f, err := parseRecordFieldDecl(r, reg)
					if err != nil {
						return nil, err
					}
					fields = append(fields, f)
				}
				if err := r.expectClose(); err != nil {
					return nil, err
				}
				if err := r.expectClose(); err != nil {
					return nil, err
				}
				p.Variants = append(p.Variants, ast.VariantDecl{Name: vname, Fields: fields})
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
		}
		return p, nil

	case ast.KindEffectDef:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		typeParams, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		var ops []ast.EffectOperation
		for !r.peekIsClose() {
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			opName, err := parseSymbol(r, reg)
			if err != nil {
				return nil, err
			}
			inputs, err := parseTypeExprList(r)
			if err != nil {
				return nil, err
			}
			result, err := parseOptionalTypeExpr(r)
			if err != nil {
				return nil, err
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
			ops = append(ops, ast.EffectOperation{Name: opName, Inputs: inputs, Result: result})
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		return ast.EffectDefPayload{Name: name, TypeParams: typeParams, Operations: ops}, nil

	case ast.KindHandlerDef:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		effectRef, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		opNames, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		hasReturnStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		hasReturn, err := parseBool(hasReturnStr)
		if err != nil {
			return nil, err
		}
		return ast.HandlerDefPayload{Name: name, EffectRef: effectRef, OpNames: opNames, HasReturnClause: hasReturn}, nil

	case ast.KindInterface:
		name, err := r.atom()
		if err != nil {
			return nil, err
		}
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		var funcs []ast.InterfaceFunc
		for !r.peekIsClose() {
			f, err := parseInterfaceFunc(r, reg)
			if err != nil {
				return nil, err
			}
			funcs = append(funcs, f)
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		var resources []ast.InterfaceResource
		for !r.peekIsClose() {
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			rname, err := parseSymbol(r, reg)
			if err != nil {
				return nil, err
			}
			if err := r.expectOpen(); err != nil {
				return nil, err
			}
			var methods []ast.InterfaceFunc
			for !r.peekIsClose() {
				m, err := parseInterfaceFunc(r, reg)
				if err != nil {
					return nil, err
				}
				methods = append(methods, m)
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
			if err := r.expectClose(); err != nil {
				return nil, err
			}
			resources = append(resources, ast.InterfaceResource{Name: rname, Methods: methods})
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		return ast.InterfacePayload{Name: name, Functions: funcs, Resources: resources}, nil

	case ast.KindLambda:
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		var paramTypes []*ast.TypeExpr
		for !r.peekIsClose() {
			t, err := parseOptionalTypeExpr(r)
			if err != nil {
				return nil, err
			}
			paramTypes = append(paramTypes, t)
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		return ast.LambdaPayload{ParamTypes: paramTypes}, nil

	case ast.KindApplication:
		return ast.ApplicationPayload{}, nil

	case ast.KindLet:
		n, err := parseCount(r)
		if err != nil {
			return nil, err
		}
		return ast.LetPayload{BindingCount: n}, nil

	case ast.KindLetRec:
		n, err := parseCount(r)
		if err != nil {
			return nil, err
		}
		return ast.LetRecPayload{BindingCount: n}, nil

	case ast.KindIf:
		return ast.IfPayload{}, nil

	case ast.KindMatch:
		n, err := parseCount(r)
		if err != nil {
			return nil, err
		}
		return ast.MatchPayload{ArmCount: n}, nil

	case ast.KindDo:
		if err := r.expectOpen(); err != nil {
			return nil, err
		}
		var kinds []ast.DoStmtKind
		for !r.peekIsClose() {
			tok, err := r.atom()
			if err != nil {
				return nil, err
			}
			k, err := parseDoStmtKind(tok)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
		if err := r.expectClose(); err != nil {
			return nil, err
		}
		return ast.DoPayload{StmtKinds: kinds}, nil

	case ast.KindWith:
		n, err := parseCount(r)
		if err != nil {
			return nil, err
		}
		return ast.WithPayload{HandlerCount: n}, nil

	case ast.KindPerform:
		effectRef, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		op, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.PerformPayload{EffectRef: effectRef, Operation: op}, nil

	case ast.KindPipe:
		return ast.PipePayload{}, nil

	case ast.KindRecord:
		names, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.RecordPayload{FieldNames: names}, nil

	case ast.KindRecordAccess:
		field, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.RecordAccessPayload{Field: field}, nil

	case ast.KindRecordUpdate:
		names, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.RecordUpdatePayload{FieldNames: names}, nil

	case ast.KindPatternWildcard:
		return ast.PatternWildcardPayload{}, nil

	case ast.KindPatternLiteral:
		kindStr, err := r.atom()
		if err != nil {
			return nil, err
		}
		litKind, err := parseLitKind(kindStr)
		if err != nil {
			return nil, err
		}
		p := ast.PatternLiteralPayload{LitKind: litKind}
		switch litKind {
		case ast.LitInt:
			tok, err := r.atom()
			if err != nil {
				return nil, err
			}
			if p.Int, err = parseInt(tok); err != nil {
				return nil, err
			}
		case ast.LitFloat:
			tok, err := r.atom()
			if err != nil {
				return nil, err
			}
			if p.Float, err = parseFloat(tok); err != nil {
				return nil, err
			}
		case ast.LitText:
			if p.Text, err = r.atom(); err != nil {
				return nil, err
			}
		case ast.LitBool:
			tok, err := r.atom()
			if err != nil {
				return nil, err
			}
			if p.Bool, err = parseBool(tok); err != nil {
				return nil, err
			}
		}
		return p, nil

	case ast.KindPatternVariable:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.PatternVariablePayload{Name: name}, nil

	case ast.KindPatternConstructor:
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.PatternConstructorPayload{Name: name}, nil

	case ast.KindPatternRecord:
		names, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.PatternRecordPayload{FieldNames: names}, nil

	case ast.KindPatternCons:
		return ast.PatternConsPayload{}, nil

	case ast.KindPatternTuple:
		return ast.PatternTuplePayload{}, nil

	case ast.KindLiteralInt:
		tok, err := r.atom()
		if err != nil {
			return nil, err
		}
		v, err := parseInt(tok)
		if err != nil {
			return nil, err
		}
		return ast.LiteralIntPayload{Value: v}, nil

	case ast.KindLiteralFloat:
		tok, err := r.atom()
		if err != nil {
			return nil, err
		}
		v, err := parseFloat(tok)
		if err != nil {
			return nil, err
		}
		return ast.LiteralFloatPayload{Value: v}, nil

	case ast.KindLiteralText:
		v, err := r.atom()
		if err != nil {
			return nil, err
		}
		return ast.LiteralTextPayload{Value: v}, nil

	case ast.KindLiteralBool:
		tok, err := r.atom()
		if err != nil {
			return nil, err
		}
		v, err := parseBool(tok)
		if err != nil {
			return nil, err
		}
		return ast.LiteralBoolPayload{Value: v}, nil

	case ast.KindLiteralUnit:
		return ast.LiteralUnitPayload{}, nil

	case ast.KindLiteralList:
		return ast.LiteralListPayload{}, nil

	case ast.KindLiteralTuple:
		return ast.LiteralTuplePayload{}, nil

	case ast.KindReferenceSymbolic:
		qualified, err := parseSymbolList(r, reg)
		if err != nil {
			return nil, err
		}
		name, err := parseSymbol(r, reg)
		if err != nil {
			return nil, err
		}
		return ast.ReferenceSymbolicPayload{Qualified: qualified, Name: name}, nil

	case ast.KindReferenceHashAnchored:
		tok, err := r.atom()
		if err != nil {
			return nil, err
		}
		d, err := parseDigest(tok)
		if err != nil {
			return nil, err
		}
		return ast.ReferenceHashAnchoredPayload{Hash: d}, nil

	default:
		return nil, fmt.Errorf("bridge: unhandled kind %s", kind)
	}
}

func parseCount(r *reader) (int, error) {
	tok, err := r.atom()
	if err != nil {
		return 0, err
	}
	n, err := parseInt(tok)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
