// Package extsyntax is a reference "parser" collaborator (spec §6,
// "Parser contract") implemented against a real grammar instead of hand
// -built fixtures. It turns Go source text into the pre-AST shape the
// core lifts — spans, no node_id, no content hashes, annotations only
// for the parser's preferred surface style — with tree-sitter supplying
// the grammar.
//
// A full source-language frontend is explicitly out of scope (spec §1
// carves out "the textual surface syntax(es) and lexer" as an external
// collaborator's concern); ParseGo exists only so internal/ast's lifter
// and internal/bridge's round-trip tests exercise a real external parser
// end to end, not a stand-in for ribbon's own surface syntax. It lowers
// top-level function declarations and single-name, literal-initialized
// const/var declarations; anything else in the file (multi-value
// declarations, control flow, non-literal initializers, imports, types)
// is left unlifted rather than guessed at.
package extsyntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	gogrammar "github.com/smacker/go-tree-sitter/golang"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// FileID is the diag.Span file identifier every node ParseGo produces
// carries. Callers lifting multiple files should treat it as a single
// logical unit or renumber spans themselves; extsyntax has no concept of
// a multi-file compilation.
const FileID = 0

// StyleAnnotation is the volatile annotation key ParseGo attaches to each
// lifted ValueDef recording the declaration form it came from ("func",
// "const", "var"), matching spec §6's "the parser may annotate nodes with
// a preferred surface style, which the core preserves as a volatile
// annotation (not hashed)".
const StyleAnnotation = "style"

// ParseGo parses src as Go source and lifts it into a CompilationUnit
// node ready for internal/ast.Builder's caller to attach to a namespace.
// Declarations that ParseGo cannot lower are silently skipped — see the
// package doc comment.
func ParseGo(reg *symbol.Registry, src []byte) (*ast.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(gogrammar.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("extsyntax: parse: %w", err)
	}
	defer tree.Close()

	b := ast.NewBuilder()
	root := tree.RootNode()

	var defs []*ast.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "function_declaration":
			if def := liftFunc(b, reg, src, child); def != nil {
				defs = append(defs, def)
			}
		case "const_declaration", "var_declaration":
			defs = append(defs, liftValueDecl(b, reg, src, child, child.Type())...)
		}
	}

	return b.Build(spanOf(root), ast.KindCompilationUnit, ast.CompilationUnitPayload{}, defs...), nil
}

func spanOf(n *sitter.Node) diag.Span {
	return diag.Span{
		FileID: FileID,
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(n.StartPoint().Row) + 1,
		Col:    int(n.StartPoint().Column) + 1,
	}
}

func withStyle(n *ast.Node, style string) *ast.Node {
	return n.WithAnnotations(n.Annotations().With(StyleAnnotation, ast.AnnotationValue{Text: style}))
}

// liftFunc lowers a top-level `func name(params...) ... { ... }` into a
// ValueDef wrapping a Lambda. The function body is not lowered (control
// flow and statements are beyond this minimal collaborator); the Lambda
// carries a LiteralUnit placeholder body so the resulting node is still
// well-formed per the parameter-list-plus-body Lambda contract
// internal/ast.LambdaPayload documents.
func liftFunc(b *ast.Builder, reg *symbol.Registry, src []byte, n *sitter.Node) *ast.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := reg.Intern(nameNode.Content(src))

	var paramPatterns []*ast.Node
	var paramTypes []*ast.TypeExpr
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			pnameNode := p.ChildByFieldName("name")
			if pnameNode == nil {
				continue
			}
			pname := reg.Intern(pnameNode.Content(src))
			paramPatterns = append(paramPatterns,
				b.Build(spanOf(p), ast.KindPatternVariable, ast.PatternVariablePayload{Name: pname}))
			paramTypes = append(paramTypes, nil)
		}
	}

	body := b.Build(spanOf(n), ast.KindLiteralUnit, ast.LiteralUnitPayload{})
	lambdaChildren := append(paramPatterns, body)
	lambda := b.Build(spanOf(n), ast.KindLambda, ast.LambdaPayload{ParamTypes: paramTypes}, lambdaChildren...)

	def := b.Build(spanOf(n), ast.KindValueDef,
		ast.ValueDefPayload{Name: name, Visibility: visibilityOf(nameNode.Content(src)), Purity: ast.PurityUnspecified},
		lambda)
	return withStyle(def, "func")
}

// liftValueDecl lowers single-name, literal-initialized specs out of a
// const_declaration/var_declaration block. `x, y = 1, 2` and typed-but
// -uninitialized specs are skipped: this collaborator only demonstrates
// the parser contract, not a complete Go frontend.
func liftValueDecl(b *ast.Builder, reg *symbol.Registry, src []byte, n *sitter.Node, declForm string) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "const_spec" && spec.Type() != "var_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		valueNode := spec.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		if valueNode.Type() == "expression_list" {
			if valueNode.NamedChildCount() != 1 {
				continue
			}
			valueNode = valueNode.NamedChild(0)
		}
		lit := liftLiteral(b, src, valueNode)
		if lit == nil {
			continue
		}
		name := reg.Intern(nameNode.Content(src))
		def := b.Build(spanOf(spec), ast.KindValueDef,
			ast.ValueDefPayload{Name: name, Visibility: visibilityOf(nameNode.Content(src)), Purity: ast.PurityPure},
			lit)
		out = append(out, withStyle(def, declKind(declForm)))
	}
	return out
}

func declKind(declForm string) string {
	if declForm == "const_declaration" {
		return "const"
	}
	return "var"
}

// visibilityOf follows Go's own exported-identifier convention (leading
// uppercase) since ribbon has no surface syntax of its own to borrow a
// visibility keyword from for this demonstration lowering.
func visibilityOf(name string) ast.Visibility {
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return ast.VisibilityPublic
	}
	return ast.VisibilityPrivate
}

func liftLiteral(b *ast.Builder, src []byte, n *sitter.Node) *ast.Node {
	text := n.Content(src)
	span := spanOf(n)
	switch n.Type() {
	case "int_literal":
		var v int64
		if _, err := fmt.Sscanf(text, "%d", &v); err != nil {
			return nil
		}
		return b.Build(span, ast.KindLiteralInt, ast.LiteralIntPayload{Value: v})
	case "float_literal":
		var v float64
		if _, err := fmt.Sscanf(text, "%g", &v); err != nil {
			return nil
		}
		return b.Build(span, ast.KindLiteralFloat, ast.LiteralFloatPayload{Value: v})
	case "interpreted_string_literal", "raw_string_literal":
		return b.Build(span, ast.KindLiteralText, ast.LiteralTextPayload{Value: unquote(n.Type(), text)})
	case "true":
		return b.Build(span, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: true})
	case "false":
		return b.Build(span, ast.KindLiteralBool, ast.LiteralBoolPayload{Value: false})
	default:
		return nil
	}
}

func unquote(kind, text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
