package bridge

import (
	"fmt"
	"strconv"

	"github.com/ribbonlang/ribbon/internal/ast"
)

// Printing and parsing of the small closed enums embedded in Payload
// fields, as bare lowercase atoms rather than raw integers, so a `.x`
// file reads like a recognizable program rather than a byte dump.

func visibilityAtom(v ast.Visibility) string {
	if v == ast.VisibilityPublic {
		return "public"
	}
	return "private"
}

func parseVisibility(s string) (ast.Visibility, error) {
	switch s {
	case "public":
		return ast.VisibilityPublic, nil
	case "private":
		return ast.VisibilityPrivate, nil
	default:
		return 0, fmt.Errorf("bridge: invalid visibility atom %q", s)
	}
}

func purityAtom(p ast.Purity) string {
	switch p {
	case ast.PurityPure:
		return "pure"
	case ast.PurityImpure:
		return "impure"
	default:
		return "unspecified"
	}
}

func parsePurity(s string) (ast.Purity, error) {
	switch s {
	case "pure":
		return ast.PurityPure, nil
	case "impure":
		return ast.PurityImpure, nil
	case "unspecified":
		return ast.PurityUnspecified, nil
	default:
		return 0, fmt.Errorf("bridge: invalid purity atom %q", s)
	}
}

func typeDefVariantAtom(v ast.TypeDefVariant) string {
	switch v {
	case ast.TypeDefRecord:
		return "record"
	case ast.TypeDefSum:
		return "sum"
	default:
		return "alias"
	}
}

func parseTypeDefVariant(s string) (ast.TypeDefVariant, error) {
	switch s {
	case "alias":
		return ast.TypeDefAlias, nil
	case "record":
		return ast.TypeDefRecord, nil
	case "sum":
		return ast.TypeDefSum, nil
	default:
		return 0, fmt.Errorf("bridge: invalid type-def variant atom %q", s)
	}
}

func doStmtKindAtom(k ast.DoStmtKind) string {
	switch k {
	case ast.DoLet:
		return "let"
	case ast.DoExpr:
		return "expr"
	default:
		return "bind"
	}
}

func parseDoStmtKind(s string) (ast.DoStmtKind, error) {
	switch s {
	case "bind":
		return ast.DoBind, nil
	case "let":
		return ast.DoLet, nil
	case "expr":
		return ast.DoExpr, nil
	default:
		return 0, fmt.Errorf("bridge: invalid do-statement-kind atom %q", s)
	}
}

func litKindAtom(k ast.LiteralKind) string {
	switch k {
	case ast.LitFloat:
		return "float"
	case ast.LitText:
		return "text"
	case ast.LitBool:
		return "bool"
	default:
		return "int"
	}
}

func parseLitKind(s string) (ast.LiteralKind, error) {
	switch s {
	case "int":
		return ast.LitInt, nil
	case "float":
		return ast.LitFloat, nil
	case "text":
		return ast.LitText, nil
	case "bool":
		return ast.LitBool, nil
	default:
		return 0, fmt.Errorf("bridge: invalid literal-kind atom %q", s)
	}
}

func boolAtom(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("bridge: invalid bool atom %q", s)
	}
}

func intAtom(n int64) string { return strconv.FormatInt(n, 10) }

func parseInt(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func floatAtom(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
