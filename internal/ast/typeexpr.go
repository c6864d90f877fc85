package ast

import "strings"

// TypeExprKind discriminates the syntactic type-annotation forms a
// definition can carry in source. TypeExpr is distinct from
// internal/types.Type: a TypeExpr names type variables and effects by
// their surface spelling (strings), the way they appeared in source,
// while internal/types.Type allocates fresh unification Vars once the
// checker elaborates a TypeExpr at a definition site. Spec §4.C requires
// the syntactic annotation — not the inferred type — to participate in
// the content hash, which is why the two are kept separate.
type TypeExprKind uint8

const (
	TypeExprBase TypeExprKind = iota
	TypeExprVar
	TypeExprList
	TypeExprMaybe
	TypeExprEither
	TypeExprResult
	TypeExprTuple
	TypeExprRecord
	TypeExprNominal
	TypeExprFunc
)

// TypeExpr is an immutable syntactic type annotation.
type TypeExpr struct {
	Kind TypeExprKind

	Base string // TypeExprBase: "Int", "Float", "Text", "Bool", "Unit"
	Var  string // TypeExprVar: surface spelling, e.g. "a"

	Elem *TypeExpr // TypeExprList, TypeExprMaybe

	Left  *TypeExpr // TypeExprEither, TypeExprResult
	Right *TypeExpr

	Items []*TypeExpr // TypeExprTuple

	Fields     map[string]*TypeExpr // TypeExprRecord
	FieldOrder []string             // canonical field order for hashing/printing
	RowVar     string               // "" means a closed record

	Nominal     string      // TypeExprNominal
	NominalArgs []*TypeExpr

	From *TypeExpr // TypeExprFunc
	To   *TypeExpr

	Effects       []string // syntactic effect row, source order preserved for display
	EffectTailVar string   // "" means closed
}

func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeExprBase:
		return t.Base
	case TypeExprVar:
		return t.Var
	case TypeExprList:
		return "List[" + t.Elem.String() + "]"
	case TypeExprMaybe:
		return "Maybe[" + t.Elem.String() + "]"
	case TypeExprEither:
		return "Either[" + t.Left.String() + ", " + t.Right.String() + "]"
	case TypeExprResult:
		return "Result[" + t.Left.String() + ", " + t.Right.String() + "]"
	case TypeExprTuple:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TypeExprRecord:
		parts := make([]string, 0, len(t.FieldOrder))
		for _, name := range t.FieldOrder {
			parts = append(parts, name+": "+t.Fields[name].String())
		}
		tail := ""
		if t.RowVar != "" {
			tail = " | " + t.RowVar
		}
		return "{" + strings.Join(parts, ", ") + tail + "}"
	case TypeExprNominal:
		if len(t.NominalArgs) == 0 {
			return t.Nominal
		}
		parts := make([]string, len(t.NominalArgs))
		for i, a := range t.NominalArgs {
			parts[i] = a.String()
		}
		return t.Nominal + "[" + strings.Join(parts, ", ") + "]"
	case TypeExprFunc:
		eff := ""
		if len(t.Effects) > 0 || t.EffectTailVar != "" {
			row := append([]string{}, t.Effects...)
			if t.EffectTailVar != "" {
				row = append(row, t.EffectTailVar)
			}
			eff = " <" + strings.Join(row, ", ") + ">"
		}
		return t.From.String() + " -> " + t.To.String() + eff
	default:
		return "<invalid>"
	}
}

// Equal performs a purely syntactic structural comparison (no
// alpha-renaming of type variables — that is the checker's job once a
// TypeExpr is elaborated into an internal/types.Type).
func (t *TypeExpr) Equal(o *TypeExpr) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeExprBase:
		return t.Base == o.Base
	case TypeExprVar:
		return t.Var == o.Var
	case TypeExprList, TypeExprMaybe:
		return t.Elem.Equal(o.Elem)
	case TypeExprEither, TypeExprResult:
		return t.Left.Equal(o.Left) && t.Right.Equal(o.Right)
	case TypeExprTuple:
		if len(t.Items) != len(o.Items) {
			return false
		}
		for i := range t.Items {
			if !t.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case TypeExprRecord:
		if len(t.FieldOrder) != len(o.FieldOrder) || t.RowVar != o.RowVar {
			return false
		}
		for _, name := range t.FieldOrder {
			of, ok := o.Fields[name]
			if !ok || !t.Fields[name].Equal(of) {
				return false
			}
		}
		return true
	case TypeExprNominal:
		if t.Nominal != o.Nominal || len(t.NominalArgs) != len(o.NominalArgs) {
			return false
		}
		for i := range t.NominalArgs {
			if !t.NominalArgs[i].Equal(o.NominalArgs[i]) {
				return false
			}
		}
		return true
	case TypeExprFunc:
		if !t.From.Equal(o.From) || !t.To.Equal(o.To) || t.EffectTailVar != o.EffectTailVar {
			return false
		}
		if len(t.Effects) != len(o.Effects) {
			return false
		}
		for i := range t.Effects {
			if t.Effects[i] != o.Effects[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
