// Package types implements the monotype/scheme/effect-row vocabulary shared
// between the persistent AST (which attaches inferred schemes to nodes) and
// the checker (which computes them). It is its own package so internal/ast
// does not need to import internal/check.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Var is a unification variable identity. Type variables and effect
// variables share the same representation; which namespace a Var belongs
// to is determined by where it appears (Type vs Row).
type Var uint64

// Base enumerates the built-in base types.
type Base string

const (
	Int   Base = "Int"
	Float Base = "Float"
	Text  Base = "Text"
	Bool  Base = "Bool"
	Unit  Base = "Unit"
)

// Type is a monotype: a base type, a type variable, or a compound type.
// Exactly one of the fields below is meaningful, selected by Kind.
type Type struct {
	Kind TypeKind

	Base Base   // KindBase
	Var  Var    // KindVar

	Elem *Type // KindList, KindMaybe

	Left  *Type // KindEither, KindResult (ok branch for Result)
	Right *Type // KindEither, KindResult (err branch for Result)

	Items []*Type // KindTuple

	Fields   map[string]*Type // KindRecord
	RowVar   *Var              // KindRecord: present if the record is row-polymorphic (open)
	FieldOrd []string          // canonical field name order for hashing/printing

	Nominal     string  // KindVariant: the nominal type name
	NominalArgs []*Type // KindVariant: instantiated type arguments

	From *Type    // KindFunc
	To   *Type    // KindFunc
	Eff  EffectRow // KindFunc: the effect row of the function's body
}

// TypeKind discriminates the Type union.
type TypeKind int

const (
	KindBase TypeKind = iota
	KindVar
	KindList
	KindMaybe
	KindEither
	KindResult
	KindTuple
	KindRecord
	KindVariant
	KindFunc
)

// EffectRow is ε ::= ∅ | {eff1 … effn} | α | ε ∪ ε, represented as a
// canonical sorted set of effect names plus an optional open tail variable.
type EffectRow struct {
	Effects []string // sorted, deduplicated
	Tail    *Var      // nil means closed (∅ tail)
}

// ClosedRow builds a closed effect row (no polymorphic tail) from a set of
// effect names, normalizing order and duplicates.
func ClosedRow(effects ...string) EffectRow {
	return EffectRow{Effects: normalizeEffects(effects)}
}

// OpenRow builds a row with a polymorphic tail.
func OpenRow(tail Var, effects ...string) EffectRow {
	return EffectRow{Effects: normalizeEffects(effects), Tail: &tail}
}

func normalizeEffects(effects []string) []string {
	seen := make(map[string]bool, len(effects))
	out := make([]string, 0, len(effects))
	for _, e := range effects {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}

// Union computes ε1 ∪ ε2. If either row has an open tail, the result is
// open; if both do, they must already have been unified to the same tail
// by the caller (the checker's row unifier owns that invariant).
func (r EffectRow) Union(other EffectRow) EffectRow {
	merged := append(append([]string{}, r.Effects...), other.Effects...)
	out := EffectRow{Effects: normalizeEffects(merged)}
	if r.Tail != nil {
		out.Tail = r.Tail
	} else if other.Tail != nil {
		out.Tail = other.Tail
	}
	return out
}

// Minus removes the named effects from the row — the operation a handler
// performs on the row of its body (spec §4.E: "each With handler removes
// the handled effects from the row of its body").
func (r EffectRow) Minus(handled ...string) EffectRow {
	drop := make(map[string]bool, len(handled))
	for _, h := range handled {
		drop[h] = true
	}
	out := make([]string, 0, len(r.Effects))
	for _, e := range r.Effects {
		if !drop[e] {
			out = append(out, e)
		}
	}
	return EffectRow{Effects: out, Tail: r.Tail}
}

// Contains reports whether effect is present in the row's known set (not
// counting whatever an open tail might contribute).
func (r EffectRow) Contains(effect string) bool {
	for _, e := range r.Effects {
		if e == effect {
			return true
		}
	}
	return false
}

// Empty reports whether the row is exactly ∅ (closed, no effects).
func (r EffectRow) Empty() bool {
	return len(r.Effects) == 0 && r.Tail == nil
}

func (r EffectRow) String() string {
	if r.Empty() {
		return "∅"
	}
	parts := append([]string{}, r.Effects...)
	if r.Tail != nil {
		parts = append(parts, fmt.Sprintf("ρ%d", *r.Tail))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Scheme is a quantified type: ∀ type-vars, effect-vars. Type.
// Generalization over effect variables is withheld for values with
// observable effects (spec §4.E "value restriction for effects"); such
// schemes have EffectVars == nil even if the underlying Type mentions a
// row tail, by construction of the generalizer.
type Scheme struct {
	TypeVars   []Var
	EffectVars []Var
	Type       *Type
}

// Monomorphic wraps a type with no quantified variables.
func Monomorphic(t *Type) *Scheme {
	return &Scheme{Type: t}
}

func (s *Scheme) String() string {
	if s == nil {
		return "<untyped>"
	}
	if len(s.TypeVars) == 0 && len(s.EffectVars) == 0 {
		return s.Type.String()
	}
	var quant []string
	for _, v := range s.TypeVars {
		quant = append(quant, fmt.Sprintf("a%d", v))
	}
	for _, v := range s.EffectVars {
		quant = append(quant, fmt.Sprintf("ρ%d", v))
	}
	return "∀" + strings.Join(quant, " ") + ". " + s.Type.String()
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindBase:
		return string(t.Base)
	case KindVar:
		return fmt.Sprintf("a%d", t.Var)
	case KindList:
		return "List[" + t.Elem.String() + "]"
	case KindMaybe:
		return "Maybe[" + t.Elem.String() + "]"
	case KindEither:
		return fmt.Sprintf("Either[%s, %s]", t.Left, t.Right)
	case KindResult:
		return fmt.Sprintf("Result[%s, %s]", t.Left, t.Right)
	case KindTuple:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindRecord:
		parts := make([]string, 0, len(t.FieldOrd))
		for _, name := range t.FieldOrd {
			parts = append(parts, name+": "+t.Fields[name].String())
		}
		tail := ""
		if t.RowVar != nil {
			tail = fmt.Sprintf(" | ρ%d", *t.RowVar)
		}
		return "{" + strings.Join(parts, ", ") + tail + "}"
	case KindVariant:
		if len(t.NominalArgs) == 0 {
			return t.Nominal
		}
		parts := make([]string, len(t.NominalArgs))
		for i, a := range t.NominalArgs {
			parts[i] = a.String()
		}
		return t.Nominal + "[" + strings.Join(parts, ", ") + "]"
	case KindFunc:
		eff := ""
		if !t.Eff.Empty() {
			eff = " <" + t.Eff.String() + ">"
		}
		return fmt.Sprintf("%s -> %s%s", t.From, t.To, eff)
	default:
		return "<invalid type>"
	}
}

// Equal performs a structural equality check, treating KindVar as equal
// only to the identical variable (use the checker's unifier for semantic
// equality up to substitution).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindBase:
		return t.Base == other.Base
	case KindVar:
		return t.Var == other.Var
	case KindList, KindMaybe:
		return t.Elem.Equal(other.Elem)
	case KindEither, KindResult:
		return t.Left.Equal(other.Left) && t.Right.Equal(other.Right)
	case KindTuple:
		if len(t.Items) != len(other.Items) {
			return false
		}
		for i := range t.Items {
			if !t.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(t.FieldOrd) != len(other.FieldOrd) {
			return false
		}
		for _, name := range t.FieldOrd {
			ot, ok := other.Fields[name]
			if !ok || !t.Fields[name].Equal(ot) {
				return false
			}
		}
		if (t.RowVar == nil) != (other.RowVar == nil) {
			return false
		}
		return t.RowVar == nil || *t.RowVar == *other.RowVar
	case KindVariant:
		if t.Nominal != other.Nominal || len(t.NominalArgs) != len(other.NominalArgs) {
			return false
		}
		for i := range t.NominalArgs {
			if !t.NominalArgs[i].Equal(other.NominalArgs[i]) {
				return false
			}
		}
		return true
	case KindFunc:
		return t.From.Equal(other.From) && t.To.Equal(other.To) && rowEqual(t.Eff, other.Eff)
	default:
		return false
	}
}

func rowEqual(a, b EffectRow) bool {
	if len(a.Effects) != len(b.Effects) {
		return false
	}
	for i := range a.Effects {
		if a.Effects[i] != b.Effects[i] {
			return false
		}
	}
	if (a.Tail == nil) != (b.Tail == nil) {
		return false
	}
	return a.Tail == nil || *a.Tail == *b.Tail
}
