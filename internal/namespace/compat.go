package namespace

import (
	"fmt"

	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/types"
)

// CompatibilityLevel classifies how a new version differs from the
// previous one (spec §4.G: "the store classifies a new commit as patch,
// minor or major relative to the previous version").
type CompatibilityLevel int

const (
	// CompatPatch: structural diff exists but the definition's inferred
	// type is unchanged — behavior-preserving at the type level (body
	// rewrite, refactor, doc/annotation change).
	CompatPatch CompatibilityLevel = iota
	// CompatMinor: the inferred type changed but remains a valid
	// substitute everywhere the old type was — a strict generalization
	// (e.g. a monomorphic type generalized to a scheme covering it, or a
	// closed effect row opened with a quantified tail). Narrowing a
	// closed effect row to fewer effects is classified major.
	CompatMinor
	// CompatMajor: the inferred type changed in a way that is not a
	// strict generalization of the old one — existing callers may no
	// longer type-check against the new version.
	CompatMajor
)

func (l CompatibilityLevel) String() string {
	switch l {
	case CompatPatch:
		return "patch"
	case CompatMinor:
		return "minor"
	case CompatMajor:
		return "major"
	default:
		return "unknown"
	}
}

// CompatibilityReport is the result of comparing two versions of the
// same definition.
type CompatibilityReport struct {
	Level CompatibilityLevel
	Diff  []hash.FieldDiff
}

// CompatibilityCheck compares old and new, both versions of the
// definition at path, and classifies the change (spec §4.G). h must be
// the same Hasher used to compute old.Hash/new.Hash so StructuralDiff's
// own memoized sub-hashes line up with the recorded content hashes.
func CompatibilityCheck(h *hash.Hasher, old, updated *Version) (CompatibilityReport, error) {
	if old == nil || updated == nil {
		return CompatibilityReport{}, fmt.Errorf("namespace: compatibility check requires two non-nil versions")
	}
	if old.Hash == updated.Hash {
		return CompatibilityReport{Level: CompatPatch}, nil
	}

	diff, err := hash.StructuralDiff(h, old.AST, updated.AST)
	if err != nil {
		return CompatibilityReport{}, fmt.Errorf("namespace: compatibility check: %w", err)
	}

	oldType := old.AST.TypeInfo()
	newType := updated.AST.TypeInfo()

	switch {
	case oldType == nil || newType == nil:
		// At least one version has not been type-checked (e.g. staged but not
		// committed through a Checker). Fall back to patch: the store
		// cannot make a stronger claim without type information, and a
		// false "major" would block otherwise-safe automated upgrades.
		return CompatibilityReport{Level: CompatPatch, Diff: diff}, nil
	case oldType.Type.Equal(newType.Type):
		return CompatibilityReport{Level: CompatPatch, Diff: diff}, nil
	case isGeneralizationOf(oldType, newType):
		return CompatibilityReport{Level: CompatMinor, Diff: diff}, nil
	default:
		return CompatibilityReport{Level: CompatMajor, Diff: diff}, nil
	}
}

// isGeneralizationOf reports whether newer is at least as general as
// older: some consistent substitution of newer's quantified type and
// effect variables makes its monotype structurally equal to older's.
// A variable is bound the first time it is matched and must agree at
// every later occurrence, so ∀a. a → a generalizes Int → Int but not
// Int → Bool, and any shape difference that no substitution can bridge
// — an arity change, a swapped base type — fails the match. This is a
// structural subsumption check, not full scheme subsumption (no
// re-generalization of the instantiated type); spec §4.G leaves the
// exact compatibility relation to the implementation, naming only the
// three output buckets, and a conservative "no" here degrades to major,
// never to a false minor.
func isGeneralizationOf(older, newer *types.Scheme) bool {
	if older == nil || newer == nil || older.Type == nil || newer.Type == nil {
		return false
	}
	m := &schemeMatcher{
		quantTypes:   map[types.Var]bool{},
		quantEffects: map[types.Var]bool{},
		bound:        map[types.Var]*types.Type{},
	}
	for _, v := range newer.TypeVars {
		m.quantTypes[v] = true
	}
	for _, v := range newer.EffectVars {
		m.quantEffects[v] = true
	}
	return m.typeMatches(newer.Type, older.Type)
}

// schemeMatcher carries the one-way matching state: pattern is the newer
// scheme's monotype (whose quantified variables are the only ones
// allowed to bind), concrete is the older scheme's.
type schemeMatcher struct {
	quantTypes   map[types.Var]bool
	quantEffects map[types.Var]bool
	bound        map[types.Var]*types.Type
}

func (m *schemeMatcher) typeMatches(pattern, concrete *types.Type) bool {
	if pattern == nil || concrete == nil {
		return pattern == concrete
	}
	if pattern.Kind == types.KindVar && m.quantTypes[pattern.Var] {
		if prev, ok := m.bound[pattern.Var]; ok {
			return prev.Equal(concrete)
		}
		m.bound[pattern.Var] = concrete
		return true
	}
	if pattern.Kind != concrete.Kind {
		return false
	}
	switch pattern.Kind {
	case types.KindBase:
		return pattern.Base == concrete.Base
	case types.KindVar:
		return pattern.Var == concrete.Var
	case types.KindList, types.KindMaybe:
		return m.typeMatches(pattern.Elem, concrete.Elem)
	case types.KindEither, types.KindResult:
		return m.typeMatches(pattern.Left, concrete.Left) && m.typeMatches(pattern.Right, concrete.Right)
	case types.KindTuple:
		if len(pattern.Items) != len(concrete.Items) {
			return false
		}
		for i := range pattern.Items {
			if !m.typeMatches(pattern.Items[i], concrete.Items[i]) {
				return false
			}
		}
		return true
	case types.KindRecord:
		if len(pattern.FieldOrd) != len(concrete.FieldOrd) {
			return false
		}
		for _, name := range pattern.FieldOrd {
			ct, ok := concrete.Fields[name]
			if !ok || !m.typeMatches(pattern.Fields[name], ct) {
				return false
			}
		}
		if (pattern.RowVar == nil) != (concrete.RowVar == nil) {
			return false
		}
		return pattern.RowVar == nil || *pattern.RowVar == *concrete.RowVar
	case types.KindVariant:
		if pattern.Nominal != concrete.Nominal || len(pattern.NominalArgs) != len(concrete.NominalArgs) {
			return false
		}
		for i := range pattern.NominalArgs {
			if !m.typeMatches(pattern.NominalArgs[i], concrete.NominalArgs[i]) {
				return false
			}
		}
		return true
	case types.KindFunc:
		return m.typeMatches(pattern.From, concrete.From) &&
			m.typeMatches(pattern.To, concrete.To) &&
			m.rowMatches(pattern.Eff, concrete.Eff)
	default:
		return false
	}
}

// rowMatches compares effect rows one-way: every effect the pattern
// names must appear in the concrete row, and any remainder (extra named
// effects or an open tail) must be absorbable by a quantified tail on
// the pattern side.
func (m *schemeMatcher) rowMatches(pattern, concrete types.EffectRow) bool {
	for _, e := range pattern.Effects {
		if !concrete.Contains(e) {
			return false
		}
	}
	named := make(map[string]bool, len(pattern.Effects))
	for _, e := range pattern.Effects {
		named[e] = true
	}
	var extra bool
	for _, e := range concrete.Effects {
		if !named[e] {
			extra = true
		}
	}
	tailQuantified := pattern.Tail != nil && m.quantEffects[*pattern.Tail]
	if extra && !tailQuantified {
		return false
	}
	if concrete.Tail != nil {
		return pattern.Tail != nil && (tailQuantified || *pattern.Tail == *concrete.Tail)
	}
	if pattern.Tail != nil && !tailQuantified {
		return false
	}
	return true
}
