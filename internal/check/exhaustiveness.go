package check

import (
	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/types"
)

// checkExhaustiveness is a best-effort pass over one Match's arms. A
// fully sound exhaustiveness checker needs the complete constructor set
// of the scrutinee's nominal type, which lives in a TypeDef inside the
// namespace store — a resource internal/check deliberately has no
// dependency on (see bindPatternInto's doc comment). Without it this
// pass can only prove two things precisely:
//
//   - reachability: an arm that textually follows an unguarded
//     wildcard/variable pattern can never fire, regardless of what type
//     its scrutinee has (diag.KindPatternUnreachable).
//   - Bool exhaustiveness: Bool has exactly two constructors, so literal
//     True/False coverage can be verified directly without a registry.
//
// For every other scrutinee type, "no catch-all arm present" can only be
// flagged as a warning, not proven: this pass takes no resolver for the
// scrutinee's variant declaration.
func checkExhaustiveness(inf *inference, match *ast.Node, scrutineeType *types.Type, arms []matchArm) {
	covered := false
	for _, arm := range arms {
		if covered {
			inf.errorf(diag.KindPatternUnreachable, arm.pattern.Span(), "pattern is unreachable: a preceding arm already matches everything")
			continue
		}
		if isCatchAll(arm.pattern) && !arm.hasGuard {
			covered = true
		}
	}
	if covered {
		return
	}

	resolved := inf.u.Resolve(scrutineeType)
	if resolved.Kind == types.KindBase && resolved.Base == types.Bool {
		seenTrue, seenFalse := false, false
		for _, arm := range arms {
			if arm.hasGuard {
				continue
			}
			lit, ok := arm.pattern.Payload().(ast.PatternLiteralPayload)
			if !ok || lit.LitKind != ast.LitBool {
				continue
			}
			if lit.Bool {
				seenTrue = true
			} else {
				seenFalse = true
			}
		}
		if seenTrue && seenFalse {
			return
		}
	}

	inf.diags = append(inf.diags, diag.Warn(diag.KindPatternNonExhaustive, match.Span(),
		"match has no catch-all arm; exhaustiveness cannot be verified without the scrutinee's variant declaration"))
}

func isCatchAll(pat *ast.Node) bool {
	switch pat.Kind() {
	case ast.KindPatternWildcard, ast.KindPatternVariable:
		return true
	default:
		return false
	}
}
