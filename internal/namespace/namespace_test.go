package namespace

import (
	"testing"
	"time"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/ribbonlang/ribbon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *symbol.Registry, *ast.Builder) {
	t.Helper()
	reg := symbol.New()
	s := New(reg, hash.New(reg))
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }
	return s, reg, ast.NewBuilder()
}

func buildValueDef(b *ast.Builder, reg *symbol.Registry, name string, value int64) *ast.Node {
	lit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: value})
	return b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern(name)}, lit)
}

func TestAutoCommitSkipsUnchangedContent(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	def := buildValueDef(b, reg, "answer", 42)
	v1, committed, err := s.AutoCommit(path, def, "ada", "initial")
	require.NoError(t, err)
	assert.True(t, committed)
	require.NotNil(t, v1)

	same := buildValueDef(b, reg, "answer", 42)
	v2, committed, err := s.AutoCommit(path, same, "ada", "no-op")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, v1.Hash, v2.Hash)

	changed := buildValueDef(b, reg, "answer", 43)
	v3, committed, err := s.AutoCommit(path, changed, "ada", "bump")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.NotEqual(t, v1.Hash, v3.Hash)

	got, ok := s.Definition(path)
	require.True(t, ok)
	assert.Len(t, got.History, 2)
}

func TestAutoCommitFromReportsConflictButStillCommits(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	base, _, err := s.AutoCommit(path, buildValueDef(b, reg, "answer", 1), "ada", "v1")
	require.NoError(t, err)

	// A concurrent session commits past the base this session edited from.
	racing, _, err := s.AutoCommit(path, buildValueDef(b, reg, "answer", 2), "grace", "v2")
	require.NoError(t, err)

	v, committed, conflicts, err := s.AutoCommitFrom(path, base.Hash, buildValueDef(b, reg, "answer", 3), "ada", "v3")
	require.NoError(t, err)
	assert.True(t, committed)
	require.Len(t, conflicts, 1)
	assert.Equal(t, diag.KindWriteConflict, conflicts[0].Kind)
	assert.Equal(t, diag.SeverityWarning, conflicts[0].Severity)

	// Last writer wins at the head, every version stays in history.
	def, ok := s.Definition(path)
	require.True(t, ok)
	assert.Equal(t, v.Hash, def.Head().Hash)
	assert.Len(t, def.History, 3)
	_, ok = def.VersionByHash(racing.Hash)
	assert.True(t, ok)

	// Committing from the current head raises no conflict.
	_, _, conflicts, err = s.AutoCommitFrom(path, v.Hash, buildValueDef(b, reg, "answer", 4), "ada", "v4")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestTagAndResolveTag(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	_, _, err = s.AutoCommit(path, buildValueDef(b, reg, "answer", 1), "ada", "v1")
	require.NoError(t, err)
	require.NoError(t, s.Tag(path, "1.0.0"))

	_, _, err = s.AutoCommit(path, buildValueDef(b, reg, "answer", 2), "ada", "v2")
	require.NoError(t, err)
	require.NoError(t, s.Tag(path, "1.1.0"))

	def, ok := s.Definition(path)
	require.True(t, ok)
	assert.Equal(t, def.History[1].Hash, mustTag(t, s, path, "1.1.0"))
}

func mustTag(t *testing.T, s *Store, path Path, label string) ast.Digest {
	t.Helper()
	h, err := s.ResolveTag(path, label)
	require.NoError(t, err)
	return h
}

func TestTagImmutableRefusesToMove(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	_, _, err = s.AutoCommit(path, buildValueDef(b, reg, "answer", 1), "ada", "v1")
	require.NoError(t, err)
	require.NoError(t, s.TagImmutable(path, "1.0.0"))

	_, _, err = s.AutoCommit(path, buildValueDef(b, reg, "answer", 2), "ada", "v2")
	require.NoError(t, err)
	err = s.TagImmutable(path, "1.0.0")
	assert.Error(t, err)
}

func TestOutdatedReportFlagsStaleDependencyHash(t *testing.T) {
	s, reg, b := newTestStore(t)
	libPath, err := ParsePath(reg, "Lib.base")
	require.NoError(t, err)
	appPath, err := ParsePath(reg, "App.main")
	require.NoError(t, err)

	libV1, _, err := s.AutoCommit(libPath, buildValueDef(b, reg, "base", 1), "ada", "v1")
	require.NoError(t, err)

	ref := b.Build(diag.Span{}, ast.KindReferenceHashAnchored, ast.ReferenceHashAnchoredPayload{Hash: libV1.Hash})
	appDef := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern("main")}, ref)
	_, _, err = s.AutoCommit(appPath, appDef, "ada", "v1")
	require.NoError(t, err)

	_, _, err = s.AutoCommit(libPath, buildValueDef(b, reg, "base", 2), "ada", "v2")
	require.NoError(t, err)

	report := s.OutdatedReport()
	require.Len(t, report, 1)
	assert.Equal(t, libV1.Hash, report[0].RecordedHash)
}

func TestCompatibilityCheckFallsBackToPatchWithoutTypeInfo(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	v1, _, err := s.AutoCommit(path, buildValueDef(b, reg, "answer", 1), "ada", "v1")
	require.NoError(t, err)
	v2, _, err := s.AutoCommit(path, buildValueDef(b, reg, "answer", 2), "ada", "v2")
	require.NoError(t, err)

	report, err := CompatibilityCheck(hash.New(reg), v1, v2)
	require.NoError(t, err)
	assert.Equal(t, CompatPatch, report.Level)
	assert.NotEmpty(t, report.Diff)
}

// curriedIntFn builds Int → Int → ... → Int with the given number of
// arrows, the shape the arity-change compatibility cases compare.
func curriedIntFn(arrows int) *types.Scheme {
	result := &types.Type{Kind: types.KindBase, Base: types.Int}
	for i := 0; i < arrows; i++ {
		result = &types.Type{
			Kind: types.KindFunc,
			From: &types.Type{Kind: types.KindBase, Base: types.Int},
			To:   result,
			Eff:  types.ClosedRow(),
		}
	}
	return types.Monomorphic(result)
}

// TestCompatibilityCheckReportsMajorOnArityChange pins the breaking
// case: a definition typed Int → Int → Int gaining a third parameter
// (Int → Int → Int → Int) must classify as major, not minor — no
// substitution makes one shape equal the other.
func TestCompatibilityCheckReportsMajorOnArityChange(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Math.add")
	require.NoError(t, err)

	v1, _, err := s.AutoCommit(path, buildValueDef(b, reg, "add", 1).WithTypeInfo(curriedIntFn(2)), "ada", "v1")
	require.NoError(t, err)
	v2, _, err := s.AutoCommit(path, buildValueDef(b, reg, "add", 2).WithTypeInfo(curriedIntFn(3)), "ada", "v2")
	require.NoError(t, err)

	report, err := CompatibilityCheck(hash.New(reg), v1, v2)
	require.NoError(t, err)
	assert.Equal(t, CompatMajor, report.Level)
}

func TestCompatibilityCheckClassifiesGeneralizationAsMinor(t *testing.T) {
	s, reg, b := newTestStore(t)
	path, err := ParsePath(reg, "Core.id")
	require.NoError(t, err)

	a := types.Var(1)
	polyIdentity := &types.Scheme{
		TypeVars: []types.Var{a},
		Type: &types.Type{
			Kind: types.KindFunc,
			From: &types.Type{Kind: types.KindVar, Var: a},
			To:   &types.Type{Kind: types.KindVar, Var: a},
			Eff:  types.ClosedRow(),
		},
	}

	v1, _, err := s.AutoCommit(path, buildValueDef(b, reg, "id", 1).WithTypeInfo(curriedIntFn(1)), "ada", "v1")
	require.NoError(t, err)
	v2, _, err := s.AutoCommit(path, buildValueDef(b, reg, "id", 2).WithTypeInfo(polyIdentity), "ada", "v2")
	require.NoError(t, err)

	report, err := CompatibilityCheck(hash.New(reg), v1, v2)
	require.NoError(t, err)
	assert.Equal(t, CompatMinor, report.Level)

	// The other direction — narrowing ∀a. a → a down to Int → Int — is
	// not a generalization, so it classifies as major.
	reverse, err := CompatibilityCheck(hash.New(reg), v2, v1)
	require.NoError(t, err)
	assert.Equal(t, CompatMajor, reverse.Level)
}

func TestChildrenListsNamespacesAndDefinitions(t *testing.T) {
	s, reg, b := newTestStore(t)
	mapPath, err := ParsePath(reg, "Core.List.map")
	require.NoError(t, err)
	filterPath, err := ParsePath(reg, "Core.List.filter")
	require.NoError(t, err)
	concatPath, err := ParsePath(reg, "Core.Text.concat")
	require.NoError(t, err)

	_, _, err = s.AutoCommit(mapPath, buildValueDef(b, reg, "map", 1), "ada", "v1")
	require.NoError(t, err)
	_, _, err = s.AutoCommit(filterPath, buildValueDef(b, reg, "filter", 1), "ada", "v1")
	require.NoError(t, err)
	_, _, err = s.AutoCommit(concatPath, buildValueDef(b, reg, "concat", 1), "ada", "v1")
	require.NoError(t, err)

	core, err := ParsePath(reg, "Core")
	require.NoError(t, err)
	children, ok := s.Children(core)
	require.True(t, ok)
	require.Len(t, children, 2)
	assert.Equal(t, Child{Name: "List", IsNamespace: true}, children[0])
	assert.Equal(t, Child{Name: "Text", IsNamespace: true}, children[1])

	list, err := ParsePath(reg, "Core.List")
	require.NoError(t, err)
	leaves, ok := s.Children(list)
	require.True(t, ok)
	require.Len(t, leaves, 2)
	assert.Equal(t, Child{Name: "filter", IsNamespace: false}, leaves[0])
	assert.Equal(t, Child{Name: "map", IsNamespace: false}, leaves[1])

	_, ok = s.Children(mapPath)
	assert.False(t, ok)
}
