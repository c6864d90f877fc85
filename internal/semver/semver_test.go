package semver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConstraintVariants(t *testing.T) {
	cases := map[string]ConstraintKind{
		"=1.2.3":  Exact,
		"^1.2.3":  Caret,
		"~1.2.3":  Tilde,
		">=1.2.3": AtLeast,
		"latest":  Latest,
		"":        Latest,
	}
	for s, kind := range cases {
		c, err := ParseConstraint(s)
		require.NoError(t, err, s)
		assert.Equal(t, kind, c.Kind, s)
	}
}

func TestCaretConstraintStaysWithinMajor(t *testing.T) {
	c, err := ParseConstraint("^1.2.0")
	require.NoError(t, err)
	assert.True(t, c.Satisfies(Version{Major: 1, Minor: 9, Patch: 0}))
	assert.False(t, c.Satisfies(Version{Major: 2, Minor: 0, Patch: 0}))
	assert.False(t, c.Satisfies(Version{Major: 1, Minor: 1, Patch: 9}))
}

func TestTildeConstraintStaysWithinMinor(t *testing.T) {
	c, err := ParseConstraint("~1.2.0")
	require.NoError(t, err)
	assert.True(t, c.Satisfies(Version{Major: 1, Minor: 2, Patch: 9}))
	assert.False(t, c.Satisfies(Version{Major: 1, Minor: 3, Patch: 0}))
}

func TestResolvePicksHighestSatisfyingThenNewestTimestamp(t *testing.T) {
	now := time.Now()
	c, err := ParseConstraint("^1.0.0")
	require.NoError(t, err)

	candidates := []Candidate{
		{Version: Version{Major: 1, Minor: 0, Patch: 0}, Timestamp: now},
		{Version: Version{Major: 1, Minor: 2, Patch: 0}, Timestamp: now.Add(time.Hour)},
		{Version: Version{Major: 2, Minor: 0, Patch: 0}, Timestamp: now.Add(2 * time.Hour)},
	}
	best, err := Resolve("Math.add", c, candidates)
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 2, Patch: 0}, best.Version)
}

func TestResolveNeverCrossesMajorForCaret(t *testing.T) {
	c, err := ParseConstraint("^1.0.0")
	require.NoError(t, err)
	candidates := []Candidate{
		{Version: Version{Major: 1, Minor: 0, Patch: 0}},
		{Version: Version{Major: 2, Minor: 5, Patch: 0}},
	}
	best, err := Resolve("Math.add", c, candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, best.Version.Major)
}

func TestResolveNoSatisfyingVersion(t *testing.T) {
	c, err := ParseConstraint("^2.0.0")
	require.NoError(t, err)
	_, err = Resolve("Math.add", c, []Candidate{{Version: Version{Major: 1}}})
	var nsv *NoSatisfyingVersion
	require.ErrorAs(t, err, &nsv)
	assert.Equal(t, "Math.add", nsv.Name)
}

func TestResolveAmbiguousOnExactTimestampTie(t *testing.T) {
	now := time.Now()
	c, err := ParseConstraint("^1.0.0")
	require.NoError(t, err)
	candidates := []Candidate{
		{Version: Version{Major: 1, Minor: 0, Patch: 0}, Timestamp: now, Hash: [32]byte{1}},
		{Version: Version{Major: 1, Minor: 0, Patch: 0}, Timestamp: now, Hash: [32]byte{2}},
	}
	_, err = Resolve("Math.add", c, candidates)
	var amb *AmbiguousResolution
	require.ErrorAs(t, err, &amb)
}
