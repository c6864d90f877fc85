package semver

import (
	"fmt"
	"time"
)

// Candidate is one tagged version available for resolution: a parsed
// semver label, the content hash it points at, and the commit timestamp
// used to break ties among equally-precedent versions (spec §4.H:
// "among equals, newest timestamp wins").
type Candidate struct {
	Version   Version
	Hash      [32]byte
	Timestamp time.Time
}

// NoSatisfyingVersion is returned when no candidate satisfies constraint.
type NoSatisfyingVersion struct {
	Name       string
	Constraint string
	Available  []Version
}

func (e *NoSatisfyingVersion) Error() string {
	return fmt.Sprintf("semver: no version of %q satisfies %q (available: %v)", e.Name, e.Constraint, e.Available)
}

// AmbiguousResolution is returned when two candidates tie on both
// precedence and timestamp — Resolve cannot pick a winner deterministically.
type AmbiguousResolution struct {
	Name       string
	Candidates []Candidate
}

func (e *AmbiguousResolution) Error() string {
	return fmt.Sprintf("semver: ambiguous resolution for %q among %d tied candidates", e.Name, len(e.Candidates))
}

// Resolve picks the highest-precedence candidate satisfying constraint,
// breaking ties by newest timestamp (spec §4.H: "Resolution picks the
// highest tagged version whose SemVer satisfies the constraint; among
// equals, newest timestamp wins").
func Resolve(name string, constraint Constraint, candidates []Candidate) (Candidate, error) {
	var satisfying []Candidate
	var available []Version
	for _, c := range candidates {
		available = append(available, c.Version)
		if constraint.Satisfies(c.Version) {
			satisfying = append(satisfying, c)
		}
	}
	if len(satisfying) == 0 {
		return Candidate{}, &NoSatisfyingVersion{Name: name, Constraint: constraint.String(), Available: available}
	}

	best := satisfying[0]
	var tied []Candidate
	for _, c := range satisfying[1:] {
		switch cmp := Compare(c.Version, best.Version); {
		case cmp > 0:
			best = c
			tied = nil
		case cmp == 0:
			tied = append(tied, c)
		}
	}
	if len(tied) == 0 {
		return best, nil
	}

	tied = append(tied, best)
	newest := tied[0]
	ambiguous := false
	for _, c := range tied[1:] {
		if c.Timestamp.After(newest.Timestamp) {
			newest = c
			ambiguous = false
		} else if c.Timestamp.Equal(newest.Timestamp) {
			ambiguous = true
		}
	}
	if ambiguous {
		return Candidate{}, &AmbiguousResolution{Name: name, Candidates: tied}
	}
	return newest, nil
}
