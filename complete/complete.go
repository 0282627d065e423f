// Package complete computes Tab completion candidates for identifier
// slots of commands.
package complete

import (
	"strings"
)

// Candidate is one completable identifier with its display name.
type Candidate struct {
	ID   string
	Name string
}

// Result is either a single auto-applied completion, a candidate list
// for display, or empty. Never both.
type Result struct {
	Applied    string
	Candidates []Candidate
}

func (r Result) Empty() bool {
	return r.Applied == "" && len(r.Candidates) == 0
}

// Matches reports whether partial completes to c: partial is a prefix
// of the ID, or a prefix of any single word of the display name.
// Matching is case-insensitive.
func (c Candidate) Matches(partial string) bool {
	partial = strings.ToLower(partial)
	if strings.HasPrefix(strings.ToLower(c.ID), partial) {
		return true
	}
	for _, word := range strings.Fields(strings.ToLower(c.Name)) {
		if strings.HasPrefix(word, partial) {
			return true
		}
	}
	return false
}

// Resolve applies the resolution policy: exactly one match yields an
// applied completion (the candidate's ID), two or more yield the list
// for display, zero yields an empty result. A completion is never
// partially applied while multiple candidates remain.
func Resolve(partial string, candidates []Candidate) Result {
	matched := []Candidate{}
	for _, c := range candidates {
		if c.Matches(partial) {
			matched = append(matched, c)
		}
	}
	switch len(matched) {
	case 0:
		return Result{}
	case 1:
		return Result{Applied: matched[0].ID}
	default:
		return Result{Candidates: matched}
	}
}
