// Package suggest ranks near-miss names for "did you mean" hints.
package suggest

import (
	"github.com/sahilm/fuzzy"
)

// maxExtra bounds how many characters a misspelling may add to a candidate.
const maxExtra = 2

// Closest returns the candidate that best matches name, or "" when nothing
// is close enough.
//
// Two directions are tried. First name is matched as an abbreviation of
// each candidate ("req_age" for "required_age"); then each candidate is
// matched against name, which catches doubled or stray characters ("agee"
// for "age").
func Closest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	for _, m := range fuzzy.Find(name, candidates) {
		if len(m.Str) <= 2*len(name)+maxExtra {
			return m.Str
		}
	}

	var best string
	for _, c := range candidates {
		if c == "" || len(name)-len(c) > maxExtra || len(c) <= len(best) {
			continue
		}
		if len(fuzzy.Find(c, []string{name})) > 0 {
			best = c
		}
	}
	return best
}
