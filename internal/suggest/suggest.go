package suggest

import "github.com/agext/levenshtein"

// Closest returns the candidate nearest to want, or an empty string when no
// candidate is close enough. Ties keep the earlier candidate.
func Closest(want string, candidates []string) string {
	maxDist := max(len(want)/4, 2)

	best, bestDist := "", maxDist+1
	for _, cand := range candidates {
		if cand == want {
			return cand
		}
		if d := levenshtein.Distance(want, cand, nil); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

// Hint formats a "did you mean" hint for want, or returns an empty string.
func Hint(want string, candidates []string) string {
	if s := Closest(want, candidates); s != "" && s != want {
		return "did you mean \"" + s + "\"?"
	}
	return ""
}
