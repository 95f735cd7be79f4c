package match

import (
	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the acceptance threshold for fuzzy title matches.
// A candidate scoring exactly the threshold is accepted (>=, inclusive).
const DefaultThreshold = 0.92

// Similarity computes a similarity ratio in [0, 1] between two normalized
// strings via Levenshtein distance over runes. Symmetric, and
// Similarity(x, x) == 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// Accepts reports whether a similarity score clears the given threshold.
func Accepts(score, threshold float64) bool {
	return score >= threshold
}
