package deduplication

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Scorer returns a deterministic similarity in [0,1] for two normalized texts
type Scorer func(a, b string) float64

// Similarity is the normalized Levenshtein similarity of a and b:
// 1 - distance/max(len(a), len(b)), measured in runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// normalize trims surrounding whitespace and lowercases s
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// clip returns the first n runes of s
func clip(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// titleMatches reports whether existing equals candidate or contains it.
// Both titles must already be normalized.
func titleMatches(existing, candidate string) bool {
	if candidate == "" {
		return false
	}
	return existing == candidate || strings.Contains(existing, candidate)
}
