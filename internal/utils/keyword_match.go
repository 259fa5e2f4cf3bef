package utils

import (
	"strings"
)

// NormalizeText lower-cases text for literal keyword matching.
// Whitespace is left intact so multi-word phrases keep matching as written.
func NormalizeText(text string) string {
	return strings.ToLower(text)
}

// ContainsAny reports whether any phrase is a literal substring of text.
// text is expected to be normalized already.
func ContainsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// CountMatches returns how many distinct phrases occur in text.
// Each phrase counts at most once however often it appears.
func CountMatches(text string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			count++
		}
	}
	return count
}

// MatchedPhrases returns the phrases found in text, in list order
func MatchedPhrases(text string, phrases []string) []string {
	matched := []string{}
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			matched = append(matched, phrase)
		}
	}
	return matched
}
