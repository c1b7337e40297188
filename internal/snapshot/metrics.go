package snapshot

import (
	"math"
	"strings"
	"unicode/utf8"
)

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// EstimateTokens estimates token count using a word-based heuristic (1.3 tokens per word).
func EstimateTokens(text string) int {
	words := strings.Fields(text)
	return int(math.Ceil(float64(len(words)) * 1.3))
}
