// Package token implements the fixed token counting scheme used by the
// chunk budget and the retrieval context ceiling.
package token

import (
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the rune-to-token ratio of the counting scheme.
// Spanish legal prose averages slightly under 4 runes per model token,
// so the estimate errs on the safe (over-counting) side of the budget.
const CharsPerToken = 4

// Counter measures the token length of a text span.
// Both the Chunker and the Retrieval Engine must use the same Counter so
// budgets compose; the interface keeps the scheme pluggable for tests.
type Counter interface {
	Count(text string) int
}

// HeuristicCounter is the default counting scheme: ceil(runes/4),
// floored at the whitespace-separated word count. Deterministic and
// cheap; never returns 0 for non-empty trimmed text.
type HeuristicCounter struct{}

// NewHeuristicCounter returns the default counter.
func NewHeuristicCounter() *HeuristicCounter {
	return &HeuristicCounter{}
}

// Count implements Counter.
func (c *HeuristicCounter) Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	runes := utf8.RuneCountInString(text)
	estimate := (runes + CharsPerToken - 1) / CharsPerToken

	if words := len(strings.Fields(text)); words > estimate {
		return words
	}
	return estimate
}
