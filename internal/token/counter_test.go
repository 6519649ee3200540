package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicCounter_Count(t *testing.T) {
	c := NewHeuristicCounter()

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: "   \n\t ", want: 0},
		{name: "four chars is one token", text: "abcd", want: 1},
		{name: "rounds up", text: "abcde", want: 2},
		{name: "word floor dominates short words", text: "a b c d e", want: 5},
		{name: "long run", text: strings.Repeat("x", 400), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Count(tt.text))
		})
	}
}

func TestHeuristicCounter_CountsRunesNotBytes(t *testing.T) {
	c := NewHeuristicCounter()

	// 8 accented runes (16 bytes in UTF-8) estimate to 2 tokens.
	assert.Equal(t, 2, c.Count("áéíóúñüé"))
}

func TestHeuristicCounter_NonEmptyTextNeverZero(t *testing.T) {
	c := NewHeuristicCounter()

	assert.Equal(t, 1, c.Count("no"))
	assert.Equal(t, 1, c.Count("x"))
}
