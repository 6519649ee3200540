package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Portería", "porteria"},
		{"ARTÍCULO", "articulo"},
		{"balón", "balon"},
		{"señal", "senal"},
		{"de", ""},        // stopword
		{"el", ""},        // stopword
		{"the", ""},       // English stopword
		{"ir", ""},        // too short
		{"más", ""},       // folds to stopword "mas"
		{"gol", "gol"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTerm(tt.in))
		})
	}
}

func TestTerms_PreservesOrderAndDuplicates(t *testing.T) {
	got := Terms("El portero defiende la portería; el portero puede salir.")
	assert.Equal(t, []string{"portero", "defiende", "porteria", "portero", "puede", "salir"}, got)
}

func TestExtractKeywords_FrequencyThenAlphabetical(t *testing.T) {
	text := "portero portero portero balón balón área campo"
	got := ExtractKeywords(text, 3)
	assert.Equal(t, []string{"portero", "balon", "area"}, got)
}

func TestExtractKeywords_TieBreaksAlphabetically(t *testing.T) {
	got := ExtractKeywords("zona campo zona campo", 2)
	assert.Equal(t, []string{"campo", "zona"}, got)
}

func TestExtractKeywords_DefaultLimit(t *testing.T) {
	var sb strings.Builder
	for _, w := range []string{
		"alfa", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliett", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo",
	} {
		sb.WriteString(w + " ")
	}

	got := ExtractKeywords(sb.String(), 0)
	assert.Len(t, got, DefaultKeywordsPerChunk)
}

func TestExtractKeywords_StopwordsOnly(t *testing.T) {
	assert.Nil(t, ExtractKeywords("el la los de que en y", 10))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Art. 8", "art-8"},
		{"Art. 8bis", "art-8bis"},
		{"Preamble", "preamble"},
		{"RJ 2025 (edición)", "rj-2025-edicion"},
		{"--ya-slug--", "ya-slug"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}
