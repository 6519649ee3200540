package chunk

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeywordsPerChunk bounds the keyword set when the caller passes 0.
const DefaultKeywordsPerChunk = 15

// termPattern matches word runs including Spanish letters.
var termPattern = regexp.MustCompile(`[a-zA-Z0-9áéíóúüñÁÉÍÓÚÜÑ]+`)

// accentReplacer folds Spanish diacritics so "artículo" and "articulo"
// normalize to the same term. ñ folds to n as well; retrieval matches
// exact normalized terms, so both sides must fold identically.
var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// spanishStopwords are filtered out of keyword extraction and query
// terms. Stored in normalized (accent-folded) form.
var spanishStopwords = map[string]struct{}{
	"a": {}, "al": {}, "ante": {}, "como": {}, "con": {}, "contra": {},
	"cual": {}, "cuando": {}, "cuya": {}, "cuyo": {}, "de": {}, "del": {},
	"desde": {}, "donde": {}, "durante": {}, "el": {}, "ella": {}, "ellas": {},
	"ellos": {}, "en": {}, "entre": {}, "era": {}, "es": {}, "esta": {},
	"estas": {}, "este": {}, "esto": {}, "estos": {}, "fue": {}, "ha": {},
	"hacia": {}, "han": {}, "hasta": {}, "hay": {}, "la": {}, "las": {},
	"le": {}, "les": {}, "lo": {}, "los": {}, "mas": {}, "mediante": {},
	"mismo": {}, "muy": {}, "no": {}, "ni": {}, "o": {}, "otra": {},
	"otro": {}, "para": {}, "pero": {}, "podra": {}, "por": {}, "que": {},
	"se": {}, "sera": {}, "seran": {}, "ser": {}, "si": {}, "sin": {},
	"sobre": {}, "son": {}, "su": {}, "sus": {}, "tal": {}, "tambien": {},
	"tanto": {}, "tiene": {}, "toda": {}, "todas": {}, "todo": {},
	"todos": {}, "tras": {}, "un": {}, "una": {}, "uno": {}, "unos": {},
	"y": {}, "ya": {},
	// English connectives leak in from bilingual rule texts.
	"an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "shall": {}, "the": {}, "to": {},
	"will": {}, "with": {},
}

// NormalizeTerm lowercases and folds diacritics. Returns "" for terms
// that should not participate in matching (stopwords, too short).
func NormalizeTerm(term string) string {
	t := accentReplacer.Replace(strings.ToLower(term))
	if len(t) < 3 {
		return ""
	}
	if _, stop := spanishStopwords[t]; stop {
		return ""
	}
	return t
}

// Terms tokenizes text into normalized matchable terms, in order,
// duplicates preserved.
func Terms(text string) []string {
	var out []string
	for _, raw := range termPattern.FindAllString(text, -1) {
		if t := NormalizeTerm(raw); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ExtractKeywords returns the top-n frequency-ranked normalized terms of
// text. Ties break alphabetically so extraction is deterministic.
func ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		n = DefaultKeywordsPerChunk
	}

	freq := make(map[string]int)
	for _, t := range Terms(text) {
		freq[t]++
	}
	if len(freq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// slugPattern collapses non-alphanumeric runs when slugging identifiers.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes an identifier for use in chunk ids and file names:
// lowercased, diacritics folded, non-alphanumerics collapsed to "-".
func Slug(s string) string {
	s = accentReplacer.Replace(strings.ToLower(s))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
