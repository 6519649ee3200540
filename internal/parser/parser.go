// Package parser walks structured document text and yields the ordered
// sequence of logical units (articles) with their page ranges.
//
// Input is the OCR collaborator's format: plain text with embedded page
// markers (`<!-- PAGE N -->`) and heading lines marking unit starts
// (`ARTÍCULO N: ...`). Units are never split downstream, so the parser is
// the single authority on unit boundaries.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	kberrors "github.com/normakb/normakb/internal/errors"
)

// PreambleID identifies the synthetic unit holding front matter that
// precedes the first article heading.
const PreambleID = "Preamble"

var (
	// articlePattern matches unit headings: "ARTÍCULO 8: Título",
	// "ARTICULO 8bis.", "ARTICLE 8 - Title".
	articlePattern = regexp.MustCompile(`(?i)^\s*(?:ART[IÍ]CULO|ARTICLE)\s+(\d+[a-z]*)\s*[:.\-–]?\s*(.*)$`)

	// chapterPattern matches section headings that label following units.
	chapterPattern = regexp.MustCompile(`(?i)^\s*(?:CAP[IÍ]TULO|CHAPTER)\s+[IVXLCM\d]+\s*[:.\-–]?.*$`)

	// pageMarkerPattern matches the OCR page boundary markers.
	pageMarkerPattern = regexp.MustCompile(`(?i)<!--\s*PAGE\s+(\d+)\s*-->`)
)

// Unit is a Logical Unit: an indivisible rule segment.
// Created once per parse pass and immutable afterward.
type Unit struct {
	// ID is the stable unit identifier, e.g. "Art. 8".
	ID string

	// Title is the heading text after the article number, may be empty.
	Title string

	// Content is the raw unit text including its heading line and any
	// page markers, exactly as it will be persisted.
	Content string

	// Pages are the page numbers touching this unit, in encounter order.
	Pages []int

	// Section is the enclosing chapter label, empty when none seen.
	Section string

	// Start and End delimit the unit's line span in the source
	// (0-based, End exclusive).
	Start int
	End   int
}

// Parse splits document text into ordered logical units.
//
// Every article heading starts exactly one unit; content between headings
// belongs to the preceding unit. Leading content before the first heading
// (front matter, orphan page markers) becomes a synthetic preamble unit.
// Returns ERR_401_MALFORMED_INPUT when a non-empty document contains no
// unit boundaries at all.
func Parse(text string) ([]Unit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")

	var units []Unit
	var current *Unit
	var content strings.Builder
	currentPage := 0
	section := ""

	flush := func(end int) {
		if current == nil {
			return
		}
		current.Content = strings.TrimRight(content.String(), "\n")
		current.End = end
		if strings.TrimSpace(current.Content) != "" || len(current.Pages) > 0 {
			units = append(units, *current)
		}
		current = nil
		content.Reset()
	}

	for lineNum, line := range lines {
		isMarker := false
		if m := pageMarkerPattern.FindStringSubmatch(line); m != nil {
			if page, err := strconv.Atoi(m[1]); err == nil {
				currentPage = page
				isMarker = true
			}
		}

		if m := articlePattern.FindStringSubmatch(line); m != nil {
			flush(lineNum)
			current = &Unit{
				ID:      fmt.Sprintf("Art. %s", m[1]),
				Title:   strings.TrimSpace(m[2]),
				Section: section,
				Start:   lineNum,
			}
			appendPage(current, currentPage)
			content.WriteString(line)
			content.WriteString("\n")
			continue
		}

		if chapterPattern.MatchString(line) {
			section = strings.TrimSpace(line)
		}

		if current == nil {
			// Front matter before the first heading: open the preamble.
			current = &Unit{
				ID:    PreambleID,
				Title: "Preamble",
				Start: lineNum,
			}
		}
		// A marker only takes effect for the content that follows it;
		// a unit ending right before a page break does not claim the
		// new page.
		if !isMarker && strings.TrimSpace(line) != "" {
			appendPage(current, currentPage)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	flush(len(lines))

	if !hasArticle(units) {
		return nil, kberrors.MalformedInput(
			"no unit boundaries found in non-empty document", nil)
	}

	return units, nil
}

// appendPage records a page into the unit's page list, keeping encounter
// order and dropping duplicates.
func appendPage(u *Unit, page int) {
	if u == nil || page <= 0 {
		return
	}
	for _, p := range u.Pages {
		if p == page {
			return
		}
	}
	u.Pages = append(u.Pages, page)
}

// hasArticle reports whether any parsed unit is a real article heading.
func hasArticle(units []Unit) bool {
	for _, u := range units {
		if u.ID != PreambleID {
			return true
		}
	}
	return false
}
