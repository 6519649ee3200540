// Package chunk groups logical units into token-bounded segments.
//
// The partition never splits a unit: when a unit alone exceeds the budget
// it is emitted as a single oversized chunk and flagged, not rejected.
package chunk

import (
	"time"

	"github.com/normakb/normakb/internal/parser"
	"github.com/normakb/normakb/internal/token"
)

// Chunk is a contiguous group of one or more logical units plus
// generated metadata. Chunks partition the document's unit sequence:
// contiguous, non-overlapping, in document order.
type Chunk struct {
	// ID is the chunk identifier: {doc_id}_{first_unit}_{last_unit}
	// normalized to a slug. Unique within a document version.
	ID string

	// DocID is the source document identifier (e.g. "rj-2025").
	DocID string

	// Title is the human-readable chunk title.
	Title string

	// Tokens is the measured token count of Content.
	Tokens int

	// UnitIDs are the contained unit identifiers, in document order.
	UnitIDs []string

	// Pages is the sorted, deduplicated union of the units' pages.
	Pages []int

	// Keywords is the extracted keyword set, deterministic given input.
	Keywords []string

	// Section is the section label of the first contained unit.
	Section string

	// Oversized marks the single-unit exception: the unit alone
	// exceeded the token budget.
	Oversized bool

	// Content is the concatenated unit content, page markers preserved.
	Content string

	// CreatedAt is the chunk creation timestamp.
	CreatedAt time.Time

	// FilePath is the persisted chunk file, set by the chunk store.
	FilePath string
}

// Options configures the partition pass.
type Options struct {
	// TokenBudget is the maximum tokens per chunk (B).
	TokenBudget int

	// KeywordsPerChunk bounds the extracted keyword set.
	KeywordsPerChunk int

	// Counter is the token counting scheme shared with retrieval.
	Counter token.Counter

	// Now stamps CreatedAt on emitted chunks.
	Now time.Time
}

// unitTokens is a parsed unit paired with its measured token count,
// so the greedy loop counts each unit exactly once.
type unitTokens struct {
	unit   parser.Unit
	tokens int
}
