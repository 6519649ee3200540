// Package index builds and publishes the derived lookup structures over
// the chunk set: the main index (chunk metadata), the keyword index
// (inverted term lookup), and the article index (unit to chunk mapping).
//
// All three are views derived from one canonical chunk list in a single
// pass, so they cannot drift from each other. A build is all-or-nothing:
// the previously published snapshot stays servable until the new one is
// fully constructed, validated, and swapped in.
package index

import (
	"time"
)

// SchemaVersion is the persisted index document format version.
const SchemaVersion = "1.0.0"

// Index file names within a build directory.
const (
	MainIndexFile    = "main_index.json"
	KeywordIndexFile = "keyword_index.json"
	ArticleIndexFile = "article_index.json"

	// CurrentPointerFile names the published build directory. It is
	// replaced atomically so readers see the old or new build, never a
	// partial one.
	CurrentPointerFile = "CURRENT"
)

// MainIndexEntry is one chunk's metadata in the main index.
type MainIndexEntry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	FilePath  string   `json:"file_path"`
	Tokens    int      `json:"tokens"`
	Articles  []string `json:"articles"`
	Keywords  []string `json:"keywords"`
	Section   string   `json:"section,omitempty"`
	Pages     []int    `json:"pages,omitempty"`
	SourcePDF string   `json:"source_pdf,omitempty"`
	Oversized bool     `json:"oversized,omitempty"`
}

// MainIndex is the persisted main index document.
type MainIndex struct {
	Version     string           `json:"version"`
	CreatedAt   time.Time        `json:"created_at"`
	TotalChunks int              `json:"total_chunks"`
	Documents   []MainIndexEntry `json:"documents"`
}

// KeywordEntry maps one keyword to the chunks containing it.
type KeywordEntry struct {
	Chunks []string `json:"chunks"`
}

// KeywordIndex is the persisted inverted keyword index.
type KeywordIndex struct {
	Version string                  `json:"version"`
	Index   map[string]KeywordEntry `json:"index"`
}

// ArticleEntry resolves one logical unit to its single containing chunk.
type ArticleEntry struct {
	Title   string `json:"title"`
	ChunkID string `json:"chunk_id"`
	Pages   []int  `json:"pages,omitempty"`
}

// ArticleIndex is the persisted unit-to-chunk index.
type ArticleIndex struct {
	Version string                  `json:"version"`
	Index   map[string]ArticleEntry `json:"index"`
}

// Snapshot is one immutable published index version. Query serving is
// read-only against a snapshot; builds produce a new one and swap.
type Snapshot struct {
	// BuildID names the build directory under the indices root.
	BuildID string

	// Dir is the absolute build directory.
	Dir string

	Main    MainIndex
	Keyword KeywordIndex
	Article ArticleIndex

	// position maps chunk id to its document-order rank, used for
	// deterministic tie-breaks at query time.
	position map[string]int
}

// buildPositions indexes the main-index order for tie-breaking.
func (s *Snapshot) buildPositions() {
	s.position = make(map[string]int, len(s.Main.Documents))
	for i, e := range s.Main.Documents {
		s.position[e.ID] = i
	}
}

// Position returns the document-order rank of a chunk id. Unknown ids
// sort last.
func (s *Snapshot) Position(chunkID string) int {
	if p, ok := s.position[chunkID]; ok {
		return p
	}
	return len(s.Main.Documents)
}

// Entry returns the main-index entry for a chunk id.
func (s *Snapshot) Entry(chunkID string) (MainIndexEntry, bool) {
	p, ok := s.position[chunkID]
	if !ok {
		return MainIndexEntry{}, false
	}
	return s.Main.Documents[p], true
}
