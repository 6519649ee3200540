package chunk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/normakb/normakb/internal/parser"
	"github.com/normakb/normakb/internal/token"
)

// Partition greedily groups consecutive units into chunks whose token
// count stays within opts.TokenBudget.
//
// It is a pure function over the ordered unit sequence: given identical
// input it produces identical chunk ids and content, so a rebuild can
// safely overwrite the chunk store. Persistence is owned by the caller.
//
// A unit whose own token count exceeds the budget is emitted alone as an
// oversized chunk — the "never split a unit" invariant dominates the
// budget invariant.
func Partition(docID string, units []parser.Unit, opts Options) []*Chunk {
	if len(units) == 0 {
		return nil
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = 14000
	}
	if opts.Counter == nil {
		opts.Counter = token.NewHeuristicCounter()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	measured := make([]unitTokens, len(units))
	for i, u := range units {
		measured[i] = unitTokens{unit: u, tokens: opts.Counter.Count(u.Content)}
	}

	var chunks []*Chunk
	var group []unitTokens
	running := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		chunks = append(chunks, buildChunk(docID, group, running, opts))
		group = nil
		running = 0
	}

	for _, m := range measured {
		if len(group) > 0 && running+m.tokens > opts.TokenBudget {
			flush()
		}
		group = append(group, m)
		running += m.tokens
	}
	flush()

	return chunks
}

// buildChunk assembles one chunk and its generated metadata from a
// contiguous group of measured units.
func buildChunk(docID string, group []unitTokens, tokens int, opts Options) *Chunk {
	first := group[0].unit
	last := group[len(group)-1].unit

	unitIDs := make([]string, len(group))
	contents := make([]string, len(group))
	pageSet := make(map[int]struct{})
	for i, m := range group {
		unitIDs[i] = m.unit.ID
		contents[i] = m.unit.Content
		for _, p := range m.unit.Pages {
			pageSet[p] = struct{}{}
		}
	}

	pages := make([]int, 0, len(pageSet))
	for p := range pageSet {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	content := strings.Join(contents, "\n\n")

	return &Chunk{
		ID:        ChunkID(docID, first.ID, last.ID),
		DocID:     docID,
		Title:     chunkTitle(first, last),
		Tokens:    tokens,
		UnitIDs:   unitIDs,
		Pages:     pages,
		Keywords:  ExtractKeywords(content, opts.KeywordsPerChunk),
		Section:   first.Section,
		Oversized: len(group) == 1 && tokens > opts.TokenBudget,
		Content:   content,
		CreatedAt: opts.Now,
	}
}

// ChunkID derives the chunk identifier from the document id and the
// first/last contained unit ids, normalized to a slug:
// "rj-2025" + "Art. 1" + "Art. 12" -> "rj-2025_art-1_art-12".
func ChunkID(docID, firstUnitID, lastUnitID string) string {
	return fmt.Sprintf("%s_%s_%s", Slug(docID), Slug(firstUnitID), Slug(lastUnitID))
}

// chunkTitle builds the human-readable chunk title.
func chunkTitle(first, last parser.Unit) string {
	if first.ID == last.ID {
		if first.Title != "" {
			return fmt.Sprintf("%s: %s", first.ID, first.Title)
		}
		return first.ID
	}
	return fmt.Sprintf("%s – %s", first.ID, last.ID)
}
