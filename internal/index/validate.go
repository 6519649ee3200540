package index

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/normakb/normakb/internal/store"
)

// InconsistencyType categorizes detected issues.
type InconsistencyType int

const (
	// InconsistencyMissingChunkFile indicates a main-index entry whose
	// chunk file is absent from the store.
	InconsistencyMissingChunkFile InconsistencyType = iota
	// InconsistencyOrphanArticle indicates an article-index entry
	// referencing a chunk missing from the main index.
	InconsistencyOrphanArticle
	// InconsistencyOrphanKeyword indicates a keyword-index entry
	// referencing a chunk missing from the main index.
	InconsistencyOrphanKeyword
	// InconsistencyUnmappedUnit indicates a unit listed in a chunk but
	// absent from the article index.
	InconsistencyUnmappedUnit
	// InconsistencyBudgetExceeded indicates a chunk over the token
	// budget without the oversized flag.
	InconsistencyBudgetExceeded
)

// String returns a human-readable description of the inconsistency type.
func (t InconsistencyType) String() string {
	switch t {
	case InconsistencyMissingChunkFile:
		return "missing_chunk_file"
	case InconsistencyOrphanArticle:
		return "orphan_article"
	case InconsistencyOrphanKeyword:
		return "orphan_keyword"
	case InconsistencyUnmappedUnit:
		return "unmapped_unit"
	case InconsistencyBudgetExceeded:
		return "budget_exceeded"
	default:
		return "unknown"
	}
}

// Inconsistency is one detected cross-index or store issue.
type Inconsistency struct {
	Type    InconsistencyType
	ChunkID string
	Details string
}

// ValidationResult is the outcome of a consistency check.
type ValidationResult struct {
	// Checked is the number of chunks verified.
	Checked int
	// Inconsistencies contains all detected issues.
	Inconsistencies []Inconsistency
	// Duration is how long the check took.
	Duration time.Duration
}

// OK reports whether the snapshot and store agree.
func (r *ValidationResult) OK() bool {
	return len(r.Inconsistencies) == 0
}

// Validator checks a published snapshot against the chunk store:
// article->main and keyword->main referential integrity, article-index
// totality over each chunk's units, token budget, and chunk file
// presence.
type Validator struct {
	chunks *store.ChunkStore
	budget int
}

// NewValidator creates a validator. budget is the configured chunk
// token budget; 0 disables the budget check.
func NewValidator(chunks *store.ChunkStore, budget int) *Validator {
	return &Validator{chunks: chunks, budget: budget}
}

// Validate runs the full consistency check over a snapshot.
func (v *Validator) Validate(ctx context.Context, snap *Snapshot) (*ValidationResult, error) {
	started := time.Now()
	result := &ValidationResult{}

	var mu sync.Mutex
	report := func(inc Inconsistency) {
		mu.Lock()
		result.Inconsistencies = append(result.Inconsistencies, inc)
		mu.Unlock()
	}

	// Cross-index referential integrity is cheap and sequential.
	for unitID, ae := range snap.Article.Index {
		if _, ok := snap.Entry(ae.ChunkID); !ok {
			report(Inconsistency{
				Type:    InconsistencyOrphanArticle,
				ChunkID: ae.ChunkID,
				Details: fmt.Sprintf("article %q resolves to unknown chunk", unitID),
			})
		}
	}
	for kw, ke := range snap.Keyword.Index {
		for _, id := range ke.Chunks {
			if _, ok := snap.Entry(id); !ok {
				report(Inconsistency{
					Type:    InconsistencyOrphanKeyword,
					ChunkID: id,
					Details: fmt.Sprintf("keyword %q references unknown chunk", kw),
				})
			}
		}
	}

	// Per-chunk checks hit the filesystem; run them concurrently.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, entry := range snap.Main.Documents {
		entry := entry
		result.Checked++
		g.Go(func() error {
			if _, err := os.Stat(entry.FilePath); err != nil {
				report(Inconsistency{
					Type:    InconsistencyMissingChunkFile,
					ChunkID: entry.ID,
					Details: fmt.Sprintf("chunk file %s missing", entry.FilePath),
				})
			}

			// Cross-document article collisions map a shared unit id
			// to a single chunk, so only units mapping nowhere count.
			for _, unitID := range entry.Articles {
				if _, ok := snap.Article.Index[unitID]; !ok {
					report(Inconsistency{
						Type:    InconsistencyUnmappedUnit,
						ChunkID: entry.ID,
						Details: fmt.Sprintf("unit %q not in article index", unitID),
					})
				}
			}

			if v.budget > 0 && entry.Tokens > v.budget && !entry.Oversized {
				report(Inconsistency{
					Type:    InconsistencyBudgetExceeded,
					ChunkID: entry.ID,
					Details: fmt.Sprintf("%d tokens exceeds budget %d without oversized flag", entry.Tokens, v.budget),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	return result, nil
}
