package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/normakb/normakb/internal/chunk"
	kberrors "github.com/normakb/normakb/internal/errors"
	"github.com/normakb/normakb/internal/index"
	"github.com/normakb/normakb/internal/store"
)

// Scoring weights. A direct article reference ("Art. 8") outweighs any
// keyword overlap; ranking beyond that is not load-bearing.
const (
	keywordMatchWeight = 1
	directRefWeight    = 5
)

// articleRefPattern finds direct unit references in a query:
// "Art. 8", "artículo 8", "articles 8".
var articleRefPattern = regexp.MustCompile(`(?i)\bart(?:[ií]culos?|icles?)?\.?\s*(\d+[a-z]*)`)

// Match is one retrieved chunk with its content and score.
type Match struct {
	ChunkID string
	Content string
	Score   int
	Entry   index.MainIndexEntry
}

// Result is the outcome of one retrieval call.
type Result struct {
	// Matches are the selected chunks in rank order.
	Matches []Match

	// TotalTokens is the cumulative token count of Matches,
	// always <= the ceiling.
	TotalTokens int

	// Truncated is set when ranked candidates remained but the next
	// one would have exceeded the ceiling.
	Truncated bool

	// NoMatch signals an explicit empty result: the query matched
	// nothing. Not an error.
	NoMatch bool

	// MatchCount is the number of candidate chunks before the
	// ceiling was applied.
	MatchCount int
}

// Options tunes one retrieval call.
type Options struct {
	// MaxTokens overrides the engine's default context ceiling (C).
	MaxTokens int
}

// Engine answers queries against the published snapshot. It is
// read-only aside from cache population, so callers may abandon a
// retrieval at any point without side effects.
type Engine struct {
	snapshots *index.Manager
	chunks    *store.ChunkStore
	cache     *ContentCache
	ceiling   int
	logger    *slog.Logger
}

// NewEngine wires a retrieval engine. The cache is purged automatically
// whenever the snapshot manager publishes a new build.
func NewEngine(snapshots *index.Manager, chunks *store.ChunkStore,
	cache *ContentCache, ceiling int, logger *slog.Logger) *Engine {
	if cache == nil {
		cache = NewContentCache(DefaultCacheCapacity)
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		snapshots: snapshots,
		chunks:    chunks,
		cache:     cache,
		ceiling:   ceiling,
		logger:    logger,
	}
	snapshots.OnSwap(cache.Purge)
	return e
}

// Retrieve resolves candidate chunks for the query, ranks them, and
// greedily loads them under the token ceiling.
func (e *Engine) Retrieve(ctx context.Context, query string, opts Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, kberrors.New(kberrors.ErrCodeQueryEmpty, "query is empty", nil)
	}

	snap := e.snapshots.Current()
	if snap == nil {
		return nil, kberrors.New(kberrors.ErrCodeIndexNotFound,
			"no index has been published yet", nil)
	}

	ceiling := opts.MaxTokens
	if ceiling <= 0 {
		ceiling = e.ceiling
	}

	scores := e.scoreCandidates(snap, query)
	if len(scores) == 0 {
		e.logger.Debug("no match found", "query", query)
		return &Result{NoMatch: true}, nil
	}

	ranked := rank(snap, scores)
	result := &Result{MatchCount: len(ranked)}

	for _, chunkID := range ranked {
		entry, ok := snap.Entry(chunkID)
		if !ok {
			continue
		}
		if result.TotalTokens+entry.Tokens > ceiling {
			result.Truncated = true
			break
		}

		content, err := e.loadContent(ctx, entry)
		if err != nil {
			return nil, err
		}

		result.Matches = append(result.Matches, Match{
			ChunkID: chunkID,
			Content: content,
			Score:   scores[chunkID],
			Entry:   entry,
		})
		result.TotalTokens += entry.Tokens
	}

	e.logger.Debug("retrieval done", "query", query,
		"candidates", result.MatchCount, "returned", len(result.Matches),
		"tokens", result.TotalTokens, "truncated", result.Truncated)
	return result, nil
}

// scoreCandidates unions keyword-index and article-index hits.
// Each matching normalized query term scores keywordMatchWeight per
// chunk; each direct unit reference scores directRefWeight.
func (e *Engine) scoreCandidates(snap *index.Snapshot, query string) map[string]int {
	scores := make(map[string]int)

	seen := make(map[string]struct{})
	for _, term := range chunk.Terms(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		if ke, ok := snap.Keyword.Index[term]; ok {
			for _, id := range ke.Chunks {
				scores[id] += keywordMatchWeight
			}
		}
	}

	for _, m := range articleRefPattern.FindAllStringSubmatch(query, -1) {
		unitID := fmt.Sprintf("Art. %s", m[1])
		if ae, ok := snap.Article.Index[unitID]; ok {
			scores[ae.ChunkID] += directRefWeight
		}
	}

	return scores
}

// rank orders candidate chunk ids by score descending, ties broken by
// document order. Deterministic for fixed input.
func rank(snap *index.Snapshot, scores map[string]int) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return snap.Position(ids[i]) < snap.Position(ids[j])
	})
	return ids
}

// loadContent serves chunk content through the cache, reading the store
// with bounded retry on a miss.
func (e *Engine) loadContent(ctx context.Context, entry index.MainIndexEntry) (string, error) {
	return e.cache.Get(entry.ID, func() (string, error) {
		var content string
		err := kberrors.Retry(ctx, kberrors.DefaultRetryConfig(), func() error {
			c, err := e.chunks.ReadFile(entry.FilePath)
			if err != nil {
				return err
			}
			content = c.Content
			return nil
		})
		return content, err
	})
}
