package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/normakb/normakb/internal/chunk"
	kberrors "github.com/normakb/normakb/internal/errors"
	"github.com/normakb/normakb/internal/parser"
	"github.com/normakb/normakb/internal/store"
	"github.com/normakb/normakb/internal/token"
)

// BuilderOptions tunes the segmentation pass.
type BuilderOptions struct {
	TokenBudget      int
	KeywordsPerChunk int
}

// Builder runs the full rebuild pass for one document version:
// parse -> partition -> persist chunks -> derive indices -> validate ->
// publish. Any failure aborts the build wholesale and leaves the
// previously published snapshot untouched.
type Builder struct {
	chunks    *store.ChunkStore
	tracker   *store.VersionTracker
	locks     *BuildLock
	snapshots *Manager
	counter   token.Counter
	opts      BuilderOptions
	logger    *slog.Logger
}

// NewBuilder wires a builder. tracker may be nil when version tracking
// is not wanted (tests, one-off rebuilds).
func NewBuilder(chunks *store.ChunkStore, tracker *store.VersionTracker,
	locks *BuildLock, snapshots *Manager, counter token.Counter,
	opts BuilderOptions, logger *slog.Logger) *Builder {
	if counter == nil {
		counter = token.NewHeuristicCounter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		chunks:    chunks,
		tracker:   tracker,
		locks:     locks,
		snapshots: snapshots,
		counter:   counter,
		opts:      opts,
		logger:    logger,
	}
}

// BuildInput is one document version to (re)index.
type BuildInput struct {
	// DocID is the document identifier, e.g. "rj-2025".
	DocID string

	// Title is the document title for the version tracker.
	Title string

	// SourcePDF names the original PDF the text was converted from.
	SourcePDF string

	// SourcePath is the structured text file the content came from.
	SourcePath string

	// Text is the structured text with page and heading markers.
	Text []byte
}

// BuildReport summarizes a completed rebuild.
type BuildReport struct {
	RunID           string
	DocID           string
	BuildID         string
	Units           int
	Chunks          int
	OversizedChunks []string
	Duration        time.Duration
}

// Rebuild runs the whole build pass for one document version. Concurrent
// rebuilds of the same document are rejected with
// ERR_502_BUILD_IN_PROGRESS; the first caller proceeds and publishes.
func (b *Builder) Rebuild(ctx context.Context, input BuildInput) (*BuildReport, error) {
	started := time.Now()
	runID := uuid.NewString()

	if strings.TrimSpace(input.DocID) == "" {
		return nil, kberrors.New(kberrors.ErrCodeInvalidInput,
			"document id is empty", nil)
	}

	release, err := b.locks.Acquire(input.DocID)
	if err != nil {
		return nil, err
	}
	defer release()

	log := b.logger.With("run_id", runID, "doc_id", input.DocID)
	log.Info("rebuild started", "bytes", len(input.Text))

	units, err := parser.Parse(string(input.Text))
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, err
	}
	if len(units) == 0 {
		return nil, kberrors.MalformedInput(
			fmt.Sprintf("document %s is empty", input.DocID), nil)
	}

	now := time.Now().UTC()
	chunks := chunk.Partition(input.DocID, units, chunk.Options{
		TokenBudget:      b.opts.TokenBudget,
		KeywordsPerChunk: b.opts.KeywordsPerChunk,
		Counter:          b.counter,
		Now:              now,
	})

	var oversized []string
	for _, c := range chunks {
		if c.Oversized {
			oversized = append(oversized, c.ID)
			log.Warn("oversized chunk", "chunk_id", c.ID, "tokens", c.Tokens,
				"budget", b.opts.TokenBudget)
		}
	}

	// Persist chunk content with bounded retry on transient store I/O.
	retryCfg := kberrors.DefaultRetryConfig()
	for _, c := range chunks {
		c := c
		err := kberrors.Retry(ctx, retryCfg, func() error {
			return b.chunks.Write(c, input.SourcePDF)
		})
		if err != nil {
			log.Error("chunk store write failed", "chunk_id", c.ID, "error", err)
			return nil, err
		}
	}

	buildID := fmt.Sprintf("%s-%s", now.Format("20060102T150405Z"), runID[:8])
	snap, err := Derive(buildID, b.snapshots.Current(), input, chunks, units, now, log)
	if err != nil {
		return nil, err
	}

	if err := b.snapshots.Publish(snap); err != nil {
		return nil, err
	}

	if b.tracker != nil {
		err := b.tracker.Record(ctx, store.DocumentVersion{
			ID:          input.DocID,
			Title:       input.Title,
			SourcePath:  input.SourcePath,
			SourcePDF:   input.SourcePDF,
			ContentHash: store.HashContent(input.Text),
			IndexedAt:   now,
			Units:       len(units),
			Chunks:      len(chunks),
			Oversized:   len(oversized),
		})
		if err != nil {
			return nil, err
		}
	}

	report := &BuildReport{
		RunID:           runID,
		DocID:           input.DocID,
		BuildID:         buildID,
		Units:           len(units),
		Chunks:          len(chunks),
		OversizedChunks: oversized,
		Duration:        time.Since(started),
	}
	log.Info("rebuild published", "build_id", buildID,
		"units", report.Units, "chunks", report.Chunks,
		"oversized", len(oversized), "duration", report.Duration)
	return report, nil
}

// Derive composes the next snapshot from the freshly built chunks of one
// document plus the surviving entries of every other document in the
// previous snapshot. All three indices come out of the same chunk list,
// so they cannot disagree.
func Derive(buildID string, prev *Snapshot, input BuildInput,
	chunks []*chunk.Chunk, units []parser.Unit, createdAt time.Time,
	log *slog.Logger) (*Snapshot, error) {

	docPrefix := chunk.Slug(input.DocID) + "_"

	snap := &Snapshot{BuildID: buildID}
	snap.Main = MainIndex{Version: SchemaVersion, CreatedAt: createdAt}
	snap.Keyword = KeywordIndex{Version: SchemaVersion, Index: make(map[string]KeywordEntry)}
	snap.Article = ArticleIndex{Version: SchemaVersion, Index: make(map[string]ArticleEntry)}

	// Carry forward the other documents' chunks, dropping the rebuilt
	// document's previous entries.
	if prev != nil {
		for _, e := range prev.Main.Documents {
			if !strings.HasPrefix(e.ID, docPrefix) {
				snap.Main.Documents = append(snap.Main.Documents, e)
			}
		}
		for unitID, ae := range prev.Article.Index {
			if !strings.HasPrefix(ae.ChunkID, docPrefix) {
				snap.Article.Index[unitID] = ae
			}
		}
	}

	// Unit lookup for article-index titles and pages.
	unitByID := make(map[string]parser.Unit, len(units))
	for _, u := range units {
		unitByID[u.ID] = u
	}

	// Append the rebuilt document's chunks in document order.
	seen := make(map[string]string) // unit id -> chunk id, within this document
	for _, c := range chunks {
		snap.Main.Documents = append(snap.Main.Documents, MainIndexEntry{
			ID:        c.ID,
			Title:     c.Title,
			FilePath:  c.FilePath,
			Tokens:    c.Tokens,
			Articles:  c.UnitIDs,
			Keywords:  c.Keywords,
			Section:   c.Section,
			Pages:     c.Pages,
			SourcePDF: input.SourcePDF,
			Oversized: c.Oversized,
		})

		for _, unitID := range c.UnitIDs {
			if other, dup := seen[unitID]; dup {
				return nil, kberrors.IndexConsistency(
					fmt.Sprintf("unit %q mapped to chunks %q and %q", unitID, other, c.ID))
			}
			seen[unitID] = c.ID

			entry := ArticleEntry{ChunkID: c.ID}
			if u, ok := unitByID[unitID]; ok {
				entry.Title = u.Title
				entry.Pages = u.Pages
			}
			if existing, collides := snap.Article.Index[unitID]; collides && log != nil {
				// Same article number in a different document: last
				// build wins the unqualified key.
				log.Warn("article id collision across documents",
					"unit_id", unitID, "kept", c.ID, "replaced", existing.ChunkID)
			}
			snap.Article.Index[unitID] = entry
		}
	}

	// Invert keywords over the merged chunk list.
	for _, e := range snap.Main.Documents {
		for _, kw := range e.Keywords {
			ke := snap.Keyword.Index[kw]
			ke.Chunks = append(ke.Chunks, e.ID)
			snap.Keyword.Index[kw] = ke
		}
	}

	snap.Main.TotalChunks = len(snap.Main.Documents)
	snap.buildPositions()

	if err := checkDerived(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// checkDerived verifies referential integrity of a freshly derived
// snapshot before it is published.
func checkDerived(snap *Snapshot) error {
	for unitID, ae := range snap.Article.Index {
		if _, ok := snap.Entry(ae.ChunkID); !ok {
			return kberrors.IndexConsistency(
				fmt.Sprintf("article index entry %q references unknown chunk %q", unitID, ae.ChunkID))
		}
	}
	for kw, ke := range snap.Keyword.Index {
		for _, id := range ke.Chunks {
			if _, ok := snap.Entry(id); !ok {
				return kberrors.IndexConsistency(
					fmt.Sprintf("keyword %q references unknown chunk %q", kw, id))
			}
		}
	}
	return nil
}
