package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/normakb/normakb/internal/chunk"
	"github.com/normakb/normakb/internal/index"
	"github.com/normakb/normakb/internal/retrieve"
	"github.com/normakb/normakb/internal/store"
	"github.com/normakb/normakb/internal/token"
)

// timeRound is the duration granularity for report output.
const timeRound = time.Millisecond

// components wires the engine stack from the loaded configuration.
type components struct {
	chunks    *store.ChunkStore
	tracker   *store.VersionTracker
	locks     *index.BuildLock
	snapshots *index.Manager
	builder   *index.Builder
	engine    *retrieve.Engine
}

// newComponents builds the full stack. The published snapshot is loaded
// when one exists; callers needing one check snapshots.Current().
func newComponents(a *app) (*components, error) {
	chunks := store.NewChunkStore(a.cfg.Paths.ChunksDir)

	tracker, err := store.OpenVersionTracker(a.cfg.Paths.VersionsDB)
	if err != nil {
		return nil, err
	}

	locks := index.NewBuildLock(a.cfg.Paths.LocksDir)
	snapshots := index.NewManager(a.cfg.Paths.IndicesDir)
	if _, err := snapshots.Load(); err != nil {
		_ = tracker.Close()
		return nil, err
	}

	counter := token.NewHeuristicCounter()
	builder := index.NewBuilder(chunks, tracker, locks, snapshots, counter,
		index.BuilderOptions{
			TokenBudget:      a.cfg.Chunking.TokenBudget,
			KeywordsPerChunk: a.cfg.Chunking.KeywordsPerChunk,
		}, a.logger)

	cache := retrieve.NewContentCache(a.cfg.Retrieval.CacheCapacity)
	engine := retrieve.NewEngine(snapshots, chunks, cache,
		a.cfg.Retrieval.ContextTokenCeiling, a.logger)

	return &components{
		chunks:    chunks,
		tracker:   tracker,
		locks:     locks,
		snapshots: snapshots,
		builder:   builder,
		engine:    engine,
	}, nil
}

// close releases held resources.
func (c *components) close() {
	if c.tracker != nil {
		_ = c.tracker.Close()
	}
}

// docIDFromPath derives the document id from a source file name:
// "data/processed/rj-2025.txt" -> "rj-2025".
func docIDFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return chunk.Slug(stem)
}

// listDocuments returns the structured text files in the processed
// directory, sorted by name.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".txt" || ext == ".md" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
