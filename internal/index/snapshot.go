package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/renameio"

	kberrors "github.com/normakb/normakb/internal/errors"
)

// Manager owns the published snapshot. Readers take the current snapshot
// atomically and keep serving from it while a build publishes the next
// one; they never observe a partially written index.
type Manager struct {
	indicesDir string

	current atomic.Pointer[Snapshot]

	// publishMu serializes publishes from concurrent builds of
	// different documents.
	publishMu sync.Mutex

	// onSwap hooks run after each publish; the retrieval cache
	// registers here to drop stale content wholesale.
	swapMu sync.Mutex
	onSwap []func()
}

// NewManager creates a snapshot manager over the indices directory.
func NewManager(indicesDir string) *Manager {
	return &Manager{indicesDir: indicesDir}
}

// OnSwap registers a hook invoked after every successful publish.
func (m *Manager) OnSwap(fn func()) {
	m.swapMu.Lock()
	defer m.swapMu.Unlock()
	m.onSwap = append(m.onSwap, fn)
}

// Current returns the published snapshot, or nil when none exists yet.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Load reads the published snapshot from disk, following the CURRENT
// pointer file. Returns nil without error when nothing is published.
func (m *Manager) Load() (*Snapshot, error) {
	pointer := filepath.Join(m.indicesDir, CurrentPointerFile)

	data, err := os.ReadFile(pointer)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeIndexNotFound,
			"cannot read index pointer file", err)
	}

	buildID := strings.TrimSpace(string(data))
	snap, err := m.loadBuild(buildID)
	if err != nil {
		return nil, err
	}

	m.current.Store(snap)
	return snap, nil
}

// loadBuild reads the three index documents of one build directory.
func (m *Manager) loadBuild(buildID string) (*Snapshot, error) {
	dir := filepath.Join(m.indicesDir, buildID)
	snap := &Snapshot{BuildID: buildID, Dir: dir}

	if err := readJSON(filepath.Join(dir, MainIndexFile), &snap.Main); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, KeywordIndexFile), &snap.Keyword); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ArticleIndexFile), &snap.Article); err != nil {
		return nil, err
	}

	snap.buildPositions()
	return snap, nil
}

// Publish persists the snapshot into a new build directory, then
// atomically repoints CURRENT at it and swaps the in-memory snapshot.
// On any failure the previous snapshot remains published untouched.
func (m *Manager) Publish(snap *Snapshot) error {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	dir := filepath.Join(m.indicesDir, snap.BuildID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return kberrors.New(kberrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot create build directory %s", dir), err)
	}
	snap.Dir = dir

	if err := writeJSON(filepath.Join(dir, MainIndexFile), &snap.Main); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, KeywordIndexFile), &snap.Keyword); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, ArticleIndexFile), &snap.Article); err != nil {
		return err
	}

	// The pointer swap is the publish point.
	pointer := filepath.Join(m.indicesDir, CurrentPointerFile)
	if err := renameio.WriteFile(pointer, []byte(snap.BuildID+"\n"), 0o644); err != nil {
		return kberrors.New(kberrors.ErrCodeBuildFailed,
			"cannot publish index pointer", err)
	}

	snap.buildPositions()
	m.current.Store(snap)

	m.swapMu.Lock()
	hooks := append([]func(){}, m.onSwap...)
	m.swapMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return kberrors.New(kberrors.ErrCodeCorruptIndex,
			fmt.Sprintf("cannot read index file %s", path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return kberrors.New(kberrors.ErrCodeCorruptIndex,
			fmt.Sprintf("invalid index file %s", path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return kberrors.New(kberrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot encode index file %s", path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return kberrors.New(kberrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot write index file %s", path), err)
	}
	return nil
}
