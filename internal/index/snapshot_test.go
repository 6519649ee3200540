package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(buildID string) *Snapshot {
	snap := &Snapshot{
		BuildID: buildID,
		Main: MainIndex{
			Version:     SchemaVersion,
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			TotalChunks: 2,
			Documents: []MainIndexEntry{
				{ID: "rj-2025_art-1_art-2", Title: "Art. 1 – Art. 2",
					Articles: []string{"Art. 1", "Art. 2"}, Keywords: []string{"terreno"}, Tokens: 100},
				{ID: "rj-2025_art-3_art-3", Title: "Art. 3",
					Articles: []string{"Art. 3"}, Keywords: []string{"balon"}, Tokens: 50},
			},
		},
		Keyword: KeywordIndex{Version: SchemaVersion, Index: map[string]KeywordEntry{
			"terreno": {Chunks: []string{"rj-2025_art-1_art-2"}},
			"balon":   {Chunks: []string{"rj-2025_art-3_art-3"}},
		}},
		Article: ArticleIndex{Version: SchemaVersion, Index: map[string]ArticleEntry{
			"Art. 1": {ChunkID: "rj-2025_art-1_art-2"},
			"Art. 2": {ChunkID: "rj-2025_art-1_art-2"},
			"Art. 3": {ChunkID: "rj-2025_art-3_art-3"},
		}},
	}
	snap.buildPositions()
	return snap
}

func TestManager_LoadWithoutPublish(t *testing.T) {
	m := NewManager(t.TempDir())

	snap, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Nil(t, m.Current())
}

func TestManager_PublishLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.Publish(sampleSnapshot("20250601T120000Z-abc12345")))

	// The pointer file names the build directory.
	data, err := os.ReadFile(filepath.Join(dir, CurrentPointerFile))
	require.NoError(t, err)
	assert.Equal(t, "20250601T120000Z-abc12345", strings.TrimSpace(string(data)))

	// A fresh manager recovers the same snapshot from disk.
	m2 := NewManager(dir)
	got, err := m2.Load()
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "20250601T120000Z-abc12345", got.BuildID)
	assert.Equal(t, 2, got.Main.TotalChunks)
	assert.Equal(t, SchemaVersion, got.Main.Version)
	assert.Equal(t, []string{"rj-2025_art-1_art-2"}, got.Keyword.Index["terreno"].Chunks)
	assert.Equal(t, "rj-2025_art-3_art-3", got.Article.Index["Art. 3"].ChunkID)
	assert.Same(t, got, m2.Current())
}

func TestManager_PublishSwapsCurrentAndKeepsOldBuild(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	first := sampleSnapshot("build-1")
	require.NoError(t, m.Publish(first))

	second := sampleSnapshot("build-2")
	second.Main.Documents = second.Main.Documents[:1]
	second.Main.TotalChunks = 1
	require.NoError(t, m.Publish(second))

	assert.Equal(t, "build-2", m.Current().BuildID)
	assert.Equal(t, 1, m.Current().Main.TotalChunks)

	// The superseded build directory stays readable.
	_, err := os.Stat(filepath.Join(dir, "build-1", MainIndexFile))
	assert.NoError(t, err)
}

func TestManager_OnSwapHooksFire(t *testing.T) {
	m := NewManager(t.TempDir())

	fired := 0
	m.OnSwap(func() { fired++ })
	m.OnSwap(func() { fired++ })

	require.NoError(t, m.Publish(sampleSnapshot("build-1")))
	assert.Equal(t, 2, fired)

	require.NoError(t, m.Publish(sampleSnapshot("build-2")))
	assert.Equal(t, 4, fired)
}

func TestSnapshot_PositionAndEntry(t *testing.T) {
	snap := sampleSnapshot("b")

	assert.Equal(t, 0, snap.Position("rj-2025_art-1_art-2"))
	assert.Equal(t, 1, snap.Position("rj-2025_art-3_art-3"))
	// Unknown ids sort after everything.
	assert.Equal(t, 2, snap.Position("nope"))

	e, ok := snap.Entry("rj-2025_art-3_art-3")
	require.True(t, ok)
	assert.Equal(t, "Art. 3", e.Title)

	_, ok = snap.Entry("nope")
	assert.False(t, ok)
}
