package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findInconsistency(r *ValidationResult, typ InconsistencyType) *Inconsistency {
	for i := range r.Inconsistencies {
		if r.Inconsistencies[i].Type == typ {
			return &r.Inconsistencies[i]
		}
	}
	return nil
}

func TestValidator_CleanBuildPasses(t *testing.T) {
	f := newBuilderFixture(t, BuilderOptions{TokenBudget: 14000})
	ctx := context.Background()

	_, err := f.builder.Rebuild(ctx, BuildInput{DocID: "rj-2025", Text: []byte(builderDoc)})
	require.NoError(t, err)

	v := NewValidator(f.chunks, 14000)
	result, err := v.Validate(ctx, f.snapshots.Current())
	require.NoError(t, err)

	assert.True(t, result.OK(), "inconsistencies: %v", result.Inconsistencies)
	assert.Equal(t, 1, result.Checked)
}

func TestValidator_DetectsMissingChunkFile(t *testing.T) {
	f := newBuilderFixture(t, BuilderOptions{TokenBudget: 14000})
	ctx := context.Background()

	_, err := f.builder.Rebuild(ctx, BuildInput{DocID: "rj-2025", Text: []byte(builderDoc)})
	require.NoError(t, err)

	snap := f.snapshots.Current()
	require.NoError(t, os.Remove(snap.Main.Documents[0].FilePath))

	result, err := NewValidator(f.chunks, 14000).Validate(ctx, snap)
	require.NoError(t, err)

	inc := findInconsistency(result, InconsistencyMissingChunkFile)
	require.NotNil(t, inc)
	assert.Equal(t, snap.Main.Documents[0].ID, inc.ChunkID)
}

func TestValidator_DetectsOrphanReferences(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot("b")
	for i := range snap.Main.Documents {
		path := filepath.Join(dir, snap.Main.Documents[i].ID+".md")
		require.NoError(t, os.WriteFile(path, []byte("---\n---\nx\n"), 0o644))
		snap.Main.Documents[i].FilePath = path
	}
	snap.Article.Index["Art. 9"] = ArticleEntry{ChunkID: "gone_art-9_art-9"}
	snap.Keyword.Index["fantasma"] = KeywordEntry{Chunks: []string{"gone_art-9_art-9"}}

	result, err := NewValidator(nil, 0).Validate(context.Background(), snap)
	require.NoError(t, err)

	assert.NotNil(t, findInconsistency(result, InconsistencyOrphanArticle))
	assert.NotNil(t, findInconsistency(result, InconsistencyOrphanKeyword))
}

func TestValidator_DetectsUnmappedUnit(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot("b")
	for i := range snap.Main.Documents {
		path := filepath.Join(dir, snap.Main.Documents[i].ID+".md")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		snap.Main.Documents[i].FilePath = path
	}
	delete(snap.Article.Index, "Art. 2")

	result, err := NewValidator(nil, 0).Validate(context.Background(), snap)
	require.NoError(t, err)

	inc := findInconsistency(result, InconsistencyUnmappedUnit)
	require.NotNil(t, inc)
	assert.Equal(t, "rj-2025_art-1_art-2", inc.ChunkID)
}

func TestValidator_DetectsBudgetViolation(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot("b")
	for i := range snap.Main.Documents {
		path := filepath.Join(dir, snap.Main.Documents[i].ID+".md")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		snap.Main.Documents[i].FilePath = path
	}
	// First chunk is over budget without the flag; second is over budget
	// but flagged oversized, which is legitimate.
	snap.Main.Documents[0].Tokens = 200
	snap.Main.Documents[1].Tokens = 200
	snap.Main.Documents[1].Oversized = true

	result, err := NewValidator(nil, 100).Validate(context.Background(), snap)
	require.NoError(t, err)

	var violations []Inconsistency
	for _, inc := range result.Inconsistencies {
		if inc.Type == InconsistencyBudgetExceeded {
			violations = append(violations, inc)
		}
	}
	require.Len(t, violations, 1)
	assert.Equal(t, "rj-2025_art-1_art-2", violations[0].ChunkID)
}

func TestInconsistencyType_String(t *testing.T) {
	assert.Equal(t, "missing_chunk_file", InconsistencyMissingChunkFile.String())
	assert.Equal(t, "budget_exceeded", InconsistencyBudgetExceeded.String())
	assert.Equal(t, "unknown", InconsistencyType(99).String())
}
