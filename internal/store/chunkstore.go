// Package store persists chunk content and tracks document versions.
//
// The chunk store is one file per chunk, addressed by chunk id: a YAML
// frontmatter header carrying the chunk metadata, followed by the
// concatenated unit content with page markers preserved.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/normakb/normakb/internal/chunk"
	kberrors "github.com/normakb/normakb/internal/errors"
)

const frontmatterDelim = "---\n"

// chunkHeader is the YAML frontmatter persisted ahead of chunk content.
type chunkHeader struct {
	ChunkID   string    `yaml:"chunk_id"`
	DocID     string    `yaml:"doc_id"`
	Title     string    `yaml:"title"`
	Tokens    int       `yaml:"tokens"`
	SourcePDF string    `yaml:"source_pdf,omitempty"`
	Articles  []string  `yaml:"articles"`
	Keywords  []string  `yaml:"keywords,omitempty"`
	Section   string    `yaml:"section,omitempty"`
	Pages     []int     `yaml:"pages,omitempty"`
	Oversized bool      `yaml:"oversized,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// ChunkStore reads and writes per-chunk files under a root directory.
// Writes are idempotent: identical input produces identical ids and
// content, so overwriting during a rebuild is safe.
type ChunkStore struct {
	root string
}

// NewChunkStore creates a chunk store rooted at dir.
func NewChunkStore(dir string) *ChunkStore {
	return &ChunkStore{root: dir}
}

// Path returns the file path for a chunk id within a document.
func (s *ChunkStore) Path(docID, chunkID string) string {
	return filepath.Join(s.root, chunk.Slug(docID), chunkID+".md")
}

// Write persists one chunk and records the file path on it.
// Failures surface as retryable ERR_201_CHUNK_STORE_IO.
func (s *ChunkStore) Write(c *chunk.Chunk, sourcePDF string) error {
	header := chunkHeader{
		ChunkID:   c.ID,
		DocID:     c.DocID,
		Title:     c.Title,
		Tokens:    c.Tokens,
		SourcePDF: sourcePDF,
		Articles:  c.UnitIDs,
		Keywords:  c.Keywords,
		Section:   c.Section,
		Pages:     c.Pages,
		Oversized: c.Oversized,
		CreatedAt: c.CreatedAt,
	}

	head, err := yaml.Marshal(&header)
	if err != nil {
		return kberrors.New(kberrors.ErrCodeCorruptChunk,
			fmt.Sprintf("cannot encode header for chunk %s", c.ID), err)
	}

	path := s.Path(c.DocID, c.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kberrors.ChunkStoreIO(
			fmt.Sprintf("cannot create chunk directory for %s", c.ID), err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelim)
	b.Write(head)
	b.WriteString(frontmatterDelim)
	b.WriteString(c.Content)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return kberrors.ChunkStoreIO(
			fmt.Sprintf("cannot write chunk %s", c.ID), err)
	}

	c.FilePath = path
	return nil
}

// Read loads one chunk back from the store by document and chunk id.
func (s *ChunkStore) Read(docID, chunkID string) (*chunk.Chunk, error) {
	return s.ReadFile(s.Path(docID, chunkID))
}

// ReadFile loads one chunk file back into a Chunk.
// A missing file is ERR_202_CHUNK_NOT_FOUND; other failures are
// retryable ERR_201_CHUNK_STORE_IO.
func (s *ChunkStore) ReadFile(path string) (*chunk.Chunk, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, kberrors.New(kberrors.ErrCodeChunkNotFound,
			fmt.Sprintf("chunk file %s not found in store", path), err)
	}
	if err != nil {
		return nil, kberrors.ChunkStoreIO(
			fmt.Sprintf("cannot read chunk file %s", path), err)
	}

	header, content, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeCorruptChunk,
			fmt.Sprintf("chunk file %s has no valid frontmatter", path), err)
	}

	var h chunkHeader
	if err := yaml.Unmarshal([]byte(header), &h); err != nil {
		return nil, kberrors.New(kberrors.ErrCodeCorruptChunk,
			fmt.Sprintf("chunk file %s has invalid header", path), err)
	}

	return &chunk.Chunk{
		ID:        h.ChunkID,
		DocID:     h.DocID,
		Title:     h.Title,
		Tokens:    h.Tokens,
		UnitIDs:   h.Articles,
		Pages:     h.Pages,
		Keywords:  h.Keywords,
		Section:   h.Section,
		Oversized: h.Oversized,
		Content:   content,
		CreatedAt: h.CreatedAt,
		FilePath:  path,
	}, nil
}

// Exists reports whether a chunk file is present.
func (s *ChunkStore) Exists(docID, chunkID string) bool {
	_, err := os.Stat(s.Path(docID, chunkID))
	return err == nil
}

// splitFrontmatter separates the YAML header from the chunk content.
func splitFrontmatter(data string) (header, content string, err error) {
	if !strings.HasPrefix(data, frontmatterDelim) {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}
	rest := data[len(frontmatterDelim):]
	idx := strings.Index(rest, frontmatterDelim)
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter")
	}
	header = rest[:idx]
	content = strings.TrimSuffix(rest[idx+len(frontmatterDelim):], "\n")
	return header, content, nil
}
