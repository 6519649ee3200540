package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	kberrors "github.com/normakb/normakb/internal/errors"
)

// DocumentVersion is one tracked document in the version database.
// A document is re-indexed when its content hash changes.
type DocumentVersion struct {
	ID          string
	Title       string
	SourcePath  string
	SourcePDF   string
	ContentHash string
	IndexedAt   time.Time
	Units       int
	Chunks      int
	Oversized   int
}

// VersionTracker records which document versions have been indexed,
// keyed by document id with a content hash for change detection.
// It backs the incremental update operation.
type VersionTracker struct {
	db *sql.DB
}

const versionsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	source_path  TEXT NOT NULL DEFAULT '',
	source_pdf   TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	indexed_at   TEXT NOT NULL DEFAULT '',
	units        INTEGER NOT NULL DEFAULT 0,
	chunks       INTEGER NOT NULL DEFAULT 0,
	oversized    INTEGER NOT NULL DEFAULT 0
);`

// OpenVersionTracker opens (creating if needed) the tracker database.
func OpenVersionTracker(path string) (*VersionTracker, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeVersionTracker,
			fmt.Sprintf("cannot open version database %s", path), err)
	}
	if _, err := db.Exec(versionsSchema); err != nil {
		_ = db.Close()
		return nil, kberrors.New(kberrors.ErrCodeVersionTracker,
			"cannot initialize version database schema", err)
	}
	return &VersionTracker{db: db}, nil
}

// Close closes the underlying database.
func (t *VersionTracker) Close() error {
	return t.db.Close()
}

// HashContent computes the content hash used for change detection.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the tracked version for a document id, or nil when the
// document has never been indexed.
func (t *VersionTracker) Get(ctx context.Context, docID string) (*DocumentVersion, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT id, title, source_path, source_pdf, content_hash, indexed_at, units, chunks, oversized
		FROM documents WHERE id = ?`, docID)

	var v DocumentVersion
	var indexedAt string
	err := row.Scan(&v.ID, &v.Title, &v.SourcePath, &v.SourcePDF,
		&v.ContentHash, &indexedAt, &v.Units, &v.Chunks, &v.Oversized)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeVersionTracker,
			fmt.Sprintf("cannot load document %s", docID), err)
	}
	if indexedAt != "" {
		v.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	}
	return &v, nil
}

// List returns all tracked documents ordered by id.
func (t *VersionTracker) List(ctx context.Context) ([]DocumentVersion, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, title, source_path, source_pdf, content_hash, indexed_at, units, chunks, oversized
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeVersionTracker,
			"cannot list documents", err)
	}
	defer rows.Close()

	var out []DocumentVersion
	for rows.Next() {
		var v DocumentVersion
		var indexedAt string
		if err := rows.Scan(&v.ID, &v.Title, &v.SourcePath, &v.SourcePDF,
			&v.ContentHash, &indexedAt, &v.Units, &v.Chunks, &v.Oversized); err != nil {
			return nil, kberrors.New(kberrors.ErrCodeVersionTracker,
				"cannot scan document row", err)
		}
		if indexedAt != "" {
			v.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Record upserts a document version after a successful build.
func (t *VersionTracker) Record(ctx context.Context, v DocumentVersion) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, source_path, source_pdf, content_hash, indexed_at, units, chunks, oversized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_path = excluded.source_path,
			source_pdf = excluded.source_pdf,
			content_hash = excluded.content_hash,
			indexed_at = excluded.indexed_at,
			units = excluded.units,
			chunks = excluded.chunks,
			oversized = excluded.oversized`,
		v.ID, v.Title, v.SourcePath, v.SourcePDF, v.ContentHash,
		v.IndexedAt.UTC().Format(time.RFC3339), v.Units, v.Chunks, v.Oversized)
	if err != nil {
		return kberrors.New(kberrors.ErrCodeVersionTracker,
			fmt.Sprintf("cannot record document %s", v.ID), err)
	}
	return nil
}

// NeedsUpdate reports whether a document's current content differs from
// the hash recorded at last index time.
func (t *VersionTracker) NeedsUpdate(ctx context.Context, docID string, content []byte) (bool, error) {
	v, err := t.Get(ctx, docID)
	if err != nil {
		return false, err
	}
	if v == nil {
		return true, nil
	}
	return v.ContentHash != HashContent(content), nil
}
