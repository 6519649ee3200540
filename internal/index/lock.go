package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/normakb/normakb/internal/chunk"
	kberrors "github.com/normakb/normakb/internal/errors"
)

// BuildLock serializes index builds per document id across processes.
// Overlapping builds for the same document are rejected, not queued.
type BuildLock struct {
	dir string
}

// NewBuildLock creates a lock manager storing lock files under dir.
func NewBuildLock(dir string) *BuildLock {
	return &BuildLock{dir: dir}
}

// Acquire takes the build lock for a document id without blocking.
// If another build holds it, ERR_502_BUILD_IN_PROGRESS is returned and
// the caller should retry later. The returned release function must be
// called once the build completes or fails.
func (l *BuildLock) Acquire(docID string) (func(), error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, kberrors.New(kberrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot create lock directory %s", l.dir), err)
	}

	path := filepath.Join(l.dir, chunk.Slug(docID)+".lock")
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, kberrors.New(kberrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot acquire build lock for %s", docID), err)
	}
	if !acquired {
		return nil, kberrors.BuildInProgress(docID)
	}

	return func() { _ = fl.Unlock() }, nil
}
