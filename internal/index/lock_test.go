package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/normakb/normakb/internal/errors"
)

func TestBuildLock_SecondAcquireRejected(t *testing.T) {
	locks := NewBuildLock(t.TempDir())

	release, err := locks.Acquire("rj-2025")
	require.NoError(t, err)

	_, err = locks.Acquire("rj-2025")
	require.Error(t, err)
	assert.Equal(t, kberrors.ErrCodeBuildInProgress, kberrors.GetCode(err))

	release()

	// Released lock can be taken again.
	release2, err := locks.Acquire("rj-2025")
	require.NoError(t, err)
	release2()
}

func TestBuildLock_IndependentPerDocument(t *testing.T) {
	locks := NewBuildLock(t.TempDir())

	r1, err := locks.Acquire("rj-2025")
	require.NoError(t, err)
	defer r1()

	r2, err := locks.Acquire("rd-2025")
	require.NoError(t, err)
	defer r2()
}
