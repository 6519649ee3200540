package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesClassificationFromCode(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeChunkStoreIO, CategoryIO, SeverityError, true},
		{ErrCodeVersionTracker, CategoryIO, SeverityError, true},
		{ErrCodeQueryEmpty, CategoryQuery, SeverityError, false},
		{ErrCodeMalformedInput, CategoryValidation, SeverityFatal, false},
		{ErrCodeIndexConsistency, CategoryBuild, SeverityFatal, false},
		{ErrCodeBuildInProgress, CategoryBuild, SeverityWarning, false},
		{ErrCodeCorruptIndex, CategoryIO, SeverityFatal, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, e.Category)
			assert.Equal(t, tt.severity, e.Severity)
			assert.Equal(t, tt.retryable, e.Retryable)
		})
	}
}

func TestKBError_ErrorFormat(t *testing.T) {
	e := New(ErrCodeChunkNotFound, "chunk x missing", nil)
	assert.Equal(t, "[ERR_202_CHUNK_NOT_FOUND] chunk x missing", e.Error())
}

func TestKBError_UnwrapChain(t *testing.T) {
	cause := fmt.Errorf("open /x: no such file")
	e := ChunkStoreIO("cannot write chunk", cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, cause, stderrors.Unwrap(e))
}

func TestKBError_IsMatchesByCode(t *testing.T) {
	a := New(ErrCodeBuildInProgress, "one", nil)
	b := New(ErrCodeBuildInProgress, "another message entirely", nil)
	c := New(ErrCodeBuildFailed, "other code", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestKBError_WithDetail(t *testing.T) {
	e := BuildInProgress("rj-2025")
	assert.Equal(t, "rj-2025", e.Details["document_id"])

	e.WithDetail("attempt", "2")
	assert.Equal(t, "2", e.Details["attempt"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeChunkStoreIO, nil))

	cause := fmt.Errorf("disk full")
	e := Wrap(ErrCodeChunkStoreIO, cause)
	require.NotNil(t, e)
	assert.Equal(t, "disk full", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestHelperConstructors(t *testing.T) {
	assert.Equal(t, ErrCodeMalformedInput, MalformedInput("m", nil).Code)
	assert.Equal(t, ErrCodeIndexConsistency, IndexConsistency("m").Code)
	assert.Equal(t, ErrCodeChunkStoreIO, ChunkStoreIO("m", nil).Code)
	assert.Equal(t, ErrCodeConfigInvalid, ConfigError("m", nil).Code)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsRetryable(ChunkStoreIO("m", nil)))
	assert.False(t, IsRetryable(MalformedInput("m", nil)))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
	assert.False(t, IsRetryable(nil))

	assert.True(t, IsFatal(IndexConsistency("m")))
	assert.False(t, IsFatal(ChunkStoreIO("m", nil)))
	assert.False(t, IsFatal(nil))

	assert.Equal(t, ErrCodeMalformedInput, GetCode(MalformedInput("m", nil)))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
}
