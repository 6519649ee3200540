// Package errors provides structured error handling for normakb.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (chunk store, disk)
//   - 3XX: Query errors
//   - 4XX: Input validation errors
//   - 5XX: Build and index errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates chunk store and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryQuery indicates query-time errors.
	CategoryQuery Category = "QUERY"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryBuild indicates index build errors.
	CategoryBuild Category = "BUILD"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeChunkStoreIO   = "ERR_201_CHUNK_STORE_IO"
	ErrCodeChunkNotFound  = "ERR_202_CHUNK_NOT_FOUND"
	ErrCodeCorruptChunk   = "ERR_203_CORRUPT_CHUNK"
	ErrCodeCorruptIndex   = "ERR_204_CORRUPT_INDEX"
	ErrCodeIndexNotFound  = "ERR_205_INDEX_NOT_FOUND"
	ErrCodeVersionTracker = "ERR_206_VERSION_TRACKER"

	// Query errors (300-399)
	ErrCodeQueryEmpty = "ERR_301_QUERY_EMPTY"

	// Validation errors (400-499)
	ErrCodeMalformedInput = "ERR_401_MALFORMED_INPUT"
	ErrCodeInvalidInput   = "ERR_402_INVALID_INPUT"

	// Build and index errors (500-599)
	ErrCodeIndexConsistency = "ERR_501_INDEX_CONSISTENCY"
	ErrCodeBuildInProgress  = "ERR_502_BUILD_IN_PROGRESS"
	ErrCodeBuildFailed      = "ERR_503_BUILD_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryBuild
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryQuery
	case '4':
		return CategoryValidation
	default:
		return CategoryBuild
	}
}

// severityFromCode derives severity from error code.
// Consistency failures and malformed input abort the whole build.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexConsistency, ErrCodeMalformedInput, ErrCodeCorruptIndex:
		return SeverityFatal
	case ErrCodeBuildInProgress:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether operations failing with this code
// may be retried. Only transient chunk-store and tracker I/O qualifies.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeChunkStoreIO, ErrCodeVersionTracker:
		return true
	default:
		return false
	}
}
