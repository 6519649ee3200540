package errors

import (
	"fmt"
)

// KBError is the structured error type for normakb.
// It carries the code, category, and severity used by the CLI and the
// build pipeline to decide whether to retry, abort, or warn.
type KBError struct {
	// Code is the unique error code (e.g., "ERR_401_MALFORMED_INPUT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Build, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *KBError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *KBError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with KBError.
func (e *KBError) Is(target error) bool {
	if t, ok := target.(*KBError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *KBError) WithDetail(key, value string) *KBError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new KBError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *KBError {
	return &KBError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a KBError from an existing error.
// The error's message becomes the KBError message.
func Wrap(code string, err error) *KBError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// MalformedInput creates an error for unparseable document structure.
// The build surfaces it to the caller with no partial chunk output.
func MalformedInput(message string, cause error) *KBError {
	return New(ErrCodeMalformedInput, message, cause)
}

// IndexConsistency creates an error for a unit mapped to multiple chunks.
// Fatal to the build; the previously published index stays live.
func IndexConsistency(message string) *KBError {
	return New(ErrCodeIndexConsistency, message, nil)
}

// BuildInProgress creates an error for a rejected concurrent build.
func BuildInProgress(docID string) *KBError {
	return New(ErrCodeBuildInProgress,
		fmt.Sprintf("a build for document %q is already in progress", docID), nil).
		WithDetail("document_id", docID)
}

// ChunkStoreIO creates a retryable chunk-store I/O error.
func ChunkStoreIO(message string, cause error) *KBError {
	return New(ErrCodeChunkStoreIO, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *KBError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a KBError with the Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if ke, ok := err.(*KBError); ok {
		return ke.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current build wholesale.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ke, ok := err.(*KBError); ok {
		return ke.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a KBError.
// Returns empty string if not a KBError.
func GetCode(err error) string {
	if ke, ok := err.(*KBError); ok {
		return ke.Code
	}
	return ""
}
