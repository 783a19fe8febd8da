package mcp

import (
	"errors"
	"fmt"

	"github.com/kfreiman/docloader/internal/storage"
)

// ValidationError represents input validation failure
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// SecurityError represents a request that tries to escape the storage root
type SecurityError struct {
	Type    string // e.g., "path_traversal", "null_byte"
	Details string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security violation (%s): %s", e.Type, e.Details)
}

// RetryableError is returned once every retry attempt has failed
type RetryableError struct {
	Err      error
	Attempts int
}

func (e *RetryableError) Error() string {
	msg := fmt.Sprintf("retryable error after %d attempts", e.Attempts)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is worth another attempt. Only transient
// storage failures qualify; parse, pattern and configuration errors are
// deterministic.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var storageErr *storage.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.IsRetryable()
	}
	return false
}
