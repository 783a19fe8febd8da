package parser

import (
	"fmt"
)

// ConversionError represents a file whose bytes could not be turned into documents
type ConversionError struct {
	OriginalError error
	Path          string
	Format        string
	Hint          string
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s conversion failed", e.Format)
	if e.OriginalError != nil {
		msg += fmt.Sprintf(": %v", e.OriginalError)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (file: %s)", e.Path)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.OriginalError
}

// UnknownFormatError is returned when a format name has no registered loader
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format: %s", e.Format)
}

// BindingError represents a malformed glob=format binding
type BindingError struct {
	Binding string
	Reason  string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("invalid pattern binding '%s': %s", e.Binding, e.Reason)
}
