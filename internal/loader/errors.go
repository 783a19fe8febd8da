package loader

import (
	"fmt"

	"github.com/kfreiman/docloader/internal/document"
)

// PatternError represents a glob pattern that failed to compile
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ParseError represents a loader failure on a single task
type ParseError struct {
	Path document.Path
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse failed for %s", e.Path)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResourceNotFoundError is returned when the load root does not resolve
type ResourceNotFoundError struct {
	Path document.Path
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

// ConfigError represents an invalid loader configuration
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid config %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
