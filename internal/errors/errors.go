package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the codescribe analysis pipeline
type ErrorType string

const (
	// Analysis errors
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeManifest  ErrorType = "manifest"
	ErrorTypeDiscovery ErrorType = "discovery"
	ErrorTypeTimeout   ErrorType = "timeout"

	// Generation errors
	ErrorTypeGeneration ErrorType = "generation"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// ParseError represents a source file the parser could not turn into a
// usable syntax tree.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error; line and column are 1-based,
// zero when unknown.
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error in %s: %v", e.FilePath, e.Underlying)
	}
	if e.Token == "" {
		return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("parse error at %s:%d:%d (near %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ManifestError represents a missing or malformed project manifest.
// Analysis continues with empty dependency and script maps.
type ManifestError struct {
	Type       ErrorType
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewManifestError creates a new manifest error
func NewManifestError(path string, err error) *ManifestError {
	return &ManifestError{
		Type:       ErrorTypeManifest,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s unreadable: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ManifestError) Unwrap() error {
	return e.Underlying
}

// DiscoveryError is raised when the project root itself cannot be walked.
// It is the only error that aborts an analysis run.
type DiscoveryError struct {
	Type       ErrorType
	Root       string
	Underlying error
	Timestamp  time.Time
}

// NewDiscoveryError creates a new discovery error
func NewDiscoveryError(root string, err error) *DiscoveryError {
	return &DiscoveryError{
		Type:       ErrorTypeDiscovery,
		Root:       root,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot discover files under %s: %v", e.Root, e.Underlying)
}

// Unwrap returns the underlying error
func (e *DiscoveryError) Unwrap() error {
	return e.Underlying
}

// TimeoutError records a file whose analysis overran the per-file timeout.
type TimeoutError struct {
	Type      ErrorType
	FilePath  string
	Limit     time.Duration
	Timestamp time.Time
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(path string, limit time.Duration) *TimeoutError {
	return &TimeoutError{
		Type:      ErrorTypeTimeout,
		FilePath:  path,
		Limit:     limit,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis exceeded the %v file timeout", e.Limit)
}

// GenerationError wraps a failure of the external text generation step for
// one workflow page.
type GenerationError struct {
	Type       ErrorType
	Workflow   string
	Page       string
	Underlying error
	Timestamp  time.Time
}

// NewGenerationError creates a new generation error
func NewGenerationError(workflow, page string, err error) *GenerationError {
	return &GenerationError{
		Type:       ErrorTypeGeneration,
		Workflow:   workflow,
		Page:       page,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Page == "" {
		return fmt.Sprintf("%s workflow generation failed: %v", e.Workflow, e.Underlying)
	}
	return fmt.Sprintf("%s workflow generation failed for page %s: %v", e.Workflow, e.Page, e.Underlying)
}

// Unwrap returns the underlying error
func (e *GenerationError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, fs.ErrPermission) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Suggestion string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion attaches a "did you mean" hint
func (e *ConfigError) WithSuggestion(s string) *ConfigError {
	e.Suggestion = s
	return e
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrOrNil returns nil when no errors were collected.
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
