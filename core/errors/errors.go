// Package errors provides the error kinds shared by the aligner packages.
//
// Every typed error unwraps to one of the sentinels below so callers can
// branch with errors.Is without depending on the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a chapter, verse, alignment or token was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorrupt indicates stored alignment data that no longer matches its verse
	ErrCorrupt = errors.New("corrupt alignment data")
	// ErrUnsupported indicates an input shape the engine refuses to interpret
	ErrUnsupported = errors.New("unsupported")
	// ErrNoContext indicates there is no active verse reference
	ErrNoContext = errors.New("no active context")
)

// Side names which sentence of a verse a token belongs to.
type Side string

// Sentence sides.
const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "alignment", "token")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "OSIS", "reference")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// AlignmentDataError reports a token that could not be resolved against
// the verse baseline by (text, occurrence, occurrences).
type AlignmentDataError struct {
	Side        Side
	Text        string
	Occurrence  int
	Occurrences int
	Verse       int
	// InAlignment is set when the token came from an alignment ngram
	// rather than from the sentence itself.
	InAlignment bool
}

func (e *AlignmentDataError) Error() string {
	where := ""
	if e.InAlignment {
		where = " in alignment"
	}
	if e.Verse > 0 {
		return fmt.Sprintf("unexpected %s token %q (%d of %d)%s for verse %d",
			e.Side, e.Text, e.Occurrence, e.Occurrences, where, e.Verse)
	}
	return fmt.Sprintf("unexpected %s token %q (%d of %d)%s",
		e.Side, e.Text, e.Occurrence, e.Occurrences, where)
}

func (e *AlignmentDataError) Unwrap() error {
	return ErrInvalidInput
}

// OverlayError reports a suggestion the overlay engine refuses to render.
type OverlayError struct {
	Alignment  int // index of the confirmed alignment being rendered
	Suggestion int // index of the offending suggestion, -1 if none
	Reason     string
}

func (e *OverlayError) Error() string {
	if e.Suggestion >= 0 {
		return fmt.Sprintf("unsupported suggestion %d for alignment %d: %s", e.Suggestion, e.Alignment, e.Reason)
	}
	return fmt.Sprintf("unsupported suggestions for alignment %d: %s", e.Alignment, e.Reason)
}

func (e *OverlayError) Unwrap() error {
	return ErrUnsupported
}

// CorruptVerseError marks a verse whose stored alignments violate an invariant.
type CorruptVerseError struct {
	Chapter int
	Verse   int
	Reason  string
	Err     error
}

func (e *CorruptVerseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verse %d:%d is corrupt: %s: %v", e.Chapter, e.Verse, e.Reason, e.Err)
	}
	return fmt.Sprintf("verse %d:%d is corrupt: %s", e.Chapter, e.Verse, e.Reason)
}

// Unwrap matches both ErrCorrupt and the underlying cause.
func (e *CorruptVerseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorrupt, e.Err}
	}
	return []error{ErrCorrupt}
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// NewCorruptVerse creates a CorruptVerseError
func NewCorruptVerse(chapter, verse int, reason string) *CorruptVerseError {
	return &CorruptVerseError{
		Chapter: chapter,
		Verse:   verse,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
