// Package errors provides standardized error types and helpers for the PoleZero codebase.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// Sentinel errors for each pole-zero format failure. A *FormatError matches
// exactly one of these with errors.Is, in addition to ErrInvalidInput.
var (
	ErrUnterminatedBlock  = errors.New("unterminated instrument block")
	ErrNoDelimiterFound   = errors.New("no delimiter line found")
	ErrMissingDeclaration = errors.New("missing declaration")
	ErrMalformedTimestamp = errors.New("malformed timestamp field")
)

// FormatErrorKind classifies a pole-zero format failure.
type FormatErrorKind int

const (
	// UnterminatedBlock means the delimiter lines after the opening one do not pair up.
	UnterminatedBlock FormatErrorKind = iota + 1
	// NoDelimiterFound means the input has no opening delimiter line at all.
	NoDelimiterFound
	// MissingDeclaration means a block lacks its ZEROS or POLES line.
	MissingDeclaration
	// MalformedTimestamp means a START, END or CREATED field could not be parsed.
	MalformedTimestamp
)

func (k FormatErrorKind) sentinel() error {
	switch k {
	case UnterminatedBlock:
		return ErrUnterminatedBlock
	case NoDelimiterFound:
		return ErrNoDelimiterFound
	case MissingDeclaration:
		return ErrMissingDeclaration
	case MalformedTimestamp:
		return ErrMalformedTimestamp
	default:
		return ErrInvalidInput
	}
}

// String returns the human-readable name of the kind.
func (k FormatErrorKind) String() string {
	return k.sentinel().Error()
}

// FormatError reports a pole-zero file that violates the text format.
type FormatError struct {
	Kind   FormatErrorKind
	Field  string // Keyword or header key involved (e.g., "POLES", "START")
	Block  int    // 1-based instrument block, 0 when not tied to a block
	Line   int    // 1-based source line, 0 when unknown
	Detail string // Extra context such as the offending value
	Err    error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString("pz: ")
	switch {
	case e.Kind == MissingDeclaration && e.Field != "":
		fmt.Fprintf(&sb, "missing %s declaration", e.Field)
	case e.Kind == MalformedTimestamp && e.Field != "":
		fmt.Fprintf(&sb, "malformed timestamp field %s", e.Field)
	default:
		sb.WriteString(e.Kind.String())
	}
	if e.Block > 0 {
		fmt.Fprintf(&sb, " in block %d", e.Block)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// Is reports whether target is the sentinel for this error's kind or ErrInvalidInput.
func (e *FormatError) Is(target error) bool {
	return target == e.Kind.sentinel() || target == ErrInvalidInput
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "file", "instrument")
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
	Operation string // Operation being performed (e.g., "read", "open")
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
	Format  string // Format being parsed (e.g., "PZ", "config")
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

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewFormat creates a FormatError of the given kind.
func NewFormat(kind FormatErrorKind, detail string) *FormatError {
	return &FormatError{
		Kind:   kind,
		Detail: detail,
	}
}

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
