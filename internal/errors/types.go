// Package errors defines the structured error type shared by every tether
// package.
//
// Errors carry a Type (the category a caller branches on) and a Code (the
// precise condition). Two errors compare equal under errors.Is when both Type
// and Code match, so the package-level sentinels can be used directly:
//
//	if errors.Is(err, tethererrors.ErrNotASequence) { ... }
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeType       ErrorType = "type"
	ErrorTypeArgument   ErrorType = "argument"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	CodeMissingView           = "MISSING_VIEW"
	CodeMalformedDirective    = "MALFORMED_DIRECTIVE"
	CodeDuplicateDirective    = "DUPLICATE_DIRECTIVE"
	CodeUnknownTemplate       = "UNKNOWN_TEMPLATE"
	CodeUnknownFilter         = "UNKNOWN_FILTER"
	CodeUnknownMethod         = "UNKNOWN_METHOD"
	CodeInvalidDirectiveValue = "INVALID_DIRECTIVE_VALUE"
	CodeUnsupportedNode       = "UNSUPPORTED_NODE"
	CodeNotASequence          = "NOT_A_SEQUENCE"
	CodeInvalidKey            = "INVALID_KEY"
	CodeInvalidConfig         = "INVALID_CONFIG"
	CodeFileNotFound          = "FILE_NOT_FOUND"
	CodeParseFailed           = "PARSE_FAILED"
	CodeDirectiveFailed       = "DIRECTIVE_FAILED"
)

// Sentinels for errors.Is comparisons.
var (
	ErrMissingView           = &Error{Type: ErrorTypeConfig, Code: CodeMissingView}
	ErrMalformedDirective    = &Error{Type: ErrorTypeConfig, Code: CodeMalformedDirective}
	ErrDuplicateDirective    = &Error{Type: ErrorTypeConfig, Code: CodeDuplicateDirective}
	ErrUnknownTemplate       = &Error{Type: ErrorTypeConfig, Code: CodeUnknownTemplate}
	ErrUnknownFilter         = &Error{Type: ErrorTypeConfig, Code: CodeUnknownFilter}
	ErrUnknownMethod         = &Error{Type: ErrorTypeConfig, Code: CodeUnknownMethod}
	ErrInvalidDirectiveValue = &Error{Type: ErrorTypeConfig, Code: CodeInvalidDirectiveValue}
	ErrUnsupportedNode       = &Error{Type: ErrorTypeConfig, Code: CodeUnsupportedNode}
	ErrNotASequence          = &Error{Type: ErrorTypeType, Code: CodeNotASequence}
	ErrInvalidKey            = &Error{Type: ErrorTypeArgument, Code: CodeInvalidKey}
)

// Error is a structured error with context.
type Error struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		kv := make([]string, 0, len(keys))
		for _, k := range keys {
			kv = append(kv, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, "("+strings.Join(kv, " ")+")")
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause

	return e
}

// NewConfigError creates a configuration error. Configuration errors are
// raised at setup time and abort construction or registration.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewTypeError creates a type error.
func NewTypeError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeType,
		Code:    code,
		Message: message,
	}
}

// NewArgumentError creates an argument error.
func NewArgumentError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeArgument,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotASequence reports a sequence operation on a path that does not hold one.
func NotASequence(path string, got interface{}) *Error {
	return NewTypeError(CodeNotASequence, "path must hold a sequence").
		WithContext("path", path).
		WithContext("got", fmt.Sprintf("%T", got))
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeConfig
	}

	return false
}

// IsTypeError checks if an error is a type error.
func IsTypeError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeType
	}

	return false
}

// IsArgumentError checks if an error is an argument error.
func IsArgumentError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeArgument
	}

	return false
}
