package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with a type and code. Context already attached to a
// wrapped *Error is carried over.
func Wrap(err error, errType ErrorType, code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}

	var te *Error
	if errors.As(err, &te) {
		for k, v := range te.Context {
			wrapped.WithContext(k, v)
		}
	}

	return wrapped
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeIO, code, message)
}

// GetErrorContext flattens the context of err for structured logging.
func GetErrorContext(err error) map[string]interface{} {
	var te *Error
	if errors.As(err, &te) {
		context := make(map[string]interface{}, len(te.Context)+2)
		for k, v := range te.Context {
			context[k] = v
		}
		context["type"] = string(te.Type)
		context["code"] = te.Code
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// CollectErrors drops nil errors.
func CollectErrors(errs ...error) []error {
	var collected []error
	for _, err := range errs {
		if err != nil {
			collected = append(collected, err)
		}
	}
	return collected
}

// CombineErrors joins multiple errors. A single error is returned as is.
// When every error is an *Error of the same type and code the result keeps
// them, so errors.Is against the shared sentinel still matches; otherwise it
// is an internal MULTIPLE_ERRORS error. Context["errors"] lists the
// messages.
func CombineErrors(errs ...error) error {
	nonNil := CollectErrors(errs...)
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}

	combined := &Error{
		Type:    ErrorTypeInternal,
		Code:    "MULTIPLE_ERRORS",
		Message: fmt.Sprintf("%d errors occurred", len(nonNil)),
		Cause:   errors.Join(nonNil...),
	}
	if t, code, ok := sharedKind(nonNil); ok {
		combined.Type, combined.Code = t, code
	}

	messages := make([]string, len(nonNil))
	for i, err := range nonNil {
		messages[i] = err.Error()
	}
	return combined.WithContext("errors", messages)
}

func sharedKind(errs []error) (ErrorType, string, bool) {
	var first *Error
	for _, err := range errs {
		var te *Error
		if !errors.As(err, &te) {
			return "", "", false
		}
		if first == nil {
			first = te
			continue
		}
		if te.Type != first.Type || te.Code != first.Code {
			return "", "", false
		}
	}
	return first.Type, first.Code, true
}
