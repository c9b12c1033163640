package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := NewConfigError(CodeUnknownMethod, "method is not defined").
		WithContext("method", "save").
		WithContext("attribute", "n-on")

	assert.Equal(t, "[UNKNOWN_METHOD] method is not defined (attribute=n-on method=save)", err.Error())

	wrapped := NewIOError(CodeFileNotFound, "cannot read", errors.New("no such file"))
	assert.Equal(t, "[FILE_NOT_FOUND] cannot read: no such file", wrapped.Error())
}

func TestError_IsMatchesTypeAndCode(t *testing.T) {
	err := fmt.Errorf("bind: %w", NotASequence("todos", "x"))

	assert.True(t, errors.Is(err, ErrNotASequence))
	assert.False(t, errors.Is(err, ErrInvalidKey))
	assert.True(t, IsTypeError(err))
	assert.False(t, IsConfigError(err))

	// same code, different type
	other := NewConfigError(CodeNotASequence, "")
	assert.False(t, errors.Is(other, ErrNotASequence))
}

func TestError_Predicates(t *testing.T) {
	assert.True(t, IsConfigError(NewConfigError(CodeMissingView, "")))
	assert.True(t, IsArgumentError(NewArgumentError(CodeInvalidKey, "")))
	assert.False(t, IsArgumentError(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, CodeFileNotFound, "x"))

	inner := NewValidationError(CodeParseFailed, "bad").WithContext("file", "a.yml")
	err := WrapIO(inner, CodeFileNotFound, "cannot load model")

	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "a.yml", err.Context["file"])
	assert.Equal(t, ErrorTypeIO, err.Type)
	assert.Equal(t, inner, err.Unwrap())
}

func TestGetErrorContext(t *testing.T) {
	ctx := GetErrorContext(NewArgumentError(CodeInvalidKey, "").WithContext("key", 3))
	assert.Equal(t, map[string]interface{}{"key": 3, "type": "argument", "code": CodeInvalidKey}, ctx)

	ctx = GetErrorContext(errors.New("plain"))
	assert.Equal(t, "unknown", ctx["type"])
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors(nil, nil))

	one := errors.New("one")
	assert.Same(t, one, CombineErrors(nil, one))

	two := errors.New("two")
	err := CombineErrors(one, nil, two)
	require.Error(t, err)
	assert.True(t, errors.Is(err, one))
	assert.True(t, errors.Is(err, two))
	assert.Contains(t, err.Error(), "2 errors occurred")

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorTypeInternal, te.Type)
	assert.Equal(t, []string{"one", "two"}, te.Context["errors"])
}

func TestCombineErrors_KeepsSharedKind(t *testing.T) {
	a := NewConfigError(CodeInvalidConfig, "bad port")
	b := NewConfigError(CodeInvalidConfig, "bad format")

	err := CombineErrors(a, b)
	assert.ErrorIs(t, err, &Error{Type: ErrorTypeConfig, Code: CodeInvalidConfig})
	assert.True(t, IsConfigError(err))

	mixed := CombineErrors(a, NewArgumentError(CodeInvalidKey, "bad key"))
	assert.False(t, IsConfigError(mixed))
	var te *Error
	require.ErrorAs(t, mixed, &te)
	assert.Equal(t, ErrorTypeInternal, te.Type)
	assert.Equal(t, "MULTIPLE_ERRORS", te.Code)
}

func TestSuggest(t *testing.T) {
	err := NewConfigError(CodeUnknownMethod, "method is not defined").WithContext("method", "sav")
	suggestions := Suggest(err, &SuggestionContext{Methods: []string{"load", "save"}})
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Did you mean 'save'?", suggestions[1].Title)

	err = NewConfigError(CodeUnknownTemplate, "").WithContext("id", "row")
	suggestions = Suggest(err, nil)
	require.Len(t, suggestions, 1)
	assert.Contains(t, suggestions[0].Example, `id="row"`)

	assert.Nil(t, Suggest(errors.New("plain"), nil))
	assert.Nil(t, Suggest(NewTypeError(CodeNotASequence, ""), nil))
}

func TestEnhance(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, Enhance(plain, nil))

	base := NewConfigError(CodeInvalidDirectiveValue, "malformed directive value").
		WithContext("usage", "event,method")
	err := Enhance(base, nil)

	var enhanced *EnhancedError
	require.True(t, errors.As(err, &enhanced))
	assert.True(t, errors.Is(err, ErrInvalidDirectiveValue))
	assert.Contains(t, err.Error(), "Suggestions:")
	assert.Contains(t, err.Error(), "Example: event,method")
}
