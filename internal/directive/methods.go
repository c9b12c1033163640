package directive

import (
	"fmt"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
)

// Methods is the user-supplied table of named callbacks referenced from
// directive values. Each directive expects a specific function type.
type Methods map[string]any

// EventMethod handles an event for the on and delegate directives.
type EventMethod func(ev *node.Event)

// FilterFunc transforms a value before it is presented.
type FilterFunc func(value any) any

// Event returns the event handler registered as name.
func (m Methods) Event(name string) (EventMethod, error) {
	v, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case EventMethod:
		return fn, nil
	case func(*node.Event):
		return fn, nil
	case func():
		return func(*node.Event) { fn() }, nil
	default:
		return nil, mismatch(name, "func(*node.Event)", v)
	}
}

// Filter returns the filter registered as name.
func (m Methods) Filter(name string) (FilterFunc, error) {
	v, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if fn, ok := AsFilter(v); ok {
		return fn, nil
	}
	return nil, mismatch(name, "func(any) any", v)
}

// Has reports whether a method is registered as name.
func (m Methods) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// AsFilter converts the accepted filter shapes to a FilterFunc.
func AsFilter(v any) (FilterFunc, bool) {
	switch fn := v.(type) {
	case FilterFunc:
		return fn, fn != nil
	case func(any) any:
		return fn, fn != nil
	case func(string) string:
		return func(v any) any {
			return fn(model.Stringify(v))
		}, fn != nil
	default:
		return nil, false
	}
}

func (m Methods) lookup(name string) (any, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, tethererrors.NewConfigError(tethererrors.CodeUnknownMethod, "method is not defined").
			WithContext("method", name)
	}
	return v, nil
}

func mismatch(name, want string, got any) error {
	return tethererrors.NewConfigError(tethererrors.CodeInvalidDirectiveValue, "method has the wrong signature").
		WithContext("method", name).
		WithContext("want", want).
		WithContext("got", fmt.Sprintf("%T", got))
}
