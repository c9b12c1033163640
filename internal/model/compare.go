package model

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/conneroisu/tether/internal/record"
	"github.com/spf13/cast"
)

// Truthy reports whether v counts as a meaningful value: nil, false, the
// empty string, numeric zero, NaN and nil pointers, maps or slices are not.
// Empty sequences and empty records are truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// Changed decides whether writing newValue over oldValue notifies observers.
//
// A new value that is not Truthy never notifies, except the boolean false.
// Writing "", 0 or nil is therefore silent even when the previous value
// differed. Bindings rely on this, do not "fix" it.
// Sequences compare by their stringified content, all other values by
// equality (identity for maps and records).
func Changed(newValue, oldValue any) bool {
	if !Truthy(newValue) {
		if b, ok := newValue.(bool); !ok || b {
			return false
		}
	}

	if seq, ok := newValue.([]any); ok {
		if oldSeq, ok := oldValue.([]any); ok {
			return Stringify(seq) != Stringify(oldSeq)
		}
		return true
	}

	return !Same(newValue, oldValue)
}

// Same reports strict equality. Numbers of different Go types are compared
// by value; maps, slices, pointers and funcs by identity.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Stringify renders v as text for display and for sequence comparison.
// Sequences join their elements with commas, nil becomes the empty string,
// records and maps are rendered as JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case *record.Record, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
