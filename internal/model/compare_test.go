package model

import (
	"math"
	"testing"

	"github.com/conneroisu/tether/internal/record"
	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	var nilRecord *record.Record
	var nilSlice []any

	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"0", true},
		{0, false},
		{int64(-1), true},
		{uint8(0), false},
		{0.0, false},
		{math.NaN(), false},
		{2.5, true},
		{[]any{}, true},
		{nilSlice, false},
		{record.New(), true},
		{nilRecord, false},
		{struct{}{}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.value), "Truthy(%#v)", tt.value)
	}
}

func TestSame(t *testing.T) {
	a := record.New()
	b := record.New()
	m := map[string]any{}

	assert.True(t, Same(nil, nil))
	assert.False(t, Same(nil, 0))
	assert.True(t, Same(1, 1.0))
	assert.False(t, Same(1, "1"))
	assert.True(t, Same("x", "x"))
	assert.True(t, Same(a, a))
	assert.False(t, Same(a, b))
	assert.True(t, Same(m, m))
	assert.False(t, Same(m, map[string]any{}))
}

func TestStringify(t *testing.T) {
	r := record.New()
	r.Set("b", 1)
	r.Set("a", "x")

	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"text", "text"},
		{42, "42"},
		{1.5, "1.5"},
		{true, "true"},
		{[]any{"a", 1, nil, []any{"b", "c"}}, "a,1,,b,c"},
		{r, `{"b":1,"a":"x"}`},
		{map[string]any{"z": 1, "y": 2}, `{"y":2,"z":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.value))
	}
}

func TestChanged_MappingsByIdentity(t *testing.T) {
	r := record.New()
	assert.False(t, Changed(r, r))
	assert.True(t, Changed(record.New(), r))
}
