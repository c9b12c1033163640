package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := FromMap(map[string]any{
		"user": map[string]any{
			"name": "Bob",
			"tags": []any{"a", "b"},
		},
		"count": 0,
		"plain": map[string]any{"inner": map[string]any{"deep": 1}},
	})

	tests := []struct {
		name     string
		path     string
		expected any
		found    bool
	}{
		{name: "top level", path: "count", expected: 0, found: true},
		{name: "nested", path: "user.name", expected: "Bob", found: true},
		{name: "sequence index", path: "user.tags.1", expected: "b", found: true},
		{name: "index out of range", path: "user.tags.5", found: false},
		{name: "non numeric index", path: "user.tags.x", found: false},
		{name: "missing intermediate", path: "nope.name", found: false},
		{name: "scalar intermediate", path: "user.name.first", found: false},
		{name: "missing leaf", path: "user.age", found: false},
		{name: "through converted map", path: "plain.inner.deep", expected: 1, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Get(data, tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, v)
			} else {
				assert.Nil(t, v)
			}
		})
	}
}

func TestGet_PlainMap(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": "c"}}
	v, ok := Get(data, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestSet_CreatesIntermediates(t *testing.T) {
	r := New()
	Set(r, "a.b.c", 1)

	v, ok := Get(r, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	a, _ := r.Get("a")
	assert.IsType(t, &Record{}, a)
}

func TestSet_ReplacesScalarIntermediate(t *testing.T) {
	r := New()
	r.Set("a", 5)
	Set(r, "a.b", "x")

	v, ok := Get(r, "a.b")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestSet_SequenceIndex(t *testing.T) {
	r := New()
	r.Set("list", []any{New(), New()})

	Set(r, "list.1.name", "second")
	v, ok := Get(r, "list.1.name")
	require.True(t, ok)
	assert.Equal(t, "second", v)

	Set(r, "list.9.name", "ignored")
	seq, _ := r.Get("list")
	assert.Len(t, seq, 2)
}

func TestSet_IgnoresNonContainerRoot(t *testing.T) {
	assert.NotPanics(t, func() {
		Set("scalar", "a.b", 1)
		Set(nil, "a", 1)
		Set(New(), "", 1)
	})
}

func TestFlatten_Order(t *testing.T) {
	inner := New()
	inner.Set("z", 1)
	inner.Set("a", 2)

	r := New()
	r.Set("second", "s")
	r.Set("nested", inner)
	r.Set("list", []any{1, 2})
	r.Set("plain", map[string]any{"y": true, "x": false})
	r.Set("empty", New())

	entries := Flatten(r)
	assert.Equal(t, []Entry{
		{Path: "second", Value: "s"},
		{Path: "nested.z", Value: 1},
		{Path: "nested.a", Value: 2},
		{Path: "list", Value: []any{1, 2}},
		{Path: "plain.x", Value: false},
		{Path: "plain.y", Value: true},
	}, entries)
}

func TestFlatten_NonMapping(t *testing.T) {
	assert.Empty(t, Flatten("x"))
	assert.Empty(t, Flatten(nil))
}

func TestSplitJoin(t *testing.T) {
	assert.Nil(t, Split(""))
	assert.Equal(t, []string{"a", "b"}, Split("a.b"))
	assert.Equal(t, "a.b.c", Join("a", "b", "c"))
}
