package model

import (
	"errors"
	"math"
	"testing"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, m map[string]any) *Model {
	t.Helper()
	return New(record.FromMap(m))
}

func TestModel_GetSet(t *testing.T) {
	m := newModel(t, map[string]any{"user": map[string]any{"name": "ann"}})

	v, ok := m.Get("user.name")
	require.True(t, ok)
	assert.Equal(t, "ann", v)

	m.Set("user.address.city", "Oslo")
	v, ok = m.Get("user.address.city")
	require.True(t, ok)
	assert.Equal(t, "Oslo", v)

	_, ok = m.Get("user.missing")
	assert.False(t, ok)
}

func TestModel_EmptyPathIsIgnored(t *testing.T) {
	m := newModel(t, map[string]any{"list": []any{"a"}})
	fired := 0
	m.OnSet("", func(any, any) { fired++ })

	m.Set("", "x")
	m.Resync()

	assert.Equal(t, 0, fired)
	root, _ := m.Get("")
	assert.IsType(t, &record.Record{}, root, "the root record is left in place")
	assert.Equal(t, []string{"list"}, m.Snapshot().Keys())

	assert.True(t, errors.Is(m.Push("", "y"), tethererrors.ErrNotASequence))
	assert.True(t, errors.Is(m.RemoveRange("", 0, 1), tethererrors.ErrNotASequence))
	assert.False(t, m.Delete(""))
}

func TestModel_NilDataStartsEmpty(t *testing.T) {
	m := New(nil)
	assert.Equal(t, 0, m.Snapshot().Len())

	m.Set("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestModel_SetNotifiesOnChange(t *testing.T) {
	m := newModel(t, map[string]any{"name": "ann"})

	type call struct{ value, old any }
	var calls []call
	m.OnSet("name", func(value, old any) { calls = append(calls, call{value, old}) })

	m.Set("name", "bob")
	m.Set("name", "bob")
	m.Set("other", "x")

	assert.Equal(t, []call{{"bob", "ann"}}, calls)
}

func TestModel_SetFalsySuppression(t *testing.T) {
	tests := []struct {
		name     string
		initial  any
		value    any
		notifies bool
	}{
		{"empty string over text", "hello", "", false},
		{"zero over number", 5, 0, false},
		{"nil over text", "hello", nil, false},
		{"NaN over number", 1.5, math.NaN(), false},
		{"false over true", true, false, true},
		{"false over false", false, false, false},
		{"true over false", false, true, true},
		{"text over empty", "", "x", true},
		{"same number different type", 1, 1.0, false},
		{"empty sequence over absent", nil, []any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil)
			if tt.initial != nil {
				m.Set("v", tt.initial)
			}
			notified := false
			m.OnSet("v", func(any, any) { notified = true })

			m.Set("v", tt.value)
			assert.Equal(t, tt.notifies, notified)
		})
	}
}

func TestModel_SetWritesEvenWhenSilent(t *testing.T) {
	m := newModel(t, map[string]any{"name": "ann"})
	m.Set("name", "")

	v, ok := m.Get("name")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestModel_SetSequenceComparesContent(t *testing.T) {
	m := newModel(t, map[string]any{"list": []any{"a", "b"}})
	calls := 0
	m.OnSet("list", func(any, any) { calls++ })

	m.Set("list", []any{"a", "b"})
	assert.Equal(t, 0, calls)

	m.Set("list", []any{"a", "c"})
	assert.Equal(t, 1, calls)
}

func TestModel_VetoStopsLaterHandlers(t *testing.T) {
	m := New(nil)
	var order []string

	_, err := m.On(KindSet, "x", func(Event) bool { order = append(order, "first"); return false })
	require.NoError(t, err)
	m.OnSet("x", func(any, any) { order = append(order, "second") })

	m.Set("x", 1)
	assert.Equal(t, []string{"first"}, order)
}

func TestModel_OnUnknownKind(t *testing.T) {
	m := New(nil)
	_, err := m.On(Kind("bogus"), "x", func(Event) bool { return true })
	require.Error(t, err)
	assert.True(t, tethererrors.IsArgumentError(err))
}

func TestModel_Off(t *testing.T) {
	m := New(nil)
	calls := 0
	sub := m.OnSet("x", func(any, any) { calls++ })

	m.Set("x", 1)
	m.Off(sub)
	m.Set("x", 2)

	assert.Equal(t, 1, calls)
	assert.Empty(t, m.Subscribed(KindSet))
}

func TestModel_Merge(t *testing.T) {
	m := newModel(t, map[string]any{"user": map[string]any{"name": "ann", "age": 30}})
	var paths []string
	for _, p := range []string{"user.name", "user.age", "user.city"} {
		m.OnSet(p, func(any, any) { paths = append(paths, p) })
	}

	require.NoError(t, m.Merge(map[string]any{
		"user": map[string]any{"name": "bob", "city": "Oslo"},
	}))

	// maps flatten in sorted key order
	assert.Equal(t, []string{"user.city", "user.name"}, paths)

	v, _ := m.Get("user.age")
	assert.Equal(t, 30, v)
}

func TestModel_Assign(t *testing.T) {
	m := New(nil)

	require.NoError(t, m.Assign("a.b", 1))
	v, _ := m.Get("a.b")
	assert.Equal(t, 1, v)

	partial := record.New()
	partial.Set("c", "x")
	require.NoError(t, m.Assign(partial, nil))
	v, _ = m.Get("c")
	assert.Equal(t, "x", v)

	err := m.Assign(42, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tethererrors.ErrInvalidKey))
}

func TestModel_Push(t *testing.T) {
	m := newModel(t, map[string]any{"items": []any{"a"}})
	var pushed [][]any
	m.OnPush("items", func(values []any) { pushed = append(pushed, values) })

	require.NoError(t, m.Push("items", "b"))
	require.NoError(t, m.Push("items", []any{"c", "d"}))
	require.NoError(t, m.Push("items", "e", "f"))

	v, _ := m.Get("items")
	assert.Equal(t, []any{"a", "b", "c", "d", "e", "f"}, v)
	assert.Equal(t, [][]any{{"b"}, {"c", "d"}, {"e", "f"}}, pushed)
}

func TestModel_PushDoesNotPublishSet(t *testing.T) {
	m := newModel(t, map[string]any{"items": []any{}})
	sets := 0
	m.OnSet("items", func(any, any) { sets++ })

	require.NoError(t, m.Push("items", "a"))
	assert.Equal(t, 0, sets)
}

func TestModel_PushNotASequence(t *testing.T) {
	m := newModel(t, map[string]any{"name": "ann"})

	err := m.Push("name", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tethererrors.ErrNotASequence))

	err = m.Push("missing", "x")
	assert.True(t, errors.Is(err, tethererrors.ErrNotASequence))
}

func TestModel_RemoveRange(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		count     int
		want      []any
		wantIndex int
		wantCount int
	}{
		{"middle", 1, 2, []any{"a", "d"}, 1, 2},
		{"negative index", -2, 1, []any{"a", "b", "d"}, 2, 1},
		{"count past end", 2, 10, []any{"a", "b"}, 2, 2},
		{"index past end", 9, 1, []any{"a", "b", "c", "d"}, 4, 0},
		{"zero count", 0, 0, []any{"a", "b", "c", "d"}, 0, 0},
		{"negative beyond start", -10, 1, []any{"b", "c", "d"}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t, map[string]any{"list": []any{"a", "b", "c", "d"}})
			var got Event
			_, err := m.On(KindSplice, "list", func(e Event) bool { got = e; return true })
			require.NoError(t, err)

			require.NoError(t, m.RemoveRange("list", tt.index, tt.count, "extra"))

			v, _ := m.Get("list")
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.wantIndex, got.Index)
			assert.Equal(t, tt.wantCount, got.Count)
			assert.Equal(t, []any{"extra"}, got.Values)
		})
	}
}

func TestModel_Pop(t *testing.T) {
	m := newModel(t, map[string]any{"list": []any{1, 2, 3}})
	var index, count int
	m.OnSplice("list", func(i, c int, _ []any) { index, count = i, c })

	require.NoError(t, m.Pop("list"))
	v, _ := m.Get("list")
	assert.Equal(t, []any{1, 2}, v)
	assert.Equal(t, 2, index)
	assert.Equal(t, 1, count)

	empty := newModel(t, map[string]any{"list": []any{}})
	require.NoError(t, empty.Pop("list"))

	err := empty.Pop("nothing")
	assert.True(t, errors.Is(err, tethererrors.ErrNotASequence))
}

func TestModel_Delete(t *testing.T) {
	m := newModel(t, map[string]any{"user": map[string]any{"name": "ann", "age": 3}})
	var old any
	m.OnDelete("user.name", func(o any) { old = o })

	assert.True(t, m.Delete("user.name"))
	assert.Equal(t, "ann", old)

	_, ok := m.Get("user.name")
	assert.False(t, ok)

	assert.False(t, m.Delete("user.name"))
	assert.False(t, m.Delete("nope.deep"))
	assert.False(t, m.Delete(""))
}

func TestModel_Resync(t *testing.T) {
	m := newModel(t, map[string]any{"a": "x", "b": ""})
	var seen []string
	m.OnSet("b", func(v, old any) {
		assert.Nil(t, old)
		seen = append(seen, "b="+v.(string))
	})
	m.OnSet("a", func(v, old any) {
		assert.Nil(t, old)
		seen = append(seen, "a="+v.(string))
	})
	m.OnSet("missing", func(any, any) { seen = append(seen, "missing") })

	m.Resync()
	assert.Equal(t, []string{"b=", "a=x"}, seen)
}

func TestModel_ResyncEmptyRecord(t *testing.T) {
	m := New(nil)
	called := false
	m.OnSet("a", func(any, any) { called = true })

	m.Resync()
	assert.False(t, called)
}

func TestModel_HandlerMayMutate(t *testing.T) {
	m := New(nil)
	m.OnSet("celsius", func(v, _ any) {
		m.Set("fahrenheit", v.(int)*9/5+32)
	})

	m.Set("celsius", 100)
	v, _ := m.Get("fahrenheit")
	assert.Equal(t, 212, v)
}

func TestModel_SnapshotIsDeep(t *testing.T) {
	m := newModel(t, map[string]any{"list": []any{"a"}})
	snap := m.Snapshot()

	require.NoError(t, m.Push("list", "b"))
	v, _ := snap.Get("list")
	assert.Equal(t, []any{"a"}, v)
}
