// Package model provides the observable Model: a Record addressed by dot
// paths whose mutations are published on per-kind change channels.
//
// Propagation is synchronous. Every leaf write publishes on its own, so a
// multi-key Merge is not atomic, and handlers may mutate the model again
// from inside a dispatch. The model performs no cycle detection; a handler
// that keeps writing a path it observes will recurse until the stack gives
// out, and avoiding that is the caller's job.
package model

import (
	"fmt"
	"sync"

	"github.com/conneroisu/tether/internal/emitter"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/record"
)

// Model wraps a Record and publishes its changes.
//
// The wrapped Record is owned by the Model once bound: writing to it
// directly skips change notification.
type Model struct {
	mu       sync.RWMutex
	data     *record.Record
	channels map[Kind]*emitter.Emitter[Event]
}

// New wraps data. A nil data starts from an empty Record.
func New(data *record.Record) *Model {
	if data == nil {
		data = record.New()
	}
	m := &Model{
		data:     data,
		channels: make(map[Kind]*emitter.Emitter[Event], len(Kinds)),
	}
	for _, k := range Kinds {
		m.channels[k] = emitter.New[Event]()
	}
	return m
}

// Get returns the value at path.
func (m *Model) Get(path string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return record.Get(m.data, path)
}

// Set writes value at path and publishes on the set channel when Changed
// says the write is meaningful. An empty path addresses no value, so Set
// ignores it and publishes nothing.
func (m *Model) Set(path string, value any) {
	if path == "" {
		return
	}
	m.mu.Lock()
	old, _ := record.Get(m.data, path)
	record.Set(m.data, path, value)
	m.mu.Unlock()

	if Changed(value, old) {
		m.channels[KindSet].Publish(path, Event{
			Kind:  KindSet,
			Path:  path,
			Value: value,
			Old:   old,
		})
	}
}

// Merge flattens partial (a *record.Record or map[string]any) into leaf
// paths and sets each of them in flatten order.
func (m *Model) Merge(partial any) error {
	if !record.IsMapping(partial) {
		return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "merge needs a record").
			WithContext("got", typeName(partial))
	}
	for _, e := range record.Flatten(partial) {
		m.Set(e.Path, e.Value)
	}
	return nil
}

// Assign accepts either a path string with a value, or a record of partial
// changes (value is then ignored). Any other key is an argument error.
func (m *Model) Assign(key any, value any) error {
	switch k := key.(type) {
	case string:
		m.Set(k, value)
		return nil
	default:
		if record.IsMapping(key) {
			return m.Merge(key)
		}
		return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "key must be a path or a record").
			WithContext("got", typeName(key))
	}
}

// Push appends values to the sequence at path and always publishes on the
// push channel. A single []any argument is appended element-wise.
func (m *Model) Push(path string, values ...any) error {
	if len(values) == 1 {
		if seq, ok := values[0].([]any); ok {
			values = seq
		}
	}
	appended := append([]any(nil), values...)

	m.mu.Lock()
	cur, _ := record.Get(m.data, path)
	seq, ok := cur.([]any)
	if !ok {
		m.mu.Unlock()
		return tethererrors.NotASequence(path, cur)
	}
	record.Set(m.data, path, append(seq, appended...))
	m.mu.Unlock()

	m.channels[KindPush].Publish(path, Event{
		Kind:   KindPush,
		Path:   path,
		Values: appended,
	})
	return nil
}

// RemoveRange removes count elements starting at index from the sequence at
// path. A negative index counts from the end. The published Index is the
// resolved one and Count is the number of elements actually removed; extra
// is handed to observers untouched and is not inserted into the sequence.
func (m *Model) RemoveRange(path string, index, count int, extra ...any) error {
	m.mu.Lock()
	cur, _ := record.Get(m.data, path)
	seq, ok := cur.([]any)
	if !ok {
		m.mu.Unlock()
		return tethererrors.NotASequence(path, cur)
	}

	n := len(seq)
	if index < 0 {
		index = n + index
	}
	index = clamp(index, 0, n)
	end := clamp(index+max(count, 0), index, n)

	next := make([]any, 0, n-(end-index))
	next = append(next, seq[:index]...)
	next = append(next, seq[end:]...)
	record.Set(m.data, path, next)
	m.mu.Unlock()

	m.channels[KindSplice].Publish(path, Event{
		Kind:   KindSplice,
		Path:   path,
		Index:  index,
		Count:  end - index,
		Values: extra,
	})
	return nil
}

// Pop removes the last element of the sequence at path.
func (m *Model) Pop(path string) error {
	return m.RemoveRange(path, -1, 1)
}

// Delete removes the value at path and publishes on the delete channel when
// something was removed.
func (m *Model) Delete(path string) bool {
	segs := record.Split(path)
	if len(segs) == 0 {
		return false
	}

	m.mu.Lock()
	var parent any = m.data
	if len(segs) > 1 {
		p, ok := record.Get(m.data, record.Join(segs[:len(segs)-1]...))
		if !ok {
			m.mu.Unlock()
			return false
		}
		parent = p
	}

	last := segs[len(segs)-1]
	old, _ := record.Get(parent, last)
	removed := false
	switch t := parent.(type) {
	case *record.Record:
		removed = t.Delete(last)
	case map[string]any:
		if _, ok := t[last]; ok {
			delete(t, last)
			removed = true
		}
	}
	m.mu.Unlock()

	if removed {
		m.channels[KindDelete].Publish(path, Event{
			Kind: KindDelete,
			Path: path,
			Old:  old,
		})
	}
	return removed
}

// Resync republishes the current value of every path subscribed on the set
// channel, with a nil previous value, so observers initialise against the
// current state. Absent paths are skipped and an empty record is a no-op.
func (m *Model) Resync() {
	m.mu.RLock()
	empty := m.data.Len() == 0
	m.mu.RUnlock()
	if empty {
		return
	}

	set := m.channels[KindSet]
	for _, path := range set.Keys() {
		if path == "" {
			continue
		}
		value, ok := m.Get(path)
		if !ok {
			continue
		}
		set.Publish(path, Event{
			Kind:  KindSet,
			Path:  path,
			Value: value,
		})
	}
}

// Snapshot returns a deep copy of the current record.
func (m *Model) Snapshot() *record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
