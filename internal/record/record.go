// Package record provides the insertion-ordered Record that holds model
// state, and the dot-path accessor used to read, write and flatten it.
//
// Records keep key insertion order so that flattening a partial record into
// path writes is deterministic. Plain map[string]any values are accepted
// wherever a Record is, and are walked in sorted key order.
package record

import (
	"sort"
)

// Record is an insertion-ordered mapping from string keys to values. Values
// are scalars, nested *Record or map[string]any values, or []any sequences.
//
// The zero value is not usable; construct Records with New or FromMap.
type Record struct {
	keys   []string
	values map[string]any
}

// New creates an empty Record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// FromMap converts a plain map into a Record, recursively. Keys are inserted
// in sorted order since Go maps carry no order of their own. Nested maps,
// including maps inside sequences, become Records as well.
func FromMap(m map[string]any) *Record {
	r := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Set(k, normalize(m[k]))
	}
	return r
}

// Normalize converts plain maps, including maps nested in sequences, into
// Records. Other values are returned unchanged.
func Normalize(v any) any {
	return normalize(v)
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	if r == nil {
		return false
	}
	if _, exists := r.values[key]; !exists {
		return false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns a copy of the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Range calls fn for every key in insertion order until fn returns false.
func (r *Record) Range(fn func(key string, value any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.Keys() {
		v, ok := r.values[k]
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// ToMap converts the Record back into plain maps, recursively.
func (r *Record) ToMap() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = plain(r.values[k])
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of the Record. Sequences and nested containers
// are copied; scalars are shared.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := New()
	for _, k := range r.keys {
		out.Set(k, deepCopy(r.values[k]))
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
