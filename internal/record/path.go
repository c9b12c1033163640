package record

import (
	"sort"
	"strconv"
	"strings"
)

// Entry is one leaf produced by Flatten.
type Entry struct {
	Path  string
	Value any
}

// Split breaks a dot path into its segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Join builds a dot path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, ".")
}

// Get reads the value addressed by path inside data. It returns false as
// soon as a segment is missing or its parent cannot be traversed. A stored
// nil is reported as absent.
func Get(data any, path string) (any, bool) {
	cur := data
	for _, seg := range Split(path) {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Set writes value at path inside data, creating an empty Record for every
// missing or non-container intermediate segment. data must be a *Record or
// a map[string]any; anything else is left untouched. Sequence segments are
// assigned in place when the index is in range and ignored otherwise.
func Set(data any, path string, value any) {
	segs := Split(path)
	if len(segs) == 0 {
		return
	}

	cur := data
	for _, seg := range segs[:len(segs)-1] {
		next, ok := child(cur, seg)
		if !ok || !isContainer(next) {
			next = New()
			if !assign(cur, seg, next) {
				return
			}
		}
		cur = next
	}

	assign(cur, segs[len(segs)-1], value)
}

// Flatten expands nested Records and maps into dot-path leaves. Sequences
// are leaves. Outer keys come before the keys nested beneath them, Records
// are walked in insertion order and maps in sorted key order.
func Flatten(data any) []Entry {
	var out []Entry
	flatten(data, "", &out)
	return out
}

func flatten(data any, prefix string, out *[]Entry) {
	visit := func(k string, v any) {
		if isMapping(v) {
			flatten(v, prefix+k+".", out)
			return
		}
		*out = append(*out, Entry{Path: prefix + k, Value: v})
	}

	switch t := data.(type) {
	case *Record:
		t.Range(func(k string, v any) bool {
			visit(k, v)
			return true
		})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			visit(k, t[k])
		}
	}
}

// IsMapping reports whether v is a Record or a plain map.
func IsMapping(v any) bool {
	return isMapping(v)
}

func isMapping(v any) bool {
	switch t := v.(type) {
	case *Record:
		return t != nil
	case map[string]any:
		return t != nil
	default:
		return false
	}
}

func isContainer(v any) bool {
	if isMapping(v) {
		return true
	}
	_, ok := v.([]any)
	return ok
}

func child(cur any, seg string) (any, bool) {
	switch t := cur.(type) {
	case *Record:
		return t.Get(seg)
	case map[string]any:
		v, ok := t[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	default:
		return nil, false
	}
}

func assign(cur any, seg string, value any) bool {
	switch t := cur.(type) {
	case *Record:
		if t == nil {
			return false
		}
		t.Set(seg, value)
		return true
	case map[string]any:
		if t == nil {
			return false
		}
		t[seg] = value
		return true
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return false
		}
		t[i] = value
		return true
	default:
		return false
	}
}
