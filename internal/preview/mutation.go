package preview

import (
	"fmt"
	"strconv"
	"strings"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/htmltree"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
	"github.com/conneroisu/tether/internal/record"
)

// Op names a model operation.
type Op string

const (
	OpSet    Op = "set"
	OpMerge  Op = "merge"
	OpPush   Op = "push"
	OpPop    Op = "pop"
	OpRemove Op = "remove"
	OpDelete Op = "delete"
)

// Mutation is one model write, as sent to the preview API or given on the
// command line.
type Mutation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	// Index and Count apply to OpRemove. A nil Count removes one element;
	// an explicit zero removes none.
	Index int  `json:"index,omitempty"`
	Count *int `json:"count,omitempty"`
}

// Apply runs the mutation against m.
func (mu Mutation) Apply(m *model.Model) error {
	op := mu.Op
	if op == "" {
		op = OpSet
	}
	if mu.Path == "" && op != OpMerge {
		return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "mutation needs a path").
			WithContext("op", string(op))
	}
	value := record.Normalize(mu.Value)

	switch op {
	case OpSet:
		m.Set(mu.Path, value)
		return nil
	case OpMerge:
		if mu.Path == "" {
			return m.Merge(value)
		}
		if !record.IsMapping(value) {
			return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "merge needs a record").
				WithContext("path", mu.Path)
		}
		for _, e := range record.Flatten(value) {
			m.Set(record.Join(mu.Path, e.Path), e.Value)
		}
		return nil
	case OpPush:
		return m.Push(mu.Path, value)
	case OpPop:
		return m.Pop(mu.Path)
	case OpRemove:
		count := 1
		if mu.Count != nil {
			count = *mu.Count
		}
		return m.RemoveRange(mu.Path, mu.Index, count)
	case OpDelete:
		m.Delete(mu.Path)
		return nil
	default:
		return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "unknown mutation").
			WithContext("op", string(op))
	}
}

// ParseAssignment parses "path=value" for op. The value is decoded as YAML,
// so "3" is a number, "true" a boolean and "[a, b]" a sequence. For OpRemove
// the value is "index" or "index,count" in decimal; OpPop and OpDelete take
// a bare path.
func ParseAssignment(op Op, text string) (Mutation, error) {
	mu := Mutation{Op: op}

	if op == OpPop || op == OpDelete {
		mu.Path = strings.TrimSpace(text)
		if mu.Path == "" {
			return mu, badAssignment(op, text)
		}
		return mu, nil
	}

	path, raw, ok := strings.Cut(text, "=")
	mu.Path = strings.TrimSpace(path)
	if !ok || mu.Path == "" {
		return mu, badAssignment(op, text)
	}

	if op == OpRemove {
		idx, count, hasCount := strings.Cut(raw, ",")
		var err error
		if mu.Index, err = strconv.Atoi(strings.TrimSpace(idx)); err != nil {
			return mu, badAssignment(op, text)
		}
		if hasCount {
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil {
				return mu, badAssignment(op, text)
			}
			mu.Count = &n
		}
		return mu, nil
	}

	value, err := record.ParseValue(raw)
	if err != nil {
		return mu, err
	}
	mu.Value = value
	return mu, nil
}

func badAssignment(op Op, text string) error {
	usage := "path=value"
	switch op {
	case OpRemove:
		usage = "path=index[,count]"
	case OpPop, OpDelete:
		usage = "path"
	}
	return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, fmt.Sprintf("malformed %s argument", op)).
		WithContext("text", text).
		WithContext("usage", usage)
}

// RemoteEvent is a browser event replayed on the server-side document.
// Value and Checked carry the control state at the time of the event.
type RemoteEvent struct {
	Target    string   `json:"target"`
	Type      string   `json:"type"`
	Value     *string  `json:"value,omitempty"`
	Checked   *bool    `json:"checked,omitempty"`
	Selected  []string `json:"selected,omitempty"`
	ScrollTop *float64 `json:"scrollTop,omitempty"`
}

func (ev RemoteEvent) applyTo(el *htmltree.Element) {
	if ev.Value != nil {
		el.SetAttr("value", *ev.Value)
	}
	if ev.Checked != nil {
		if *ev.Checked {
			el.SetAttr("checked", "")
		} else {
			el.RemoveAttr("checked")
		}
	}
	if ev.Selected != nil && el.Tag() == "select" {
		selected := make(map[string]bool, len(ev.Selected))
		for _, v := range ev.Selected {
			selected[v] = true
		}
		for _, opt := range options(el) {
			v, ok := opt.Attr("value")
			if !ok {
				v = strings.TrimSpace(opt.Text())
			}
			if selected[v] {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	}
	if ev.ScrollTop != nil {
		el.SetScrollTop(*ev.ScrollTop)
	}
}

func options(sel node.Node) []node.Node {
	var out []node.Node
	node.Walk(sel, func(n node.Node) bool {
		if n.Tag() == "option" {
			out = append(out, n)
		}
		return true
	})
	return out
}
