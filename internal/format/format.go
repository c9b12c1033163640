// Package format expands the {key} placeholders used by repeat templates.
package format

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/record"
)

var placeholder = regexp.MustCompile(`\{?\{([^{}]+)}}?`)

// Expand substitutes {key} placeholders in tmpl with values from data.
//
// data may be a record or map (keys can be dot paths), a sequence (keys are
// indexes) or a single scalar, which is addressed as {0}. {{key}} produces
// a literal {key}. Placeholders without a value are left as written.
// Values of type func() any or func() string are called.
func Expand(tmpl string, data any) string {
	lookup := resolver(data)

	return placeholder.ReplaceAllStringFunc(tmpl, func(tag string) string {
		name := placeholder.FindStringSubmatch(tag)[1]
		if strings.HasPrefix(tag, "{{") && strings.HasSuffix(tag, "}}") {
			return "{" + name + "}"
		}

		v, ok := lookup(name)
		if !ok {
			return tag
		}
		switch fn := v.(type) {
		case func() any:
			v = fn()
		case func() string:
			v = fn()
		}
		return model.Stringify(v)
	})
}

// ExpandAll expands tmpl once per item and concatenates the results.
func ExpandAll(tmpl string, items []any) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(Expand(tmpl, item))
	}
	return b.String()
}

func resolver(data any) func(string) (any, bool) {
	switch {
	case record.IsMapping(data):
		return func(name string) (any, bool) {
			return record.Get(data, name)
		}
	default:
		args, ok := data.([]any)
		if !ok {
			args = []any{data}
		}
		return func(name string) (any, bool) {
			i, err := strconv.Atoi(name)
			if err != nil || i < 0 || i >= len(args) {
				return nil, false
			}
			return args[i], true
		}
	}
}
