package format

import (
	"testing"

	"github.com/conneroisu/tether/internal/record"
	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	user := record.FromMap(map[string]any{
		"name": "ann",
		"age":  30,
		"address": map[string]any{
			"city": "Oslo",
		},
		"greet": func() string { return "hi" },
		"lazy":  func() any { return 7 },
	})

	tests := []struct {
		name string
		tmpl string
		data any
		want string
	}{
		{"simple key", "<li>{name}</li>", user, "<li>ann</li>"},
		{"number", "{name} is {age}", user, "ann is 30"},
		{"dotted path", "{address.city}", user, "Oslo"},
		{"escaped", "{{name}}", user, "{name}"},
		{"unknown left verbatim", "{missing}", user, "{missing}"},
		{"func string", "{greet}", user, "hi"},
		{"func any", "{lazy}", user, "7"},
		{"scalar item", "<li>{0}</li>", "a", "<li>a</li>"},
		{"sequence item", "{1}-{0}", []any{"x", "y"}, "y-x"},
		{"index out of range", "{2}", []any{"x"}, "{2}"},
		{"plain map", "{k}", map[string]any{"k": true}, "true"},
		{"no placeholders", "plain text", user, "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.tmpl, tt.data))
		})
	}
}

func TestExpandAll(t *testing.T) {
	assert.Equal(t, "<li>a</li><li>b</li>", ExpandAll("<li>{0}</li>", []any{"a", "b"}))
	assert.Equal(t, "", ExpandAll("<li>{0}</li>", nil))
}
