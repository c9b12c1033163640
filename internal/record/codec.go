package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a YAML mapping into the Record, keeping document key
// order for this Record and every nested mapping.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	v, err := fromNode(node)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Record)
	if !ok {
		return fmt.Errorf("record: expected a mapping, got %s", kindName(node))
	}
	r.keys = decoded.keys
	r.values = decoded.values
	return nil
}

// MarshalYAML encodes the Record as an ordered YAML mapping.
func (r *Record) MarshalYAML() (interface{}, error) {
	return toNode(r)
}

// UnmarshalJSON decodes a JSON object into the Record, keeping key order.
// JSON is parsed through the YAML decoder, which accepts it as a subset.
func (r *Record) UnmarshalJSON(data []byte) error {
	return yaml.Unmarshal(data, r)
}

// MarshalJSON encodes the Record as a JSON object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("record: key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes YAML or JSON text into a Record.
func Parse(data []byte) (*Record, error) {
	r := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return r, nil
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, tethererrors.NewValidationError(tethererrors.CodeParseFailed, "cannot decode record").
			WithCause(err)
	}
	return r, nil
}

// Load reads a .yaml, .yml or .json file into a Record.
func Load(path string) (*Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, tethererrors.NewValidationError(tethererrors.CodeParseFailed, "unsupported record file extension").
			WithContext("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tethererrors.NewIOError(tethererrors.CodeFileNotFound, "cannot read record file", err).
			WithContext("path", path)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ParseValue decodes a single YAML value: a scalar, a flow sequence such as
// "[a, b]" or a mapping. Blank text decodes to the empty string.
func ParseValue(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, tethererrors.NewValidationError(tethererrors.CodeParseFailed, "cannot decode value").
			WithContext("text", text).
			WithCause(err)
	}
	return fromNode(&node)
}

func fromNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return New(), nil
		}
		return fromNode(node.Content[0])
	case yaml.AliasNode:
		return fromNode(node.Alias)
	case yaml.MappingNode:
		r := New()
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("record: line %d: %w", node.Content[i].Line, err)
			}
			v, err := fromNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			r.Set(key, v)
		}
		return r, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("record: line %d: %w", node.Line, err)
		}
		return v, nil
	}
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Record:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t == nil {
			return n, nil
		}
		for _, k := range t.keys {
			val, err := toNode(t.values[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, val)
		}
		return n, nil
	case map[string]any:
		return toNode(FromMap(t))
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			val, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			return kindName(node.Content[0])
		}
		return "empty document"
	default:
		return "node"
	}
}
