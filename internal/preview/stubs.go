package preview

import (
	"context"
	"strings"

	"github.com/conneroisu/tether/internal/directive"
	"github.com/conneroisu/tether/internal/directive/builtin"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/conneroisu/tether/internal/node"
)

// withStubs returns methods extended with a logging stub for every method
// named by an on, delegate, scroll or filter directive under root that
// methods does not define. Filters that name a registry helper are left
// alone.
func withStubs(root node.Node, reg *directive.Registry, methods directive.Methods, logger logging.Logger) directive.Methods {
	out := directive.Methods{}
	for k, v := range methods {
		out[k] = v
	}
	prefix := reg.Prefix()

	node.Walk(root, func(n node.Node) bool {
		for _, a := range n.Attributes() {
			name, ok := strings.CutPrefix(a.Name, prefix)
			if !ok {
				continue
			}
			method, kind := referencedMethod(name, a.Value)
			if method == "" || out.Has(method) {
				continue
			}
			switch kind {
			case "event":
				out[method] = eventStub(method, logger)
			case "scroll":
				out[method] = scrollStub(method, logger)
			case "filter":
				if _, ok := reg.HelperFunc(method); !ok {
					out[method] = directive.FilterFunc(func(v any) any { return v })
				}
			}
		}
		return true
	})
	return out
}

func referencedMethod(directiveName, value string) (method, kind string) {
	parts := strings.Split(value, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	switch {
	case directiveName == "on" && len(parts) == 2:
		return last, "event"
	case directiveName == "delegate" && len(parts) == 3:
		return last, "event"
	case directiveName == "scroll":
		return strings.TrimSpace(value), "scroll"
	case directiveName == "filter":
		return strings.TrimSpace(value), "filter"
	}
	return "", ""
}

func eventStub(name string, logger logging.Logger) directive.EventMethod {
	return func(e *node.Event) {
		id := ""
		if e.Target != nil {
			id, _ = e.Target.Attr("id")
		}
		logger.Info(context.Background(), "method called",
			"method", name,
			"event", e.Type,
			"target", id)
	}
}

func scrollStub(name string, logger logging.Logger) builtin.ScrollMethod {
	return func(h *builtin.ScrollHandle) {
		logger.Debug(context.Background(), "scroll method called",
			"method", name,
			"direction", string(h.Direction))
	}
}
