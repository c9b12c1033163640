package node

import "reflect"

// IsNil reports whether n is nil or a nil pointer wrapped in the interface,
// as returned by lookups such as GetElementByID that miss.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Walk visits root and its descendants breadth-first. Returning false from
// fn skips the children of that node; the rest of the walk continues.
func Walk(root Node, fn func(n Node) bool) {
	if IsNil(root) {
		return
	}
	queue := []Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if fn(n) {
			queue = append(queue, n.Children()...)
		}
	}
}

// FindByID returns the first node under root (root included) whose id
// attribute equals id.
func FindByID(root Node, id string) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if v, ok := n.Attr("id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Closest walks from n up to, and including, stop and returns the first
// node for which match is true.
func Closest(n, stop Node, match func(Node) bool) Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if match(cur) {
			return cur
		}
		if cur == stop {
			break
		}
	}
	return nil
}

var defaultDisplay = map[string]string{
	"address":    "block",
	"article":    "block",
	"aside":      "block",
	"blockquote": "block",
	"body":       "block",
	"dd":         "block",
	"details":    "block",
	"dialog":     "block",
	"div":        "block",
	"dl":         "block",
	"dt":         "block",
	"fieldset":   "block",
	"figure":     "block",
	"footer":     "block",
	"form":       "block",
	"h1":         "block",
	"h2":         "block",
	"h3":         "block",
	"h4":         "block",
	"h5":         "block",
	"h6":         "block",
	"header":     "block",
	"hr":         "block",
	"html":       "block",
	"main":       "block",
	"nav":        "block",
	"ol":         "block",
	"p":          "block",
	"pre":        "block",
	"section":    "block",
	"summary":    "block",
	"ul":         "block",
	"li":         "list-item",
	"table":      "table",
	"caption":    "table-caption",
	"thead":      "table-header-group",
	"tbody":      "table-row-group",
	"tfoot":      "table-footer-group",
	"tr":         "table-row",
	"td":         "table-cell",
	"th":         "table-cell",
	"col":        "table-column",
	"colgroup":   "table-column-group",
	"button":     "inline-block",
	"input":      "inline-block",
	"select":     "inline-block",
	"textarea":   "inline-block",
}

// DefaultDisplay returns the display value an element of tag has when no
// style hides it.
func DefaultDisplay(tag string) string {
	if d, ok := defaultDisplay[tag]; ok {
		return d
	}
	return "inline"
}
