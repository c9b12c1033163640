package htmltree

import (
	"strings"
	"sync"

	"github.com/conneroisu/tether/internal/emitter"
	"github.com/conneroisu/tether/internal/node"
	"golang.org/x/net/html"
)

// Element implements node.Node and node.Scroller for one html.Node.
type Element struct {
	doc  *Document
	node *html.Node

	eventsOnce sync.Once
	events     *emitter.Emitter[*node.Event]

	scrollMu     sync.Mutex
	scrollTop    float64
	scrollHeight float64
	clientHeight float64
}

var (
	_ node.Node     = (*Element)(nil)
	_ node.Scroller = (*Element)(nil)
)

// HTMLNode returns the underlying html.Node.
func (e *Element) HTMLNode() *html.Node { return e.node }

// Tag returns the lower-case element name.
func (e *Element) Tag() string { return e.node.Data }

// Attributes returns the attributes in document order.
func (e *Element) Attributes() []node.Attribute {
	attrs := make([]node.Attribute, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		attrs = append(attrs, node.Attribute{Name: a.Key, Value: a.Val})
	}
	return attrs
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, appending it when absent.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Key != name {
			attrs = append(attrs, a)
		}
	}
	e.node.Attr = attrs
}

// Parent returns the enclosing element, or nil at the top of the tree.
func (e *Element) Parent() node.Node {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Children returns the child elements. Text and comments are skipped.
func (e *Element) Children() []node.Node {
	var children []node.Node
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.wrap(c))
		}
	}
	return children
}

// Text concatenates every descendant text node.
func (e *Element) Text() string {
	var text strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(e.node)
	return text.String()
}

// InnerHTML serialises the children. Text inside raw text elements such as
// script is written unescaped, matching how it was parsed.
func (e *Element) InnerHTML() string {
	var result strings.Builder
	raw := rawText[e.node.Data]
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if raw && c.Type == html.TextNode {
			result.WriteString(c.Data)
			continue
		}
		_ = html.Render(&result, c)
	}
	return result.String()
}

var rawText = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"xmp":       true,
}

// OuterHTML serialises the element itself.
func (e *Element) OuterHTML() string {
	var result strings.Builder
	_ = html.Render(&result, e.node)
	return result.String()
}

// SetInnerHTML replaces the children with markup parsed in the context of e.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := e.parse(markup)
	if err != nil {
		return err
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// AppendHTML parses markup and appends it after the last child.
func (e *Element) AppendHTML(markup string) error {
	return e.InsertHTMLBefore(nil, markup)
}

// InsertHTMLBefore parses markup and inserts it before ref. A ref that is
// not a child of e appends instead.
func (e *Element) InsertHTMLBefore(ref node.Node, markup string) error {
	nodes, err := e.parse(markup)
	if err != nil {
		return err
	}

	var before *html.Node
	if r, ok := ref.(*Element); ok && r != nil && r.node.Parent == e.node {
		before = r.node
	}
	for _, n := range nodes {
		e.node.InsertBefore(n, before)
	}
	return nil
}

// RemoveChild detaches child. Nodes that are not children of e are ignored.
func (e *Element) RemoveChild(child node.Node) {
	c, ok := child.(*Element)
	if !ok || c == nil || c.node.Parent != e.node {
		return
	}
	e.node.RemoveChild(c.node)
	e.doc.forget(c.node)
}

func (e *Element) parse(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), e.node)
}

func (e *Element) listeners() *emitter.Emitter[*node.Event] {
	e.eventsOnce.Do(func() {
		e.events = emitter.New[*node.Event]()
	})
	return e.events
}

// On subscribes handler to events of the given type on e.
func (e *Element) On(event string, handler func(*node.Event)) *emitter.Subscription {
	return e.listeners().Subscribe(event, func(ev *node.Event) bool {
		handler(ev)
		return true
	})
}

// Off removes a subscription made with On.
func (e *Element) Off(sub *emitter.Subscription) {
	e.listeners().Unsubscribe(sub)
}

// Dispatch delivers ev to e and then to each ancestor until a listener
// stops propagation.
func (e *Element) Dispatch(ev *node.Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	for cur := e; cur != nil; {
		ev.CurrentTarget = cur
		cur.listeners().Publish(ev.Type, ev)
		if ev.Stopped() {
			return
		}
		p := cur.node.Parent
		if p == nil || p.Type != html.ElementNode {
			return
		}
		cur = e.doc.wrap(p)
	}
}

// Fire is a shorthand for dispatching a new event of type typ.
func (e *Element) Fire(typ string) *node.Event {
	ev := node.NewEvent(typ)
	e.Dispatch(ev)
	return ev
}
