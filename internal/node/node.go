// Package node defines the element tree capability the binder drives.
//
// The binder never touches a concrete document. Hosts supply an
// implementation of Node (see the htmltree package for one backed by
// golang.org/x/net/html), and directives only use the methods below.
// Implementations must return the same Node value for the same underlying
// element so that nodes can be compared with ==.
package node

import "github.com/conneroisu/tether/internal/emitter"

// Attribute is one name/value pair in document order.
type Attribute struct {
	Name  string
	Value string
}

// Node is an element in a mutable document tree.
type Node interface {
	// Tag returns the lower-case element name.
	Tag() string

	// Attributes returns the element attributes in document order.
	Attributes() []Attribute

	// Attr returns the value of an attribute and whether it is present.
	Attr(name string) (string, bool)

	// SetAttr adds or replaces an attribute.
	SetAttr(name, value string)

	// RemoveAttr removes an attribute if present.
	RemoveAttr(name string)

	// Parent returns the parent element, or nil at the top of the tree.
	Parent() Node

	// Children returns the element children in document order.
	Children() []Node

	// Text returns the concatenated text content.
	Text() string

	// InnerHTML serialises the children of the element.
	InnerHTML() string

	// SetInnerHTML replaces the children with parsed markup.
	SetInnerHTML(markup string) error

	// AppendHTML parses markup and appends the result as children.
	AppendHTML(markup string) error

	// InsertHTMLBefore parses markup and inserts the result before ref.
	// A nil ref, or one that is not a child, appends instead.
	InsertHTMLBefore(ref Node, markup string) error

	// RemoveChild detaches child. Nodes that are not children are ignored.
	RemoveChild(child Node)

	// Style returns an inline style property.
	Style(property string) string

	// SetStyle sets an inline style property.
	SetStyle(property, value string)

	// AddClass adds class names that are not present yet.
	AddClass(names ...string)

	// RemoveClass removes class names.
	RemoveClass(names ...string)

	// HasClass reports whether the class attribute contains name.
	HasClass(name string) bool

	// On registers an event listener.
	On(event string, handler func(*Event)) *emitter.Subscription

	// Off removes a listener registered with On.
	Off(sub *emitter.Subscription)

	// Dispatch delivers ev to this node and then its ancestors until
	// propagation is stopped.
	Dispatch(ev *Event)
}

// Scroller is implemented by nodes that expose scroll metrics.
type Scroller interface {
	ScrollTop() float64
	ScrollHeight() float64
	ClientHeight() float64
	SetScrollTop(top float64)
}

// Event is delivered to listeners registered with Node.On.
type Event struct {
	Type          string
	Target        Node
	CurrentTarget Node
	Detail        any

	stopped   bool
	prevented bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// StopPropagation prevents delivery to further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }
