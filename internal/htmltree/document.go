// Package htmltree implements node.Node over golang.org/x/net/html.
//
// A Document owns a parsed tree and hands out one *Element per element
// node, so Elements compare by identity. Tree mutation is not synchronised:
// like a browser DOM, a Document is driven from one goroutine at a time.
package htmltree

import (
	"bytes"
	"io"
	"strings"
	"sync"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/node"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML tree.
type Document struct {
	// root is the node rendered by Render: a DocumentNode for full
	// documents, a detached container element for fragments.
	root     *html.Node
	fragment bool

	mu       sync.Mutex
	elements map[*html.Node]*Element
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, tethererrors.NewValidationError(tethererrors.CodeParseFailed, "failed to parse HTML document").
			WithCause(err)
	}
	return newDocument(root, false), nil
}

// ParseString is Parse over a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// ParseFragment parses markup as the content of a detached container
// element. Root returns that container and Render writes only its children.
func ParseFragment(markup string) (*Document, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, tethererrors.NewValidationError(tethererrors.CodeParseFailed, "failed to parse HTML fragment").
			WithCause(err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return newDocument(container, true), nil
}

func newDocument(root *html.Node, fragment bool) *Document {
	return &Document{
		root:     root,
		fragment: fragment,
		elements: make(map[*html.Node]*Element),
	}
}

// Root returns the top element: the <html> element of a document or the
// container of a fragment.
func (d *Document) Root() *Element {
	if d.fragment {
		return d.wrap(d.root)
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// GetElementByID returns the first element whose id is id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	root := d.Root()
	if root == nil {
		return nil
	}
	if n := node.FindByID(root, id); n != nil {
		return n.(*Element)
	}
	return nil
}

// Render writes the document markup.
func (d *Document) Render(w io.Writer) error {
	if !d.fragment {
		return html.Render(w, d.root)
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String returns the rendered markup, or the empty string on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Element returns the wrapper for an element node of this document.
func (d *Document) Element(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return d.wrap(n)
}

func (d *Document) wrap(n *html.Node) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// forget drops the wrappers of a detached subtree.
func (d *Document) forget(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		delete(d.elements, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}
