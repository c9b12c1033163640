// Package directive holds the directive registry and the context handed to
// directive resolvers while a view is bound.
//
// A directive is an attribute (prefixed, "n-" by default) whose resolver
// runs once per element during binding. Resolvers usually subscribe to the
// model and attach node listeners through the Context so the binder can
// release them later.
package directive

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/node"
)

// DefaultPrefix is prepended to every registered directive name.
const DefaultPrefix = "n-"

// Priority orders directives on the same element, highest first.
type Priority int

const (
	Low    Priority = 200
	Normal Priority = 400
	High   Priority = 600
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("%d", int(p))
	}
}

// ResolveFunc binds one directive attribute on one element
type ResolveFunc func(ctx *Context, value string, n node.Node, attr string) error

// Descriptor is a registered directive
type Descriptor struct {
	// Name is the prefixed attribute name, filled in on registration.
	Name     string
	Priority Priority
	Resolve  ResolveFunc
}

// Match is a directive attribute found on an element
type Match struct {
	Attr       string
	Value      string
	Descriptor Descriptor
}

// Registry maps prefixed attribute names to directives
type Registry struct {
	mu         sync.RWMutex
	prefix     string
	directives map[string]Descriptor
	helpers    map[string]FilterFunc
}

// Option configures a Registry
type Option func(*Registry)

// WithPrefix replaces the "n-" attribute prefix.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		r.prefix = prefix
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		prefix:     DefaultPrefix,
		directives: make(map[string]Descriptor),
		helpers:    make(map[string]FilterFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide registry. Importing the builtin package
// installs the standard directives into it.
var Default = NewRegistry()

// Register adds a directive to the Default registry.
func Register(names string, def any) error {
	return Default.Register(names, def)
}

// Prefix returns the attribute prefix.
func (r *Registry) Prefix() string {
	return r.prefix
}

// Register stores def under every "|"-separated name in names.
//
// def is a ResolveFunc, a function with the same signature, a Descriptor
// or a *Descriptor. A zero priority means Normal. Registration is all or
// nothing: when any name is already taken no name is stored.
func (r *Registry) Register(names string, def any) error {
	desc, err := toDescriptor(def)
	if err != nil {
		return err.WithContext("names", names)
	}

	var full []string
	for _, name := range strings.Split(names, "|") {
		name = strings.TrimSpace(name)
		if name == "" {
			return tethererrors.NewConfigError(tethererrors.CodeMalformedDirective, "directive name is empty").
				WithContext("names", names)
		}
		full = append(full, r.prefix+name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, name := range full {
		_, exists := r.directives[name]
		if exists || slices.Contains(full[:i], name) {
			return tethererrors.NewConfigError(tethererrors.CodeDuplicateDirective, "directive already registered").
				WithContext("name", name)
		}
	}
	for _, name := range full {
		d := desc
		d.Name = name
		r.directives[name] = d
	}
	return nil
}

// Handle registers fn with Normal priority.
func (r *Registry) Handle(names string, fn ResolveFunc) error {
	return r.Register(names, fn)
}

// HandlePriority registers fn with the given priority.
func (r *Registry) HandlePriority(names string, priority Priority, fn ResolveFunc) error {
	return r.Register(names, Descriptor{Priority: priority, Resolve: fn})
}

func toDescriptor(def any) (Descriptor, *tethererrors.Error) {
	var desc Descriptor
	switch d := def.(type) {
	case ResolveFunc:
		desc.Resolve = d
	case func(*Context, string, node.Node, string) error:
		desc.Resolve = d
	case Descriptor:
		desc = d
	case *Descriptor:
		if d != nil {
			desc = *d
		}
	default:
		return desc, tethererrors.NewConfigError(tethererrors.CodeMalformedDirective,
			"directive must be a resolve function or a descriptor").
			WithContext("got", fmt.Sprintf("%T", def))
	}

	if desc.Resolve == nil {
		return desc, tethererrors.NewConfigError(tethererrors.CodeMalformedDirective, "directive has no resolve function")
	}
	if desc.Priority == 0 {
		desc.Priority = Normal
	}
	return desc, nil
}

// Lookup returns the directive registered under the exact attribute name.
func (r *Registry) Lookup(attr string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.directives[attr]
	return d, ok
}

// Match returns the directive attributes of n ordered by descending
// priority. Attributes of equal priority keep their document order.
func (r *Registry) Match(n node.Node) []Match {
	var matches []Match
	for _, a := range n.Attributes() {
		if d, ok := r.Lookup(a.Name); ok {
			matches = append(matches, Match{Attr: a.Name, Value: a.Value, Descriptor: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Descriptor.Priority > matches[j].Descriptor.Priority
	})
	return matches
}

// Names returns every registered attribute name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.directives))
	for name := range r.directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns every registered directive sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, r.directives[name])
	}
	return out
}

// Helper registers a named filter usable by the filter directive.
// Registering a name again replaces the previous helper.
func (r *Registry) Helper(name string, fn FilterFunc) error {
	if name == "" || fn == nil {
		return tethererrors.NewConfigError(tethererrors.CodeMalformedDirective, "helper needs a name and a function").
			WithContext("name", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helpers[name] = fn
	return nil
}

// HelperFunc returns the helper registered under name.
func (r *Registry) HelperFunc(name string) (FilterFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.helpers[name]
	return fn, ok
}

// Helpers returns the registered helper names, sorted.
func (r *Registry) Helpers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
