package directive

import (
	"sync"
	"time"

	"github.com/conneroisu/tether/internal/emitter"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
)

// Timer is a pending callback created by a Clock.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Polling directives use it instead of the time
// package so tests can drive them.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the Clock backed by the time package.
var SystemClock Clock = systemClock{}

// Context is shared by every resolver call of one binding. Besides the
// binding inputs it carries per-element scratch state, which the binder
// resets before each element, and the cleanups registered by resolvers.
type Context struct {
	Model    *model.Model
	Root     node.Node
	Methods  Methods
	Registry *Registry
	Logger   logging.Logger
	Clock    Clock

	template    string
	hasTemplate bool
	filter      FilterFunc
	skip        bool

	mu       sync.Mutex
	cleanups []func()
	closed   bool
}

// Log returns the context logger, or a no-op logger when none is set.
func (c *Context) Log() logging.Logger {
	if c.Logger == nil {
		return logging.NewNopLogger()
	}
	return c.Logger
}

// Timers returns the context clock, or SystemClock when none is set.
func (c *Context) Timers() Clock {
	if c.Clock == nil {
		return SystemClock
	}
	return c.Clock
}

// Reset clears the per-element scratch state.
func (c *Context) Reset() {
	c.template = ""
	c.hasTemplate = false
	c.filter = nil
	c.skip = false
}

// SetTemplate stores the pending template for the current element.
func (c *Context) SetTemplate(tmpl string) {
	c.template = tmpl
	c.hasTemplate = true
}

// Template returns the pending template of the current element.
func (c *Context) Template() (string, bool) {
	return c.template, c.hasTemplate && c.template != ""
}

// SetFilter stores the pending filter for the current element.
func (c *Context) SetFilter(fn FilterFunc) {
	c.filter = fn
}

// TakeFilter returns the pending filter and clears it.
func (c *Context) TakeFilter() FilterFunc {
	fn := c.filter
	c.filter = nil
	return fn
}

// SkipChildren stops the binder from descending into the current element.
func (c *Context) SkipChildren() {
	c.skip = true
}

// ChildrenSkipped reports whether SkipChildren was called for the current
// element.
func (c *Context) ChildrenSkipped() bool {
	return c.skip
}

// Lookup finds an element by id anywhere in the tree that contains Root.
func (c *Context) Lookup(id string) node.Node {
	if c.Root == nil {
		return nil
	}
	top := c.Root
	for p := top.Parent(); p != nil; p = p.Parent() {
		top = p
	}
	return node.FindByID(top, id)
}

// Track releases sub when the context is closed and returns it.
func (c *Context) Track(sub *emitter.Subscription) *emitter.Subscription {
	if sub != nil {
		c.Defer(sub.Unsubscribe)
	}
	return sub
}

// Listen attaches an event listener to n that is removed on Close.
func (c *Context) Listen(n node.Node, event string, fn func(*node.Event)) *emitter.Subscription {
	return c.Track(n.On(event, fn))
}

// Defer registers fn to run on Close. After Close, fn runs immediately.
func (c *Context) Defer(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fn()
		return
	}
	c.cleanups = append(c.cleanups, fn)
	c.mu.Unlock()
}

// Tracked returns the number of pending cleanups.
func (c *Context) Tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cleanups)
}

// Close runs the registered cleanups in reverse order. Later calls do
// nothing.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cleanups := c.cleanups
	c.cleanups = nil
	c.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Closed reports whether Close has run.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
