package builtin

import (
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/tether/internal/directive"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/node"
)

// ScrollInterval is how often a scroll directive samples the offset.
const ScrollInterval = 100 * time.Millisecond

// ScrollDirection describes how the content moved between two samples.
type ScrollDirection string

const (
	// ScrollUp means the content moved up: the scroll offset grew.
	ScrollUp ScrollDirection = "up"
	// ScrollDown means the content moved down: the scroll offset shrank.
	ScrollDown ScrollDirection = "down"
)

// ScrollMethod is called when the scroll offset of a watched element has
// changed. With the system clock it runs on a timer goroutine.
type ScrollMethod func(h *ScrollHandle)

// ScrollHandle is passed to a ScrollMethod.
type ScrollHandle struct {
	Direction ScrollDirection

	el node.Scroller
	w  *scrollWatcher
}

// AtBottom calls fn, when non-nil, if the viewport is within delta of the
// end of the content, and reports whether it is.
func (h *ScrollHandle) AtBottom(delta float64, fn func()) bool {
	at := h.el.ScrollHeight()-(h.el.ScrollTop()+h.el.ClientHeight()) <= delta
	if at && fn != nil {
		fn()
	}
	return at
}

// AtTop calls fn, when non-nil, if the offset is within delta of the top,
// and reports whether it is.
func (h *ScrollHandle) AtTop(delta float64, fn func()) bool {
	at := h.el.ScrollTop() <= delta
	if at && fn != nil {
		fn()
	}
	return at
}

// Stop pauses sampling.
func (h *ScrollHandle) Stop() { h.w.stop() }

// Start resumes sampling after Stop.
func (h *ScrollHandle) Start() { h.w.start() }

type scrollWatcher struct {
	mu       sync.Mutex
	clock    directive.Clock
	el       node.Scroller
	method   ScrollMethod
	interval time.Duration

	last    float64
	running bool
	timer   directive.Timer
}

func (w *scrollWatcher) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.last = w.el.ScrollTop()
	w.schedule()
}

func (w *scrollWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// schedule must be called with mu held.
func (w *scrollWatcher) schedule() {
	w.timer = w.clock.AfterFunc(w.interval, w.poll)
}

func (w *scrollWatcher) poll() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	now := w.el.ScrollTop()
	prev := w.last
	w.last = now
	w.schedule()
	w.mu.Unlock()

	if now == prev {
		return
	}
	dir := ScrollDown
	if now > prev {
		dir = ScrollUp
	}
	w.method(&ScrollHandle{Direction: dir, el: w.el, w: w})
}

func resolveScroll(ctx *directive.Context, name string, n node.Node, attr string) error {
	el, ok := n.(node.Scroller)
	if !ok {
		return tethererrors.NewConfigError(tethererrors.CodeUnsupportedNode, "element does not expose scroll metrics").
			WithContext("attribute", attr).
			WithContext("tag", n.Tag())
	}

	method, err := scrollMethod(ctx.Methods, name)
	if err != nil {
		return err
	}

	w := &scrollWatcher{
		clock:    ctx.Timers(),
		el:       el,
		method:   method,
		interval: ScrollInterval,
	}
	w.start()
	ctx.Defer(w.stop)
	return nil
}

func scrollMethod(methods directive.Methods, name string) (ScrollMethod, error) {
	v, ok := methods[name]
	if !ok || v == nil {
		return nil, tethererrors.NewConfigError(tethererrors.CodeUnknownMethod, "method is not defined").
			WithContext("method", name)
	}
	switch fn := v.(type) {
	case ScrollMethod:
		return fn, nil
	case func(*ScrollHandle):
		return fn, nil
	default:
		return nil, tethererrors.NewConfigError(tethererrors.CodeInvalidDirectiveValue, "method has the wrong signature").
			WithContext("method", name).
			WithContext("want", "func(*builtin.ScrollHandle)").
			WithContext("got", fmt.Sprintf("%T", v))
	}
}
