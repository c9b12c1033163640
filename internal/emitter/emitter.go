// Package emitter implements the keyed publish/subscribe capability shared by
// the model change channels and the node event wrappers.
//
// Handlers for a key run synchronously in subscription order. A handler that
// returns false vetoes the remaining handlers of that Publish call only.
// Unsubscribing, including from inside a running handler, takes effect
// immediately: a removed handler is never invoked again, not even later in
// the dispatch that removed it.
package emitter

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler receives one published value. Returning false stops the dispatch.
type Handler[E any] func(event E) bool

// Subscription identifies one registered handler. Go funcs cannot be
// compared, so the subscription handle takes the role of handler identity.
type Subscription struct {
	id     string
	key    string
	active atomic.Bool
	remove func(*Subscription)
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Key returns the key the subscription listens on.
func (s *Subscription) Key() string { return s.key }

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool { return s.active.Load() }

// Unsubscribe removes the subscription. It is safe to call more than once
// and from within the subscription's own handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.Swap(false) {
		return
	}
	if s.remove != nil {
		s.remove(s)
	}
}

type entry[E any] struct {
	sub     *Subscription
	handler Handler[E]
}

// Emitter is a keyed registry of ordered handlers.
type Emitter[E any] struct {
	mu       sync.RWMutex
	handlers map[string][]entry[E]
	order    []string
}

// New creates an empty Emitter.
func New[E any]() *Emitter[E] {
	return &Emitter[E]{
		handlers: make(map[string][]entry[E]),
	}
}

// Subscribe appends handler to the handlers of key.
func (e *Emitter[E]) Subscribe(key string, handler Handler[E]) *Subscription {
	sub := &Subscription{
		id:  uuid.NewString(),
		key: key,
	}
	sub.active.Store(true)
	sub.remove = e.remove

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.handlers[key]; !exists {
		e.order = append(e.order, key)
	}
	e.handlers[key] = append(e.handlers[key], entry[E]{sub: sub, handler: handler})

	return sub
}

// Unsubscribe removes sub. Subscriptions created by another Emitter are
// ignored.
func (e *Emitter[E]) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	e.mu.RLock()
	owned := false
	for _, en := range e.handlers[sub.key] {
		if en.sub == sub {
			owned = true
			break
		}
	}
	e.mu.RUnlock()

	if owned {
		sub.Unsubscribe()
	}
}

func (e *Emitter[E]) remove(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.handlers[sub.key]
	for i, en := range list {
		if en.sub == sub {
			next := make([]entry[E], 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			list = next
			break
		}
	}

	if len(list) == 0 {
		delete(e.handlers, sub.key)
		for i, k := range e.order {
			if k == sub.key {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
		return
	}
	e.handlers[sub.key] = list
}

// Publish invokes the handlers of key in subscription order and reports
// whether dispatch ran to completion. It returns false as soon as a handler
// returns false. A key without handlers is a no-op.
func (e *Emitter[E]) Publish(key string, event E) bool {
	e.mu.RLock()
	snapshot := e.handlers[key]
	e.mu.RUnlock()

	for _, en := range snapshot {
		if !en.sub.Active() {
			continue
		}
		if !en.handler(event) {
			return false
		}
	}
	return true
}

// Keys returns the keys that currently have handlers, ordered by when each
// key received its first live handler.
func (e *Emitter[E]) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Count returns the number of live handlers for key.
func (e *Emitter[E]) Count(key string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[key])
}

// Clear removes every handler.
func (e *Emitter[E]) Clear() {
	e.mu.Lock()
	all := e.handlers
	e.handlers = make(map[string][]entry[E])
	e.order = nil
	e.mu.Unlock()

	for _, list := range all {
		for _, en := range list {
			en.sub.active.Store(false)
		}
	}
}
