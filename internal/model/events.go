package model

import (
	"github.com/conneroisu/tether/internal/emitter"
	tethererrors "github.com/conneroisu/tether/internal/errors"
)

// Kind names a change channel.
type Kind string

const (
	KindSet    Kind = "set"
	KindPush   Kind = "push"
	KindSplice Kind = "splice"
	KindDelete Kind = "delete"
)

// Kinds lists every change channel.
var Kinds = []Kind{KindSet, KindPush, KindSplice, KindDelete}

// Event is published on a change channel.
//
//	set:    Path, Value (new), Old
//	push:   Path, Values (appended)
//	splice: Path, Index (resolved), Count (removed), Values (extra arguments)
//	delete: Path, Old
type Event struct {
	Kind   Kind
	Path   string
	Value  any
	Old    any
	Values []any
	Index  int
	Count  int
}

// Handler is a veto-capable change handler; see emitter.Handler.
type Handler = emitter.Handler[Event]

// On subscribes a raw handler to a channel. Returning false from handler
// stops the remaining handlers of that publish.
func (m *Model) On(kind Kind, path string, handler Handler) (*emitter.Subscription, error) {
	ch, ok := m.channels[kind]
	if !ok {
		return nil, tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "unknown change channel").
			WithContext("kind", string(kind))
	}
	return ch.Subscribe(path, handler), nil
}

// Off removes a subscription made on any channel of this model.
func (m *Model) Off(sub *emitter.Subscription) {
	if sub == nil {
		return
	}
	for _, ch := range m.channels {
		ch.Unsubscribe(sub)
	}
}

// OnSet calls fn with the new and previous value whenever path changes.
func (m *Model) OnSet(path string, fn func(value, old any)) *emitter.Subscription {
	return m.channels[KindSet].Subscribe(path, func(e Event) bool {
		fn(e.Value, e.Old)
		return true
	})
}

// OnPush calls fn with the appended values whenever path is pushed to.
func (m *Model) OnPush(path string, fn func(values []any)) *emitter.Subscription {
	return m.channels[KindPush].Subscribe(path, func(e Event) bool {
		fn(e.Values)
		return true
	})
}

// OnSplice calls fn whenever a range is removed from path.
func (m *Model) OnSplice(path string, fn func(index, count int, extra []any)) *emitter.Subscription {
	return m.channels[KindSplice].Subscribe(path, func(e Event) bool {
		fn(e.Index, e.Count, e.Values)
		return true
	})
}

// OnDelete calls fn with the removed value whenever path is deleted.
func (m *Model) OnDelete(path string, fn func(old any)) *emitter.Subscription {
	return m.channels[KindDelete].Subscribe(path, func(e Event) bool {
		fn(e.Old)
		return true
	})
}

// Subscribed returns the paths with live handlers on a channel, in the order
// they were first subscribed.
func (m *Model) Subscribed(kind Kind) []string {
	ch, ok := m.channels[kind]
	if !ok {
		return nil
	}
	return ch.Keys()
}
