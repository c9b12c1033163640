// Package binder connects a Model to a node tree through directives.
//
// Construction walks the view breadth-first, resolves every directive
// attribute in priority order and then resyncs the model once so all
// bindings render the initial state. After that, all updates flow through
// the model change channels and node events; the binder itself is passive.
package binder

import (
	"context"
	"errors"
	"fmt"

	"github.com/conneroisu/tether/internal/directive"
	// standard directives register themselves in directive.Default
	_ "github.com/conneroisu/tether/internal/directive/builtin"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
	"github.com/conneroisu/tether/internal/record"
)

// Config holds the binding inputs.
type Config struct {
	// Model is a *record.Record, a map[string]any, a *model.Model or nil
	// for an empty model.
	Model any
	// View is the root element of the bound subtree.
	View node.Node
	// Methods are the named callbacks referenced by directives.
	Methods directive.Methods
}

// Option customises a Binder.
type Option func(*Binder)

// WithRegistry resolves directives from reg instead of directive.Default.
func WithRegistry(reg *directive.Registry) Option {
	return func(b *Binder) {
		b.registry = reg
	}
}

// WithLogger sets the logger handed to directives.
func WithLogger(logger logging.Logger) Option {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithClock sets the timer source used by polling directives.
func WithClock(clock directive.Clock) Option {
	return func(b *Binder) {
		b.clock = clock
	}
}

// Binder owns a bound view.
type Binder struct {
	model    *model.Model
	view     node.Node
	methods  directive.Methods
	registry *directive.Registry
	logger   logging.Logger
	clock    directive.Clock
	ctx      *directive.Context

	elements   int
	directives int
}

// New binds cfg.View to cfg.Model. Any directive error aborts construction;
// bindings made before the failure are released.
func New(cfg Config, opts ...Option) (*Binder, error) {
	if node.IsNil(cfg.View) {
		return nil, tethererrors.NewConfigError(tethererrors.CodeMissingView, "a view is required")
	}

	m, err := toModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	b := &Binder{
		model:    m,
		view:     cfg.View,
		methods:  cfg.Methods,
		registry: directive.Default,
		logger:   logging.NewNopLogger(),
		clock:    directive.SystemClock,
	}
	if b.methods == nil {
		b.methods = directive.Methods{}
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("binder")

	b.ctx = &directive.Context{
		Model:    b.model,
		Root:     b.view,
		Methods:  b.methods,
		Registry: b.registry,
		Logger:   b.logger,
		Clock:    b.clock,
	}

	if err := b.bind(); err != nil {
		b.ctx.Close()
		return nil, err
	}
	b.model.Resync()

	b.logger.Info(context.Background(), "view bound",
		"elements", b.elements,
		"directives", b.directives,
		"subscriptions", b.ctx.Tracked())
	return b, nil
}

func (b *Binder) bind() error {
	var bindErr error
	node.Walk(b.view, func(n node.Node) bool {
		if bindErr != nil {
			return false
		}
		b.elements++
		b.ctx.Reset()

		for _, m := range b.registry.Match(n) {
			b.logger.Debug(context.Background(), "resolving directive",
				"tag", n.Tag(),
				"attribute", m.Attr,
				"value", m.Value,
				"priority", m.Descriptor.Priority.String())

			if err := m.Descriptor.Resolve(b.ctx, m.Value, n, m.Attr); err != nil {
				bindErr = wrapResolveError(err, n, m)
				return false
			}
			b.directives++
		}
		return !b.ctx.ChildrenSkipped()
	})
	return bindErr
}

func wrapResolveError(err error, n node.Node, m directive.Match) error {
	var te *tethererrors.Error
	if errors.As(err, &te) {
		return te.WithContext("element", n.Tag()).WithContext("directive", m.Attr)
	}
	return tethererrors.NewInternalError(tethererrors.CodeDirectiveFailed,
		fmt.Sprintf("directive %s failed on <%s>", m.Attr, n.Tag()), err)
}

func toModel(data any) (*model.Model, error) {
	switch d := data.(type) {
	case nil:
		return model.New(nil), nil
	case *model.Model:
		if d == nil {
			return model.New(nil), nil
		}
		return d, nil
	case *record.Record:
		return model.New(d), nil
	case map[string]any:
		return model.New(record.FromMap(d)), nil
	default:
		return nil, tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "model must be a record").
			WithContext("got", fmt.Sprintf("%T", data))
	}
}

// Model returns the bound model.
func (b *Binder) Model() *model.Model { return b.model }

// View returns the bound root element.
func (b *Binder) View() node.Node { return b.view }

// Methods returns the method table.
func (b *Binder) Methods() directive.Methods { return b.methods }

// Registry returns the registry directives were resolved from.
func (b *Binder) Registry() *directive.Registry { return b.registry }

// Resync republishes every bound path.
func (b *Binder) Resync() { b.model.Resync() }

// Close removes every model subscription, event listener and polling
// watcher the binding created. The view keeps its current content. Close is
// never called implicitly and is safe to call more than once.
func (b *Binder) Close() {
	if b.ctx.Closed() {
		return
	}
	b.ctx.Close()
	b.logger.Debug(context.Background(), "binding released")
}
