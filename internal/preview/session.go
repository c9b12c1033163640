// Package preview serves a bound document over HTTP and pushes re-rendered
// markup to connected browsers over WebSocket after every model change.
package preview

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/conneroisu/tether/internal/binder"
	"github.com/conneroisu/tether/internal/directive"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/htmltree"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/conneroisu/tether/internal/node"
	"github.com/conneroisu/tether/internal/record"
)

// SessionConfig names the files a session binds.
type SessionConfig struct {
	ViewFile  string
	ModelFile string
	// Root is the id of the bound element; empty binds the whole document.
	Root     string
	Registry *directive.Registry
	Methods  directive.Methods
	// StubMethods fills in a logging stub for every method the view
	// references but Methods does not define.
	StubMethods bool
	Logger      logging.Logger
}

// Session owns one bound document. Every access to the document and its
// model goes through the session lock, including timer callbacks.
type Session struct {
	cfg    SessionConfig
	logger logging.Logger

	mu       sync.Mutex
	doc      *htmltree.Document
	root     *htmltree.Element
	binder   *binder.Binder
	revision uint64
	onChange []func(revision uint64)

	// changed wakes notify; done stops it.
	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession loads and binds the configured files.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Registry == nil {
		cfg.Registry = directive.Default
	}
	s := &Session{
		cfg:     cfg,
		logger:  cfg.Logger.WithComponent("session"),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	go s.notify()
	return s, nil
}

// Reload re-reads the view and model files and rebinds. On failure the
// previous binding stays in place.
func (s *Session) Reload() error {
	doc, err := loadView(s.cfg.ViewFile)
	if err != nil {
		return err
	}

	data := record.New()
	if s.cfg.ModelFile != "" {
		if data, err = record.Load(s.cfg.ModelFile); err != nil {
			return err
		}
	}

	root := doc.Root()
	if s.cfg.Root != "" {
		root = doc.GetElementByID(s.cfg.Root)
	}
	if root == nil {
		return tethererrors.NewConfigError(tethererrors.CodeMissingView, "view root not found").
			WithContext("root", s.cfg.Root).
			WithContext("file", s.cfg.ViewFile)
	}

	methods := s.cfg.Methods
	if s.cfg.StubMethods {
		methods = withStubs(root, s.cfg.Registry, methods, s.logger)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := binder.New(binder.Config{Model: data, View: root, Methods: methods},
		binder.WithRegistry(s.cfg.Registry),
		binder.WithLogger(s.cfg.Logger),
		binder.WithClock(lockedClock{s}))
	if err != nil {
		return err
	}

	if s.binder != nil {
		s.binder.Close()
	}
	s.doc, s.root, s.binder = doc, root, b
	s.changedLocked()

	s.logger.Info(context.Background(), "session loaded",
		"view", s.cfg.ViewFile,
		"model", s.cfg.ModelFile,
		"revision", s.revision)
	return nil
}

func loadView(path string) (*htmltree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tethererrors.NewIOError(tethererrors.CodeFileNotFound, "cannot read view file", err).
			WithContext("path", path)
	}
	defer f.Close()
	return htmltree.Parse(f)
}

// OnChange registers fn to run, outside the session lock, after changes to
// the bound document. Listeners run one at a time on a single goroutine and
// see strictly increasing revisions; changes that land while a listener is
// busy are coalesced into the latest revision.
func (s *Session) OnChange(fn func(revision uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// changedLocked bumps the revision and wakes notify. Callers hold s.mu.
func (s *Session) changedLocked() {
	s.revision++
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Session) notify() {
	var delivered uint64
	for {
		select {
		case <-s.done:
			return
		case <-s.changed:
		}

		s.mu.Lock()
		rev := s.revision
		listeners := append([]func(uint64){}, s.onChange...)
		s.mu.Unlock()

		if rev <= delivered {
			continue
		}
		delivered = rev
		for _, fn := range listeners {
			fn(rev)
		}
	}
}

// Apply runs m against the bound model.
func (s *Session) Apply(m Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := m.Apply(s.binder.Model()); err != nil {
		return err
	}
	s.changedLocked()
	return nil
}

// Dispatch replays a browser event on the element with the given id.
func (s *Session) Dispatch(ev RemoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.doc.GetElementByID(ev.Target)
	if target == nil {
		return tethererrors.NewArgumentError(tethererrors.CodeInvalidKey, "event target not found").
			WithContext("target", ev.Target)
	}
	ev.applyTo(target)
	target.Fire(ev.Type)
	s.changedLocked()
	return nil
}

// Render writes the whole document.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Render(w)
}

// Fragment returns the markup of the bound root and the revision it
// reflects.
func (s *Session) Fragment() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.OuterHTML(), s.revision
}

// Title returns the document title, or the view file name.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if titles := findTag(s.doc.Root(), "title"); titles != nil {
		return titles.Text()
	}
	return s.cfg.ViewFile
}

// Snapshot returns a deep copy of the model data.
func (s *Session) Snapshot() *record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binder.Model().Snapshot()
}

// Revision returns the current revision.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Registry returns the registry views are bound with.
func (s *Session) Registry() *directive.Registry { return s.cfg.Registry }

// Close releases the binding and stops change notification.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binder != nil {
		s.binder.Close()
	}
}

func findTag(root node.Node, tag string) node.Node {
	var found node.Node
	node.Walk(root, func(n node.Node) bool {
		if found != nil {
			return false
		}
		if n.Tag() == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// lockedClock runs timer callbacks under the session lock. Polls that leave
// the markup untouched do not bump the revision.
type lockedClock struct {
	s *Session
}

func (c lockedClock) AfterFunc(d time.Duration, fn func()) directive.Timer {
	return time.AfterFunc(d, func() {
		c.s.mu.Lock()
		defer c.s.mu.Unlock()
		before := c.s.root.OuterHTML()
		fn()
		if c.s.root.OuterHTML() != before {
			c.s.changedLocked()
		}
	})
}
