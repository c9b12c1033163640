package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/coder/websocket"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/logging"
)

// Options configures the preview server.
type Options struct {
	Host string
	Port int
}

// Server serves one Session.
type Server struct {
	session *Session
	opts    Options
	logger  logging.Logger
	hub     *hub
}

// NewServer creates a server for session. Every session change is pushed
// to connected browsers.
func NewServer(session *Session, opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("preview")
	s := &Server{
		session: session,
		opts:    opts,
		logger:  logger,
		hub:     newHub(logger),
	}
	session.OnChange(func(uint64) { s.pushRender() })
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/model", s.handleModel)
	mux.HandleFunc("GET /api/directives", s.handleDirectives)
	mux.HandleFunc("POST /api/set", s.handleSet)
	mux.HandleFunc("POST /api/mutate", s.handleMutate)
	mux.HandleFunc("POST /api/event", s.handleEvent)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "preview server listening", "address", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info(context.Background(), "preview server stopped")
	return nil
}

// Reload rebinds the session from disk. A failed reload is reported to
// connected browsers and the previous binding keeps serving.
func (s *Server) Reload() error {
	if err := s.session.Reload(); err != nil {
		s.logger.Warn(context.Background(), err, "reload failed")
		_, rev := s.session.Fragment()
		s.hub.broadcast(Message{Type: "error", Revision: rev, Error: err.Error()})
		return err
	}
	return nil
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int { return s.hub.count() }

func (s *Server) renderMessage() Message {
	html, rev := s.session.Fragment()
	return Message{Type: "render", Revision: rev, HTML: html}
}

func (s *Server) pushRender() {
	s.hub.broadcast(s.renderMessage())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	html, rev := s.session.Fragment()
	templ.Handler(Page(s.session.Title(), html, rev)).ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !originAllowed(r, s.opts.Port) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	s.hub.serve(r.Context(), conn, func() ([]byte, error) {
		return json.Marshal(s.renderMessage())
	})
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

type directiveInfo struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

func (s *Server) handleDirectives(w http.ResponseWriter, _ *http.Request) {
	descs := s.session.Registry().Descriptors()
	out := make([]directiveInfo, len(descs))
	for i, d := range descs {
		out[i] = directiveInfo{Name: d.Name, Priority: int(d.Priority)}
	}
	writeJSON(w, http.StatusOK, out)
}

type setRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.apply(w, Mutation{Op: OpSet, Path: req.Path, Value: req.Value})
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	var m Mutation
	if !decodeJSON(w, r, &m) {
		return
	}
	s.apply(w, m)
}

func (s *Server) apply(w http.ResponseWriter, m Mutation) {
	if err := s.session.Apply(m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revision": s.session.Revision()})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev RemoteEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if err := s.session.Dispatch(ev); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revision": s.session.Revision()})
}

func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	if err := s.Reload(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revision": s.session.Revision()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if tethererrors.IsArgumentError(err) || tethererrors.IsTypeError(err) {
		status = http.StatusBadRequest
	}
	body := tethererrors.GetErrorContext(err)
	body["error"] = err.Error()
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func formatRevision(rev uint64) string {
	return strconv.FormatUint(rev, 10)
}
