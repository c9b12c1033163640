package preview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(newTestSession(t, SessionConfig{Root: "app", StubMethods: true}), Options{Host: "127.0.0.1"}, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_Page(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page := string(body)
	assert.Contains(t, page, "<title>Todos · tether preview</title>")
	assert.Contains(t, page, `<div id="tether-preview" data-revision="1">`)
	assert.Contains(t, page, `<h1 id="heading" n-bind="title">Todos</h1>`)
	assert.Contains(t, page, `new WebSocket(`)

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SetAndModel(t *testing.T) {
	s, ts := newTestServer(t)

	status, out := post(t, ts.URL+"/api/set", `{"path":"title","value":"Chores"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), out["revision"])

	html, _ := s.session.Fragment()
	assert.Contains(t, html, ">Chores</h1>")

	resp, err := http.Get(ts.URL + "/api/model")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Chores","todos":[{"title":"first"}]}`, string(body))
}

func TestServer_MutateErrors(t *testing.T) {
	_, ts := newTestServer(t)

	status, out := post(t, ts.URL+"/api/mutate", `{"op":"push","path":"title","value":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOT_A_SEQUENCE", out["code"])

	status, out = post(t, ts.URL+"/api/mutate", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid JSON body", out["error"])

	status, _ = post(t, ts.URL+"/api/event", `{"target":"nope","type":"click"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Directives(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/directives")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out []directiveInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	names := make([]string, len(out))
	for i, d := range out {
		names[i] = d.Name
	}
	assert.Contains(t, names, "n-bind")
	assert.Contains(t, names, "n-repeat")
}

func TestServer_WebSocketPushesRenders(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := strings.TrimPrefix(ts.URL, "http://")
	conn, _, err := websocket.Dial(ctx, "ws://"+host+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() Message {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	assert.Equal(t, "render", first.Type)
	assert.Contains(t, first.HTML, "<li>first</li>")
	assert.Equal(t, 1, s.Clients())

	status, _ := post(t, ts.URL+"/api/mutate", `{"op":"push","path":"todos","value":{"title":"second"}}`)
	require.Equal(t, http.StatusOK, status)

	next := read()
	for next.Revision < 2 {
		next = read()
	}
	assert.Equal(t, "render", next.Type)
	assert.Equal(t, uint64(2), next.Revision)
	assert.Contains(t, next.HTML, "<li>first</li><li>second</li>")
}

func TestServer_WebSocketRendersArriveInOrder(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := strings.TrimPrefix(ts.URL, "http://")
	conn, _, err := websocket.Dial(ctx, "ws://"+host+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	_, _, err = conn.Read(ctx)
	require.NoError(t, err)

	const writes = 10
	for i := 0; i < writes; i++ {
		require.NoError(t, s.session.Apply(Mutation{Op: OpPush, Path: "todos", Value: map[string]any{"title": "x"}}))
	}
	final := s.session.Revision()

	var last Message
	for last.Revision < final {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if last.Revision > 0 {
			assert.GreaterOrEqual(t, msg.Revision, last.Revision)
		}
		last = msg
	}
	assert.Equal(t, writes+1, strings.Count(last.HTML, "<li>"))
}

func TestServer_WebSocketRejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/ws", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://preview.test:8080", true},
		{"http://localhost:8080", true},
		{"https://127.0.0.1:8080", true},
		{"http://localhost:3000", false},
		{"ftp://localhost:8080", false},
		{"http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://preview.test:8080/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originAllowed(req, 8080))
		})
	}
}
