//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/tether/internal/preview"
	"github.com/conneroisu/tether/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const view = `<!DOCTYPE html><html><head><title>Notes</title></head><body>
<div id="app"><h1 n-bind="title"></h1><p id="body" n-bind="body"></p></div>
</body></html>`

func TestIntegration_EditedFilesReachBrowser(t *testing.T) {
	dir := t.TempDir()
	viewPath := filepath.Join(dir, "index.html")
	modelPath := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(viewPath, []byte(view), 0o600))
	require.NoError(t, os.WriteFile(modelPath, []byte("title: Notes\nbody: first\n"), 0o600))

	session, err := preview.NewSession(preview.SessionConfig{
		ViewFile:  viewPath,
		ModelFile: modelPath,
		Root:      "app",
	})
	require.NoError(t, err)
	defer session.Close()

	server := preview.NewServer(session, preview.Options{Host: "127.0.0.1"}, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fw, err := watcher.New(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()
	fw.Filter(watcher.NoTempFilter)
	fw.Handle(func([]watcher.Change) error { return server.Reload() })
	require.NoError(t, fw.WatchFiles(viewPath, modelPath))
	require.NoError(t, fw.Start(ctx))

	conn, _, err := websocket.Dial(ctx, "ws://"+strings.TrimPrefix(ts.URL, "http://")+"/ws",
		&websocket.DialOptions{HTTPHeader: http.Header{"Origin": []string{ts.URL}}})
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() preview.Message {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg preview.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	assert.Contains(t, first.HTML, `<p id="body" n-bind="body">first</p>`)

	require.NoError(t, os.WriteFile(modelPath, []byte("title: Notes\nbody: edited\n"), 0o600))

	// editors may write in several steps; wait for the final content
	for {
		msg := read()
		if msg.Type != "render" {
			continue
		}
		if strings.Contains(msg.HTML, `<p id="body" n-bind="body">edited</p>`) {
			assert.Greater(t, msg.Revision, first.Revision)
			break
		}
	}
}

func TestIntegration_BrokenViewKeepsLastBinding(t *testing.T) {
	dir := t.TempDir()
	viewPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(viewPath, []byte(view), 0o600))

	session, err := preview.NewSession(preview.SessionConfig{ViewFile: viewPath, Root: "app"})
	require.NoError(t, err)
	defer session.Close()
	server := preview.NewServer(session, preview.Options{Host: "127.0.0.1"}, nil)

	require.NoError(t, os.WriteFile(viewPath, []byte(`<div id="other"></div>`), 0o600))
	assert.Error(t, server.Reload())

	html, _ := session.Fragment()
	assert.Contains(t, html, `<h1 n-bind="title"></h1>`)
}
