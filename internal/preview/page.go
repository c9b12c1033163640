package preview

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page renders the preview shell around the bound fragment. The script
// opens the WebSocket, swaps in re-rendered markup and forwards control
// events back to the server.
func Page(title, fragment string, revision uint64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+` · tether preview</title></head><body>`); err != nil {
			return err
		}
		if err := Fragment(fragment, revision).Render(ctx, w); err != nil {
			return err
		}
		if err := templ.Raw(`<script>` + clientScript + `</script>`).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Fragment renders the bound markup inside the container the client script
// replaces.
func Fragment(fragment string, revision uint64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="tether-preview" data-revision="`+
			templ.EscapeString(formatRevision(revision))+`">`); err != nil {
			return err
		}
		if err := templ.Raw(fragment).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

const clientScript = `
(function () {
  var box = document.getElementById("tether-preview");
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    var fresh = true;
    ws.onmessage = function (msg) {
      var data = JSON.parse(msg.data);
      if (data.type === "render") {
        // a restarted server counts again from its first message
        if (!fresh && data.revision < Number(box.dataset.revision)) { return; }
        fresh = false;
        box.innerHTML = data.html;
        box.dataset.revision = data.revision;
      }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  function send(e) {
    var t = e.target;
    if (!t || !t.id) { return; }
    var body = { target: t.id, type: e.type };
    if (t.tagName === "INPUT" || t.tagName === "TEXTAREA") {
      body.value = t.value;
      if (t.type === "checkbox" || t.type === "radio") { body.checked = t.checked; }
    }
    if (t.tagName === "SELECT") {
      body.selected = Array.prototype.filter.call(t.options, function (o) { return o.selected; })
        .map(function (o) { return o.value; });
    }
    fetch("/api/event", { method: "POST", headers: { "Content-Type": "application/json" }, body: JSON.stringify(body) });
  }
  ["input", "change", "click"].forEach(function (type) { box.addEventListener(type, send, true); });
  connect();
})();
`
