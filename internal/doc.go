// Package internal contains the implementation packages of tether.
//
// # Package Organization
//
// The engine packages are layered bottom-up:
//
//   - record: ordered key/value data with dotted path access and YAML/JSON codecs
//   - emitter: named listener registries with handle-based removal
//   - model: a record plus set, insert and delete change channels
//   - node: the element abstraction directives operate on, and the tree walk
//   - htmltree: a node implementation backed by golang.org/x/net/html
//   - format: {path} placeholder substitution for templates
//   - directive: the directive registry and the per-binding resolution context
//   - directive/builtin: the standard directive set
//   - binder: walks a view, resolves directives and owns their subscriptions
//
// Around the engine:
//
//   - config: viper-backed configuration with validation
//   - errors: typed errors with codes, context and suggestions
//   - logging: structured logging on log/slog
//   - preview: a live-reloading browser preview served over HTTP and WebSocket
//   - watcher: debounced fsnotify watching of the view and model files
//   - version: build identity
//
// # Change Flow
//
// A model write publishes on the model's change channels. Directive
// subscriptions rewrite the bound nodes; node events (input, change, click)
// flow back into the model through the same subscriptions. The binder
// itself is passive once construction has finished.
package internal
