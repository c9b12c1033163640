package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/preview"
	"github.com/conneroisu/tether/internal/watcher"
	"github.com/spf13/cobra"
)

const reloadDebounce = 150 * time.Millisecond

func newServeCommand(a *app) *cobra.Command {
	var stubMethods bool

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve a live preview of a bound view",
		Long: `Bind a view to a model and serve it over HTTP. Connected browsers receive
the re-rendered markup over WebSocket after every model change, and the
session is rebound when the view or model file changes on disk.

API:
  POST /api/set      {"path": "title", "value": "Hello"}
  POST /api/mutate   {"op": "push", "path": "todos", "value": {...}}
  POST /api/event    {"target": "save", "type": "click"}
  POST /api/reload
  GET  /api/model
  GET  /api/directives

Examples:
  tether serve --view index.html --model data.yaml
  tether serve --view index.html --root app --port 3000 --watch=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, a, stubMethods)
		},
	}

	cmd.Flags().String("view", "", "HTML view file")
	cmd.Flags().String("model", "", "YAML or JSON model file")
	cmd.Flags().String("root", "", "id of the element to bind (default: whole document)")
	cmd.Flags().String("host", "localhost", "Host to bind to")
	cmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	cmd.Flags().Bool("watch", true, "Rebind when the view or model file changes")
	cmd.Flags().BoolVar(&stubMethods, "stub-methods", true, "log calls to methods the view names")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, a *app, stubMethods bool) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if cfg.View.File == "" {
		return tethererrors.NewConfigError(tethererrors.CodeMissingView, "no view file given").
			WithContext("flag", "--view")
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	session, err := preview.NewSession(preview.SessionConfig{
		ViewFile:    cfg.View.File,
		ModelFile:   cfg.Model.File,
		Root:        cfg.View.Root,
		Registry:    reg,
		StubMethods: stubMethods,
		Logger:      logger,
	})
	if err != nil {
		return tethererrors.Enhance(err, &tethererrors.SuggestionContext{
			Directives: reg.Names(),
			Prefix:     cfg.Directives.Prefix,
			ConfigPath: a.v.ConfigFileUsed(),
		})
	}
	defer session.Close()

	server := preview.NewServer(session, preview.Options{
		Host: cfg.Preview.Host,
		Port: cfg.Preview.Port,
	}, logger)

	if cfg.Preview.Watch {
		fw, err := watcher.New(reloadDebounce, logger)
		if err != nil {
			return err
		}
		defer fw.Stop()

		fw.Filter(watcher.NoGitFilter)
		fw.Filter(watcher.NoTempFilter)
		fw.Handle(func(changes []watcher.Change) error {
			for _, c := range changes {
				logger.Info(ctx, "file changed", "path", c.Path, "op", c.Op.String())
			}
			return server.Reload()
		})
		if err := fw.WatchFiles(cfg.View.File, cfg.Model.File); err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return err
		}
	}

	return server.ListenAndServe(ctx)
}
