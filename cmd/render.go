package cmd

import (
	"fmt"
	"io"
	"os"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/preview"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	sets        []string
	merges      []string
	pushes      []string
	removes     []string
	pops        []string
	deletes     []string
	fragment    bool
	out         string
	stubMethods bool
}

func newRenderCommand(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Bind a view to a model and print the result",
		Long: `Bind an HTML view to a YAML or JSON model, apply model writes and print
the resulting markup.

Writes run in this order: --set, --merge, --push, --remove, --pop, --delete.
Values are decoded as YAML, so numbers, booleans and [flow, sequences] keep
their type.

Examples:
  tether render --view index.html --model data.yaml
  tether render --view index.html --root app --set title=Hello
  tether render --view index.html --push "todos={title: walk}" --fragment
  tether render --view index.html --remove todos=-1 --pop history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, a, opts)
		},
	}

	cmd.Flags().String("view", "", "HTML view file")
	cmd.Flags().String("model", "", "YAML or JSON model file")
	cmd.Flags().String("root", "", "id of the element to bind (default: whole document)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "set a value (path=value)")
	cmd.Flags().StringArrayVar(&opts.merges, "merge", nil, "merge a mapping into a path (path={k: v})")
	cmd.Flags().StringArrayVar(&opts.pushes, "push", nil, "append to a sequence (path=value)")
	cmd.Flags().StringArrayVar(&opts.removes, "remove", nil, "remove from a sequence (path=index[,count])")
	cmd.Flags().StringArrayVar(&opts.pops, "pop", nil, "remove the last element of a sequence (path)")
	cmd.Flags().StringArrayVar(&opts.deletes, "delete", nil, "delete a value (path)")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "print only the bound element")
	cmd.Flags().StringVar(&opts.out, "out", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.stubMethods, "stub-methods", true, "log calls to methods the view names")

	return cmd
}

func (o *renderOptions) mutations() ([]preview.Mutation, error) {
	groups := []struct {
		op   preview.Op
		args []string
	}{
		{preview.OpSet, o.sets},
		{preview.OpMerge, o.merges},
		{preview.OpPush, o.pushes},
		{preview.OpRemove, o.removes},
		{preview.OpPop, o.pops},
		{preview.OpDelete, o.deletes},
	}

	var out []preview.Mutation
	for _, g := range groups {
		for _, arg := range g.args {
			m, err := preview.ParseAssignment(g.op, arg)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func runRender(cmd *cobra.Command, a *app, opts *renderOptions) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if cfg.View.File == "" {
		return tethererrors.NewConfigError(tethererrors.CodeMissingView, "no view file given").
			WithContext("flag", "--view")
	}

	mutations, err := opts.mutations()
	if err != nil {
		return err
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
		StubMethods: opts.stubMethods,
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

	for _, m := range mutations {
		if err := session.Apply(m); err != nil {
			return fmt.Errorf("%s %s: %w", m.Op, m.Path, err)
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return tethererrors.WrapIO(err, tethererrors.CodeFileNotFound, "cannot create output file")
		}
		defer f.Close()
		w = f
	}

	if opts.fragment {
		html, _ := session.Fragment()
		_, err = fmt.Fprintln(w, html)
		return err
	}
	if err := session.Render(w); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}
