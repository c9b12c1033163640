package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/conneroisu/tether/internal/directive"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type directiveRow struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Priority  int    `json:"priority" yaml:"priority"`
	Level     string `json:"level" yaml:"level"`
}

type directiveListing struct {
	Prefix     string         `json:"prefix" yaml:"prefix"`
	Directives []directiveRow `json:"directives" yaml:"directives"`
	Helpers    []string       `json:"helpers" yaml:"helpers"`
}

func newDirectivesCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "directives",
		Aliases: []string{"d"},
		Short:   "List the registered directives",
		Long: `List every directive attribute in resolution order, highest priority
first, together with the registered filter helpers.

Examples:
  tether directives
  tether directives -o json
  tether directives --prefix x-`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			return writeDirectives(cmd.OutOrStdout(), listDirectives(reg), format)
		},
	}
	addOutputFlag(cmd, &format, "table", "json", "yaml")

	return cmd
}

func listDirectives(reg *directive.Registry) directiveListing {
	title := cases.Title(language.English)
	descs := reg.Descriptors()
	sort.SliceStable(descs, func(i, j int) bool { return descs[i].Priority > descs[j].Priority })

	listing := directiveListing{
		Prefix:     reg.Prefix(),
		Directives: make([]directiveRow, len(descs)),
		Helpers:    reg.Helpers(),
	}
	for i, d := range descs {
		listing.Directives[i] = directiveRow{
			Attribute: d.Name,
			Priority:  int(d.Priority),
			Level:     title.String(d.Priority.String()),
		}
	}
	if listing.Helpers == nil {
		listing.Helpers = []string{}
	}
	return listing
}

func writeDirectives(w io.Writer, listing directiveListing, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ATTRIBUTE\tPRIORITY\tLEVEL")
		for _, d := range listing.Directives {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Attribute, d.Priority, d.Level)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(listing.Helpers) > 0 {
			fmt.Fprintf(w, "\nHelpers: %v\n", listing.Helpers)
		}
		return nil
	}
}
