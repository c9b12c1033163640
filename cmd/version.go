package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/conneroisu/tether/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newVersionCommand() *cobra.Command {
	var (
		format   string
		short    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for tether: the version, git commit,
build time, Go version and target platform.

Examples:
  tether version              # Show version
  tether version --detailed   # Show every build field
  tether version -o json      # Output as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "yaml":
				data, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			switch {
			case short:
				fmt.Fprintln(out, info.Version)
			case detailed:
				fmt.Fprintln(out, info.Detailed())
				if info.Dirty {
					fmt.Fprintln(out, "Working directory: dirty")
				}
			default:
				fmt.Fprintln(out, "tether "+info.Short())
			}
			return nil
		},
	}

	addOutputFlag(cmd, &format, "text", "json", "yaml")
	cmd.Flags().BoolVar(&short, "short", false, "Show the version number only")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed version information")

	return cmd
}
