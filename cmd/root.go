// Package cmd provides the tether command-line interface.
//
// Configuration is read from, in order of precedence:
//
//  1. Command-line flags (--view, --model, --port, ...)
//  2. Environment variables with the TETHER_ prefix (TETHER_VIEW_FILE,
//     TETHER_PREVIEW_PORT, ...)
//  3. The configuration file: --config, else TETHER_CONFIG_FILE, else
//     .tether.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/tether/internal/config"
	"github.com/conneroisu/tether/internal/directive"
	"github.com/conneroisu/tether/internal/directive/builtin"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "tether",
		Short: "Bind HTML views to data models with n- directives",
		Long: `tether binds an HTML document to a data model through directive attributes
such as n-bind, n-repeat and n-on, and keeps both sides in sync.

Quick Start:
  tether render --view index.html --model data.yaml   Bind and print the result
  tether serve --view index.html --model data.yaml    Live preview in the browser
  tether directives                                   List the registered directives`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is .tether.yml, can also use "+config.EnvConfigFileParam+")")
	root.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
	root.PersistentFlags().String("prefix", config.DefaultPrefix, "directive attribute prefix")

	root.AddCommand(
		newRenderCommand(a),
		newServeCommand(a),
		newDirectivesCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// initConfig binds the flags of the running command and reads the
// configuration file, if any.
func (a *app) initConfig(cmd *cobra.Command) error {
	bindFlags(a.v, cmd, map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
		"prefix":     "directives.prefix",
		"view":       "view.file",
		"root":       "view.root",
		"model":      "model.file",
		"host":       "preview.host",
		"port":       "preview.port",
		"watch":      "preview.watch",
	})

	switch {
	case a.cfgFile != "":
		a.v.SetConfigFile(a.cfgFile)
	case os.Getenv(config.EnvConfigFileParam) != "":
		a.v.SetConfigFile(os.Getenv(config.EnvConfigFileParam))
	default:
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(config.DefaultConfigName)
	}

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.AutomaticEnv()
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := a.v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || a.cfgFile != "" {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", a.v.ConfigFileUsed())
	return nil
}

func (a *app) load() (*config.Config, error) {
	return config.LoadFrom(a.v)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "tether",
	})
}

func newRegistry(cfg *config.Config) (*directive.Registry, error) {
	return builtin.NewRegistry(directive.WithPrefix(cfg.Directives.Prefix))
}
