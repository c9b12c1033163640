// Package config provides configuration management for tether using Viper
// for loading from files, environment variables and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the TETHER_ prefix. It names the view and model files the
// CLI binds, the directive prefix, the preview server address and the log
// output.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultPrefix      = "n-"
	DefaultHost        = "localhost"
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultConfigName  = ".tether"
	EnvPrefix          = "TETHER"
	EnvConfigFileParam = "TETHER_CONFIG_FILE"
)

type Config struct {
	View       ViewConfig       `yaml:"view" mapstructure:"view"`
	Model      ModelConfig      `yaml:"model" mapstructure:"model"`
	Directives DirectivesConfig `yaml:"directives" mapstructure:"directives"`
	Preview    PreviewConfig    `yaml:"preview" mapstructure:"preview"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type ViewConfig struct {
	// File is the HTML document to bind.
	File string `yaml:"file" mapstructure:"file"`
	// Root is the id of the bound element. Empty binds the whole document.
	Root string `yaml:"root" mapstructure:"root"`
}

type ModelConfig struct {
	// File is a YAML or JSON mapping holding the initial model.
	File string `yaml:"file" mapstructure:"file"`
}

type DirectivesConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

type PreviewConfig struct {
	Host  string `yaml:"host" mapstructure:"host"`
	Port  int    `yaml:"port" mapstructure:"port"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults and validates
// the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Directives.Prefix == "" {
		config.Directives.Prefix = DefaultPrefix
	}
	if config.Preview.Host == "" {
		config.Preview.Host = DefaultHost
	}
	if !v.IsSet("preview.port") {
		config.Preview.Port = DefaultPort
	}
	// watch defaults to on; viper leaves unset bools false
	if v.IsSet("preview.watch") {
		config.Preview.Watch = v.GetBool("preview.watch")
	} else {
		config.Preview.Watch = true
	}
	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Address returns the preview listen address.
func (c *PreviewConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
