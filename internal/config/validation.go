package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/logging"
)

var prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9]*-$`)

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}

// validateConfig validates configuration values for security and correctness.
// Every invalid field is reported; a single failure is returned as is.
func validateConfig(config *Config) error {
	var errs []error
	if config.View.File != "" {
		if err := validatePath(config.View.File); err != nil {
			errs = append(errs, invalid("view.file", config.View.File, err.Error()))
		}
	}
	if config.Model.File != "" {
		if err := validatePath(config.Model.File); err != nil {
			errs = append(errs, invalid("model.file", config.Model.File, err.Error()))
		}
	}

	if !prefixPattern.MatchString(config.Directives.Prefix) {
		errs = append(errs, invalid("directives.prefix", config.Directives.Prefix,
			"prefix must be lowercase letters or digits followed by a dash"))
	}

	errs = append(errs, validatePreviewConfig(&config.Preview)...)

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		errs = append(errs, invalid("log.level", config.Log.Level, err.Error()))
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, invalid("log.format", config.Log.Format, "format must be text or json"))
	}

	return tethererrors.CombineErrors(errs...)
}

func validatePreviewConfig(config *PreviewConfig) []error {
	var errs []error
	// port 0 lets the system pick one
	if config.Port < 0 || config.Port > 65535 {
		errs = append(errs, invalid("preview.port", config.Port, "port is not in valid range 0-65535"))
	}
	for _, char := range append(dangerousChars, "\\") {
		if strings.Contains(config.Host, char) {
			errs = append(errs, invalid("preview.host", config.Host, "host contains dangerous character: "+char))
			break
		}
	}
	return errs
}

// validatePath validates a file path for security.
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

func invalid(field string, value interface{}, message string) error {
	return tethererrors.NewConfigError(tethererrors.CodeInvalidConfig, message).
		WithContext("field", field).
		WithContext("value", value)
}
