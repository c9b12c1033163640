// Package builtin provides the standard directives: bind, bind-once,
// template, repeat, on, delegate, show, hide, filter, scroll and class.
//
// Importing the package installs them into directive.Default.
package builtin

import (
	"strings"

	"github.com/conneroisu/tether/internal/directive"
	tethererrors "github.com/conneroisu/tether/internal/errors"
)

var builtins = []struct {
	names string
	desc  directive.Descriptor
}{
	{"bind", directive.Descriptor{Priority: directive.Normal, Resolve: resolveBind}},
	{"bind-once", directive.Descriptor{Priority: directive.Normal, Resolve: resolveBindOnce}},
	{"template", directive.Descriptor{Priority: directive.High, Resolve: resolveTemplate}},
	{"repeat", directive.Descriptor{Priority: directive.Normal, Resolve: resolveRepeat}},
	{"on", directive.Descriptor{Priority: directive.Normal, Resolve: resolveOn}},
	{"delegate", directive.Descriptor{Priority: directive.Normal, Resolve: resolveDelegate}},
	{"show|hide", directive.Descriptor{Priority: directive.Normal, Resolve: resolveShowHide}},
	{"filter", directive.Descriptor{Priority: directive.High, Resolve: resolveFilter}},
	{"scroll", directive.Descriptor{Priority: directive.Normal, Resolve: resolveScroll}},
	{"class", directive.Descriptor{Priority: directive.Normal, Resolve: resolveClass}},
}

func init() {
	if err := Install(directive.Default); err != nil {
		panic(err)
	}
}

// Install registers the standard directives in reg.
func Install(reg *directive.Registry) error {
	for _, b := range builtins {
		if err := reg.Register(b.names, b.desc); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry creates a registry holding the standard directives.
func NewRegistry(opts ...directive.Option) (*directive.Registry, error) {
	reg := directive.NewRegistry(opts...)
	if err := Install(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// splitArgs splits a comma or colon separated directive value into exactly
// n trimmed, non-empty parts.
func splitArgs(value, sep string, n int, attr, usage string) ([]string, error) {
	parts := strings.SplitN(value, sep, n)
	if len(parts) != n {
		return nil, invalidValue(attr, value, usage)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, invalidValue(attr, value, usage)
		}
	}
	return parts, nil
}

func invalidValue(attr, value, usage string) error {
	return tethererrors.NewConfigError(tethererrors.CodeInvalidDirectiveValue, "malformed directive value").
		WithContext("attribute", attr).
		WithContext("value", value).
		WithContext("usage", usage)
}
