package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds the flags cmd defines to viper configuration keys, so a
// flag overrides the file and the environment only when it is set.
func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings map[string]string) {
	for flagName, configKey := range bindings {
		if flag := cmd.Flags().Lookup(flagName); flag != nil {
			_ = v.BindPFlag(configKey, flag)
		}
	}
}

// addFlagValidation checks a flag's value when it is parsed.
func addFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if err := v.validator(val); err != nil {
		return err
	}
	return v.Value.Set(val)
}

// oneOf returns a validator accepting only the given values.
func oneOf(valid ...string) func(string) error {
	return func(val string) error {
		if slices.Contains(valid, val) {
			return nil
		}
		return fmt.Errorf("invalid value %q, must be one of: %s", val, strings.Join(valid, ", "))
	}
}

// addOutputFlag adds the -o/--output format flag shared by listing
// commands.
func addOutputFlag(cmd *cobra.Command, target *string, formats ...string) {
	cmd.Flags().StringVarP(target, "output", "o", formats[0],
		"Output format ("+strings.Join(formats, "|")+")")
	addFlagValidation(cmd, "output", oneOf(formats...))
}
