package helpers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AddFormatFlag adds a standard --output/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supportedFormats []OutputFormat) {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringVarP(formatVar, "output", "o", string(defaultFormat), description)

	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// enumValue is a string flag that only accepts one of a fixed set of values.
type enumValue struct {
	target *string
	values []string
}

var _ pflag.Value = (*enumValue)(nil)

func (e *enumValue) String() string { return *e.target }

func (e *enumValue) Set(s string) error {
	if !slices.Contains(e.values, s) {
		return fmt.Errorf("must be one of: %s", strings.Join(e.values, ", "))
	}
	*e.target = s
	return nil
}

func (e *enumValue) Type() string { return "string" }

// AddEnumFlag adds a string flag restricted to values, with shell completion. Other values are
// rejected while parsing.
func AddEnumFlag(cmd *cobra.Command, target *string, name, defaultValue, usage string, values []string) {
	*target = defaultValue
	cmd.Flags().Var(&enumValue{target: target, values: values}, name,
		fmt.Sprintf("%s (%s)", usage, strings.Join(values, ", ")))

	_ = cmd.RegisterFlagCompletionFunc(name, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}
