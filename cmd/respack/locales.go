package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"respack/internal/locale"
)

var localesCmd = &cobra.Command{
	Use:   "locales [name...]",
	Short: "Show locale qualifier normalization",
	Long:  "Convert locale names between canonical tags and platform qualifiers. Without arguments, print the legacy exception table.",
	RunE:  localesExecution,
}

func localesExecution(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "canonical  qualifier")
		for _, m := range locale.LegacyMappings() {
			fmt.Fprintf(out, "%-10s %s\n", m.Canonical, m.Android)
		}
		return nil
	}
	for _, name := range args {
		if qualifier, ok := locale.ToAndroid(name); ok {
			fmt.Fprintf(out, "%s -> %s\n", name, qualifier)
			continue
		}
		if normalized, ok := locale.Normalize(name); ok {
			fmt.Fprintf(out, "%s -> %s (qualifier normalization)\n", name, normalized)
			continue
		}
		return fmt.Errorf("unsupported locale %q", name)
	}
	return nil
}
