package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported formats and transforms",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.stdout, "Formats:")
			for _, n := range a.session.Formats() {
				fmt.Fprintf(a.stdout, "  %s\n", n)
			}
			fmt.Fprintln(a.stdout, "Transforms:")
			for _, n := range a.session.Transforms() {
				fmt.Fprintf(a.stdout, "  %s\n", n)
			}
			return nil
		},
	}
}
