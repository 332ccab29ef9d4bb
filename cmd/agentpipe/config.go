package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and check it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, cfg.Summary())

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "Status: invalid (%v)\n", err)
				return err
			}

			fmt.Fprintln(out, "Status: ok")
			return nil
		},
	}
}
