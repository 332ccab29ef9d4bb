package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe"
	"github.com/hupe1980/agentpipe/samples"
)

func newAggregateCmd(flags *rootFlags) *cobra.Command {
	var demo demoFlags

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Fetch weather, news and stock data concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.sessionOptions(cmd, "parallel_aggregator_demo")
			if err != nil {
				return err
			}

			m, err := agentpipe.NewAggregatorSession(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			printSessionInfo(out, m)

			if !demo.skipExamples {
				total := time.Now()
				for i, q := range samples.AggregatorQueries {
					fmt.Fprintf(out, "\n%d. Query: %s\n", i+1, q)

					start := time.Now()
					resp, err := m.RunQuery(ctx, q)
					if err != nil {
						fmt.Fprintf(out, "   Error: %v\n", err)
						continue
					}
					fmt.Fprintf(out, "   Execution time: %s\n", formatSeconds(time.Since(start)))
					fmt.Fprintf(out, "   Response preview: %s\n", preview(resp, 150))
				}

				elapsed := time.Since(total)
				fmt.Fprintf(out, "\nTotal execution time: %s\n", formatSeconds(elapsed))
				fmt.Fprintf(out, "Average per query: %s\n", formatSeconds(elapsed/time.Duration(len(samples.AggregatorQueries))))
			}

			if demo.interactive {
				return interactiveLoop(ctx, m, cmd.InOrStdin(), out, "Query:", func(s string) string { return s })
			}

			return nil
		},
	}

	demo.register(cmd, "queries")

	return cmd
}
