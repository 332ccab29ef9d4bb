package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe"
	"github.com/hupe1980/agentpipe/samples"
	"github.com/hupe1980/agentpipe/session"
)

func newBenchmarkCmd(flags *rootFlags) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare the parallel aggregator with a sequential run of the same agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.sessionOptions(cmd, "parallel_aggregator_benchmark")
			if err != nil {
				return err
			}

			parallel, err := agentpipe.NewAggregatorSession(opts)
			if err != nil {
				return err
			}
			defer parallel.Close()

			seqComposite, err := samples.NewSequentialAggregator(func(o *samples.AggregatorOptions) {
				o.Feed = flags.newFeed()
			})
			if err != nil {
				return err
			}

			sequential, err := agentpipe.NewSession(seqComposite, opts)
			if err != nil {
				return err
			}
			defer sequential.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Query: %s\n", query)

			seqTime, err := timeRun(ctx, sequential, query)
			if err != nil {
				return err
			}
			parTime, err := timeRun(ctx, parallel, query)
			if err != nil {
				return err
			}

			printComparison(out, seqTime, parTime)

			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", samples.AggregatorQueries[0], "query to run in both modes")

	return cmd
}

func timeRun(ctx context.Context, m *session.Manager, query string) (time.Duration, error) {
	start := time.Now()

	res, err := m.Run(ctx, query)
	if err != nil {
		return 0, err
	}
	if f, ok := res.FirstFailure(); ok {
		return 0, fmt.Errorf("%s: step %d (%s) failed: %s", res.Composite, f.Index, f.Agent, f.Message)
	}

	return time.Since(start), nil
}

func printComparison(out io.Writer, seq, par time.Duration) {
	fmt.Fprintf(out, "Sequential execution: %s\n", formatSeconds(seq))
	fmt.Fprintf(out, "Parallel execution:   %s\n", formatSeconds(par))

	if par <= 0 || seq <= 0 {
		fmt.Fprintln(out, "Speedup factor: n/a")
		return
	}

	fmt.Fprintf(out, "Performance improvement: %.1f%%\n", float64(seq-par)/float64(seq)*100)
	fmt.Fprintf(out, "Speedup factor: %.1fx\n", float64(seq)/float64(par))
}
