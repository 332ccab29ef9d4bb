package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe"
	"github.com/hupe1980/agentpipe/samples"
)

func newPipelineCmd(flags *rootFlags) *cobra.Command {
	var demo demoFlags

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run texts through the extract, validate and format pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.sessionOptions(cmd, "data_pipeline_demo")
			if err != nil {
				return err
			}

			m, err := agentpipe.NewPipelineSession(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			printSessionInfo(out, m)

			if !demo.skipExamples {
				fmt.Fprintln(out, "Processing example data through the pipeline:")
				for i, data := range samples.PipelineInputs {
					fmt.Fprintf(out, "\n%d. Input: %s\n", i+1, data)

					resp, err := m.RunQuery(ctx, samples.PipelineQuery(data))
					if err != nil {
						fmt.Fprintf(out, "   Error: %v\n", err)
						continue
					}
					fmt.Fprintf(out, "   Result: %s\n", preview(resp, 200))
				}
			}

			if demo.interactive {
				return interactiveLoop(ctx, m, cmd.InOrStdin(), out, "Enter data to process:", samples.PipelineQuery)
			}

			return nil
		},
	}

	demo.register(cmd, "texts")

	return cmd
}
