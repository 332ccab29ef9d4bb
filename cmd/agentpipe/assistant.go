package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe"
	"github.com/hupe1980/agentpipe/samples"
)

func newAssistantCmd(flags *rootFlags) *cobra.Command {
	var demo demoFlags

	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Ask a single weather agent questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.sessionOptions(cmd, "weather_assistant_demo")
			if err != nil {
				return err
			}

			m, err := agentpipe.NewAssistantSession(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			printSessionInfo(out, m)

			if !demo.skipExamples {
				for i, q := range samples.AssistantQueries {
					fmt.Fprintf(out, "\n%d. Question: %s\n", i+1, q)

					resp, err := m.RunQuery(ctx, q)
					if err != nil {
						fmt.Fprintf(out, "   Error: %v\n", err)
						continue
					}
					fmt.Fprintf(out, "   Answer: %s\n", preview(resp, 200))
				}
			}

			if demo.interactive {
				return interactiveLoop(ctx, m, cmd.InOrStdin(), out, "You:", func(s string) string { return s })
			}

			return nil
		},
	}

	demo.register(cmd, "questions")

	return cmd
}
