package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe/session"
)

// demoFlags choose whether the predefined examples and the interactive loop run.
// The examples run first.
type demoFlags struct {
	interactive  bool
	skipExamples bool
}

func (d *demoFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().BoolVarP(&d.interactive, "interactive", "i", false, "read "+what+" from stdin after the examples")
	cmd.Flags().BoolVar(&d.skipExamples, "skip-examples", false, "do not run the predefined examples")
}

// interactiveLoop reads queries line by line until EOF or one of quit,
// exit and q. Each line is passed through toQuery before it is run.
func interactiveLoop(ctx context.Context, m *session.Manager, in io.Reader, out io.Writer, prompt string, toQuery func(string) string) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(out, "\n%s ", prompt)

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		start := time.Now()
		resp, err := m.RunQuery(ctx, toQuery(line))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "Result (%s):\n%s\n", formatSeconds(time.Since(start)), resp)
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func printSessionInfo(out io.Writer, m *session.Manager) {
	info := m.Info()
	fmt.Fprintf(out, "Session: app=%s user=%s id=%s composite=%s\n", info.AppName, info.UserID, info.SessionID, info.Composite)
}
