package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repolens/internal/history"
)

func newAskCmd() *cobra.Command {
	var showResults bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a question about a repository",
		Example: `  repolens ask "How many open issues does octocat/Hello-World have?"
  repolens ask -o json what changed recently in golang/go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("question must not be empty")
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			rec, err := backend.Ask(ctx, query)
			if rec == nil {
				return err
			}
			if err != nil {
				backend.Logger().Warn("could not save query history", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			if ok, err := printStructured(out, rec); ok {
				return err
			}
			printAnswer(out, rec, showResults)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showResults, "show-results", false, "Also print a line per tool result")

	return cmd
}

func printAnswer(out io.Writer, rec *history.Record, showResults bool) {
	if rec.Degraded {
		color.New(color.FgYellow).Fprintln(out, "Planning failed; no tools were run.")
	}
	fmt.Fprintln(out, rec.Answer)

	if !showResults || len(rec.Results) == 0 {
		return
	}
	fmt.Fprintln(out)
	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	for i, r := range rec.Results {
		name := ""
		if i < len(rec.Invocations) {
			name = rec.Invocations[i].Tool
		}
		if r.Success {
			ok.Fprintf(out, "  [%d] %s: ok\n", i+1, name)
		} else {
			failed.Fprintf(out, "  [%d] %s: %s\n", i+1, name, r.Error)
		}
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
