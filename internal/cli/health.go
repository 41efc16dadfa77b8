package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the Tool Gateway is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()
			url := backend.Config().Gateway.BaseURL
			if err := backend.Health(ctx); err != nil {
				color.New(color.FgRed).Fprintf(out, "gateway %s: unavailable\n", url)
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "gateway %s: ok\n", url)
			fmt.Fprintf(out, "tools in catalog: %d\n", len(backend.Tools()))
			return nil
		},
	}
}
