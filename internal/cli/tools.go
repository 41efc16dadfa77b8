package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"repolens/internal/tool"
)

func newToolsCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the planner may call",
		Long: `List the local tool catalog. With --remote, ask the gateway which
tools it serves instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !remote {
				specs := backend.Tools()
				if ok, err := printStructured(out, specs); ok {
					return err
				}
				return printSpecs(out, specs)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			res := backend.RemoteTools(ctx)
			if !res.Success {
				return fmt.Errorf("list remote tools: %s", res.Error)
			}
			var specs []tool.Spec
			if outputFormat == "table" && json.Unmarshal(res.Data, &specs) == nil {
				return printSpecs(out, specs)
			}
			var doc any
			if err := json.Unmarshal(res.Data, &doc); err != nil {
				return err
			}
			if ok, err := printStructured(out, doc); ok {
				return err
			}
			return printJSON(out, doc)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Query the gateway's tool list")

	return cmd
}

func printSpecs(out io.Writer, specs []tool.Spec) error {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, []string{s.Name, shorten(s.Description, 70)})
	}
	return printTable(out, []string{"NAME", "DESCRIPTION"}, rows)
}
