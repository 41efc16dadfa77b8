package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"repolens/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List answered queries or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				rec, err := backend.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ok, err := printStructured(out, rec); ok {
					return err
				}
				printAnswer(out, rec, true)
				return nil
			}

			records, err := backend.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if records == nil {
				records = []history.Record{}
			}
			if ok, err := printStructured(out, records); ok {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.ID,
					formatAge(r.CreatedAt),
					strconv.Itoa(len(r.Invocations)),
					strconv.FormatBool(r.Degraded),
					shorten(r.Query, 60),
				})
			}
			return printTable(out, []string{"ID", "AGE", "TOOLS", "DEGRADED", "QUERY"}, rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to list")

	return cmd
}
