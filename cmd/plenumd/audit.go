package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:     "audit <session-id>",
	Short:   "Show the retroactive audit trail for a session",
	GroupID: "sessions",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := plenumClient.ListAudit(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing audit trail: %w", err)
		}

		if jsonOutput {
			printJSON(entries)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tACTION\tACTOR\tJUSTIFICATION\tAT")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				e.ID, e.Action, e.Actor, e.Justification,
				e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	},
}
