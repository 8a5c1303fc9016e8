package main

import (
	"context"
	"fmt"

	"github.com/plenumhq/plenum/internal/client"
	"github.com/spf13/cobra"
)

var (
	presentAbsent        bool
	presentJustification string
)

var presentCmd = &cobra.Command{
	Use:     "present <session-id> <legislator-id>",
	Short:   "Mark a legislator present (or absent) for a session",
	GroupID: "voting",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := plenumClient.MarkPresence(context.Background(), &client.MarkPresenceRequest{
			SessionID:     args[0],
			LegislatorID:  args[1],
			Present:       !presentAbsent,
			Justification: presentJustification,
		})
		if err != nil {
			return fmt.Errorf("marking presence: %w", err)
		}

		if jsonOutput {
			printJSON(rec)
			return nil
		}
		status := "present"
		if !rec.Present {
			status = "absent"
		}
		fmt.Printf("Legislator %s marked %s in session %s\n", rec.LegislatorID, status, rec.SessionID)
		return nil
	},
}

func init() {
	presentCmd.Flags().BoolVar(&presentAbsent, "absent", false, "mark the legislator absent instead")
	presentCmd.Flags().StringVar(&presentJustification, "justification", "", "justification (required on concluded sessions)")
}
