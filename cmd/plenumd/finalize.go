package main

import (
	"context"
	"fmt"

	"github.com/plenumhq/plenum/internal/client"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/ui"
	"github.com/spf13/cobra"
)

var (
	finalizeRound       int
	finalizeApplication string
	finalizeNote        string
)

var finalizeCmd = &cobra.Command{
	Use:     "finalize <session-id> <proposal-id>",
	Short:   "Close a voting round and resolve the quorum",
	GroupID: "voting",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := plenumClient.Finalize(context.Background(), &client.FinalizeRequest{
			SessionID:   args[0],
			ProposalID:  args[1],
			Round:       finalizeRound,
			Application: model.VotingApplication(finalizeApplication),
			Note:        finalizeNote,
		})
		if err != nil {
			return fmt.Errorf("finalizing vote: %w", err)
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}

		agg := result.Aggregation
		ui.VerdictColor(result.Verdict.Approved).Println(result.Verdict.Message)
		fmt.Printf("Proposal:  %s (round %d)\n", agg.ProposalID, agg.Round)
		fmt.Printf("Tally:     %d yes / %d no / %d abstain\n",
			agg.Tally.Yes, agg.Tally.No, agg.Tally.Abstain)
		fmt.Printf("Rule:      %s (%s)\n", agg.RuleID, agg.QuorumType)
		fmt.Printf("Detail:    %s\n", result.Verdict.Detail)
		if agg.Version > 1 {
			fmt.Printf("Version:   %d (supersedes prior verdict)\n", agg.Version)
		}
		return nil
	},
}

func init() {
	finalizeCmd.Flags().IntVar(&finalizeRound, "round", 1, "voting round")
	finalizeCmd.Flags().StringVar(&finalizeApplication, "application", "simple_vote", "voting application selecting the quorum rule")
	finalizeCmd.Flags().StringVar(&finalizeNote, "note", "", "retroactive note (required when superseding a verdict on a concluded session)")
}
