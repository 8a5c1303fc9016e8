package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/plenumhq/plenum/internal/client"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/voting"
	"github.com/spf13/cobra"
)

var (
	voteRound         int
	voteJustification string
)

var voteCmd = &cobra.Command{
	Use:     "vote <session-id> <proposal-id> <legislator>=<choice>...",
	Short:   "Record a batch of ballots",
	GroupID: "voting",
	Long: `Record one or more ballots for a proposal. Each ballot is given as
<legislator-id>=<choice> where choice is yes, no, abstain, or absent.

  plenumd vote ses-abc prop-42 leg-1=yes leg-2=no leg-3=abstain`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ballots := make([]voting.BallotInput, 0, len(args)-2)
		for _, arg := range args[2:] {
			leg, choice, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("ballot %q: expected <legislator>=<choice>", arg)
			}
			ballots = append(ballots, voting.BallotInput{
				LegislatorID: leg,
				Choice:       model.BallotChoice(choice),
			})
		}

		outcomes, err := plenumClient.RecordBallots(context.Background(), &client.RecordBallotsRequest{
			SessionID:     args[0],
			ProposalID:    args[1],
			Round:         voteRound,
			Ballots:       ballots,
			Justification: voteJustification,
		})
		if err != nil {
			return fmt.Errorf("recording ballots: %w", err)
		}

		if jsonOutput {
			printJSON(outcomes)
			return nil
		}
		for _, o := range outcomes {
			note := ""
			if o.WasUpdate {
				note = " (superseded prior ballot)"
			}
			if !o.Recorded {
				note = " (not recorded)"
			}
			fmt.Printf("%s: %s%s\n", o.LegislatorID, o.Choice, note)
		}
		return nil
	},
}

func init() {
	voteCmd.Flags().IntVar(&voteRound, "round", 1, "voting round")
	voteCmd.Flags().StringVar(&voteJustification, "justification", "", "justification (required on concluded sessions)")
}
