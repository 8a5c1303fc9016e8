package main

import (
	"context"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/client"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session <subcommand>",
	Short:   "Manage plenary sessions",
	GroupID: "sessions",
}

var (
	sessionName      string
	sessionSeats     int
	sessionScheduled string
)

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		scheduledAt := time.Now()
		if sessionScheduled != "" {
			t, err := time.Parse(time.RFC3339, sessionScheduled)
			if err != nil {
				return fmt.Errorf("parsing --at: %w", err)
			}
			scheduledAt = t
		}

		session, err := plenumClient.CreateSession(context.Background(), &client.CreateSessionRequest{
			Name:        sessionName,
			SeatCount:   sessionSeats,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		if jsonOutput {
			printJSON(session)
		} else {
			printSession(session)
		}
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := plenumClient.ListSessions(context.Background())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if jsonOutput {
			printJSON(sessions)
		} else {
			printSessionTable(sessions)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := plenumClient.GetSession(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting session: %w", err)
		}

		if jsonOutput {
			printJSON(session)
		} else {
			printSession(session)
		}
		return nil
	},
}

func transitionCommand(use, short string, to model.SessionState) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := plenumClient.TransitionSession(context.Background(), args[0], to)
			if err != nil {
				return fmt.Errorf("%s session: %w", use, err)
			}

			if jsonOutput {
				printJSON(session)
			} else {
				fmt.Printf("Session %s is now %s\n", session.ID, session.State)
			}
			return nil
		},
	}
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionName, "name", "", "session name")
	sessionCreateCmd.Flags().IntVar(&sessionSeats, "seats", 0, "total mandates of the chamber")
	sessionCreateCmd.Flags().StringVar(&sessionScheduled, "at", "", "scheduled time (RFC 3339, default now)")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(transitionCommand("open", "Open a scheduled session", model.SessionInProgress))
	sessionCmd.AddCommand(transitionCommand("conclude", "Conclude a session in progress", model.SessionConcluded))
	sessionCmd.AddCommand(transitionCommand("cancel", "Cancel a session", model.SessionCancelled))
}
