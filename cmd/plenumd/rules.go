package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/plenumhq/plenum/internal/quorum"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:     "rules <subcommand>",
	Short:   "Manage quorum rules",
	GroupID: "rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quorum rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := plenumClient.ListRules(context.Background())
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}

		if jsonOutput {
			printJSON(rules)
			return nil
		}

		header := color.New(color.Bold)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		header.Fprintln(w, "ID\tAPPLICATION\tTYPE\tBASE\tOVERRIDES\tDEFAULT")
		for _, r := range rules {
			overrides := "-"
			if r.MinimumPercentage != nil && r.MinimumCount != nil {
				overrides = fmt.Sprintf("%g%% | %d votes", *r.MinimumPercentage, *r.MinimumCount)
			} else if r.MinimumPercentage != nil {
				overrides = fmt.Sprintf("%g%%", *r.MinimumPercentage)
			} else if r.MinimumCount != nil {
				overrides = fmt.Sprintf("%d votes", *r.MinimumCount)
			}
			def := ""
			if r.IsDefault {
				def = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Application, r.QuorumType, r.Base, overrides, def)
		}
		w.Flush()
		fmt.Printf("\n%d rules\n", len(rules))
		return nil
	},
}

var rulesSeedCmd = &cobra.Command{
	Use:   "seed [rules.toml]",
	Short: "Upload a rule set, filling in missing defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := quorum.DefaultRules()
		if len(args) == 1 {
			loaded, err := quorum.LoadRuleSet(args[0])
			if err != nil {
				return fmt.Errorf("loading rule set: %w", err)
			}
			rules = loaded
		}

		existing, err := plenumClient.ListRules(context.Background())
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}
		bound := make(map[string]bool)
		for _, r := range existing {
			if r.IsDefault {
				bound[r.Application.String()] = true
			}
		}

		var inserted int
		for _, rule := range rules {
			if bound[rule.Application.String()] {
				continue
			}
			rule.IsDefault = true
			if _, err := plenumClient.PutRule(context.Background(), rule); err != nil {
				return fmt.Errorf("storing rule for %s: %w", rule.Application, err)
			}
			inserted++
		}

		fmt.Printf("Seeded %d rules (%d applications already bound)\n", inserted, len(bound))
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesSeedCmd)
}
