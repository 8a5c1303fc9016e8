package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/plenumhq/plenum/internal/client"
	"github.com/plenumhq/plenum/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL       string
	apiToken      string
	operatorToken string
	actor         string
	jsonOutput    bool

	plenumClient client.PlenumClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultHTTPURL() string {
	if s := os.Getenv("PLENUM_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "plenumd <command>",
	Short: "Legislative voting and quorum resolution service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		color.NoColor = !ui.ShouldUseColor()
		plenumClient = client.NewHTTPClient(httpURL, apiToken, actor, operatorToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if plenumClient != nil {
			plenumClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("PLENUM_API_TOKEN"), "API bearer token")
	rootCmd.PersistentFlags().StringVar(&operatorToken, "operator-token", os.Getenv("PLENUM_OPERATOR_TOKEN"), "operator token for retroactive mutations")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name recorded on mutations")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "sessions", Title: "Sessions:"},
		&cobra.Group{ID: "voting", Title: "Voting:"},
		&cobra.Group{ID: "rules", Title: "Rules:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(presentCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
