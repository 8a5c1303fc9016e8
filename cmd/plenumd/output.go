package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSession(s *model.Session) {
	fmt.Printf("ID:         %s\n", s.ID)
	if s.Name != "" {
		fmt.Printf("Name:       %s\n", s.Name)
	}
	fmt.Printf("State:      %s\n", ui.StateColor(s.State).Sprint(s.State))
	fmt.Printf("Seats:      %d\n", s.SeatCount)
	fmt.Printf("Scheduled:  %s\n", s.ScheduledAt.Format("2006-01-02 15:04:05"))
	if s.OpenedAt != nil {
		fmt.Printf("Opened:     %s\n", s.OpenedAt.Format("2006-01-02 15:04:05"))
	}
	if s.ConcludedAt != nil {
		fmt.Printf("Concluded:  %s\n", s.ConcludedAt.Format("2006-01-02 15:04:05"))
	}
}

func printSessionTable(sessions []*model.Session) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tSEATS\tNAME\tSCHEDULED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.State, s.SeatCount, s.Name,
			s.ScheduledAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\n%d sessions\n", len(sessions))
}
