package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List upcoming calendar events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Google.CalendarID == "" {
			return errors.New("google.calendar_id is not set")
		}
		ctx := context.Background()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.agenda == nil {
			return errors.New("calendar unavailable, see the log")
		}

		events, err := a.agenda.Upcoming(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, events)
		}

		display.Header(fmt.Sprintf("Coming up (%d)", len(events)))
		for _, e := range events {
			when := e.Start.Format("Mon 15:04")
			if e.AllDay {
				when = e.Start.Format("Mon Jan 2")
			}
			line := fmt.Sprintf("  %s  %s", display.Muted.Render(when), e.Summary)
			if e.Location != "" {
				line += display.Dim.Render(" · " + e.Location)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}
