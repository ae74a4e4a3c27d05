package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List notes left for the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		list := a.notes.List()
		if jsonOutput {
			return printJSON(cmd, map[string]interface{}{"notes": list, "count": len(list)})
		}

		display.Header(fmt.Sprintf("Notes (%d, %d pending)", len(list), a.notes.Pending()))
		now := a.notes.Now()
		for _, n := range list {
			when := ""
			if t, ok := store.ParseTimestamp(n.Timestamp); ok {
				when = display.TimeAgo(t, now)
			}
			fmt.Printf("  %s %-9s %s  %s\n",
				display.Dim.Render(n.ID), noteStatus(n.Status), display.Truncate(n.Text, 70), display.Dim.Render(when))
		}
		return nil
	},
}

func noteStatus(s notes.Status) string {
	switch s {
	case notes.StatusPending:
		return display.Warning.Render(string(s))
	case notes.StatusProcessed:
		return display.Success.Render(string(s))
	}
	return display.Dim.Render(string(s))
}

var notesAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Leave a note for the agent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.notes.Add(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, n)
		}
		display.SuccessMsg("Note saved (%s)", n.ID)
		return nil
	},
}

var notesMarkCmd = &cobra.Command{
	Use:   "mark ID STATUS",
	Short: "Set a note's status (pending, seen, processed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.notes.UpdateStatus(args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, n)
		}
		display.SuccessMsg("%s marked as %s", n.ID, n.Status)
		return nil
	},
}

func init() {
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesMarkCmd)
	rootCmd.AddCommand(notesCmd)
}
