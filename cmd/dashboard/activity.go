package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
)

var (
	activityDate     string
	activityCategory string
	activityLimit    int
	activityToday    bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the agent's activity feed, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		q := activity.Query{Date: activityDate, Category: activity.Category(activityCategory), Limit: activityLimit}
		if activityToday {
			q.Date = a.activity.Now().Format("2006-01-02")
		}
		if q.Category != "" && !q.Category.Valid() {
			return fmt.Errorf("unknown category %q", activityCategory)
		}

		entries := a.activity.Activities(q)
		if jsonOutput {
			return printJSON(cmd, map[string]interface{}{"activities": entries, "count": len(entries)})
		}

		display.Header(fmt.Sprintf("Activity (%d)", len(entries)))
		if len(entries) == 0 {
			fmt.Println(display.Dim.Render("  Nothing logged."))
			return nil
		}
		for _, e := range entries {
			fmt.Println(display.ActivityLine(e.Info().Emoji, e.Date, e.Time, e.Text))
		}
		return nil
	},
}

var activityDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List dates with a memory log",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		dates := a.activity.AvailableDates()
		if jsonOutput {
			return printJSON(cmd, dates)
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().StringVarP(&activityDate, "date", "d", "", "Only this date (YYYY-MM-DD)")
	activityCmd.Flags().StringVarP(&activityCategory, "category", "c", "", "Only this category (email, message, system, memory, task, ai, other)")
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 50, "Maximum entries (0 for all)")
	activityCmd.Flags().BoolVar(&activityToday, "today", false, "Only today's entries")

	activityCmd.AddCommand(activityDatesCmd)
	rootCmd.AddCommand(activityCmd)
}
