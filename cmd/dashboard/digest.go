package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
)

var digestSave bool

var digestCmd = &cobra.Command{
	Use:   "digest [DATE]",
	Short: "Summarise a day of activity with the configured AI provider",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		d, err := a.digester.Digest(ctx, date)
		if err != nil {
			return err
		}
		var saved string
		if digestSave {
			if saved, err = d.Save(cfg.Data.DigestsDir); err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(cmd, d)
		}

		display.Header(fmt.Sprintf("Digest for %s (%d entries)", d.Date, d.Entries))
		fmt.Println()
		fmt.Println(d.Summary)
		if saved != "" {
			fmt.Println()
			display.SuccessMsg("Saved to %s", saved)
		}
		return nil
	},
}

func init() {
	digestCmd.Flags().BoolVar(&digestSave, "save", false, "Also write the digest to the digests directory")
	rootCmd.AddCommand(digestCmd)
}
