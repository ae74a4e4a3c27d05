package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/status"
)

var (
	statusTask  string
	statusState string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the agent is doing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		rep := a.status.Status(ctx)
		if jsonOutput {
			return printJSON(cmd, rep)
		}

		style := display.StatusStyle(rep.StatusClass)
		fmt.Printf("%s %s  %s\n", rep.StatusEmoji, style.Render(rep.AIStatus), rep.CurrentTask)
		if rep.Uptime != nil {
			fmt.Println(display.Dim.Render("  uptime " + *rep.Uptime))
		}
		if rep.HeartbeatAgo != nil {
			fmt.Println(display.Dim.Render("  last heartbeat " + *rep.HeartbeatAgo))
		}
		if len(rep.ActiveSessions) > 0 {
			fmt.Println()
			display.SubHeader("Sessions")
			for _, s := range rep.ActiveSessions {
				mark := display.Dim.Render("·")
				if s.Active {
					mark = display.Success.Render("●")
				}
				fmt.Printf("  %s %s %s\n", mark, display.Truncate(s.Name, 40), display.Dim.Render(s.Modified))
			}
		}
		return nil
	},
}

var statusSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the agent status file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var task, state *string
		if cmd.Flags().Changed("task") {
			task = &statusTask
		}
		if cmd.Flags().Changed("state") {
			switch statusState {
			case status.Working, status.Idle, status.Offline:
			default:
				return fmt.Errorf("state must be %s, %s or %s", status.Working, status.Idle, status.Offline)
			}
			state = &statusState
		}
		if task == nil && state == nil {
			return fmt.Errorf("nothing to set: pass --task and/or --state")
		}

		r := status.NewReader(cfg.Data.StatusFile, cfg.Workspace.HeartbeatState, cfg.Agent.SessionsDir, nil, logger)
		data, err := r.Update(task, state)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, data)
		}
		display.SuccessMsg("Status updated")
		return nil
	},
}

func init() {
	statusSetCmd.Flags().StringVar(&statusTask, "task", "", "Current task")
	statusSetCmd.Flags().StringVar(&statusState, "state", "", "Agent state (working, idle, offline)")

	statusCmd.AddCommand(statusSetCmd)
	rootCmd.AddCommand(statusCmd)
}
