package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
)

var (
	taskPriority string
	taskColumn   string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the task board",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		board := a.tasks.Board()
		if jsonOutput {
			return printJSON(cmd, board)
		}

		stats := board.Stats()
		display.Header(fmt.Sprintf("Tasks (%d)", stats.Total))
		for _, col := range []tasks.Column{tasks.ColumnTodo, tasks.ColumnInProgress, tasks.ColumnDone} {
			entries := board.Column(col)
			fmt.Println()
			display.SubHeader(fmt.Sprintf("%s · %d", col.Label(), len(entries)))
			for _, e := range entries {
				f := e.Common()
				fmt.Println(display.TaskLine(f.Priority, f.Text, f.Source, taskRef(e)))
			}
		}
		return nil
	},
}

// taskRef is what "tasks move" accepts for e.
func taskRef(e tasks.Entry) string {
	switch t := e.(type) {
	case *tasks.FileTask:
		return fmt.Sprintf("%s:%d", t.Path, t.Line)
	case *tasks.DashboardTask:
		return t.ID
	}
	return ""
}

var tasksAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add a dashboard task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.tasks.AddTask(strings.Join(args, " "), taskPriority, taskColumn)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, task)
		}
		display.SuccessMsg("Added %s: %s", task.ID, task.Text)
		return nil
	},
}

// parseFileRef splits "path:line". ok is false for a plain task id.
func parseFileRef(ref string) (path string, line int, ok bool) {
	i := strings.LastIndex(ref, ":")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(ref[i+1:])
	if err != nil {
		return "", 0, false
	}
	return ref[:i], n, true
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move (ID | FILE:LINE) COLUMN",
	Short: "Move a task to todo, in_progress or done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ref, column := args[0], args[1]
		if path, line, ok := parseFileRef(ref); ok {
			res, err := a.tasks.MoveFileTask(path, line, column)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, res)
			}
			display.SuccessMsg("%s:%d → %s", path, line, res.Column.Label())
			fmt.Println("  " + display.Dim.Render(res.NewLine))
			return nil
		}

		task, err := a.tasks.MoveTask(ref, column)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, task)
		}
		display.SuccessMsg("%s → %s", task.ID, task.Column.Label())
		return nil
	},
}

func init() {
	tasksAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", tasks.DefaultPriority, "Priority (high, normal, low)")
	tasksAddCmd.Flags().StringVarP(&taskColumn, "column", "c", string(tasks.ColumnTodo), "Column (todo, in_progress, done)")

	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	rootCmd.AddCommand(tasksCmd)
}
