package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/drive"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Google Drive backup and inbox",
}

var driveBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy dashboard data and memory logs to Drive once",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Google.DriveFolderID == "" {
			return errors.New("google.drive_folder_id is not set")
		}
		ctx := context.Background()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.driveService(ctx)
		if err != nil {
			return err
		}
		rep, err := drive.NewBackup(svc, a.repo, cfg.Google.DriveFolderID, a.backupRoots(), logger).Run(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, rep)
		}
		display.SuccessMsg("Backup done: %d uploaded, %d updated, %d unchanged", rep.Uploaded, rep.Updated, rep.Unchanged)
		if rep.Failed > 0 {
			display.ErrorMsg("%d files failed, see the log", rep.Failed)
		}
		return nil
	},
}

var driveInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Import new text files from the Drive inbox folder as notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Google.InboxFolderID == "" {
			return errors.New("google.inbox_folder_id is not set")
		}
		ctx := context.Background()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.driveService(ctx)
		if err != nil {
			return err
		}
		n, err := drive.NewWatcher(svc, a.repo, cfg.Google.InboxFolderID, a.importNote, logger).WatchOnce(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, map[string]int{"imported": n})
		}
		display.SuccessMsg("Imported %s", plural(n, "note"))
		return nil
	},
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func init() {
	driveCmd.AddCommand(driveBackupCmd)
	driveCmd.AddCommand(driveInboxCmd)
	rootCmd.AddCommand(driveCmd)
}
