package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/display"
)

var (
	userRole     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Create an account (password from --password or stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		password := userPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		u, err := a.auth.CreateUser(args[0], password, userRole, "cli")
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, u)
		}
		display.SuccessMsg("Created %s (%s)", u.Username, u.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.auth.Users()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, users)
		}
		display.Header(fmt.Sprintf("Users (%d)", len(users)))
		for _, u := range users {
			role := display.Dim.Render(u.Role)
			if u.IsAdmin() {
				role = display.Bold.Render(u.Role)
			}
			fmt.Printf("  %-20s %-8s %s\n", u.Username, role,
				display.Dim.Render(fmt.Sprintf("created %s by %s", humanize.Time(u.CreatedAt), u.CreatedBy)))
		}
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME",
	Short: "Delete an account and its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.repo.GetUserByUsername(args[0])
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: %s", db.ErrUserNotFound, args[0])
		}
		if err := a.auth.DeleteUser(u.ID); err != nil {
			return err
		}
		display.SuccessMsg("Deleted %s", u.Username)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", db.RoleViewer, "Role (admin or viewer)")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (read from stdin when empty)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
