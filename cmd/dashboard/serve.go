package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/api"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/commands"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/discord"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/drive"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/gmail"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/telegram"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/schedule"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard and the configured background integrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.auth.EnsureDefaultAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
			return fmt.Errorf("failed to create default admin: %w", err)
		}

		if cfg.Server.Debug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		var wg stdsync.WaitGroup
		a.startBots(ctx, &wg)
		a.startGmailPoller(ctx, &wg)
		a.startDrive(ctx, &wg)
		a.startDigests(ctx, &wg)

		h := &api.Handler{
			Auth:          a.auth,
			Activity:      a.activity,
			Tasks:         a.tasks,
			Notes:         a.notes,
			Memory:        a.memory,
			Docs:          a.docs,
			Email:         a.email,
			System:        a.probe,
			Status:        a.status,
			Digester:      a.digester,
			DigestsDir:    cfg.Data.DigestsDir,
			HeartbeatFile: cfg.Workspace.HeartbeatState,
			Logger:        logger.With("component", "http"),
		}
		if a.agenda != nil {
			h.Calendar = a.agenda
		}
		server := api.NewServer(h)

		logger.Info("🤖 Chitty Dashboard starting", "addr", cfg.Addr(), "workspace", cfg.Workspace.Dir)
		err = server.Run(ctx, cfg.Addr())
		stop()
		wg.Wait()
		return err
	},
}

// startBots runs the chat bots whose tokens are set.
func (a *app) startBots(ctx context.Context, wg *stdsync.WaitGroup) {
	handler := &commands.Handler{
		Notes:   a.notes,
		Tasks:   a.tasks,
		Status:  a.status,
		Allowed: a.cfg.Bots.AllowedUsers,
	}

	if token := a.cfg.Bots.TelegramToken; token != "" {
		bot, err := telegram.NewBot(token, handler, a.logger.With("component", "telegram"))
		if err != nil {
			a.logger.Error("failed to create telegram bot", "error", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bot.Run(ctx)
			}()
		}
	}

	if token := a.cfg.Bots.DiscordToken; token != "" {
		bot, err := discord.NewBot(token, handler, a.logger.With("component", "discord"))
		if err != nil {
			a.logger.Error("failed to create discord bot", "error", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := bot.Run(ctx); err != nil {
					a.logger.Error("discord bot stopped", "error", err)
				}
			}()
		}
	}
}

// startGmailPoller records new mail from watched senders as activity.
func (a *app) startGmailPoller(ctx context.Context, wg *stdsync.WaitGroup) {
	if a.gmail == nil || a.cfg.Email.PollInterval <= 0 {
		return
	}
	senders := make([]string, 0, len(a.cfg.Email.Senders))
	for _, s := range a.cfg.Email.Senders {
		senders = append(senders, s.Email)
	}
	poller := gmail.NewPoller(a.gmail, senders, a.cfg.Email.PollInterval, func(m gmail.Message) error {
		return a.log.Append(fmt.Sprintf("Email from %s: %s", m.From, m.Subject))
	}, a.logger.With("component", "gmail"))

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()
}

// startDrive schedules the Drive backup and inbox watcher when configured.
func (a *app) startDrive(ctx context.Context, wg *stdsync.WaitGroup) {
	g := a.cfg.Google
	if g.DriveFolderID == "" && g.InboxFolderID == "" {
		return
	}
	svc, err := a.driveService(ctx)
	if err != nil {
		a.logger.Error("drive unavailable", "error", err)
		return
	}

	if g.DriveFolderID != "" && g.BackupInterval > 0 {
		backup := drive.NewBackup(svc, a.repo, g.DriveFolderID, a.backupRoots(), a.logger.With("component", "drive-backup"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			backup.Start(ctx, g.BackupInterval)
		}()
	}
	if g.InboxFolderID != "" && g.WatchInterval > 0 {
		watcher := drive.NewWatcher(svc, a.repo, g.InboxFolderID, a.importNote, a.logger.With("component", "drive-inbox"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Start(ctx, g.WatchInterval)
		}()
	}
}

// startDigests writes the daily digest on the configured schedule.
func (a *app) startDigests(ctx context.Context, wg *stdsync.WaitGroup) {
	expr := a.cfg.AI.DigestSchedule
	if expr == "" {
		return
	}
	if a.generator == nil {
		a.logger.Warn("digest schedule set but no AI provider configured")
		return
	}
	sched, err := schedule.Parse(expr, nil)
	if err != nil {
		a.logger.Error("invalid digest schedule", "schedule", expr, "error", err)
		return
	}
	runner := &schedule.Runner{
		Name:     "digest",
		Schedule: sched,
		Job:      a.writeDigest,
		Logger:   a.logger,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runner.Run(ctx)
	}()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
