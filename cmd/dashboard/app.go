package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/ai"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/auth"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/config"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/email"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/calendar"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/drive"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/gmail"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/google"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/status"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/sync"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/system"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// app holds the services every command works with.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	database *db.DB
	repo     *db.Repository
	auth     *auth.Service

	log      *activity.Log
	memory   *workspace.Memory
	docs     *workspace.Docs
	activity *activity.Service
	tasks    *tasks.Service
	notes    *notes.Service
	probe    *system.Probe
	status   *status.Reader
	email    *email.Service
	git      *sync.GitManager

	generator ai.Generator
	digester  *ai.Digester

	gmail  *gmail.Service
	agenda *calendar.Agenda
}

// newApp wires the services from cfg. Optional integrations that fail to
// start are logged and left nil.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	database, err := db.NewDB(cfg.Data.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := database.InitSchema(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, database: database}
	a.repo = db.NewRepository(database)
	a.auth = auth.NewService(a.repo, cfg.Server.SecretKey, logger.With("component", "auth"))

	ws := cfg.Workspace
	a.log = activity.NewLog(cfg.Data.ActivityLog, logger)
	a.memory = workspace.NewMemory(ws.MemoryDir, ws.MemoryFile)
	a.docs = workspace.NewDocs(ws.Dir, ws.DocsDirs)
	a.activity = activity.NewService(a.memory, a.log, logger.With("component", "activity"))
	a.tasks = tasks.NewService(ws.TodoPaths, ws.ExtraTodoPaths,
		store.NewJSONFile[tasks.StoredTask](cfg.Data.TasksFile), a.log, logger.With("component", "tasks"))
	a.notes = notes.NewService(store.NewJSONFile[notes.Note](cfg.Data.NotesFile), a.log, logger.With("component", "notes"))

	ports, _ := config.ParsePorts(cfg.Agent.WatchedPorts)
	watched := make([]system.WatchedPort, 0, len(ports))
	for _, p := range ports {
		watched = append(watched, system.WatchedPort{Name: p.Name, Port: p.Port})
	}
	a.probe = system.NewProbe(cfg.Agent.Gateway, cfg.Agent.Process, watched, logger.With("component", "system"))

	a.status = status.NewReader(cfg.Data.StatusFile, ws.HeartbeatState, cfg.Agent.SessionsDir, a.probe, logger.With("component", "status"))
	a.status.Agent = cfg.Agent.Process
	a.status.Gateway = cfg.Agent.Gateway
	if cfg.Agent.ActiveWindow > 0 {
		a.status.ActiveWindow = cfg.Agent.ActiveWindow
	}

	a.email = email.NewService(cfg.Email, ws.Dir, a.emailChecker(ctx), logger.With("component", "email"))

	if cfg.Git.AutoCommit {
		a.git = sync.NewGitManager(cfg.Git.AuthorName, cfg.Git.AuthorEmail, logger.With("component", "git"))
		a.git.Push = cfg.Git.Push
		a.git.SSHKey = cfg.Git.SSHKey
		a.tasks.OnFileMove = a.commitTodo
	}

	gen, err := ai.New(ctx, cfg.AI)
	switch {
	case err == nil:
		a.generator = gen
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Debug("ai disabled", "reason", err)
	default:
		logger.Warn("ai provider unavailable", "error", err)
	}
	a.digester = &ai.Digester{
		Generator: a.generator,
		Activity:  a.activity,
		Tasks:     a.tasks,
		Notes:     a.notes,
		Logger:    logger.With("component", "digest"),
	}

	if cfg.Google.CalendarID != "" {
		if err := a.connectCalendar(ctx); err != nil {
			logger.Warn("calendar unavailable", "error", err)
		}
	}

	return a, nil
}

// connectCalendar sets up the agenda shown on the dashboard.
func (a *app) connectCalendar(ctx context.Context) error {
	g := a.cfg.Google
	if g.CredentialsFile == "" {
		return errors.New("google credentials file not configured")
	}
	opt, err := google.ClientOption(ctx, g.CredentialsFile, g.Subject, calendar.Scope)
	if err != nil {
		return err
	}
	svc, err := calendar.NewService(ctx, g.CalendarID, opt)
	if err != nil {
		return err
	}
	a.agenda = calendar.NewAgenda(svc, g.CalendarHorizon, g.CalendarRefresh, a.logger.With("component", "calendar"))
	return nil
}

// writeDigest generates today's digest, saves it and records it as activity.
func (a *app) writeDigest(ctx context.Context) error {
	d, err := a.digester.Digest(ctx, "")
	if err != nil {
		return err
	}
	path, err := d.Save(a.cfg.Data.DigestsDir)
	if err != nil {
		return err
	}
	a.logger.Info("digest saved", "path", path)
	return a.log.Append(fmt.Sprintf("Wrote daily digest for %s", d.Date))
}

// emailChecker picks the Gmail API when configured and falls back to the
// agent's check script.
func (a *app) emailChecker(ctx context.Context) email.Checker {
	cfg := a.cfg
	script := email.NewScriptChecker(cfg.Email.Interpreter, cfg.Email.CheckerScript, cfg.Workspace.Dir,
		cfg.Email.Account, cfg.Email.Password, cfg.Email.Timeout)
	if cfg.Email.Provider != "gmail" {
		return script
	}
	if cfg.Google.CredentialsFile == "" {
		a.logger.Warn("gmail provider needs google credentials, using check script")
		return script
	}
	subject := cfg.Google.Subject
	if subject == "" {
		subject = cfg.Email.Account
	}
	client, err := google.NewHTTPClient(ctx, cfg.Google.CredentialsFile, subject, gmail.Scope)
	if err != nil {
		a.logger.Warn("gmail client unavailable, using check script", "error", err)
		return script
	}
	svc, err := gmail.NewService(ctx, client)
	if err != nil {
		a.logger.Warn("gmail service unavailable, using check script", "error", err)
		return script
	}
	a.gmail = svc
	return &email.GmailChecker{
		Source:  svc,
		Senders: email.SenderAddresses(cfg.Email.Senders),
		Timeout: cfg.Email.Timeout,
	}
}

// commitTodo commits a rewritten TODO file to the workspace repository.
func (a *app) commitTodo(res tasks.MoveResult) {
	msg := fmt.Sprintf("Move task to %s: %s", res.Column.Label(), res.NewLine)
	committed, err := a.git.CommitFile(res.SourceFile, msg)
	switch {
	case errors.Is(err, sync.ErrNotInRepo):
		a.logger.Debug("todo file not in a git repository", "file", res.SourceFile)
	case err != nil:
		a.logger.Warn("failed to commit todo file", "file", res.SourceFile, "error", err)
	case committed:
		a.logger.Info("todo file committed", "file", res.SourceFile)
	}
}

// driveService connects to Drive with the configured service account.
func (a *app) driveService(ctx context.Context) (*drive.Service, error) {
	if a.cfg.Google.CredentialsFile == "" {
		return nil, errors.New("google credentials file not configured")
	}
	opt, err := google.ClientOption(ctx, a.cfg.Google.CredentialsFile, a.cfg.Google.Subject, drive.Scope)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, opt)
}

// backupRoots are the directories copied to Drive.
func (a *app) backupRoots() []drive.Root {
	return []drive.Root{
		{Label: "data", Dir: a.cfg.Data.Dir, Pattern: "*.json"},
		{Label: "data", Dir: a.cfg.Data.Dir, Pattern: filepath.Base(a.cfg.Data.ActivityLog)},
		{Label: "memory", Dir: a.cfg.Workspace.MemoryDir, Pattern: "*.md"},
	}
}

// importNote turns a text file from the Drive inbox into a note.
func (a *app) importNote(name, content string) error {
	_, err := a.notes.Add(drive.NoteText(name, content))
	return err
}

func (a *app) Close() {
	if a.generator != nil {
		a.generator.Close()
	}
	a.database.Close()
}
