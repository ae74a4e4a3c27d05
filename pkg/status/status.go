// Package status works out what the agent is doing from its processes,
// status file, heartbeat state and session files.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/system"
)

// Agent states.
const (
	Working = "working"
	Idle    = "idle"
	Offline = "offline"
)

// ProcessFinder looks up a running process by command line.
type ProcessFinder interface {
	FindProcess(ctx context.Context, pattern string) (*system.Process, error)
}

// Report is the agent's status as shown on the dashboard.
type Report struct {
	AIStatus       string    `json:"ai_status"`
	StatusEmoji    string    `json:"status_emoji"`
	StatusClass    string    `json:"status_class"`
	CurrentTask    string    `json:"current_task"`
	LastHeartbeat  *string   `json:"last_heartbeat"`
	HeartbeatAgo   *string   `json:"heartbeat_ago"`
	Uptime         *string   `json:"uptime"`
	ActiveSessions []Session `json:"active_sessions"`
}

// Session is a recently touched agent session file.
type Session struct {
	Name       string `json:"name"`
	Modified   string `json:"modified"`
	AgeMinutes int    `json:"age_minutes"`
	Active     bool   `json:"active"`
}

// Reader builds status reports.
type Reader struct {
	StatusFile    string
	HeartbeatFile string
	SessionsDir   string
	Agent         string
	Gateway       string
	ActiveWindow  time.Duration
	Processes     ProcessFinder
	Logger        *slog.Logger
	Now           func() time.Time
}

func NewReader(statusFile, heartbeatFile, sessionsDir string, procs ProcessFinder, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		StatusFile:    statusFile,
		HeartbeatFile: heartbeatFile,
		SessionsDir:   sessionsDir,
		Agent:         "clawdbot",
		Gateway:       "clawdbot-gateway",
		ActiveWindow:  10 * time.Minute,
		Processes:     procs,
		Logger:        logger,
		Now:           time.Now,
	}
}

type statusFile struct {
	CurrentTask *string `json:"current_task"`
	AIStatus    string  `json:"ai_status,omitempty"`
	StartedAt   string  `json:"started_at,omitempty"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

type heartbeatState struct {
	LastChecks map[string]interface{} `json:"lastChecks"`
}

// Status reads every signal and combines them. Missing or unreadable
// sources leave their fields empty.
func (r *Reader) Status(ctx context.Context) Report {
	now := r.Now()
	rep := Report{
		AIStatus:       Offline,
		StatusClass:    "danger",
		CurrentTask:    "Unknown",
		ActiveSessions: []Session{},
	}

	running := false
	if r.Processes != nil {
		if proc, err := r.Processes.FindProcess(ctx, r.Agent); err == nil {
			running = proc != nil
		} else {
			r.Logger.Warn("process scan failed", "error", err)
		}
	}

	var sf statusFile
	outcome, err := store.ReadJSON(r.StatusFile, &sf)
	if outcome == store.OK {
		rep.CurrentTask = "Monitoring systems"
		if sf.CurrentTask != nil {
			rep.CurrentTask = *sf.CurrentTask
		}
	} else if err != nil {
		r.Logger.Warn("status file unreadable", "path", r.StatusFile, "error", err)
	}

	var since time.Time
	if r.Processes != nil {
		if proc, err := r.Processes.FindProcess(ctx, r.Gateway); err == nil && proc != nil && !proc.Started.IsZero() {
			since = proc.Started
		}
	}
	if since.IsZero() && sf.StartedAt != "" {
		if t, ok := store.ParseTimestamp(sf.StartedAt); ok {
			since = t
		}
	}
	if !since.IsZero() {
		up := system.FormatUptime(now.Sub(since))
		rep.Uptime = &up
	}

	if last, ok := r.lastHeartbeat(); ok {
		at := last.Format("2006-01-02 15:04:05")
		ago := FormatAgo(now.Sub(last))
		rep.LastHeartbeat = &at
		rep.HeartbeatAgo = &ago
	}

	rep.ActiveSessions = r.sessions(now)

	if !running {
		rep.StatusEmoji = "💀"
		return rep
	}
	active := 0
	for _, s := range rep.ActiveSessions {
		if s.Active {
			active++
		}
	}
	if active > 0 {
		rep.AIStatus = Working
		rep.StatusClass = "success"
		rep.StatusEmoji = WorkingEmoji(rep.CurrentTask)
	} else {
		rep.AIStatus = Idle
		rep.StatusClass = "warning"
		rep.StatusEmoji = IdleEmoji(now.Hour())
	}
	return rep
}

func (r *Reader) lastHeartbeat() (time.Time, bool) {
	var hb heartbeatState
	if outcome, _ := store.ReadJSON(r.HeartbeatFile, &hb); outcome != store.OK {
		return time.Time{}, false
	}
	var latest float64
	for _, v := range hb.LastChecks {
		if f, ok := v.(float64); ok && f > latest {
			latest = f
		}
	}
	if latest <= 0 {
		return time.Time{}, false
	}
	sec := int64(latest)
	return time.Unix(sec, int64((latest-float64(sec))*1e9)), true
}

func (r *Reader) sessions(now time.Time) []Session {
	paths, err := filepath.Glob(filepath.Join(r.SessionsDir, "*.json"))
	if err != nil || len(paths) == 0 {
		return []Session{}
	}
	type file struct {
		path string
		mod  time.Time
	}
	files := make([]file, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, file{p, info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	if len(files) > 10 {
		files = files[:10]
	}

	sessions := make([]Session, 0, len(files))
	for _, f := range files {
		age := now.Sub(f.mod)
		sessions = append(sessions, Session{
			Name:       strings.TrimSuffix(filepath.Base(f.path), ".json"),
			Modified:   f.mod.Format("15:04:05"),
			AgeMinutes: int(age / time.Minute),
			Active:     age < r.ActiveWindow,
		})
	}
	return sessions
}

// FormatAgo renders an elapsed time as "Nm ago", "Nh Mm ago" or "Nd ago".
func FormatAgo(d time.Duration) string {
	mins := int(d / time.Minute)
	switch {
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 1440:
		return fmt.Sprintf("%dh %dm ago", mins/60, mins%60)
	}
	return fmt.Sprintf("%dd ago", mins/1440)
}

var workingEmojis = []struct {
	emoji    string
	keywords []string
}{
	{"🔨", []string{"build", "creat", "develop", "code", "implement", "upgrad"}},
	{"🔍", []string{"search", "research", "look", "find", "check"}},
	{"🤔", []string{"think", "plan", "analyz", "figur"}},
	{"👀", []string{"email", "monitor", "watch"}},
	{"🔧", []string{"fix", "debug", "repair", "patch"}},
	{"🚀", []string{"deploy", "launch", "ship", "push"}},
	{"✍️", []string{"write", "draft", "document"}},
	{"🧪", []string{"test", "verif"}},
}

// WorkingEmoji picks an emoji for the current task text.
func WorkingEmoji(task string) string {
	t := strings.ToLower(task)
	for _, w := range workingEmojis {
		for _, kw := range w.keywords {
			if strings.Contains(t, kw) {
				return w.emoji
			}
		}
	}
	return "⚡"
}

// IdleEmoji picks an emoji for an idle agent by hour of day.
func IdleEmoji(hour int) string {
	switch {
	case hour < 6 || hour >= 23:
		return "😴"
	case hour < 9:
		return "🥱"
	case hour >= 18:
		return "😌"
	}
	return "💤"
}
