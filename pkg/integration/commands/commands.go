// Package commands turns chat messages into dashboard actions. The Telegram
// and Discord bots share it and differ only in their command prefix.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/status"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
)

// Command names.
const (
	Note   = "note"
	Task   = "task"
	Tasks  = "tasks"
	Status = "status"
	Help   = "help"
)

// NoteAdder stores quick notes.
type NoteAdder interface {
	Add(text string) (*notes.Note, error)
}

// TaskBoard adds dashboard tasks and counts the board.
type TaskBoard interface {
	AddTask(text, priority, column string) (*tasks.StoredTask, error)
	Stats() tasks.Stats
}

// StatusReader reports what the agent is doing.
type StatusReader interface {
	Status(ctx context.Context) status.Report
}

// Handler answers commands. Any dependency may be nil, which disables the
// commands that need it.
type Handler struct {
	Notes  NoteAdder
	Tasks  TaskBoard
	Status StatusReader

	// Allowed lists user names or ids that may use the bot. Empty allows
	// everyone.
	Allowed []string
}

// ParseCommand extracts the command and content from a message text.
// Commands need the prefix and a space before any content: "/note milk" is
// a command, "/notemilk" is not. A "@botname" suffix on the command is
// dropped.
func ParseCommand(prefix, text string) (command, content string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, prefix) {
		return "", text
	}
	head, rest, _ := strings.Cut(strings.TrimPrefix(text, prefix), " ")
	head, _, _ = strings.Cut(head, "@")
	switch head {
	case Note, Task, Tasks, Status, Help:
		return head, strings.TrimSpace(rest)
	}
	return "", text
}

// Allows reports whether any of ids may use the bot.
func (h *Handler) Allows(ids ...string) bool {
	if len(h.Allowed) == 0 {
		return true
	}
	for _, a := range h.Allowed {
		for _, id := range ids {
			if id != "" && strings.EqualFold(a, id) {
				return true
			}
		}
	}
	return false
}

// Handle runs command and returns the reply. An empty reply means the
// message was not for the bot.
func (h *Handler) Handle(ctx context.Context, prefix, command, content string) string {
	switch command {
	case Note:
		return h.note(content)
	case Task:
		return h.task(content)
	case Tasks:
		return h.tasks()
	case Status:
		return h.status(ctx)
	case Help:
		return HelpText(prefix)
	}
	return ""
}

func (h *Handler) note(text string) string {
	if h.Notes == nil {
		return "Notes are not available."
	}
	if text == "" {
		return "Usage: note <text>"
	}
	n, err := h.Notes.Add(text)
	if err != nil {
		return fmt.Sprintf("Error saving note: %v", err)
	}
	return fmt.Sprintf("📝 Note saved (%s)", n.ID)
}

func (h *Handler) task(text string) string {
	if h.Tasks == nil {
		return "Tasks are not available."
	}
	if text == "" {
		return "Usage: task <text>"
	}
	t, err := h.Tasks.AddTask(text, "", "")
	if err != nil {
		return fmt.Sprintf("Error adding task: %v", err)
	}
	return fmt.Sprintf("✅ Task added: %s (%s)", activity.Excerpt(t.Text, 60), t.ID)
}

func (h *Handler) tasks() string {
	if h.Tasks == nil {
		return "Tasks are not available."
	}
	s := h.Tasks.Stats()
	return fmt.Sprintf("📋 To Do: %d · In Progress: %d · Done: %d", s.Todo, s.InProgress, s.Done)
}

func (h *Handler) status(ctx context.Context) string {
	if h.Status == nil {
		return "Chitty Dashboard is online."
	}
	r := h.Status.Status(ctx)
	msg := fmt.Sprintf("%s Chitty is %s: %s", r.StatusEmoji, r.AIStatus, r.CurrentTask)
	if r.Uptime != nil {
		msg += "\nUptime: " + *r.Uptime
	}
	if r.HeartbeatAgo != nil {
		msg += "\nLast heartbeat: " + *r.HeartbeatAgo
	}
	return msg
}

// HelpText lists the commands with the given prefix.
func HelpText(prefix string) string {
	lines := []string{
		prefix + Note + " <text> - save a quick note",
		prefix + Task + " <text> - add a task to To Do",
		prefix + Tasks + " - count tasks per column",
		prefix + Status + " - show what Chitty is doing",
	}
	return strings.Join(lines, "\n")
}
