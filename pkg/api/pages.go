package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/calendar"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/system"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// page adds the fields every page template uses.
func (h *Handler) page(c *gin.Context, name string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = name
	data["user"] = currentUser(c)
	data["now"] = h.Now()
	return data
}

func (h *Handler) systemInfo(c *gin.Context) *system.Info {
	info, err := h.System.Info(c.Request.Context())
	if err != nil {
		h.Logger.Warn("failed to read system info", "error", err)
		return &system.Info{}
	}
	return info
}

func (h *Handler) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	c.HTML(http.StatusOK, "dashboard.html", h.page(c, "dashboard", gin.H{
		"sys_info":     h.systemInfo(c),
		"mem_stats":    h.Memory.Stats(),
		"task_stats":   h.Tasks.Stats(),
		"activities":   h.Activity.Today(10),
		"heartbeat":    h.heartbeat(),
		"email_status": h.Email.Status(),
		"ai_status":    h.Status.Status(ctx),
		"pending":      h.Notes.Pending(),
		"agenda":       h.agenda(c),
	}))
}

// agenda is nil when no calendar is configured and an empty list when it
// cannot be read.
func (h *Handler) agenda(c *gin.Context) []calendar.Event {
	if h.Calendar == nil {
		return nil
	}
	events, _ := h.Calendar.Upcoming(c.Request.Context())
	if events == nil {
		events = []calendar.Event{}
	}
	return events
}

func (h *Handler) handleActivityPage(c *gin.Context) {
	date := c.Query("date")
	category := c.Query("category")
	c.HTML(http.StatusOK, "activity.html", h.page(c, "activity", gin.H{
		"activities":        h.Activity.Activities(activity.Query{Date: date, Category: activity.Category(category)}),
		"dates":             h.Activity.AvailableDates(),
		"categories":        h.Activity.Categories(),
		"selected_date":     date,
		"selected_category": category,
	}))
}

// taskCard is a board entry flattened for the task page.
type taskCard struct {
	Text       string
	Section    string
	Source     string
	Priority   string
	Column     tasks.Column
	Kind       tasks.Kind
	ID         string
	SourceFile string
	LineNum    int
}

func cards(entries []tasks.Entry) []taskCard {
	out := make([]taskCard, 0, len(entries))
	for _, e := range entries {
		f := e.Common()
		card := taskCard{
			Text:     f.Text,
			Section:  f.Section,
			Source:   f.Source,
			Priority: f.Priority,
			Column:   f.Column,
			Kind:     e.Kind(),
		}
		switch t := e.(type) {
		case *tasks.FileTask:
			card.SourceFile = t.Path
			card.LineNum = t.Line
		case *tasks.DashboardTask:
			card.ID = t.ID
		}
		out = append(out, card)
	}
	return out
}

func (h *Handler) handleTasksPage(c *gin.Context) {
	board := h.Tasks.Board()
	columns := []gin.H{}
	for _, col := range []tasks.Column{tasks.ColumnTodo, tasks.ColumnInProgress, tasks.ColumnDone} {
		columns = append(columns, gin.H{
			"id":    string(col),
			"label": col.Label(),
			"tasks": cards(board.Column(col)),
		})
	}
	c.HTML(http.StatusOK, "tasks.html", h.page(c, "tasks", gin.H{
		"columns": columns,
		"stats":   board.Stats(),
	}))
}

func (h *Handler) handleEmailsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "emails.html", h.page(c, "emails", gin.H{
		"email_status": h.Email.Status(),
	}))
}

func (h *Handler) handleMemoryPage(c *gin.Context) {
	name := c.Query("file")
	var content *workspace.Rendered
	if name != "" {
		r, err := h.Memory.File(name)
		if err != nil {
			h.Logger.Debug("memory file not shown", "file", name, "error", err)
		} else {
			content = r
		}
	}
	main, err := h.Memory.Main()
	if err != nil {
		main = nil
	}
	c.HTML(http.StatusOK, "memory.html", h.page(c, "memory", gin.H{
		"files":         h.Memory.Files(),
		"content":       content,
		"main_memory":   main,
		"selected_file": name,
	}))
}

func (h *Handler) handleSystemPage(c *gin.Context) {
	c.HTML(http.StatusOK, "system.html", h.page(c, "system", gin.H{
		"sys_info": h.systemInfo(c),
		"services": h.System.Services(c.Request.Context()),
	}))
}

func (h *Handler) handleNotesPage(c *gin.Context) {
	c.HTML(http.StatusOK, "notes.html", h.page(c, "notes", gin.H{
		"notes": h.Notes.List(),
	}))
}

func (h *Handler) handleDocsPage(c *gin.Context) {
	path := c.Query("file")
	var view *workspace.DocView
	if path != "" {
		v, err := h.Docs.View(path)
		if err == nil {
			view = v
		}
	}
	c.HTML(http.StatusOK, "docs.html", h.page(c, "docs", gin.H{
		"docs":        h.Docs.List(),
		"doc_content": view,
		"selected":    path,
	}))
}
