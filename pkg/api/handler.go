package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/ai"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/calendar"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// heartbeat returns the agent's heartbeat state, or an empty object.
func (h *Handler) heartbeat() map[string]interface{} {
	state := map[string]interface{}{}
	if h.HeartbeatFile == "" {
		return state
	}
	outcome, err := store.ReadJSON(h.HeartbeatFile, &state)
	if outcome != store.OK {
		if outcome == store.Malformed || outcome == store.Unreadable {
			h.Logger.Warn("heartbeat state could not be read", "outcome", outcome, "error", err)
		}
		return map[string]interface{}{}
	}
	return state
}

func (h *Handler) handleAPIStatus(c *gin.Context) {
	info := h.systemInfo(c)
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"ai_status": h.Status.Status(c.Request.Context()),
		"uptime":    info.Uptime,
		"cpu":       info.CPU.Percent,
		"memory":    info.Memory.Percent,
		"disk":      info.Disk.Percent,
		"heartbeat": h.heartbeat(),
		"timestamp": h.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleAPIAIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Status.Status(c.Request.Context()))
}

// Activity

func (h *Handler) handleAPIActivity(c *gin.Context) {
	q := activity.Query{
		Date:     c.Query("date"),
		Category: activity.Category(c.Query("category")),
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	entries := h.Activity.Activities(q)
	c.JSON(http.StatusOK, gin.H{"activities": entries, "count": len(entries)})
}

func (h *Handler) handleAPIActivityDates(c *gin.Context) {
	dates := h.Activity.AvailableDates()
	c.JSON(http.StatusOK, gin.H{"dates": dates, "count": len(dates)})
}

func (h *Handler) handleAPIActivityCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.Activity.Categories())
}

// DigestRequest is the body of POST /api/activity/digest.
type DigestRequest struct {
	Date string `json:"date"`
	Save bool   `json:"save"`
}

func (h *Handler) handleAPIDigest(c *gin.Context) {
	if h.Digester == nil || h.Digester.Generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no AI provider configured"})
		return
	}
	var req DigestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	d, err := h.Digester.Digest(c.Request.Context(), strings.TrimSpace(req.Date))
	switch {
	case err == nil && req.Save && h.DigestsDir != "":
		path, err := d.Save(h.DigestsDir)
		if err != nil {
			h.Logger.Error("failed to save digest", "date", d.Date, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save digest"})
			return
		}
		c.JSON(http.StatusOK, savedDigest{Digest: d, SavedTo: path})
	case err == nil:
		c.JSON(http.StatusOK, d)
	case errors.Is(err, ai.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no AI provider configured"})
	default:
		h.Logger.Error("digest failed", "date", req.Date, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

type savedDigest struct {
	*ai.Digest
	SavedTo string `json:"saved_to"`
}

// Tasks

func (h *Handler) handleAPITasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tasks.Board())
}

func (h *Handler) handleAPITaskStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tasks.Stats())
}

// AddTaskRequest is the body of POST /api/tasks/add.
type AddTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Column   string `json:"column"`
}

func (h *Handler) handleAPITaskAdd(c *gin.Context) {
	var req AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	task, err := h.Tasks.AddTask(text, req.Priority, req.Column)
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidColumn) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valid column (todo/in_progress/done) required"})
			return
		}
		h.Logger.Error("failed to add task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "task": task})
}

// MoveTaskRequest is the body of POST /api/tasks/move. LineNum is left
// raw so both numbers and numeric strings are accepted.
type MoveTaskRequest struct {
	Column     string      `json:"column"`
	SourceType string      `json:"source_type"`
	ID         string      `json:"id"`
	SourceFile string      `json:"source_file"`
	LineNum    interface{} `json:"line_num"`
}

func lineNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func (h *Handler) handleAPITaskMove(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	column := strings.TrimSpace(req.Column)
	if _, err := tasks.ParseColumn(column); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid column (todo/in_progress/done) required"})
		return
	}

	if req.SourceType == string(tasks.KindFile) {
		file := strings.TrimSpace(req.SourceFile)
		if file == "" || req.LineNum == nil || req.LineNum == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "source_file and line_num required for file tasks"})
			return
		}
		line, ok := lineNumber(req.LineNum)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "line_num must be an integer"})
			return
		}
		res, err := h.Tasks.MoveFileTask(file, line, column)
		if err != nil {
			if errors.Is(err, tasks.ErrLineNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "failed to move file task: line not found or invalid"})
				return
			}
			h.Logger.Error("failed to move file task", "file", file, "line", line, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "task": res})
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required for dashboard tasks"})
		return
	}
	task, err := h.Tasks.MoveTask(id, column)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.Logger.Error("failed to move task", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "task": task})
}

// Notes

func (h *Handler) handleAPINotes(c *gin.Context) {
	list := h.Notes.List()
	c.JSON(http.StatusOK, gin.H{"notes": list, "count": len(list)})
}

// NoteRequest is the body of the note endpoints.
type NoteRequest struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

func (h *Handler) handleAPINoteAdd(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	note, err := h.Notes.Add(text)
	if err != nil {
		h.Logger.Error("failed to add note", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "note": note})
}

func (h *Handler) handleAPINoteUpdate(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id := strings.TrimSpace(req.ID)
	st := strings.TrimSpace(req.Status)
	if _, err := notes.ParseStatus(st); id == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and valid status (pending/seen/processed) required"})
		return
	}
	note, err := h.Notes.UpdateStatus(id, st)
	if err != nil {
		if errors.Is(err, notes.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		h.Logger.Error("failed to update note", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "note": note})
}

// Email

func (h *Handler) handleAPIEmails(c *gin.Context) {
	c.JSON(http.StatusOK, h.Email.Status())
}

func (h *Handler) handleAPIEmailCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.Email.Check(c.Request.Context()))
}

// Memory, system and documents

func (h *Handler) handleAPIMemory(c *gin.Context) {
	var content *workspace.Rendered
	if name := c.Query("file"); name != "" {
		r, err := h.Memory.File(name)
		if err != nil && !errors.Is(err, workspace.ErrNotFound) {
			h.Logger.Warn("failed to read memory file", "file", name, "error", err)
		}
		content = r
	}
	c.JSON(http.StatusOK, gin.H{"files": h.Memory.Files(), "content": content})
}

func (h *Handler) handleAPISystem(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"system":   h.systemInfo(c),
		"services": h.System.Services(c.Request.Context()),
	})
}

func (h *Handler) handleAPIDocs(c *gin.Context) {
	docs := h.Docs.List()
	c.JSON(http.StatusOK, gin.H{"docs": docs, "count": len(docs)})
}

func (h *Handler) handleAPIDocView(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	view, err := h.Docs.View(path)
	if err != nil {
		if !errors.Is(err, workspace.ErrNotFound) {
			h.Logger.Warn("failed to read document", "path", path, "error", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found or access denied"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// Calendar

func (h *Handler) handleAPICalendar(c *gin.Context) {
	if h.Calendar == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "events": []calendar.Event{}, "count": 0})
		return
	}
	events, err := h.Calendar.Upcoming(c.Request.Context())
	if err != nil && len(events) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "events": events, "count": len(events), "stale": err != nil})
}
