// Package tasks builds the three-column task board from markdown TODO files
// and the dashboard's own task store, and moves tasks between columns.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrTaskNotFound  = errors.New("task not found")
	ErrLineNotFound  = errors.New("task line not found")
)

// Column is a board column.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in_progress"
	ColumnDone       Column = "done"
)

// Columns lists the board columns in display order.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

// ParseColumn validates s as a column name.
func ParseColumn(s string) (Column, error) {
	c := Column(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColumn, s)
	}
	return c, nil
}

func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// Marker is the checkbox character written for the column.
func (c Column) Marker() string {
	switch c {
	case ColumnInProgress:
		return "~"
	case ColumnDone:
		return "x"
	}
	return " "
}

// Label is the human-readable column name.
func (c Column) Label() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// Kind tells where a task lives.
type Kind string

const (
	KindFile      Kind = "file"
	KindDashboard Kind = "dashboard"
)

const DefaultPriority = "normal"

// Entry is a task on the board: either a *FileTask or a *DashboardTask.
type Entry interface {
	Kind() Kind
	Common() Fields
}

// Fields is the part every task variant shares.
type Fields struct {
	Text     string
	Section  string
	Source   string // display label
	Priority string
	Column   Column
}

// FileTask is a checkbox line in a markdown TODO file.
type FileTask struct {
	Fields
	Path    string
	Line    int // 1-based
	RawText string
}

func (t *FileTask) Kind() Kind     { return KindFile }
func (t *FileTask) Common() Fields { return t.Fields }

func (t *FileTask) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTask{
		Text:       t.Text,
		RawText:    t.RawText,
		Section:    t.Section,
		Source:     t.Source,
		SourceType: KindFile,
		SourceFile: t.Path,
		LineNum:    t.Line,
		Priority:   t.Priority,
		Column:     t.Column,
	})
}

// DashboardTask is a task kept in the dashboard task store.
type DashboardTask struct {
	Fields
	ID        string
	Timestamp string
}

func (t *DashboardTask) Kind() Kind     { return KindDashboard }
func (t *DashboardTask) Common() Fields { return t.Fields }

func (t *DashboardTask) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:         t.ID,
		Text:       t.Text,
		Section:    t.Section,
		Source:     t.Source,
		SourceType: KindDashboard,
		Priority:   t.Priority,
		Column:     t.Column,
	}
	if t.Timestamp != "" {
		w.Timestamp = &t.Timestamp
	}
	return json.Marshal(w)
}

type wireTask struct {
	ID         string  `json:"id,omitempty"`
	Text       string  `json:"text"`
	RawText    string  `json:"raw_text,omitempty"`
	Section    string  `json:"section"`
	Source     string  `json:"source"`
	SourceType Kind    `json:"source_type"`
	SourceFile string  `json:"source_file,omitempty"`
	LineNum    int     `json:"line_num,omitempty"`
	Priority   string  `json:"priority"`
	Timestamp  *string `json:"timestamp"`
	Column     Column  `json:"column"`
}

// Board holds the tasks of each column in aggregation order.
type Board struct {
	Todo       []Entry `json:"todo"`
	InProgress []Entry `json:"in_progress"`
	Done       []Entry `json:"done"`
}

func NewBoard() *Board {
	return &Board{Todo: []Entry{}, InProgress: []Entry{}, Done: []Entry{}}
}

// Column returns the tasks in c.
func (b *Board) Column(c Column) []Entry {
	switch c {
	case ColumnTodo:
		return b.Todo
	case ColumnInProgress:
		return b.InProgress
	case ColumnDone:
		return b.Done
	}
	return nil
}

// Add appends e to the column named by its fields. Entries with an unknown
// column are ignored and reported false.
func (b *Board) Add(e Entry) bool {
	switch e.Common().Column {
	case ColumnTodo:
		b.Todo = append(b.Todo, e)
	case ColumnInProgress:
		b.InProgress = append(b.InProgress, e)
	case ColumnDone:
		b.Done = append(b.Done, e)
	default:
		return false
	}
	return true
}

// Merge appends every column of other to b.
func (b *Board) Merge(other *Board) {
	b.Todo = append(b.Todo, other.Todo...)
	b.InProgress = append(b.InProgress, other.InProgress...)
	b.Done = append(b.Done, other.Done...)
}

// Stats counts the tasks in each column.
type Stats struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

func (b *Board) Stats() Stats {
	s := Stats{Todo: len(b.Todo), InProgress: len(b.InProgress), Done: len(b.Done)}
	s.Total = s.Todo + s.InProgress + s.Done
	return s
}

// StoredTask is one element of the dashboard task store. Column is kept as
// written so unknown values survive a rewrite.
type StoredTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Priority  string `json:"priority"`
	Column    Column `json:"column"`
	Section   string `json:"section"`
	Timestamp string `json:"timestamp,omitempty"`
	MovedAt   string `json:"moved_at,omitempty"`
}

// Entry converts the stored task to its board form.
func (t StoredTask) Entry() *DashboardTask {
	col := t.Column
	if col == "" {
		col = ColumnTodo
	}
	priority := t.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	return &DashboardTask{
		Fields: Fields{
			Text:     t.Text,
			Section:  t.Section,
			Source:   "Dashboard",
			Priority: priority,
			Column:   col,
		},
		ID:        t.ID,
		Timestamp: t.Timestamp,
	}
}

// MoveResult describes a checkbox rewrite in a TODO file.
type MoveResult struct {
	SourceFile string `json:"source_file"`
	LineNum    int    `json:"line_num"`
	OldLine    string `json:"old_line"`
	NewLine    string `json:"new_line"`
	Column     Column `json:"column"`
}
