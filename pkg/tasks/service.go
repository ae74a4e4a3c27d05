package tasks

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// Service aggregates the board and applies task moves.
type Service struct {
	TodoPaths  []string
	ExtraPaths []string
	Store      store.Store[StoredTask]
	Recorder   activity.Recorder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string

	// OnFileMove runs after a TODO file has been rewritten.
	OnFileMove func(res MoveResult)
}

func NewService(todoPaths, extraPaths []string, st store.Store[StoredTask], rec activity.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		TodoPaths:  todoPaths,
		ExtraPaths: extraPaths,
		Store:      st,
		Recorder:   rec,
		Logger:     logger,
		Now:        time.Now,
		NewID:      store.NewID,
	}
}

// Paths returns the TODO files the board reads: the configured paths, then
// extra paths not already listed.
func (s *Service) Paths() []string {
	paths := make([]string, 0, len(s.TodoPaths)+len(s.ExtraPaths))
	seen := map[string]bool{}
	for _, p := range s.TodoPaths {
		paths = append(paths, p)
		seen[p] = true
	}
	for _, p := range s.ExtraPaths {
		if !seen[p] {
			paths = append(paths, p)
			seen[p] = true
		}
	}
	return paths
}

// Board returns file tasks in path order followed by dashboard tasks in
// store order. Dashboard tasks with an unknown column are left off.
func (s *Service) Board() *Board {
	board := NewBoard()
	for _, p := range s.Paths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		board.Merge(ParseTodoFile(p))
	}

	stored := s.load()
	dropped := 0
	for _, t := range stored {
		if !board.Add(t.Entry()) {
			dropped++
		}
	}
	if dropped > 0 {
		s.Logger.Warn("dashboard tasks with unknown column left off the board", "count", dropped)
	}
	return board
}

// Stats counts the board.
func (s *Service) Stats() Stats {
	return s.Board().Stats()
}

func (s *Service) load() []StoredTask {
	items, outcome, err := s.Store.Load()
	switch outcome {
	case store.Malformed, store.Unreadable:
		s.Logger.Warn("task store could not be read, treating as empty", "outcome", outcome, "error", err)
		return nil
	}
	return items
}

// AddTask stores a new dashboard task. Empty priority and column default to
// normal and todo.
func (s *Service) AddTask(text, priority, column string) (*StoredTask, error) {
	if column == "" {
		column = string(ColumnTodo)
	}
	col, err := ParseColumn(column)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = DefaultPriority
	}

	task := StoredTask{
		ID:        s.NewID(),
		Text:      text,
		Priority:  priority,
		Column:    col,
		Section:   "",
		Timestamp: store.Timestamp(s.Now()),
	}
	err = s.Store.Update(func(items []StoredTask) ([]StoredTask, error) {
		return append(items, task), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	s.record(fmt.Sprintf("Task added: %s", activity.Excerpt(text, 60)))
	return &task, nil
}

// MoveTask moves a dashboard task to column.
func (s *Service) MoveTask(id, column string) (*StoredTask, error) {
	col, err := ParseColumn(column)
	if err != nil {
		return nil, err
	}

	var moved *StoredTask
	var old Column
	err = s.Store.Update(func(items []StoredTask) ([]StoredTask, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			old = items[i].Column
			if old == "" {
				old = ColumnTodo
			}
			items[i].Column = col
			items[i].MovedAt = store.Timestamp(s.Now())
			t := items[i]
			moved = &t
			return items, nil
		}
		return nil, ErrTaskNotFound
	})
	if err != nil {
		return nil, err
	}
	s.record(fmt.Sprintf("Task %s moved from %s to %s", id, old, col))
	return moved, nil
}

// MoveFileTask rewrites the checkbox marker on line lineNum (1-based) of a
// configured TODO file. Only the marker changes; the rest of the file is
// written back byte for byte.
func (s *Service) MoveFileTask(path string, lineNum int, column string) (*MoveResult, error) {
	col, err := ParseColumn(column)
	if err != nil {
		return nil, err
	}
	if !s.isTodoPath(path) {
		return nil, fmt.Errorf("%w: %s is not a task file", ErrLineNotFound, path)
	}

	unlock := store.Lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrLineNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if lineNum < 1 || lineNum > len(lines) {
		return nil, fmt.Errorf("%w: line %d out of range", ErrLineNotFound, lineNum)
	}

	oldLine := lines[lineNum-1]
	body := strings.TrimSuffix(oldLine, "\n")
	rewritten, ok := workspace.ReplaceMarker(body, col.Marker())
	if !ok {
		return nil, fmt.Errorf("%w: line %d has no checkbox", ErrLineNotFound, lineNum)
	}
	if strings.HasSuffix(oldLine, "\n") {
		rewritten += "\n"
	}
	lines[lineNum-1] = rewritten

	if err := store.WriteFileAtomic(path, []byte(strings.Join(lines, "")), 0644); err != nil {
		return nil, err
	}

	res := MoveResult{
		SourceFile: path,
		LineNum:    lineNum,
		OldLine:    strings.TrimSpace(oldLine),
		NewLine:    strings.TrimSpace(rewritten),
		Column:     col,
	}
	s.record(fmt.Sprintf("File task moved to %s: %s:%d", col, path, lineNum))
	if s.OnFileMove != nil {
		s.OnFileMove(res)
	}
	return &res, nil
}

func (s *Service) isTodoPath(path string) bool {
	want := absPath(path)
	for _, p := range s.Paths() {
		if absPath(p) == want {
			return true
		}
	}
	return false
}

// absPath resolves path against the working directory, falling back to the
// cleaned form.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (s *Service) record(action string) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Append(action); err != nil {
		s.Logger.Warn("failed to record activity", "action", action, "error", err)
	}
}
