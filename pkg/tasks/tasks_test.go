package tasks

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
)

type recorder struct {
	actions []string
	err     error
}

func (r *recorder) Append(action string) error {
	r.actions = append(r.actions, action)
	return r.err
}

func newTestService(t *testing.T, todoPaths ...string) (*Service, *store.Memory[StoredTask], *recorder) {
	t.Helper()
	st := store.NewMemory[StoredTask]()
	rec := &recorder{}
	svc := NewService(todoPaths, nil, st, rec, nil)
	svc.Now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) }
	return svc, st, rec
}

func writeTodo(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "project")
	os.MkdirAll(dir, 0755)
	path := filepath.Join(dir, "TODO.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseColumn(t *testing.T) {
	for _, c := range []string{"todo", "in_progress", "done"} {
		if _, err := ParseColumn(c); err != nil {
			t.Errorf("ParseColumn(%q) failed: %v", c, err)
		}
	}
	for _, c := range []string{"", "DONE", "archived"} {
		if _, err := ParseColumn(c); !errors.Is(err, ErrInvalidColumn) {
			t.Errorf("ParseColumn(%q) = %v, want ErrInvalidColumn", c, err)
		}
	}
}

func TestParseTodo(t *testing.T) {
	board := ParseTodo("- [ ] buy milk", "TODO.md")
	if len(board.Todo) != 1 {
		t.Fatalf("Expected one todo, got %d", len(board.Todo))
	}
	task := board.Todo[0].(*FileTask)
	if task.Section != "" || task.Line != 1 || task.Text != "buy milk" || task.Source != "TODO.md" {
		t.Errorf("Unexpected task %+v", task)
	}

	done := ParseTodo("- [x] done thing", "TODO.md")
	if len(done.Done) != 1 || len(done.Todo) != 0 {
		t.Errorf("Expected one done task, got %+v", done.Stats())
	}

	if none := ParseTodo("just text", "TODO.md"); none.Stats().Total != 0 {
		t.Errorf("Expected no tasks, got %+v", none.Stats())
	}
}

func TestParseTodoSectionsAndBold(t *testing.T) {
	content := `# Project
## Backend
- [ ] **Urgent** fix login
  - [~] nested in progress
- [X] ship it
### Later
- [ ]   spaced
* [ ] not a task
`
	board := ParseTodo(content, "/ws/project/TODO.md")
	stats := board.Stats()
	if stats.Todo != 2 || stats.InProgress != 1 || stats.Done != 1 || stats.Total != 4 {
		t.Fatalf("Unexpected stats %+v", stats)
	}

	first := board.Todo[0].(*FileTask)
	if first.Text != "Urgent fix login" || first.RawText != "**Urgent** fix login" {
		t.Errorf("Unexpected text %q / %q", first.Text, first.RawText)
	}
	if first.Section != "Backend" || first.Line != 3 || first.Source != "project" {
		t.Errorf("Unexpected task %+v", first)
	}
	nested := board.InProgress[0].(*FileTask)
	if nested.Line != 4 || nested.Section != "Backend" {
		t.Errorf("Unexpected nested task %+v", nested)
	}
	if later := board.Todo[1].(*FileTask); later.Section != "Later" || later.Text != "spaced" {
		t.Errorf("Unexpected later task %+v", later)
	}
}

func TestFileTaskJSON(t *testing.T) {
	board := ParseTodo("- [~] wire it", "/ws/TODO.md")
	data, err := json.Marshal(board)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string][]map[string]interface{}
	json.Unmarshal(data, &wire)
	if len(wire["todo"]) != 0 || len(wire["done"]) != 0 {
		t.Errorf("Expected empty arrays, got %s", data)
	}
	task := wire["in_progress"][0]
	if task["source_type"] != "file" || task["source_file"] != "/ws/TODO.md" || task["line_num"] != float64(1) {
		t.Errorf("Unexpected wire task %v", task)
	}
	if task["timestamp"] != nil || task["priority"] != "normal" || task["column"] != "in_progress" {
		t.Errorf("Unexpected wire task %v", task)
	}
	if _, ok := task["id"]; ok {
		t.Errorf("File tasks carry no id")
	}
}

func TestBoardMergesFilesAndDashboard(t *testing.T) {
	path := writeTodo(t, "- [ ] file task\n- [x] finished\n")
	missing := filepath.Join(t.TempDir(), "nope", "TODO.md")
	svc, st, _ := newTestService(t, path, missing)
	st.Save([]StoredTask{
		{ID: "aaaa1111", Text: "dash task", Column: "in_progress"},
		{ID: "bbbb2222", Text: "no column"},
		{ID: "cccc3333", Text: "archived", Column: "archived"},
	})

	board := svc.Board()
	stats := board.Stats()
	if stats.Todo != 2 || stats.InProgress != 1 || stats.Done != 1 || stats.Total != 4 {
		t.Fatalf("Unexpected stats %+v", stats)
	}
	if board.Todo[0].Kind() != KindFile || board.Todo[1].Kind() != KindDashboard {
		t.Errorf("Expected file tasks before dashboard tasks")
	}
	dash := board.Todo[1].(*DashboardTask)
	if dash.Source != "Dashboard" || dash.Priority != "normal" || dash.ID != "bbbb2222" {
		t.Errorf("Unexpected dashboard task %+v", dash)
	}
	if svc.Stats() != stats {
		t.Errorf("Stats should match board")
	}
}

func TestBoardExtraPathsNotDuplicated(t *testing.T) {
	path := writeTodo(t, "- [ ] only once\n")
	svc, _, _ := newTestService(t, path)
	svc.ExtraPaths = []string{path}
	if n := len(svc.Board().Todo); n != 1 {
		t.Errorf("Expected 1 task, got %d", n)
	}
}

func TestBoardMalformedStoreIsEmpty(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.Corrupt()
	if total := svc.Stats().Total; total != 0 {
		t.Errorf("Expected empty board, got %d", total)
	}
}

func TestBoardIsIdempotent(t *testing.T) {
	path := writeTodo(t, "# A\n- [ ] one\n- [~] two\n")
	svc, st, _ := newTestService(t, path)
	st.Save([]StoredTask{{ID: "x1", Text: "t", Column: "done", Timestamp: "2024-01-01T00:00:00"}})

	first, _ := json.Marshal(svc.Board())
	second, _ := json.Marshal(svc.Board())
	if string(first) != string(second) {
		t.Errorf("Board changed between reads:\n%s\n%s", first, second)
	}
}

func TestDashboardTaskLifecycle(t *testing.T) {
	svc, _, rec := newTestService(t)

	task, err := svc.AddTask("write docs", "", "")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if task.Column != ColumnTodo || len(task.ID) != 8 || task.Priority != "normal" {
		t.Errorf("Unexpected task %+v", task)
	}
	if task.Timestamp != "2024-01-01T09:00:00.000000" {
		t.Errorf("Unexpected timestamp %q", task.Timestamp)
	}
	board := svc.Board()
	if len(board.Todo) != 1 || board.Todo[0].(*DashboardTask).ID != task.ID {
		t.Fatalf("Task missing from todo column")
	}

	moved, err := svc.MoveTask(task.ID, "in_progress")
	if err != nil {
		t.Fatalf("MoveTask failed: %v", err)
	}
	if moved.Column != ColumnInProgress || moved.MovedAt == "" {
		t.Errorf("Unexpected moved task %+v", moved)
	}
	board = svc.Board()
	if len(board.Todo) != 0 || len(board.InProgress) != 1 {
		t.Errorf("Expected task in in_progress only, got %+v", board.Stats())
	}

	want := []string{"Task added: write docs", "Task " + task.ID + " moved from todo to in_progress"}
	if !reflect.DeepEqual(rec.actions, want) {
		t.Errorf("Unexpected activity %v", rec.actions)
	}
}

func TestAddTaskValidation(t *testing.T) {
	svc, st, rec := newTestService(t)
	if _, err := svc.AddTask("x", "high", "later"); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("Expected ErrInvalidColumn, got %v", err)
	}
	if items, _, _ := st.Load(); len(items) != 0 {
		t.Errorf("Nothing should be stored on validation failure")
	}
	if len(rec.actions) != 0 {
		t.Errorf("Nothing should be logged on validation failure")
	}

	long := strings.Repeat("é", 80)
	svc.AddTask(long, "high", "done")
	if got := rec.actions[0]; got != "Task added: "+strings.Repeat("é", 60) {
		t.Errorf("Expected 60-rune excerpt, got %q", got)
	}
}

func TestAddTaskRecorderFailureStillSaves(t *testing.T) {
	svc, st, rec := newTestService(t)
	rec.err = errors.New("disk full")
	if _, err := svc.AddTask("keep me", "", ""); err != nil {
		t.Fatalf("AddTask should not fail on log errors: %v", err)
	}
	if items, _, _ := st.Load(); len(items) != 1 {
		t.Errorf("Expected task to be stored")
	}
}

func TestMoveTaskErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.MoveTask("missing", "done"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.MoveTask("missing", "nope"); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("Expected ErrInvalidColumn, got %v", err)
	}
}

func TestMoveFileTask(t *testing.T) {
	content := "- [ ] task a\n- [ ] task b\n- [~] task c\n"
	path := writeTodo(t, content)
	svc, _, rec := newTestService(t, path)

	var hooked *MoveResult
	svc.OnFileMove = func(res MoveResult) { hooked = &res }

	res, err := svc.MoveFileTask(path, 2, "done")
	if err != nil {
		t.Fatalf("MoveFileTask failed: %v", err)
	}
	if res.OldLine != "- [ ] task b" || res.NewLine != "- [x] task b" || res.Column != ColumnDone {
		t.Errorf("Unexpected result %+v", res)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "- [ ] task a\n- [x] task b\n- [~] task c\n" {
		t.Errorf("Unexpected file content %q", data)
	}
	if hooked == nil || hooked.LineNum != 2 {
		t.Errorf("Expected post-move hook to run")
	}
	if len(rec.actions) != 1 || rec.actions[0] != "File task moved to done: "+path+":2" {
		t.Errorf("Unexpected activity %v", rec.actions)
	}
}

func TestMoveFileTaskPreservesBytes(t *testing.T) {
	content := "# Tasks\r\n  - [x] **bold** item\r\n- [ ] last"
	path := writeTodo(t, content)
	svc, _, _ := newTestService(t, path)

	if _, err := svc.MoveFileTask(path, 3, "in_progress"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.MoveFileTask(path, 2, "todo")
	if err != nil {
		t.Fatal(err)
	}
	if res.NewLine != "- [ ] **bold** item" {
		t.Errorf("Unexpected new line %q", res.NewLine)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# Tasks\r\n  - [ ] **bold** item\r\n- [~] last" {
		t.Errorf("Unexpected file content %q", data)
	}
}

func TestMoveFileTaskNotFound(t *testing.T) {
	content := "- [ ] a\njust text\n- [ ] c\n"
	path := writeTodo(t, content)
	other := writeTodo(t, content)
	svc, _, rec := newTestService(t, path)

	tests := []struct {
		name string
		path string
		line int
	}{
		{"out of range", path, 99},
		{"zero line", path, 0},
		{"no checkbox", path, 2},
		{"unlisted file", other, 1},
		{"missing file", filepath.Join(filepath.Dir(path), "gone.md"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.MoveFileTask(tt.path, tt.line, "done"); !errors.Is(err, ErrLineNotFound) {
				t.Errorf("Expected ErrLineNotFound, got %v", err)
			}
		})
	}

	svc.TodoPaths = append(svc.TodoPaths, filepath.Join(filepath.Dir(path), "gone.md"))
	if _, err := svc.MoveFileTask(filepath.Join(filepath.Dir(path), "gone.md"), 1, "done"); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("Expected ErrLineNotFound for configured but missing file, got %v", err)
	}

	if _, err := svc.MoveFileTask(path, 1, "bogus"); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("Expected ErrInvalidColumn, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Errorf("File should be unmodified, got %q", data)
	}
	if len(rec.actions) != 0 {
		t.Errorf("No activity expected, got %v", rec.actions)
	}
}

func TestMoveFileTaskRelativeConfiguredPath(t *testing.T) {
	path := writeTodo(t, "- [ ] a\n")
	dir := filepath.Dir(path)
	chdir(t, dir)

	tests := []struct {
		name       string
		configured string
		requested  string
		column     string
	}{
		{"relative config, absolute request", "./TODO.md", path, "done"},
		{"absolute config, relative request", path, "TODO.md", "todo"},
		{"relative both", "TODO.md", "./TODO.md", "in_progress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, tt.configured)
			if _, err := svc.MoveFileTask(tt.requested, 1, tt.column); err != nil {
				t.Fatalf("MoveFileTask(%q) with %q configured: %v", tt.requested, tt.configured, err)
			}
		})
	}

	data, _ := os.ReadFile(path)
	if string(data) != "- [~] a\n" {
		t.Errorf("Unexpected file content %q", data)
	}
}

func TestSourceLabel(t *testing.T) {
	tests := map[string]string{
		"/home/labs/clawd/TODO.md":             "clawd",
		"/home/labs/clawd/job-scraper/TODO.md": "job-scraper",
		"TODO.md":                              "TODO.md",
		"/TODO.md":                             "TODO.md",
	}
	for in, want := range tests {
		if got := SourceLabel(in); got != want {
			t.Errorf("SourceLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
