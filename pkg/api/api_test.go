package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/ai"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/auth"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/email"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/calendar"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/status"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/system"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

type fakeProbe struct {
	info *system.Info
	err  error
}

func (f *fakeProbe) Info(ctx context.Context) (*system.Info, error) { return f.info, f.err }

func (f *fakeProbe) Services(ctx context.Context) []system.Service {
	return []system.Service{{Name: "clawdbot", Status: system.StatusRunning, Icon: "🤖"}}
}

type fakeStatus struct{ report status.Report }

func (f *fakeStatus) Status(ctx context.Context) status.Report { return f.report }

type fakeEmail struct{ checks int }

func (f *fakeEmail) Status() email.Report {
	return email.Report{Account: "chitty@example.com", AccountMasked: "ch***@example.com", Status: "Active"}
}

func (f *fakeEmail) Check(ctx context.Context) email.Result {
	f.checks++
	return email.Result{Status: email.StatusSuccess, Output: "0 unread", CheckedAt: "2026-02-01 10:00:00"}
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) Close() error { return nil }

type fakeAgenda struct {
	events []calendar.Event
	err    error
}

func (f *fakeAgenda) Upcoming(ctx context.Context) ([]calendar.Event, error) {
	return f.events, f.err
}

type testEnv struct {
	server *Server
	h      *Handler
	dir    string
	todo   string
	admin  *db.User
	cookie *http.Cookie
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	memDir := filepath.Join(dir, "memory")
	dataDir := filepath.Join(dir, "data")
	os.MkdirAll(memDir, 0755)
	os.MkdirAll(dataDir, 0755)
	os.WriteFile(filepath.Join(memDir, "2026-02-01.md"), []byte("## 09:00 Morning\n- checked email inbox\n- 10:30 - deployed server\n"), 0644)
	os.WriteFile(filepath.Join(dir, "MEMORY.md"), []byte("# Memory\n\nChitty remembers."), 0644)
	todo := filepath.Join(dir, "TODO.md")
	os.WriteFile(todo, []byte("# Work\n- [ ] Ship it\n- [x] Old thing\n"), 0644)

	database, err := db.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	logger := discardLogger()
	authSvc := auth.NewService(db.NewRepository(database), "test-secret", logger)
	authSvc.Cost = bcrypt.MinCost

	memory := workspace.NewMemory(memDir, filepath.Join(dir, "MEMORY.md"))
	log := activity.NewLog(filepath.Join(dataDir, "activity.log"), logger)
	actSvc := activity.NewService(memory, log, logger)
	actSvc.Now = func() time.Time { return time.Date(2026, 2, 1, 18, 0, 0, 0, time.Local) }
	taskSvc := tasks.NewService([]string{todo}, nil, store.NewJSONFile[tasks.StoredTask](filepath.Join(dataDir, "tasks.json")), log, logger)
	noteSvc := notes.NewService(store.NewJSONFile[notes.Note](filepath.Join(dataDir, "notes.json")), log, logger)

	task := "Reviewing pull requests"
	h := &Handler{
		Auth:     authSvc,
		Activity: actSvc,
		Tasks:    taskSvc,
		Notes:    noteSvc,
		Memory:   memory,
		Docs:     workspace.NewDocs(dir, []workspace.ScanDir{{Path: dir, Label: "Workspace", Pattern: "*.md"}}),
		Email:    &fakeEmail{},
		System: &fakeProbe{info: &system.Info{
			Hostname: "chitty",
			Uptime:   "1d 2h 3m",
			CPU:      system.CPU{Percent: 12.5, Cores: 4},
			Memory:   system.Usage{Percent: 40},
			Disk:     system.Usage{Percent: 70},
		}},
		Status: &fakeStatus{report: status.Report{
			AIStatus:    status.Working,
			StatusEmoji: "🧑‍💻",
			StatusClass: "success",
			CurrentTask: task,
		}},
		HeartbeatFile: filepath.Join(memDir, "heartbeat-state.json"),
		Logger:        logger,
	}

	admin, err := authSvc.CreateUser("admin", "secret", db.RoleAdmin, "system")
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	env := &testEnv{server: NewServer(h), h: h, dir: dir, todo: todo, admin: admin}
	env.cookie = env.login(t, admin)
	return env
}

func (e *testEnv) login(t *testing.T, u *db.User) *http.Cookie {
	t.Helper()
	token, _, err := e.h.Auth.StartSession(u.ID, false)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), e.cookie)
}

func (e *testEnv) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, e.cookie)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthzNeedsNoLogin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if decode(t, w)["error"] == "" {
		t.Error("Expected an error message")
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/tasks?x=1", nil), nil)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next="+url.QueryEscape("/tasks?x=1") {
		t.Errorf("Unexpected redirect %q", loc)
	}

	bogus := &http.Cookie{Name: sessionCookie, Value: "not-a-token"}
	if w := env.do(httptest.NewRequest(http.MethodGet, "/api/notes", nil), bogus); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bogus cookie, got %d", w.Code)
	}
}

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(postForm("/login?next=/notes", url.Values{"username": {"admin"}, "password": {"wrong"}}), nil)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid username or password") {
		t.Fatalf("Expected login error, got %d %s", w.Code, w.Body.String())
	}

	w = env.do(postForm("/login?next=/notes", url.Values{"username": {" admin "}, "password": {"secret"}, "remember": {"on"}}), nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/notes" {
		t.Fatalf("Expected redirect to /notes, got %d %q", w.Code, w.Header().Get("Location"))
	}
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("Expected an http-only session cookie, got %+v", session)
	}
	if session.MaxAge <= int((auth.SessionTTL).Seconds()) {
		t.Errorf("Expected remember-me max age, got %d", session.MaxAge)
	}

	if w := env.do(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), session); w.Code != http.StatusOK {
		t.Errorf("Expected 200 with session, got %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/logout", nil), session)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected redirect on logout, got %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), session); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", w.Code)
	}
}

func TestLoginPageRedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	if w := env.get("/login"); w.Code != http.StatusFound {
		t.Errorf("Expected redirect, got %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodGet, "/login", nil), nil); w.Code != http.StatusOK {
		t.Errorf("Expected login form, got %d", w.Code)
	}
}

func TestAPILogin(t *testing.T) {
	env := newTestEnv(t)
	env.cookie = nil

	if w := env.postJSON("/api/login", LoginRequest{Username: "admin", Password: "nope"}); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	w := env.postJSON("/api/login", LoginRequest{Username: "admin", Password: "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user := decode(t, w)["user"].(map[string]interface{})
	if user["username"] != "admin" || user["password_hash"] != nil {
		t.Errorf("Unexpected user %v", user)
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                   "/",
		"/tasks":             "/tasks",
		"/memory?file=a.md":  "/memory?file=a.md",
		"//evil.example":     "/",
		"https://evil.test":  "/",
		"/\\evil.example":    "/",
		"relative/path":      "/",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPagesRender(t *testing.T) {
	env := newTestEnv(t)
	os.WriteFile(env.h.HeartbeatFile, []byte(`{"lastChecks":{"email":1760000000}}`), 0644)

	pages := []string{
		"/", "/activity", "/activity?date=2026-02-01&category=email", "/tasks", "/emails",
		"/memory", "/memory?file=2026-02-01.md", "/memory?file=../secret.md", "/system", "/notes",
		"/docs", "/docs?file=" + url.QueryEscape(filepath.Join(env.dir, "MEMORY.md")),
		"/admin", "/admin/create-user",
	}
	for _, p := range pages {
		w := env.get(p)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d: %s", p, w.Code, w.Body.String())
		}
	}

	body := env.get("/").Body.String()
	if !strings.Contains(body, "Reviewing pull requests") || !strings.Contains(body, "checked email inbox") {
		t.Errorf("Dashboard missing status or activity:\n%s", body)
	}
	if body := env.get("/memory?file=2026-02-01.md").Body.String(); !strings.Contains(body, "<h2>09:00 Morning</h2>") {
		t.Errorf("Memory page did not render markdown:\n%s", body)
	}
}

func TestStatusAPI(t *testing.T) {
	env := newTestEnv(t)
	os.WriteFile(env.h.HeartbeatFile, []byte(`{"lastChecks":{"email":1760000000}}`), 0644)

	out := decode(t, env.get("/api/status"))
	if out["status"] != "online" || out["cpu"] != 12.5 || out["uptime"] != "1d 2h 3m" {
		t.Errorf("Unexpected status %v", out)
	}
	if hb, ok := out["heartbeat"].(map[string]interface{}); !ok || hb["lastChecks"] == nil {
		t.Errorf("Expected heartbeat state, got %v", out["heartbeat"])
	}
	ai := out["ai_status"].(map[string]interface{})
	if ai["ai_status"] != status.Working {
		t.Errorf("Unexpected ai status %v", ai)
	}

	env.h.System = &fakeProbe{err: errors.New("no proc")}
	os.WriteFile(env.h.HeartbeatFile, []byte(`{broken`), 0644)
	w := env.get("/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected degraded 200, got %d", w.Code)
	}
	if hb := decode(t, w)["heartbeat"].(map[string]interface{}); len(hb) != 0 {
		t.Errorf("Expected empty heartbeat, got %v", hb)
	}
}

func TestActivityAPI(t *testing.T) {
	env := newTestEnv(t)

	out := decode(t, env.get("/api/activity"))
	if out["count"] != float64(2) {
		t.Fatalf("Expected 2 activities, got %v", out)
	}
	first := out["activities"].([]interface{})[0].(map[string]interface{})
	if first["time"] != "10:30" || first["category"] != "system" {
		t.Errorf("Expected newest entry first, got %v", first)
	}

	if out := decode(t, env.get("/api/activity?limit=1")); out["count"] != float64(1) {
		t.Errorf("limit ignored: %v", out)
	}
	if out := decode(t, env.get("/api/activity?limit=abc")); out["count"] != float64(2) {
		t.Errorf("bad limit should be ignored: %v", out)
	}
	if out := decode(t, env.get("/api/activity?category=email")); out["count"] != float64(1) {
		t.Errorf("category filter: %v", out)
	}
	if out := decode(t, env.get("/api/activity?date=not-a-date")); out["count"] != float64(0) {
		t.Errorf("invalid date should match nothing: %v", out)
	}
	if out := decode(t, env.get("/api/activity/dates")); out["count"] != float64(1) {
		t.Errorf("dates: %v", out)
	}
	if out := decode(t, env.get("/api/activity/categories")); len(out) != 7 {
		t.Errorf("Expected 7 categories, got %v", out)
	}
}

func TestDigestAPI(t *testing.T) {
	env := newTestEnv(t)

	if w := env.postJSON("/api/activity/digest", DigestRequest{}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without AI, got %d", w.Code)
	}

	gen := &fakeGenerator{reply: "**Busy** day."}
	env.h.Digester = &ai.Digester{Generator: gen, Activity: env.h.Activity, Tasks: env.h.Tasks, Notes: env.h.Notes}

	w := env.postJSON("/api/activity/digest", DigestRequest{Date: "2026-02-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	if out["summary"] != "**Busy** day." || out["entries"] != float64(2) {
		t.Errorf("Unexpected digest %v", out)
	}

	if w := env.postJSON("/api/activity/digest", DigestRequest{Date: "01/02/2026"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad date, got %d", w.Code)
	}

	env.h.DigestsDir = filepath.Join(env.dir, "data", "digests")
	w = env.postJSON("/api/activity/digest", DigestRequest{Date: "2026-02-01", Save: true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 when saving, got %d: %s", w.Code, w.Body.String())
	}
	saved := filepath.Join(env.h.DigestsDir, "2026-02-01.md")
	if out := decode(t, w); out["saved_to"] != saved || out["summary"] != "**Busy** day." {
		t.Errorf("Unexpected saved digest response %v", out)
	}
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("Digest file not written: %v", err)
	}

	gen.err = errors.New("quota exceeded")
	if w := env.postJSON("/api/activity/digest", DigestRequest{Date: "2026-02-01"}); w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 on provider failure, got %d", w.Code)
	}
}

func TestCalendarAPI(t *testing.T) {
	env := newTestEnv(t)

	out := decode(t, env.get("/api/calendar"))
	if out["enabled"] != false || out["count"] != float64(0) {
		t.Errorf("Unexpected disabled calendar response %v", out)
	}

	start := time.Date(2026, 2, 1, 19, 0, 0, 0, time.Local)
	agenda := &fakeAgenda{events: []calendar.Event{
		{ID: "e1", Summary: "Dinner with Sam", Location: "Home", Start: start, End: start.Add(time.Hour)},
	}}
	env.h.Calendar = agenda

	out = decode(t, env.get("/api/calendar"))
	if out["enabled"] != true || out["count"] != float64(1) || out["stale"] != false {
		t.Errorf("Unexpected calendar response %v", out)
	}
	if body := env.get("/").Body.String(); !strings.Contains(body, "Dinner with Sam") || !strings.Contains(body, "Sun 19:00") {
		t.Errorf("Dashboard missing agenda:\n%s", body)
	}

	agenda.err = errors.New("quota exceeded")
	if out := decode(t, env.get("/api/calendar")); out["stale"] != true {
		t.Errorf("Expected stale flag, got %v", out)
	}

	agenda.events = nil
	if w := env.get("/api/calendar"); w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 when calendar unreadable, got %d", w.Code)
	}
	if w := env.get("/"); w.Code != http.StatusOK {
		t.Errorf("Dashboard should render without agenda, got %d", w.Code)
	}
}

func TestTasksAPI(t *testing.T) {
	env := newTestEnv(t)

	if w := env.postJSON("/api/tasks/add", AddTaskRequest{Text: "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty text, got %d", w.Code)
	}
	if w := env.postJSON("/api/tasks/add", AddTaskRequest{Text: "x", Column: "later"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad column, got %d", w.Code)
	}

	w := env.postJSON("/api/tasks/add", AddTaskRequest{Text: "Write report", Priority: "high"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	id := decode(t, w)["task"].(map[string]interface{})["id"].(string)

	stats := decode(t, env.get("/api/tasks/stats"))
	if stats["todo"] != float64(2) || stats["done"] != float64(1) || stats["total"] != float64(3) {
		t.Errorf("Unexpected stats %v", stats)
	}

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"bad column", map[string]interface{}{"column": "later", "id": id}, http.StatusBadRequest},
		{"missing id", map[string]interface{}{"column": "done"}, http.StatusBadRequest},
		{"unknown id", map[string]interface{}{"column": "done", "id": "nope"}, http.StatusNotFound},
		{"move", map[string]interface{}{"column": "in_progress", "id": id}, http.StatusOK},
		{"file without line", map[string]interface{}{"column": "done", "source_type": "file", "source_file": env.todo}, http.StatusBadRequest},
		{"file bad line", map[string]interface{}{"column": "done", "source_type": "file", "source_file": env.todo, "line_num": "two"}, http.StatusBadRequest},
		{"file missing line", map[string]interface{}{"column": "done", "source_type": "file", "source_file": env.todo, "line_num": 42}, http.StatusNotFound},
		{"file not a task file", map[string]interface{}{"column": "done", "source_type": "file", "source_file": filepath.Join(env.dir, "MEMORY.md"), "line_num": 1}, http.StatusNotFound},
		{"file move", map[string]interface{}{"column": "done", "source_type": "file", "source_file": env.todo, "line_num": "2"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postJSON("/api/tasks/move", tt.body)
			if w.Code != tt.code {
				t.Errorf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	data, _ := os.ReadFile(env.todo)
	if string(data) != "# Work\n- [x] Ship it\n- [x] Old thing\n" {
		t.Errorf("Unexpected TODO.md:\n%s", data)
	}

	board := decode(t, env.get("/api/tasks"))
	if n := len(board["in_progress"].([]interface{})); n != 1 {
		t.Errorf("Expected 1 in-progress task, got %d", n)
	}
	if n := len(board["done"].([]interface{})); n != 2 {
		t.Errorf("Expected 2 done tasks, got %d", n)
	}
}

func TestNotesAPI(t *testing.T) {
	env := newTestEnv(t)

	if w := env.postJSON("/api/notes/add", NoteRequest{Text: ""}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	w := env.postJSON("/api/notes/add", NoteRequest{Text: "Call the bank"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	note := decode(t, w)["note"].(map[string]interface{})
	if note["status"] != "pending" {
		t.Errorf("Expected pending note, got %v", note)
	}
	id := note["id"].(string)

	if w := env.postJSON("/api/notes/update", NoteRequest{ID: id, Status: "archived"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad status, got %d", w.Code)
	}
	if w := env.postJSON("/api/notes/update", NoteRequest{ID: "missing", Status: "seen"}); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := env.postJSON("/api/notes/update", NoteRequest{ID: id, Status: "seen"}); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	out := decode(t, env.get("/api/notes"))
	if out["count"] != float64(1) {
		t.Errorf("Unexpected notes %v", out)
	}

	acts := decode(t, env.get("/api/activity"))
	if acts["count"] != float64(4) {
		t.Errorf("Expected note actions in the activity feed, got %v", acts["count"])
	}
}

func TestEmailAPI(t *testing.T) {
	env := newTestEnv(t)
	if out := decode(t, env.get("/api/emails")); out["status"] != "Active" || out["account_masked"] != "ch***@example.com" {
		t.Errorf("Unexpected email status %v", out)
	}
	if out := decode(t, env.get("/api/emails/check")); out["status"] != email.StatusSuccess {
		t.Errorf("Unexpected check %v", out)
	}
	if n := env.h.Email.(*fakeEmail).checks; n != 1 {
		t.Errorf("Expected 1 check, got %d", n)
	}
}

func TestMemoryAndDocsAPI(t *testing.T) {
	env := newTestEnv(t)

	out := decode(t, env.get("/api/memory?file=2026-02-01.md"))
	if len(out["files"].([]interface{})) != 1 || out["content"] == nil {
		t.Errorf("Unexpected memory response %v", out)
	}
	if out := decode(t, env.get("/api/memory?file=../MEMORY.md")); out["content"] != nil {
		t.Errorf("Expected no content for a path outside the memory dir, got %v", out["content"])
	}

	if out := decode(t, env.get("/api/docs")); out["count"] != float64(2) {
		t.Errorf("Expected MEMORY.md and TODO.md, got %v", out)
	}
	if w := env.get("/api/docs/view"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without path, got %d", w.Code)
	}
	outside := filepath.Join(t.TempDir(), "secret.md")
	os.WriteFile(outside, []byte("secret"), 0644)
	if w := env.get("/api/docs/view?path=" + url.QueryEscape(outside)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 outside the workspace, got %d", w.Code)
	}
	w := env.get("/api/docs/view?path=" + url.QueryEscape(env.todo))
	if w.Code != http.StatusOK || !strings.Contains(decode(t, w)["content"].(string), "Ship it") {
		t.Errorf("Unexpected doc view %d %s", w.Code, w.Body.String())
	}
}

func TestSystemAPI(t *testing.T) {
	env := newTestEnv(t)
	out := decode(t, env.get("/api/system"))
	if out["system"].(map[string]interface{})["hostname"] != "chitty" {
		t.Errorf("Unexpected system %v", out["system"])
	}
	if len(out["services"].([]interface{})) != 1 {
		t.Errorf("Unexpected services %v", out["services"])
	}
}

func TestAdmin(t *testing.T) {
	env := newTestEnv(t)

	viewer, err := env.h.Auth.CreateUser("viewer", "pw", db.RoleViewer, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if w := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil), env.login(t, viewer)); w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for viewer, got %d", w.Code)
	}

	form := url.Values{"username": {"bob"}, "password": {"a"}, "confirm_password": {"b"}, "role": {"viewer"}}
	w := env.do(postForm("/admin/create-user", form), env.cookie)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Passwords do not match") {
		t.Errorf("Expected mismatch error, got %d", w.Code)
	}
	form.Set("confirm_password", "a")
	form.Set("role", "owner")
	if w := env.do(postForm("/admin/create-user", form), env.cookie); w.Code != http.StatusBadRequest {
		t.Errorf("Expected invalid role error, got %d", w.Code)
	}
	form.Set("role", "viewer")
	if w := env.do(postForm("/admin/create-user", form), env.cookie); w.Code != http.StatusFound {
		t.Fatalf("Expected redirect after create, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(postForm("/admin/create-user", form), env.cookie)
	if !strings.Contains(w.Body.String(), "Username already exists") {
		t.Errorf("Expected duplicate error, got %d", w.Code)
	}

	w = env.do(postForm("/admin/delete-user/"+env.admin.ID, nil), env.cookie)
	if loc := w.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Errorf("Expected self-delete to be refused, got %q", loc)
	}
	w = env.do(postForm("/admin/delete-user/"+viewer.ID, nil), env.cookie)
	if loc := w.Header().Get("Location"); !strings.Contains(loc, "notice=") {
		t.Errorf("Expected delete notice, got %q", loc)
	}

	users, _ := env.h.Auth.Users()
	if len(users) != 2 {
		t.Errorf("Expected admin and bob, got %d users", len(users))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
