package activity

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"sent an email to the team", CategoryEmail},
		{"deployed docker service", CategorySystem},
		{"", CategoryOther},
		{"emailed the todo list", CategoryEmail},
		{"Replied on Telegram", CategoryMessage},
		{"Updated MEMORY.md", CategoryMemory},
		{"Marked kanban card complete", CategoryTask},
		{"spawned a sub-agent", CategoryAI},
		{"went for a walk", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestCategoriesCatalog(t *testing.T) {
	cats := Categories()
	if len(cats) != 7 {
		t.Fatalf("Expected 7 categories, got %d", len(cats))
	}
	if cats[CategoryAI].Label != "AI Action" || cats[CategoryEmail].Emoji != "📧" {
		t.Errorf("Unexpected catalog entries: %+v", cats)
	}
	cats[CategoryAI] = CategoryInfo{}
	if Categories()[CategoryAI].Label != "AI Action" {
		t.Errorf("Categories should return a copy")
	}
	if Category("bogus").Info().Label != "Other" {
		t.Errorf("Unknown category should fall back to other")
	}
}

func TestParseMemoryLog(t *testing.T) {
	entries := ParseMemoryLog("### 09:15 Morning\n- did a thing\n- 10:02: did another", "2024-01-01")
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Time != "09:15" || entries[1].Time != "10:02" {
		t.Errorf("Unexpected times %q %q", entries[0].Time, entries[1].Time)
	}
	for _, e := range entries {
		if e.Date != "2024-01-01" || e.Source != SourceMemory || e.Category == "" {
			t.Errorf("Unexpected entry %+v", e)
		}
		if e.Section != "09:15 Morning" {
			t.Errorf("Unexpected section %q", e.Section)
		}
	}
	if entries[1].Text != "did another" {
		t.Errorf("Expected time prefix stripped, got %q", entries[1].Text)
	}
}

func TestParseMemoryLogCarriesTime(t *testing.T) {
	content := `# Daily log
Some prose that is ignored.
- **8:30** - checked inbox
- followed up
## Afternoon
  * restarted the server
- **
-   
`
	entries := ParseMemoryLog(content, "2024-02-02")
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Time != "8:30" || entries[0].Category != CategoryEmail {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[1].Time != "8:30" || entries[1].Section != "Daily log" {
		t.Errorf("Expected carried time and section, got %+v", entries[1])
	}
	if entries[2].Time != "8:30" || entries[2].Section != "Afternoon" || entries[2].Category != CategorySystem {
		t.Errorf("Heading without a time should keep the carried time, got %+v", entries[2])
	}
	if entries[3].Text != "**" {
		t.Errorf("Unexpected last entry %+v", entries[3])
	}
}

func TestParseMemoryFileMissing(t *testing.T) {
	if entries := ParseMemoryFile(filepath.Join(t.TempDir(), "2024-01-01.md")); len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestEntryJSON(t *testing.T) {
	data, err := json.Marshal(Entry{Date: "2024-01-01", Time: "9:00", Text: "sent mail", Category: CategoryEmail, Source: SourceMemory})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if m["icon"] != "email" || m["category_label"] != "Email" || m["emoji"] != "📧" {
		t.Errorf("Missing presentation fields: %s", data)
	}

	var back Entry
	if err := json.Unmarshal(data, &back); err != nil || back.Category != CategoryEmail || back.Text != "sent mail" {
		t.Errorf("Unexpected decoded entry %+v %v", back, err)
	}
}

func TestLogAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "activity.log")
	l := NewLog(path, nil)
	l.Now = func() time.Time { return time.Date(2024, 3, 4, 14, 5, 6, 0, time.Local) }

	if _, outcome := l.Read(); outcome != store.Empty {
		t.Errorf("Expected Empty before first append, got %v", outcome)
	}
	if err := l.Append("Task added: write docs"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	var rec LogRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec); err != nil {
		t.Fatalf("Log line is not JSON: %s", data)
	}
	if rec.Timestamp != "2024-03-04T14:05:06.000000" || rec.Source != "dashboard" {
		t.Errorf("Unexpected record %+v", rec)
	}

	entries, outcome := l.Read()
	if outcome != store.OK || len(entries) != 1 {
		t.Fatalf("Expected one entry, got %d (%v)", len(entries), outcome)
	}
	e := entries[0]
	if e.Date != "2024-03-04" || e.Time != "14:05" || e.Section != "Dashboard" || e.Category != CategoryTask {
		t.Errorf("Unexpected entry %+v", e)
	}
}

func TestLogReadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	content := `{"timestamp": "2024-01-01T10:00:00", "action": "Note added: hi", "source": "dashboard"}
{garbled
{"timestamp": "not a time", "action": "x"}
{"action": 42}

`
	os.WriteFile(path, []byte(content), 0644)

	entries, outcome := NewLog(path, nil).Read()
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one entry, got %d", len(entries))
	}
	if outcome != store.Malformed {
		t.Errorf("Expected Malformed outcome, got %v", outcome)
	}
}

func TestLogReadMissingTimestampUsesNow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	os.WriteFile(path, []byte(`{"action": "restart"}`+"\n"), 0644)

	l := NewLog(path, nil)
	l.Now = func() time.Time { return time.Date(2025, 6, 7, 8, 9, 0, 0, time.Local) }
	entries, _ := l.Read()
	if len(entries) != 1 || entries[0].Date != "2025-06-07" || entries[0].Time != "08:09" {
		t.Errorf("Unexpected entries %+v", entries)
	}
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	memDir := filepath.Join(root, "memory")
	os.MkdirAll(memDir, 0755)
	log := NewLog(filepath.Join(root, "data", "activity.log"), nil)
	svc := NewService(workspace.NewMemory(memDir, filepath.Join(root, "MEMORY.md")), log, nil)
	return svc, memDir
}

func TestActivitiesMergeAndFilter(t *testing.T) {
	svc, memDir := newTestService(t)
	os.WriteFile(filepath.Join(memDir, "2024-01-01.md"), []byte("## 09:00 Start\n- checked email\n- deployed server"), 0644)
	os.WriteFile(filepath.Join(memDir, "2024-01-02.md"), []byte("- no time here\n- 11:30 - wrote a note"), 0644)
	os.WriteFile(filepath.Join(memDir, "README.md"), []byte("- ignored bullet"), 0644)

	svc.Log.Now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local) }
	svc.Log.Append("Task added: x")

	all := svc.Activities(Query{})
	if len(all) != 5 {
		t.Fatalf("Expected 5 entries, got %d: %+v", len(all), all)
	}
	if all[0].Date != "2024-01-02" || all[0].Time != "11:30" {
		t.Errorf("Unexpected first entry %+v", all[0])
	}
	if all[2].Source != SourceDashboard {
		t.Errorf("Expected dashboard entry first on 2024-01-01, got %+v", all[2])
	}

	day := svc.Activities(Query{Date: "2024-01-01"})
	if len(day) != 3 {
		t.Errorf("Expected 3 entries for 2024-01-01, got %d", len(day))
	}
	for _, e := range day {
		if e.Date != "2024-01-01" {
			t.Errorf("Unexpected date in filtered feed: %+v", e)
		}
	}

	sys := svc.Activities(Query{Category: CategorySystem})
	if len(sys) != 1 || sys[0].Text != "deployed server" {
		t.Errorf("Unexpected system entries %+v", sys)
	}

	if limited := svc.Activities(Query{Limit: 2}); len(limited) != 2 {
		t.Errorf("Expected limit 2, got %d", len(limited))
	}

	if bad := svc.Activities(Query{Date: "../secret"}); len(bad) != 0 {
		t.Errorf("Expected no entries for an invalid date, got %d", len(bad))
	}
}

func TestActivitiesSortInvariant(t *testing.T) {
	svc, memDir := newTestService(t)
	r := rand.New(rand.NewSource(42))

	for d := 1; d <= 5; d++ {
		var b strings.Builder
		for i := 0; i < 20; i++ {
			switch r.Intn(4) {
			case 0:
				fmt.Fprintf(&b, "## %d:%02d Block\n", r.Intn(24), r.Intn(60))
			case 1:
				fmt.Fprintf(&b, "- **%d:%02d** - item %d\n", r.Intn(24), r.Intn(60), i)
			default:
				fmt.Fprintf(&b, "- item %d\n", i)
			}
		}
		os.WriteFile(filepath.Join(memDir, fmt.Sprintf("2024-01-%02d.md", d)), []byte(b.String()), 0644)
	}
	for i := 0; i < 10; i++ {
		at := time.Date(2024, 1, 1+r.Intn(5), r.Intn(24), r.Intn(60), 0, 0, time.Local)
		svc.Log.Now = func() time.Time { return at }
		svc.Log.Append(fmt.Sprintf("action %d", i))
	}

	entries := svc.Activities(Query{})
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Date < cur.Date || (prev.Date == cur.Date && prev.Time < cur.Time) {
			t.Fatalf("Order violated at %d: %+v before %+v", i, prev, cur)
		}
	}

	first := svc.Activities(Query{})
	second := svc.Activities(Query{})
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Reads are not idempotent")
	}
}

func TestTodayAndDates(t *testing.T) {
	svc, memDir := newTestService(t)
	svc.Now = func() time.Time { return time.Date(2024, 1, 2, 20, 0, 0, 0, time.Local) }
	os.WriteFile(filepath.Join(memDir, "2024-01-01.md"), []byte("- old"), 0644)
	os.WriteFile(filepath.Join(memDir, "2024-01-02.md"), []byte("- a\n- b\n- c"), 0644)
	os.WriteFile(filepath.Join(memDir, "notes.md"), []byte("- x"), 0644)

	if today := svc.Today(2); len(today) != 2 || today[0].Date != "2024-01-02" {
		t.Errorf("Unexpected today entries %+v", today)
	}

	dates := svc.AvailableDates()
	if len(dates) != 2 || dates[0] != "2024-01-02" || dates[1] != "2024-01-01" {
		t.Errorf("Unexpected dates %v", dates)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("héllo wörld", 4); got != "héll" {
		t.Errorf("Excerpt = %q", got)
	}
	if got := Excerpt("short", 60); got != "short" {
		t.Errorf("Excerpt = %q", got)
	}
}
