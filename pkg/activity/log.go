package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
)

// Recorder appends an action to the dashboard activity log.
type Recorder interface {
	Append(action string) error
}

// LogRecord is one line of the dashboard activity log.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Source    string `json:"source"`
}

// Log is the dashboard's JSON-lines action log.
type Log struct {
	Path   string
	Logger *slog.Logger
	Now    func() time.Time
}

func NewLog(path string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Path: path, Logger: logger, Now: time.Now}
}

// Append writes one record stamped with the current local time.
func (l *Log) Append(action string) error {
	rec := LogRecord{
		Timestamp: store.Timestamp(l.Now()),
		Action:    action,
		Source:    SourceDashboard,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	unlock := store.Lock(l.Path)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// Read returns every decodable record as an entry. Lines that are not JSON
// or carry an unparsable timestamp are skipped and reported as Malformed;
// the remaining entries are still returned. A record with no timestamp is
// dated at read time.
func (l *Log) Read() ([]Entry, store.Outcome) {
	entries := []Entry{}
	f, err := os.Open(l.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.Logger.Warn("activity log unreadable", "path", l.Path, "error", err)
			return entries, store.Unreadable
		}
		return entries, store.Empty
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec LogRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			skipped++
			continue
		}
		at := l.Now()
		if rec.Timestamp != "" {
			t, ok := store.ParseTimestamp(rec.Timestamp)
			if !ok {
				skipped++
				continue
			}
			at = t
		}
		entries = append(entries, Entry{
			Date:     at.Format("2006-01-02"),
			Time:     at.Format("15:04"),
			Section:  "Dashboard",
			Text:     rec.Action,
			Category: Classify(rec.Action),
			Source:   SourceDashboard,
		})
	}
	if err := scanner.Err(); err != nil {
		l.Logger.Warn("activity log read stopped early", "path", l.Path, "error", err)
		skipped++
	}

	if skipped > 0 {
		l.Logger.Warn("skipped malformed activity log lines", "path", l.Path, "skipped", skipped)
		return entries, store.Malformed
	}
	if len(entries) == 0 {
		return entries, store.Empty
	}
	return entries, store.OK
}
