package activity

import (
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// Query filters the activity feed. Zero values mean no filter.
type Query struct {
	Date     string
	Category Category
	Limit    int
}

// Service merges memory logs with the dashboard log.
type Service struct {
	Memory *workspace.Memory
	Log    *Log
	Logger *slog.Logger
	Now    func() time.Time
}

func NewService(memory *workspace.Memory, log *Log, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Memory: memory, Log: log, Logger: logger, Now: time.Now}
}

// Activities returns entries newest first by (date, time), ties keeping
// their merge order: memory files newest name first, then the dashboard
// log in file order.
func (s *Service) Activities(q Query) []Entry {
	entries := []Entry{}

	if q.Date != "" {
		if path, ok := s.Memory.DailyLogPath(q.Date); ok {
			entries = append(entries, ParseMemoryFile(path)...)
		}
	} else {
		for _, date := range s.Memory.DailyLogDates() {
			entries = append(entries, ParseMemoryFile(filepath.Join(s.Memory.Dir, date+".md"))...)
		}
	}

	dash, _ := s.Log.Read()
	for _, e := range dash {
		if q.Date != "" && e.Date != q.Date {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Time > entries[j].Time
	})

	if q.Category != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Category == q.Category {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries
}

// Today returns up to limit of today's entries.
func (s *Service) Today(limit int) []Entry {
	return s.Activities(Query{Date: s.Now().Format("2006-01-02"), Limit: limit})
}

// AvailableDates lists dates that have a memory log, newest first.
func (s *Service) AvailableDates() []string {
	return s.Memory.DailyLogDates()
}

// Categories returns the category catalog.
func (s *Service) Categories() map[Category]CategoryInfo {
	return Categories()
}
