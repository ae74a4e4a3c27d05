// Package notes keeps short notes left for the agent through the dashboard.
package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
)

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrInvalidStatus = errors.New("invalid note status")
)

// Status is how far the agent has got with a note.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSeen      Status = "seen"
	StatusProcessed Status = "processed"
)

// ValidStatuses lists the accepted note statuses.
var ValidStatuses = []Status{StatusPending, StatusSeen, StatusProcessed}

func ParseStatus(s string) (Status, error) {
	for _, v := range ValidStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Status    Status `json:"status"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Service struct {
	Store    store.Store[Note]
	Recorder activity.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

func NewService(st store.Store[Note], rec activity.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Store: st, Recorder: rec, Logger: logger, Now: time.Now, NewID: store.NewID}
}

// List returns all notes, newest timestamp first.
func (s *Service) List() []Note {
	items, outcome, err := s.Store.Load()
	switch outcome {
	case store.Malformed, store.Unreadable:
		s.Logger.Warn("note store could not be read, treating as empty", "outcome", outcome, "error", err)
		return []Note{}
	case store.Empty:
		return []Note{}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items
}

// Pending counts notes the agent has not looked at yet.
func (s *Service) Pending() int {
	n := 0
	for _, note := range s.List() {
		if note.Status == StatusPending {
			n++
		}
	}
	return n
}

// Add stores a new pending note.
func (s *Service) Add(text string) (*Note, error) {
	note := Note{
		ID:        s.NewID(),
		Text:      text,
		Timestamp: store.Timestamp(s.Now()),
		Status:    StatusPending,
	}
	err := s.Store.Update(func(items []Note) ([]Note, error) {
		return append(items, note), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	s.record(fmt.Sprintf("Note added: %s", activity.Excerpt(text, 60)))
	return &note, nil
}

// UpdateStatus sets the status of the note with the given id.
func (s *Service) UpdateStatus(id, status string) (*Note, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *Note
	err = s.Store.Update(func(items []Note) ([]Note, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			items[i].Status = st
			items[i].UpdatedAt = store.Timestamp(s.Now())
			n := items[i]
			updated = &n
			return items, nil
		}
		return nil, ErrNoteNotFound
	})
	if err != nil {
		return nil, err
	}
	s.record(fmt.Sprintf("Note %s marked as %s", id, st))
	return updated, nil
}

func (s *Service) record(action string) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Append(action); err != nil {
		s.Logger.Warn("failed to record activity", "action", action, "error", err)
	}
}
