// Package calendar shows the agent owner's upcoming Google Calendar events
// on the dashboard.
package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scope is the read-only scope the agenda needs.
const Scope = gcal.CalendarReadonlyScope

// Event is an upcoming calendar entry.
type Event struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Link     string    `json:"link,omitempty"`
}

// Lister fetches events in a time window. Agenda uses it for testability.
type Lister interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
}

// Service wraps the Google Calendar API for one calendar.
type Service struct {
	srv        *gcal.Service
	calendarID string
}

func NewService(ctx context.Context, calendarID string, opts ...option.ClientOption) (*Service, error) {
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Service{srv: srv, calendarID: calendarID}, nil
}

// ListEvents returns single (expanded) events overlapping [from, to) ordered
// by start time. Cancelled events and events with unparseable times are
// skipped.
func (s *Service) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	var out []Event
	call := s.srv.Events.List(s.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Fields("nextPageToken", "items(id,status,summary,location,htmlLink,start,end)")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			if e, ok := fromAPI(item); ok {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

func fromAPI(item *gcal.Event) (Event, bool) {
	start, allDay, ok := eventTime(item.Start)
	if !ok {
		return Event{}, false
	}
	end, _, ok := eventTime(item.End)
	if !ok {
		end = start
	}
	summary := item.Summary
	if summary == "" {
		summary = "(no title)"
	}
	return Event{
		ID:       item.Id,
		Summary:  summary,
		Location: item.Location,
		Start:    start,
		End:      end,
		AllDay:   allDay,
		Link:     item.HtmlLink,
	}, true
}

// eventTime reads a timed or all-day boundary. All-day dates are placed in
// the local zone.
func eventTime(edt *gcal.EventDateTime) (time.Time, bool, bool) {
	if edt == nil {
		return time.Time{}, false, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		return t, false, err == nil
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, time.Local)
		return t, true, err == nil
	}
	return time.Time{}, false, false
}
