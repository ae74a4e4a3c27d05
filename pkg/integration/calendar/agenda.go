package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Agenda caches the upcoming events so page loads don't hit the API.
type Agenda struct {
	source  Lister
	horizon time.Duration
	ttl     time.Duration
	logger  *slog.Logger
	Now     func() time.Time

	mu      sync.Mutex
	events  []Event
	fetched time.Time
}

// NewAgenda shows events starting within horizon, refreshed at most once per
// ttl.
func NewAgenda(source Lister, horizon, ttl time.Duration, logger *slog.Logger) *Agenda {
	if logger == nil {
		logger = slog.Default()
	}
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	return &Agenda{source: source, horizon: horizon, ttl: ttl, logger: logger, Now: time.Now}
}

// Upcoming returns events that have not ended yet. When a refresh fails the
// last good list is returned along with the error.
func (a *Agenda) Upcoming(ctx context.Context) ([]Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.Now()
	if a.fetched.IsZero() || now.Sub(a.fetched) >= a.ttl {
		events, err := a.source.ListEvents(ctx, now, now.Add(a.horizon))
		if err != nil {
			a.logger.Warn("failed to refresh agenda", "error", err)
			return current(a.events, now), err
		}
		a.events = events
		a.fetched = now
	}
	return current(a.events, now), nil
}

func current(events []Event, now time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.End.After(now) || e.End.Equal(e.Start) && !e.Start.Before(now) {
			out = append(out, e)
		}
	}
	return out
}
