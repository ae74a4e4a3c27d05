package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// ErrInvalidDate is returned for a date not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date")

// ActivitySource lists activity entries.
type ActivitySource interface {
	Activities(q activity.Query) []activity.Entry
}

// Digest is a generated summary of one day.
type Digest struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
	Summary string `json:"summary"`
	HTML    string `json:"html"`
}

// Digester writes daily summaries with a language model.
type Digester struct {
	Generator Generator
	Activity  ActivitySource
	Tasks     interface{ Stats() tasks.Stats }
	Notes     interface{ Pending() int }
	Logger    *slog.Logger
	Now       func() time.Time
}

// Digest summarises date, or today when date is empty.
func (d *Digester) Digest(ctx context.Context, date string) (*Digest, error) {
	if d.Generator == nil {
		return nil, ErrNotConfigured
	}
	if date == "" {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		date = now().Format("2006-01-02")
	}
	if !workspace.IsDate(date) {
		return nil, fmt.Errorf("%w %q", ErrInvalidDate, date)
	}

	entries := d.Activity.Activities(activity.Query{Date: date})
	var stats tasks.Stats
	if d.Tasks != nil {
		stats = d.Tasks.Stats()
	}
	pending := 0
	if d.Notes != nil {
		pending = d.Notes.Pending()
	}

	start := time.Now()
	text, err := d.Generator.GenerateText(ctx, DigestPrompt(date, entries, stats, pending))
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest: %w", err)
	}
	if d.Logger != nil {
		d.Logger.Info("digest generated", "date", date, "entries", len(entries), "took", time.Since(start))
	}

	text = strings.TrimSpace(text)
	return &Digest{
		Date:    date,
		Entries: len(entries),
		Summary: text,
		HTML:    workspace.RenderMarkdown(text),
	}, nil
}

// Save writes the digest to dir as DATE.md, replacing an earlier digest for
// the same day.
func (dg *Digest) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create digests dir: %w", err)
	}
	path := filepath.Join(dir, dg.Date+".md")
	body := fmt.Sprintf("# Digest %s\n\n_%d activity entries_\n\n%s\n", dg.Date, dg.Entries, dg.Summary)
	if err := store.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
