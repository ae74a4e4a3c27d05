package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"* * * *",
		"61 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 8",
		"*/0 * * * *",
		"5-1 * * * *",
		"a * * * *",
		"1,,2 * * * *",
		"@every",
		"@every -1m",
		"@every soon",
		"@yearly-ish",
	}
	for _, expr := range bad {
		if _, err := Parse(expr, time.UTC); err == nil {
			t.Errorf("Parse(%q) should fail", expr)
		}
	}
}

func TestCronNext(t *testing.T) {
	// 2026-02-01 is a Sunday.
	from := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		expr string
		want time.Time
	}{
		{"* * * * *", time.Date(2026, 2, 1, 10, 31, 0, 0, time.UTC)},
		{"0 21 * * *", time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC)},
		{"0 9 * * *", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)},
		{"*/15 * * * *", time.Date(2026, 2, 1, 10, 45, 0, 0, time.UTC)},
		{"0 9 * * 1-5", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)},
		{"0 8 * * 7", time.Date(2026, 2, 8, 8, 0, 0, 0, time.UTC)},
		{"0 0 29 2 *", time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"0 12 15 * 3", time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)},
		{"@daily", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
		{"@hourly", time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC)},
		{"@weekly", time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)},
		{"@monthly", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"@every 90m", time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		s, err := Parse(tt.expr, time.UTC)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.expr, err)
		}
		if got := s.Next(from); !got.Equal(tt.want) {
			t.Errorf("%q: Next = %s, want %s", tt.expr, got, tt.want)
		}
	}
}

func TestCronNextIsStrictlyAfter(t *testing.T) {
	s, _ := Parse("0 21 * * *", time.UTC)
	at := time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC)
	if got := s.Next(at); !got.Equal(at.AddDate(0, 0, 1)) {
		t.Errorf("Next(%s) = %s", at, got)
	}
}

func TestCronNeverFires(t *testing.T) {
	s, err := Parse("0 0 31 2 *", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Next(time.Now()); !got.IsZero() {
		t.Errorf("expected zero time, got %s", got)
	}
}

func TestRunnerRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	r := &Runner{
		Name:     "test",
		Schedule: Every(5 * time.Millisecond),
		Job: func(context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return nil
		},
	}

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	if runs.Load() < 3 {
		t.Errorf("runs = %d", runs.Load())
	}
}

type never struct{}

func (never) Next(time.Time) time.Time { return time.Time{} }

func TestRunnerStopsWhenExhausted(t *testing.T) {
	done := make(chan struct{})
	go func() {
		(&Runner{Name: "never", Schedule: never{}, Job: func(context.Context) error { return nil }}).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner kept waiting on an exhausted schedule")
	}
}
