// Package schedule parses cron-style schedules and runs jobs on them.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule yields the next activation strictly after a given time. A zero
// result means the schedule never fires again.
type Schedule interface {
	Next(after time.Time) time.Time
}

// Every fires at a fixed interval.
type Every time.Duration

func (e Every) Next(after time.Time) time.Time {
	return after.Add(time.Duration(e))
}

// Cron is a five-field cron expression: minute hour day-of-month month
// day-of-week. Each field is a bitmask of allowed values.
type Cron struct {
	minute, hour, dom, month, dow uint64
	domAny, dowAny                bool
	loc                           *time.Location
}

type field struct {
	name     string
	min, max int
}

var fields = [5]field{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

var descriptors = map[string]string{
	"@hourly":   "0 * * * *",
	"@daily":    "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@weekly":   "0 0 * * 0",
	"@monthly":  "0 0 1 * *",
}

// Parse accepts a cron expression, a descriptor such as "@daily", or
// "@every <duration>". Cron times are evaluated in loc (local time when nil).
func Parse(expr string, loc *time.Location) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "@every "); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", rest, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %s", d)
		}
		return Every(d), nil
	}
	if std, ok := descriptors[expr]; ok {
		expr = std
	}

	parts := strings.Fields(expr)
	if len(parts) != len(fields) {
		return nil, fmt.Errorf("invalid cron expression %q: want %d fields, got %d", expr, len(fields), len(parts))
	}
	var masks [5]uint64
	for i, f := range fields {
		m, err := parseField(parts[i], f.min, f.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", f.name, err)
		}
		masks[i] = m
	}
	// Sunday may be written as 0 or 7.
	if masks[4]&(1<<7) != 0 {
		masks[4] |= 1
	}
	if loc == nil {
		loc = time.Local
	}
	return &Cron{
		minute: masks[0],
		hour:   masks[1],
		dom:    masks[2],
		month:  masks[3],
		dow:    masks[4],
		domAny: parts[2] == "*",
		dowAny: parts[4] == "*",
		loc:    loc,
	}, nil
}

func has(mask uint64, v int) bool { return mask&(1<<uint(v)) != 0 }

// Next walks forward from after, skipping whole months, days and hours that
// cannot match. It gives up after five years.
func (c *Cron) Next(after time.Time) time.Time {
	t := after.In(c.loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(5, 0, 0)

	for t.Before(limit) {
		if !has(c.month, int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, c.loc)
			continue
		}
		if !c.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, c.loc)
			continue
		}
		if !has(c.hour, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, c.loc)
			continue
		}
		if !has(c.minute, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

// dayMatches follows cron's rule that a restricted day-of-month and a
// restricted day-of-week are ORed.
func (c *Cron) dayMatches(t time.Time) bool {
	dom := has(c.dom, t.Day())
	dow := has(c.dow, int(t.Weekday()))
	switch {
	case c.domAny && c.dowAny:
		return true
	case c.domAny:
		return dow
	case c.dowAny:
		return dom
	}
	return dom || dow
}

func parseField(s string, min, max int) (uint64, error) {
	var mask uint64
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return 0, fmt.Errorf("empty list item in %q", s)
		}

		step := 1
		if base, st, ok := strings.Cut(item, "/"); ok {
			n, err := strconv.Atoi(st)
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("invalid step in %q", item)
			}
			item, step = base, n
		}

		lo, hi := min, max
		if item != "*" {
			var err error
			if lo, hi, err = parseRange(item, min, max); err != nil {
				return 0, err
			}
			if step > 1 && lo == hi {
				hi = max
			}
		}
		for v := lo; v <= hi; v += step {
			mask |= 1 << uint(v)
		}
	}
	return mask, nil
}

func parseRange(s string, min, max int) (int, int, error) {
	a, b, isRange := strings.Cut(s, "-")
	lo, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", s)
	}
	hi := lo
	if isRange {
		if hi, err = strconv.Atoi(b); err != nil {
			return 0, 0, fmt.Errorf("invalid range %q", s)
		}
	}
	if lo < min || hi > max || lo > hi {
		return 0, 0, fmt.Errorf("%q out of range [%d,%d]", s, min, max)
	}
	return lo, hi, nil
}
