package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the zone-less local time format written to data files.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var readLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp formats t for storage.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts the stored layout, RFC 3339 and a few shorter ISO
// forms. Zone-less values are read as local time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewID returns a short random identifier for dashboard records.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
