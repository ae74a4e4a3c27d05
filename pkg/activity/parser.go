package activity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// ParseMemoryLog extracts bullet entries from a daily memory log.
//
// Headings set the section for the bullets below them and, when they carry
// an H:MM time, the time as well. A bullet led by its own time overrides
// the carried time from then on. Bullets with no text are dropped.
func ParseMemoryLog(content, date string) []Entry {
	entries := []Entry{}
	section, clock := "", ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if heading, c, ok := workspace.MatchHeading(line); ok {
			section = heading
			if c != "" {
				clock = c
			}
			continue
		}

		text, ok := workspace.MatchBullet(line)
		if !ok {
			continue
		}
		if c, rest, ok := workspace.MatchTimedText(text); ok {
			clock = c
			text = rest
		}
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Date:     date,
			Time:     clock,
			Section:  section,
			Text:     text,
			Category: Classify(text),
			Source:   SourceMemory,
		})
	}
	return entries
}

// ParseMemoryFile parses the memory log at path, dating entries by the
// file name. A missing or unreadable file yields no entries.
func ParseMemoryFile(path string) []Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Entry{}
	}
	date := strings.TrimSuffix(filepath.Base(path), ".md")
	return ParseMemoryLog(string(data), date)
}
