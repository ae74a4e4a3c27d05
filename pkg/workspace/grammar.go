// Package workspace reads the agent's markdown workspace: the line grammars
// shared by the activity and task parsers, daily memory files, MEMORY.md and
// the document browser.
package workspace

import (
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^#{1,3}\s+(.+)`)
	clockRe    = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	timedRe    = regexp.MustCompile(`^\*?\*?(\d{1,2}:\d{2})\*?\*?\s*[-:]\s*(.*)`)
	todoRe     = regexp.MustCompile(`^-\s+\[\s*\]\s+(.*)`)
	progressRe = regexp.MustCompile(`^-\s+\[~\]\s+(.*)`)
	doneRe     = regexp.MustCompile(`^-\s+\[[xX]\]\s+(.*)`)
	markerRe   = regexp.MustCompile(`^(\s*-\s+)\[[ ~xX]\](\s+.*)`)
	boldRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// MatchHeading matches "#", "##" or "###" followed by whitespace and text.
// clock is the first H:MM found anywhere in the heading, if any.
func MatchHeading(line string) (heading, clock string, ok bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	heading = strings.TrimSpace(m[1])
	if c := clockRe.FindString(heading); c != "" {
		clock = c
	}
	return heading, clock, true
}

// MatchBullet matches a "- " or "* " list item and returns its trimmed text.
func MatchBullet(line string) (string, bool) {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return strings.TrimSpace(line[2:]), true
	}
	return "", false
}

// MatchTimedText matches bullet text led by a clock, bold or plain:
// "**9:15** - text", "10:02: text".
func MatchTimedText(text string) (clock, rest string, ok bool) {
	m := timedRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// CheckState is the state encoded by a checkbox marker.
type CheckState int

const (
	Unchecked CheckState = iota
	InProgress
	Checked
)

// MatchCheckbox matches a top-level "- [ ] text", "- [~] text" or
// "- [x] text" item. Whitespace is allowed inside an unchecked box.
func MatchCheckbox(line string) (state CheckState, text string, ok bool) {
	if m := doneRe.FindStringSubmatch(line); m != nil {
		return Checked, m[1], true
	}
	if m := progressRe.FindStringSubmatch(line); m != nil {
		return InProgress, m[1], true
	}
	if m := todoRe.FindStringSubmatch(line); m != nil {
		return Unchecked, m[1], true
	}
	return 0, "", false
}

// ReplaceMarker swaps the checkbox marker of line for marker, keeping the
// indentation and the text untouched. The box must hold exactly one of
// ' ', '~', 'x' or 'X'.
func ReplaceMarker(line, marker string) (string, bool) {
	m := markerRe.FindStringSubmatch(line)
	if m == nil {
		return line, false
	}
	return m[1] + "[" + marker + "]" + m[2], true
}

// StripBold removes **bold** markup, keeping the inner text.
func StripBold(text string) string {
	return strings.TrimSpace(boldRe.ReplaceAllString(text, "$1"))
}
