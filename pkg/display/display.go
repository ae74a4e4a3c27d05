// Package display provides terminal formatting for dashboard CLI output.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Stdout and Stderr are where the Msg helpers print.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	Warning  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	HighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	NormalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb"))
	LowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// PriorityDot returns a colored dot for a task priority.
func PriorityDot(priority string) string {
	switch priority {
	case "high", "urgent":
		return HighStyle.Render("●")
	case "normal", "medium":
		return NormalStyle.Render("○")
	case "low":
		return LowStyle.Render("○")
	default:
		return Dim.Render("·")
	}
}

// StatusStyle picks the style for a status class (success, warning, danger).
func StatusStyle(class string) lipgloss.Style {
	switch class {
	case "success":
		return Success
	case "warning":
		return Warning
	case "danger":
		return ErrStyle
	}
	return Dim
}

// TimeAgo formats a stored timestamp as a relative time.
func TimeAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Truncate shortens a string to maxLen runes, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(Stdout, Success.Render("✓")+" "+msg)
}

// ErrorMsg prints a red X + message to stderr.
func ErrorMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(Stderr, ErrStyle.Render("✗")+" "+msg)
}

// Header prints a section header.
func Header(title string) {
	fmt.Fprintln(Stdout, Bold.Render(title))
}

// SubHeader prints a dim subsection label.
func SubHeader(title string) {
	fmt.Fprintln(Stdout, Muted.Render(title))
}

// TaskLine formats one board entry: priority dot, text and where it came from.
func TaskLine(priority, text, source, ref string) string {
	line := fmt.Sprintf("  %s %s", PriorityDot(priority), Truncate(text, 70))
	meta := source
	if ref != "" {
		meta += " " + ref
	}
	if meta != "" {
		line += "  " + Dim.Render(meta)
	}
	return line
}

// ActivityLine formats one activity entry.
func ActivityLine(emoji, date, clock, text string) string {
	return fmt.Sprintf("  %s %s %s", emoji, Dim.Render(date+" "+clock), Truncate(strings.TrimSpace(text), 90))
}
