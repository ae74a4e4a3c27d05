package ai

import (
	"fmt"
	"strings"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
)

// maxDigestEntries bounds how much of the day goes into one prompt.
const maxDigestEntries = 80

// DigestPrompt returns a prompt asking for a summary of the agent's day.
func DigestPrompt(date string, entries []activity.Entry, stats tasks.Stats, pendingNotes int) string {
	var log strings.Builder
	if len(entries) == 0 {
		log.WriteString("(no activity recorded)\n")
	}
	for i, e := range entries {
		if i == maxDigestEntries {
			fmt.Fprintf(&log, "... and %d more entries\n", len(entries)-maxDigestEntries)
			break
		}
		fmt.Fprintf(&log, "- %s [%s] %s\n", e.Time, e.Category, e.Text)
	}

	return fmt.Sprintf(`
You are summarising the day of Chitty, a background AI assistant, for its owner.

Date: %s
Tasks: %d to do, %d in progress, %d done
Unread quick notes: %d

Activity log (newest first):
%s
Instructions:
1. Write a short headline for the day.
2. List the 3 to 5 most important things Chitty did.
3. Point out anything that looks stuck, failed or needs the owner's attention.

Output as Markdown. Keep it under 200 words.
`, date, stats.Todo, stats.InProgress, stats.Done, pendingNotes, log.String())
}
