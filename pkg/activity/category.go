// Package activity turns the agent's memory logs and the dashboard's own
// action log into one categorized, time-ordered activity feed.
package activity

import "strings"

// Category classifies an activity line by keyword.
type Category string

const (
	CategoryEmail   Category = "email"
	CategoryMessage Category = "message"
	CategorySystem  Category = "system"
	CategoryMemory  Category = "memory"
	CategoryTask    Category = "task"
	CategoryAI      Category = "ai"
	CategoryOther   Category = "other"
)

// CategoryInfo holds the presentation attributes of a category.
type CategoryInfo struct {
	Icon  string `json:"icon"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

var catalog = map[Category]CategoryInfo{
	CategoryEmail:   {Icon: "email", Emoji: "📧", Label: "Email"},
	CategoryMessage: {Icon: "chat", Emoji: "💬", Label: "Message"},
	CategorySystem:  {Icon: "settings", Emoji: "🔧", Label: "System"},
	CategoryMemory:  {Icon: "psychology", Emoji: "📝", Label: "Memory"},
	CategoryTask:    {Icon: "check_circle", Emoji: "✅", Label: "Task"},
	CategoryAI:      {Icon: "smart_toy", Emoji: "🤖", Label: "AI Action"},
	CategoryOther:   {Icon: "fiber_manual_record", Emoji: "⚪", Label: "Other"},
}

// Keyword sets are tested in this order; the first set with a substring
// hit wins.
var rules = []struct {
	category Category
	keywords []string
}{
	{CategoryEmail, []string{"email", "mail", "inbox", "smtp", "imap"}},
	{CategoryMessage, []string{"message", "telegram", "discord", "chat", "sent", "replied"}},
	{CategorySystem, []string{"deploy", "server", "docker", "system", "restart", "service", "port"}},
	{CategoryMemory, []string{"memory", "remember", "note", "heartbeat", "journal"}},
	{CategoryTask, []string{"task", "todo", "done", "complete", "kanban", "assign"}},
	{CategoryAI, []string{"ai", "agent", "clawdbot", "chitty", "model", "claude", "sub-agent"}},
}

// Classify returns the category of text. Matching is case-insensitive and
// on plain substrings, so "mail" also hits "email" and "ai" hits "maintain".
func Classify(text string) Category {
	t := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.category
			}
		}
	}
	return CategoryOther
}

// Info returns the presentation attributes of c, falling back to "other".
func (c Category) Info() CategoryInfo {
	if info, ok := catalog[c]; ok {
		return info
	}
	return catalog[CategoryOther]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := catalog[c]
	return ok
}

// Categories returns a copy of the category catalog.
func Categories() map[Category]CategoryInfo {
	out := make(map[Category]CategoryInfo, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}
