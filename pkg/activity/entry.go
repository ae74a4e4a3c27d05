package activity

import "encoding/json"

// Entry sources.
const (
	SourceMemory    = "memory"
	SourceDashboard = "dashboard"
)

// Entry is one line of agent or dashboard activity.
type Entry struct {
	Date     string   // YYYY-MM-DD
	Time     string   // H:MM or HH:MM, may be empty
	Section  string
	Text     string
	Category Category
	Source   string
}

type wireEntry struct {
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	Section       string   `json:"section"`
	Text          string   `json:"text"`
	Icon          string   `json:"icon"`
	Emoji         string   `json:"emoji"`
	Category      Category `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Source        string   `json:"source"`
}

// MarshalJSON adds the category's presentation fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	info := e.Category.Info()
	return json.Marshal(wireEntry{
		Date:          e.Date,
		Time:          e.Time,
		Section:       e.Section,
		Text:          e.Text,
		Icon:          info.Icon,
		Emoji:         info.Emoji,
		Category:      e.Category,
		CategoryLabel: info.Label,
		Source:        e.Source,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Entry{
		Date:     w.Date,
		Time:     w.Time,
		Section:  w.Section,
		Text:     w.Text,
		Category: w.Category,
		Source:   w.Source,
	}
	return nil
}

// Info returns the presentation attributes of the entry's category.
func (e Entry) Info() CategoryInfo {
	return e.Category.Info()
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
