package status

import (
	"fmt"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/store"
)

// Update merges the given fields into the status file, stamps
// last_updated and sets started_at once. Nil arguments leave a field alone.
// Unknown keys in the file are kept.
func (r *Reader) Update(currentTask, aiStatus *string) (map[string]interface{}, error) {
	unlock := store.Lock(r.StatusFile)
	defer unlock()

	data := map[string]interface{}{}
	outcome, err := store.ReadJSON(r.StatusFile, &data)
	if outcome == store.Malformed || outcome == store.Unreadable {
		r.Logger.Warn("replacing unreadable status file", "path", r.StatusFile, "error", err)
		data = map[string]interface{}{}
	}

	now := store.Timestamp(r.Now())
	if currentTask != nil {
		data["current_task"] = *currentTask
	}
	if aiStatus != nil {
		data["ai_status"] = *aiStatus
	}
	data["last_updated"] = now
	if _, ok := data["started_at"]; !ok {
		data["started_at"] = now
	}

	if err := store.WriteJSON(r.StatusFile, data); err != nil {
		return nil, fmt.Errorf("failed to write status: %w", err)
	}
	return data, nil
}
