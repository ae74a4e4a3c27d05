package tasks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// ParseTodo reads checkbox items out of a TODO file's content. path is
// recorded on each task and names its source.
func ParseTodo(content, path string) *Board {
	board := NewBoard()
	source := SourceLabel(path)
	section := ""

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if heading, _, ok := workspace.MatchHeading(line); ok {
			section = heading
			continue
		}

		state, raw, ok := workspace.MatchCheckbox(line)
		if !ok {
			continue
		}
		col := ColumnTodo
		switch state {
		case workspace.InProgress:
			col = ColumnInProgress
		case workspace.Checked:
			col = ColumnDone
		}
		board.Add(&FileTask{
			Fields: Fields{
				Text:     workspace.StripBold(raw),
				Section:  section,
				Source:   source,
				Priority: DefaultPriority,
				Column:   col,
			},
			Path:    path,
			Line:    i + 1,
			RawText: raw,
		})
	}
	return board
}

// ParseTodoFile parses the TODO file at path. A missing file is an empty
// board.
func ParseTodoFile(path string) *Board {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewBoard()
	}
	return ParseTodo(string(data), path)
}

// SourceLabel names a TODO file by its parent directory, or by the file
// name when it has none.
func SourceLabel(path string) string {
	dir := filepath.Dir(path)
	if dir != "." && dir != string(filepath.Separator) {
		if base := filepath.Base(dir); base != "" {
			return base
		}
	}
	return filepath.Base(path)
}
