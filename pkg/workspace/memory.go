package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	// ErrNotFound is returned for a memory file or document that does not
	// exist or may not be served.
	ErrNotFound = errors.New("workspace: file not found")

	dailyNameRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.md$`)
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsDate reports whether s is a strict YYYY-MM-DD date.
func IsDate(s string) bool {
	return dateRe.MatchString(s)
}

// IsDailyLogName reports whether name is a YYYY-MM-DD.md file name.
func IsDailyLogName(name string) bool {
	return dailyNameRe.MatchString(name)
}

// MemoryFile describes one markdown file in the memory directory.
type MemoryFile struct {
	Filename string    `json:"filename"`
	Date     string    `json:"date"`
	Size     string    `json:"size"`
	Bytes    int64     `json:"size_bytes"`
	Modified time.Time `json:"modified"`
}

// Rendered is markdown content together with its HTML.
type Rendered struct {
	Filename string                 `json:"filename,omitempty"`
	Raw      string                 `json:"raw"`
	HTML     string                 `json:"html"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

func newRendered(name, path string, data []byte) *Rendered {
	meta, html := renderDocument(path, data)
	return &Rendered{Filename: name, Raw: string(data), HTML: html, Meta: meta}
}

// Memory gives access to the memory directory and MEMORY.md.
type Memory struct {
	Dir      string
	MainFile string
}

func NewMemory(dir, mainFile string) *Memory {
	return &Memory{Dir: dir, MainFile: mainFile}
}

// Files lists *.md files in the memory directory, newest name first.
func (m *Memory) Files() []MemoryFile {
	paths, _ := filepath.Glob(filepath.Join(m.Dir, "*.md"))
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	files := make([]MemoryFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		name := filepath.Base(p)
		files = append(files, MemoryFile{
			Filename: name,
			Date:     strings.TrimSuffix(name, ".md"),
			Size:     humanize.Bytes(uint64(info.Size())),
			Bytes:    info.Size(),
			Modified: info.ModTime(),
		})
	}
	return files
}

// DailyLogDates returns the dates of YYYY-MM-DD.md files, newest first.
func (m *Memory) DailyLogDates() []string {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		return []string{}
	}
	dates := []string{}
	for _, e := range entries {
		if e.IsDir() || !IsDailyLogName(e.Name()) {
			continue
		}
		dates = append(dates, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// DailyLogPath returns the path of the memory file for date.
func (m *Memory) DailyLogPath(date string) (string, bool) {
	if !IsDate(date) {
		return "", false
	}
	return filepath.Join(m.Dir, date+".md"), true
}

// File renders a single memory file. Only plain file names inside the
// memory directory are served.
func (m *Memory) File(name string) (*Rendered, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".md") {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(m.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return newRendered(name, name, data), nil
}

// Main renders MEMORY.md.
func (m *Memory) Main() (*Rendered, error) {
	data, err := os.ReadFile(m.MainFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return newRendered("", m.MainFile, data), nil
}

// MemoryStats summarizes the memory directory.
type MemoryStats struct {
	TotalFiles    int  `json:"total_files"`
	HasMainMemory bool `json:"has_main_memory"`
}

func (m *Memory) Stats() MemoryStats {
	_, err := os.Stat(m.MainFile)
	return MemoryStats{TotalFiles: len(m.Files()), HasMainMemory: err == nil}
}
