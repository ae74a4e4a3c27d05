package workspace

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxDocumentBytes caps how much of a document is returned for viewing.
const MaxDocumentBytes = 500000

// ScanDir is one directory the document browser lists.
type ScanDir struct {
	Path    string `mapstructure:"path"`
	Label   string `mapstructure:"label"`
	Pattern string `mapstructure:"pattern"`
}

// DocInfo describes a listed document.
type DocInfo struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	RelativePath string    `json:"relative_path"`
	Type         string    `json:"type"`
	Size         string    `json:"size"`
	SizeBytes    int64     `json:"size_bytes"`
	Modified     string    `json:"modified"`
	ModifiedAt   time.Time `json:"-"`
	Label        string    `json:"label"`
}

// DocView is a document opened for viewing.
type DocView struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Type      string `json:"type"`
	Truncated bool   `json:"truncated"`

	Meta map[string]interface{} `json:"meta,omitempty"`
}

// Docs lists and opens files below the workspace root.
type Docs struct {
	Root string
	Dirs []ScanDir
}

func NewDocs(root string, dirs []ScanDir) *Docs {
	return &Docs{Root: root, Dirs: dirs}
}

// List returns every regular file matched by the scan dirs, newest first.
// A path reached through more than one dir is listed once, under the
// first dir's label.
func (d *Docs) List() []DocInfo {
	docs := []DocInfo{}
	seen := map[string]bool{}
	for _, dir := range d.Dirs {
		pattern := dir.Pattern
		if pattern == "" {
			pattern = "*"
		}
		matches, err := filepath.Glob(filepath.Join(dir.Path, pattern))
		if err != nil {
			continue
		}
		for _, p := range matches {
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[p] = true

			rel, err := filepath.Rel(d.Root, p)
			if err != nil {
				rel = p
			}
			ext := strings.ToLower(filepath.Ext(p))
			if ext == "" {
				ext = "file"
			}
			docs = append(docs, DocInfo{
				Name:         filepath.Base(p),
				Path:         p,
				RelativePath: rel,
				Type:         ext,
				Size:         humanize.Bytes(uint64(info.Size())),
				SizeBytes:    info.Size(),
				Modified:     info.ModTime().Format("2006-01-02 15:04"),
				ModifiedAt:   info.ModTime(),
				Label:        dir.Label,
			})
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ModifiedAt.After(docs[j].ModifiedAt)
	})
	return docs
}

// View opens a document for reading. The resolved path, symlinks
// included, must stay inside the workspace root.
func (d *Docs) View(path string) (*DocView, error) {
	if path == "" {
		return nil, ErrNotFound
	}
	root, err := filepath.EvalSymlinks(d.Root)
	if err != nil {
		return nil, ErrNotFound
	}
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, ErrNotFound
	}
	real, err = filepath.Abs(real)
	if err != nil {
		return nil, ErrNotFound
	}
	if !within(root, real) {
		return nil, ErrNotFound
	}
	info, err := os.Stat(real)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	f, err := os.Open(real)
	if err != nil {
		return nil, ErrNotFound
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentBytes))
	if err != nil {
		return nil, err
	}

	content := strings.ToValidUTF8(string(data), "�")
	ext := strings.ToLower(filepath.Ext(real))
	view := &DocView{
		Name:      filepath.Base(real),
		Path:      real,
		Content:   content,
		Type:      ext,
		Truncated: info.Size() > MaxDocumentBytes,
	}
	if ext == ".md" {
		view.Meta, view.HTML = renderDocument(real, []byte(content))
	}
	return view, nil
}

func within(root, path string) bool {
	root, _ = filepath.Abs(root)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
