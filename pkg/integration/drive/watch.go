package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
)

// maxImportBytes caps how much of a Drive file is read into a note.
const maxImportBytes = 64 << 10

// WatchTracker records which Drive files have been imported.
type WatchTracker interface {
	GetDriveWatchByFileID(driveFileID string) (*db.DriveWatchRecord, error)
	InsertDriveWatch(driveFileID, fileName string, processedAt time.Time) error
}

// Watcher monitors a Google Drive folder and hands each new text file to a
// handler once, e.g. to turn it into a quick note.
type Watcher struct {
	service  DriveAPI
	repo     WatchTracker
	folderID string
	handler  func(name, content string) error
	logger   *slog.Logger
	now      func() time.Time
}

// NewWatcher creates a new Drive watcher.
func NewWatcher(service DriveAPI, repo WatchTracker, folderID string, handler func(name, content string) error, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		service:  service,
		repo:     repo,
		folderID: folderID,
		handler:  handler,
		logger:   logger,
		now:      time.Now,
	}
}

// Start checks the folder now and then every interval. It returns once ctx
// is cancelled and no pass is running.
func (w *Watcher) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.WatchOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("drive watch failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// WatchOnce imports new text files and returns how many were handled.
func (w *Watcher) WatchOnce(ctx context.Context) (int, error) {
	files, err := w.service.ListFiles(ctx, w.folderID)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	imported := 0
	for _, f := range files {
		if !isText(f) {
			continue
		}
		rec, err := w.repo.GetDriveWatchByFileID(f.ID)
		if err != nil {
			w.logger.Warn("drive watch: db error", "file", f.Name, "error", err)
			continue
		}
		if rec != nil {
			continue // already processed
		}

		reader, err := w.service.DownloadFile(ctx, f.ID)
		if err != nil {
			w.logger.Warn("drive watch: download failed", "file", f.Name, "error", err)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(reader, maxImportBytes))
		reader.Close()
		if err != nil {
			w.logger.Warn("drive watch: read failed", "file", f.Name, "error", err)
			continue
		}

		if err := w.handler(f.Name, strings.TrimSpace(string(data))); err != nil {
			w.logger.Warn("drive watch: handler failed", "file", f.Name, "error", err)
			continue
		}

		// Record as processed
		if err := w.repo.InsertDriveWatch(f.ID, f.Name, w.now()); err != nil {
			w.logger.Warn("drive watch: insert watch record failed", "file", f.Name, "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

func isText(f FileInfo) bool {
	if strings.HasPrefix(f.MimeType, "text/") {
		return true
	}
	name := strings.ToLower(f.Name)
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md")
}

// NoteText formats an imported file as note text.
func NoteText(name, content string) string {
	title := strings.TrimSuffix(strings.TrimSuffix(name, ".md"), ".txt")
	if content == "" {
		return title
	}
	return title + ": " + content
}
