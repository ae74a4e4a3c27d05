package drive

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
)

// Root is a local directory to back up. Files are named "<Label>/<relative
// path>" on Drive. Pattern filters base names; empty means every file.
type Root struct {
	Label   string
	Dir     string
	Pattern string
}

// SyncTracker records which local files have a Drive copy.
type SyncTracker interface {
	GetDriveSyncByLocalPath(localPath string) (*db.DriveSyncRecord, error)
	InsertDriveSync(driveFileID, localPath string, syncedAt time.Time, direction string) error
	UpdateDriveSync(driveFileID string, syncedAt time.Time) error
}

// Report counts what one backup run did.
type Report struct {
	Uploaded  int `json:"uploaded"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Backup performs incremental dashboard backup to Google Drive.
type Backup struct {
	service  DriveAPI
	repo     SyncTracker
	folderID string
	roots    []Root
	logger   *slog.Logger
}

// NewBackup creates a new Drive backup service.
func NewBackup(service DriveAPI, repo SyncTracker, folderID string, roots []Root, logger *slog.Logger) *Backup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backup{
		service:  service,
		repo:     repo,
		folderID: folderID,
		roots:    roots,
		logger:   logger,
	}
}

// Start runs a backup now and then every interval. It blocks until ctx is
// cancelled and the pass in flight has returned.
func (b *Backup) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := b.Run(ctx); err != nil && ctx.Err() == nil {
			b.logger.Error("drive backup failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Run uploads new files and re-uploads files modified since their last
// sync. Per-file failures are counted and logged, not returned.
func (b *Backup) Run(ctx context.Context) (Report, error) {
	var rep Report
	for _, root := range b.roots {
		err := filepath.Walk(root.Dir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// Skip hidden dirs (.git and friends)
			if info.IsDir() && p != root.Dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if info.IsDir() || !b.matches(root, info.Name()) {
				return nil
			}

			rel, _ := filepath.Rel(root.Dir, p)
			name := path.Join(root.Label, filepath.ToSlash(rel))
			b.backupFile(ctx, p, name, info.ModTime().Truncate(time.Second), &rep)
			return nil
		})
		if err != nil {
			return rep, err
		}
	}

	b.logger.Info("drive backup finished",
		"uploaded", rep.Uploaded, "updated", rep.Updated,
		"unchanged", rep.Unchanged, "failed", rep.Failed)
	return rep, nil
}

func (b *Backup) matches(root Root, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if root.Pattern == "" {
		return true
	}
	ok, _ := filepath.Match(root.Pattern, name)
	return ok
}

func (b *Backup) backupFile(ctx context.Context, localPath, name string, modTime time.Time, rep *Report) {
	rec, err := b.repo.GetDriveSyncByLocalPath(name)
	if err != nil {
		b.logger.Warn("drive backup: db error", "file", name, "error", err)
		rep.Failed++
		return
	}

	switch {
	case rec == nil:
		fileID, err := b.service.UploadFile(ctx, b.folderID, localPath, name, "")
		if err != nil {
			b.logger.Warn("drive backup: upload failed", "file", name, "error", err)
			rep.Failed++
			return
		}
		if err := b.repo.InsertDriveSync(fileID, name, modTime, "upload"); err != nil {
			b.logger.Warn("drive backup: insert sync failed", "file", name, "error", err)
		}
		rep.Uploaded++
	case modTime.After(rec.LastSyncedAt):
		if _, err := b.service.UploadFile(ctx, b.folderID, localPath, name, rec.DriveFileID); err != nil {
			b.logger.Warn("drive backup: re-upload failed", "file", name, "error", err)
			rep.Failed++
			return
		}
		if err := b.repo.UpdateDriveSync(rec.DriveFileID, modTime); err != nil {
			b.logger.Warn("drive backup: update sync failed", "file", name, "error", err)
		}
		rep.Updated++
	default:
		rep.Unchanged++
	}
}
