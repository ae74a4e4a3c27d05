package db

import (
	"database/sql"
	"fmt"
	"time"
)

// DriveSyncRecord tracks the Drive copy of a backed-up local file.
type DriveSyncRecord struct {
	ID           int64
	DriveFileID  string
	LocalPath    string
	LastSyncedAt time.Time
	Direction    string
}

// InsertDriveSync records a newly uploaded file.
func (r *Repository) InsertDriveSync(driveFileID, localPath string, syncedAt time.Time, direction string) error {
	query := `INSERT INTO drive_sync (drive_file_id, local_path, last_synced_at, direction) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Exec(query, driveFileID, localPath, syncedAt, direction); err != nil {
		return fmt.Errorf("failed to insert drive sync: %w", err)
	}
	return nil
}

// GetDriveSyncByLocalPath returns nil, nil when the path was never synced.
func (r *Repository) GetDriveSyncByLocalPath(localPath string) (*DriveSyncRecord, error) {
	query := `SELECT id, drive_file_id, local_path, last_synced_at, direction FROM drive_sync WHERE local_path = ?`
	var rec DriveSyncRecord
	err := r.db.QueryRow(query, localPath).Scan(&rec.ID, &rec.DriveFileID, &rec.LocalPath, &rec.LastSyncedAt, &rec.Direction)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get drive sync: %w", err)
	}
	return &rec, nil
}

// UpdateDriveSync bumps the sync time of a Drive file.
func (r *Repository) UpdateDriveSync(driveFileID string, syncedAt time.Time) error {
	query := `UPDATE drive_sync SET last_synced_at = ? WHERE drive_file_id = ?`
	if _, err := r.db.Exec(query, syncedAt, driveFileID); err != nil {
		return fmt.Errorf("failed to update drive sync: %w", err)
	}
	return nil
}

// CountDriveSync returns how many files have a Drive copy.
func (r *Repository) CountDriveSync() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM drive_sync`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count drive sync: %w", err)
	}
	return n, nil
}

// DriveWatchRecord marks a Drive inbox file as imported.
type DriveWatchRecord struct {
	DriveFileID string
	FileName    string
	ProcessedAt time.Time
}

// InsertDriveWatch records an imported Drive file.
func (r *Repository) InsertDriveWatch(driveFileID, fileName string, processedAt time.Time) error {
	query := `INSERT INTO drive_watch (drive_file_id, file_name, processed_at) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, driveFileID, fileName, processedAt); err != nil {
		return fmt.Errorf("failed to insert drive watch: %w", err)
	}
	return nil
}

// GetDriveWatchByFileID returns nil, nil when the file was never imported.
func (r *Repository) GetDriveWatchByFileID(driveFileID string) (*DriveWatchRecord, error) {
	query := `SELECT drive_file_id, file_name, processed_at FROM drive_watch WHERE drive_file_id = ?`
	var rec DriveWatchRecord
	err := r.db.QueryRow(query, driveFileID).Scan(&rec.DriveFileID, &rec.FileName, &rec.ProcessedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get drive watch: %w", err)
	}
	return &rec, nil
}
