package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"printbase/internal"
)

// StartSyncRun records a run in the running state and returns its sync id.
func (d *DB) StartSyncRun(syncType, sourceHash string) (string, error) {
	syncID := uuid.NewString()
	_, err := d.conn.Exec(`
INSERT INTO sync_runs (sync_id, sync_type, started_at, status, source_hash)
VALUES (?, ?, ?, ?, ?)
`, syncID, syncType, nowText(), internal.SyncRunning, sourceHash)
	if err != nil {
		return "", err
	}
	return syncID, nil
}

func (d *DB) CompleteSyncRun(syncID string, counts internal.RunCounts) error {
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
UPDATE sync_runs SET status = ?, completed_at = ?, counts_json = ? WHERE sync_id = ?
`, internal.SyncCompleted, nowText(), string(countsJSON), syncID)
	return err
}

func (d *DB) FailSyncRun(syncID string, runErr error) error {
	_, err := d.conn.Exec(`
UPDATE sync_runs SET status = ?, completed_at = ?, error_message = ? WHERE sync_id = ?
`, internal.SyncFailed, nowText(), runErr.Error(), syncID)
	return err
}

// LastCompletedRunHash returns the source hash of the most recent
// completed run, or "" when no run has completed yet.
func (d *DB) LastCompletedRunHash(syncType string) (string, error) {
	var hash string
	err := d.conn.QueryRow(`
SELECT source_hash FROM sync_runs
WHERE sync_type = ? AND status = ?
ORDER BY started_at DESC, id DESC LIMIT 1
`, syncType, internal.SyncCompleted).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (d *DB) latestSyncRun() (*internal.SyncRun, error) {
	row := d.conn.QueryRow(`
SELECT id, sync_id, sync_type, started_at, completed_at, status, error_message, counts_json, source_hash
FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT 1
`)

	var run internal.SyncRun
	var startedAt string
	var completedAt, errorMessage sql.NullString
	var status string
	err := row.Scan(&run.ID, &run.SyncID, &run.SyncType, &startedAt, &completedAt, &status, &errorMessage, &run.CountsJSON, &run.SourceHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Status = internal.SyncStatus(status)
	if t, perr := time.Parse(time.RFC3339, startedAt); perr == nil {
		run.StartedAt = t
	}
	if completedAt.Valid {
		if t, perr := time.Parse(time.RFC3339, completedAt.String); perr == nil {
			run.CompletedAt = &t
		}
	}
	if errorMessage.Valid {
		run.Error = &errorMessage.String
	}
	return &run, nil
}
