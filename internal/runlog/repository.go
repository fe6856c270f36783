package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/database"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for runs.
type Repository interface {
	Save(ctx context.Context, run *Run) error
	List(ctx context.Context, limit int) ([]Run, error)
	ListByDroplet(ctx context.Context, dropletName string, limit int) ([]Run, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the run log at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS runs (
            id           INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id       TEXT    NOT NULL,
            timestamp    TEXT    NOT NULL,
            domain_name  TEXT    NOT NULL DEFAULT '',
            droplet_name TEXT    NOT NULL DEFAULT '',
            droplet_id   TEXT    NOT NULL DEFAULT '',
            region       TEXT    NOT NULL DEFAULT '',
            ip           TEXT    NOT NULL DEFAULT '',
            record_name  TEXT    NOT NULL DEFAULT '',
            state        TEXT    NOT NULL DEFAULT '',
            outcome      TEXT    NOT NULL DEFAULT '',
            detail       TEXT    NOT NULL DEFAULT '',
            duration_ms  INTEGER NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
        CREATE INDEX IF NOT EXISTS idx_runs_droplet_name ON runs(droplet_name);
    `
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("runlog: migration failed: %w", err)
	}
	return nil
}

// Save inserts a run, assigning a RunID and Timestamp when unset.
func (r *SQLiteRepository) Save(ctx context.Context, run *Run) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	result, err := r.db.ExecContext(ctx, `
        INSERT INTO runs (run_id, timestamp, domain_name, droplet_name, droplet_id, region, ip, record_name, state, outcome, detail, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Timestamp.UTC().Format(time.RFC3339Nano), run.DomainName, run.DropletName, run.DropletID,
		run.Region, run.IP, run.RecordName, run.State, run.Outcome, run.Detail, run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("runlog: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("runlog: failed to get last insert ID: %w", err)
	}
	run.ID = id
	return nil
}

// List returns the most recent n runs.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, run_id, timestamp, domain_name, droplet_name, droplet_id, region, ip, record_name,
               state, outcome, detail, duration_ms
        FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ListByDroplet returns the most recent n runs for a droplet name.
func (r *SQLiteRepository) ListByDroplet(ctx context.Context, dropletName string, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, run_id, timestamp, domain_name, droplet_name, droplet_id, region, ip, record_name,
               state, outcome, detail, duration_ms
        FROM runs WHERE droplet_name = ? ORDER BY timestamp DESC LIMIT ?`, dropletName, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Prune deletes runs older than the given duration.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runlog: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		var timestampStr string
		err := rows.Scan(
			&run.ID, &run.RunID, &timestampStr, &run.DomainName, &run.DropletName, &run.DropletID,
			&run.Region, &run.IP, &run.RecordName, &run.State, &run.Outcome, &run.Detail, &run.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("runlog: scan failed: %w", err)
		}
		run.Timestamp, _ = time.Parse(time.RFC3339Nano, timestampStr)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
