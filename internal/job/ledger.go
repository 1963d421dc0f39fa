package job

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one ledger entry.
type Run struct {
	ID         string     `yaml:"run_id"`
	JobName    string     `yaml:"job_name"`
	InputLoc   string     `yaml:"input_loc"`
	OutputLoc  string     `yaml:"output_loc"`
	Status     Status     `yaml:"status"`
	Records    int64      `yaml:"records"`
	Files      int        `yaml:"files"`
	Error      string     `yaml:"error,omitempty"`
	StartedAt  time.Time  `yaml:"started_at"`
	FinishedAt *time.Time `yaml:"finished_at,omitempty"`
}

// Ledger records job runs.
type Ledger interface {
	Begin(ctx context.Context, run Run) error
	Finish(ctx context.Context, run Run) error
}

// NopLedger discards everything.
type NopLedger struct{}

func (NopLedger) Begin(context.Context, Run) error  { return nil }
func (NopLedger) Finish(context.Context, Run) error { return nil }

var (
	_ Ledger = NopLedger{}
	_ Ledger = (*SQLiteLedger)(nil)
)

// SQLiteLedger stores runs in a SQLite database file.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLiteLedger opens or creates the ledger database at path.
func OpenSQLiteLedger(path string) (*SQLiteLedger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &SQLiteLedger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) createSchema() error {
	_, err := l.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		job_name    TEXT NOT NULL,
		input_loc   TEXT NOT NULL,
		output_loc  TEXT NOT NULL,
		status      TEXT NOT NULL,
		records     INTEGER NOT NULL DEFAULT 0,
		files       INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		started_at  DATETIME NOT NULL,
		finished_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_runs_job ON runs(job_name, started_at);
	`)
	return err
}

func (l *SQLiteLedger) Begin(ctx context.Context, run Run) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, job_name, input_loc, output_loc, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.JobName, run.InputLoc, run.OutputLoc, string(run.Status), run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

func (l *SQLiteLedger) Finish(ctx context.Context, run Run) error {
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, records = ?, files = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		string(run.Status), run.Records, run.Files, run.Error, finished, run.ID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run %s: no such run", run.ID)
	}
	return nil
}

// Runs returns the most recent runs, newest first. An empty jobName
// matches every job; limit <= 0 means 20.
func (l *SQLiteLedger) Runs(ctx context.Context, jobName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT run_id, job_name, input_loc, output_loc, status, records, files, error, started_at, finished_at FROM runs`
	var args []any
	if jobName != "" {
		query += ` WHERE job_name = ?`
		args = append(args, jobName)
	}
	query += ` ORDER BY started_at DESC, run_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.JobName, &r.InputLoc, &r.OutputLoc, &status, &r.Records, &r.Files, &r.Error, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Status = Status(status)
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
