package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/MimeLyc/batch-transcriber/internal/batch"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunLog records batch runs and their per-file outcomes in sqlite so that
// past runs stay queryable. The JSON history store remains authoritative for
// deduplication; this is an inspection log.
type RunLog struct {
	db *sql.DB
}

func NewRunLog(path string) (*RunLog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	runLog := &RunLog{db: db}
	if err := runLog.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return runLog, nil
}

func (s *RunLog) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *RunLog) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// SaveRun inserts the run and all its file outcomes in one transaction and
// returns the run id.
func (s *RunLog) SaveRun(ctx context.Context, report *batch.Report) (int64, error) {
	if report == nil {
		return 0, fmt.Errorf("report is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (started_at, finished_at, completed, skipped, failed)
		 VALUES (?, ?, ?, ?, ?)`,
		report.StartedAt.UTC(),
		report.FinishedAt.UTC(),
		report.Completed(),
		report.Skipped(),
		report.Failed(),
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, result := range report.Results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		if _, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_files (run_id, path, name, fingerprint, state, language, duration, artifact, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			result.Path,
			result.Name,
			result.Fingerprint.String(),
			string(result.State),
			result.Language,
			result.Duration,
			result.ArtifactPath,
			errText,
		); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// LoadRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *RunLog) LoadRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, started_at, finished_at, completed, skipped, failed
		 FROM runs
		 ORDER BY id DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]RunSummary, 0)
	for rows.Next() {
		var item RunSummary
		if err := rows.Scan(
			&item.ID,
			&item.StartedAt,
			&item.FinishedAt,
			&item.Completed,
			&item.Skipped,
			&item.Failed,
		); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadRunFiles returns the per-file outcomes of one run in insertion order.
func (s *RunLog) LoadRunFiles(ctx context.Context, runID int64) ([]RunFile, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, path, name, fingerprint, state, language, duration, artifact, error
		 FROM run_files
		 WHERE run_id = ?
		 ORDER BY rowid ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]RunFile, 0)
	for rows.Next() {
		var item RunFile
		if err := rows.Scan(
			&item.RunID,
			&item.Path,
			&item.Name,
			&item.Fingerprint,
			&item.State,
			&item.Language,
			&item.Duration,
			&item.Artifact,
			&item.Error,
		); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
