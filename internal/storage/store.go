// Package storage persists run summaries to a local SQLite database so
// past runs can be listed and compared.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stressray/stressray/internal/engine"
	"github.com/stressray/stressray/internal/stats"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// Summary columns are duplicated out of the report blob so history
	// listings do not need to decode JSON per row.
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		strategy TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		total_requests INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		requests_per_second REAL NOT NULL,
		p95_micros INTEGER NOT NULL,
		partial INTEGER NOT NULL DEFAULT 0,

		report JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	return nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	RunID             string
	Target            string
	Strategy          string
	StartedAt         time.Time
	TotalRequests     int
	Successful        int
	Failed            int
	SuccessRate       float64
	RequestsPerSecond float64
	P95               time.Duration
	Partial           bool
}

// SaveRun records a completed run.
func (s *Store) SaveRun(result *engine.Result) error {
	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (
			run_id, target, strategy, started_at,
			total_requests, successful, failed,
			success_rate, requests_per_second, p95_micros, partial, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Target,
		string(result.Strategy),
		result.StartTime.UTC(),
		result.Report.TotalRequests,
		result.Report.SuccessfulRequests,
		result.Report.FailedRequests,
		result.Report.SuccessRate,
		result.Report.RequestsPerSecond,
		result.Report.P95ResponseTime.Microseconds(),
		result.Partial,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT run_id, target, strategy, started_at,
		       total_requests, successful, failed,
		       success_rate, requests_per_second, p95_micros, partial
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var r RunSummary
		var p95Micros int64
		if err := rows.Scan(
			&r.RunID, &r.Target, &r.Strategy, &r.StartedAt,
			&r.TotalRequests, &r.Successful, &r.Failed,
			&r.SuccessRate, &r.RequestsPerSecond, &p95Micros, &r.Partial,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.P95 = time.Duration(p95Micros) * time.Microsecond
		summaries = append(summaries, r)
	}

	return summaries, rows.Err()
}

// GetRun returns the full stored report for one run.
func (s *Store) GetRun(runID string) (*RunSummary, *stats.Report, error) {
	row := s.db.QueryRow(`
		SELECT run_id, target, strategy, started_at,
		       total_requests, successful, failed,
		       success_rate, requests_per_second, p95_micros, partial, report
		FROM runs WHERE run_id = ?`, runID)

	var r RunSummary
	var p95Micros int64
	var reportJSON string
	if err := row.Scan(
		&r.RunID, &r.Target, &r.Strategy, &r.StartedAt,
		&r.TotalRequests, &r.Successful, &r.Failed,
		&r.SuccessRate, &r.RequestsPerSecond, &p95Micros, &r.Partial,
		&reportJSON,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}
	r.P95 = time.Duration(p95Micros) * time.Microsecond

	var report stats.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, nil, fmt.Errorf("failed to decode stored report: %w", err)
	}

	return &r, &report, nil
}
