package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// CreateRun inserts a new run in running state.
func (s *SQLiteStore) CreateRun(env string, year int) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:          generateID(),
		Environment: env,
		Year:        year,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("environment", env))

	_, err := s.db.Exec(`
		INSERT INTO runs (id, environment, year, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Environment, run.Year, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with the given status and row counts.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string, counts RowCounts) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, completed_at = ?, error = ?,
		    onboarding_rows = ?, transaction_rows = ?, deposit_rows = ?
		WHERE id = ?`,
		string(status), now, errMsg,
		counts.Onboarding, counts.Transactions, counts.Deposits, id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun retrieves the most recent run for an environment.
// Returns nil without error when no runs exist.
func (s *SQLiteStore) GetLatestRun(env string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(selectRuns+" WHERE environment = ? ORDER BY started_at DESC LIMIT 1", env)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(selectRuns+" ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveMetrics stores the metric snapshot for a run, replacing any
// previous snapshot.
func (s *SQLiteStore) SaveMetrics(runID string, metrics []MetricValue) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM run_metrics WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear metrics: %w", err)
	}
	for _, m := range metrics {
		if _, err := tx.Exec(
			"INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)",
			runID, m.Name, m.Value); err != nil {
			return fmt.Errorf("failed to save metric %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// GetMetrics retrieves the metric snapshot for a run.
func (s *SQLiteStore) GetMetrics(runID string) ([]MetricValue, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		"SELECT name, value FROM run_metrics WHERE run_id = ? ORDER BY name", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MetricValue
	for rows.Next() {
		var m MetricValue
		if err := rows.Scan(&m.Name, &m.Value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const selectRuns = `
	SELECT id, environment, year, status, started_at, completed_at, error,
	       onboarding_rows, transaction_rows, deposit_rows
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.Environment, &run.Year, &status,
		&run.StartedAt, &completedAt, &errMsg,
		&run.OnboardingRows, &run.TransactionRows, &run.DepositRows)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return &run, nil
}

var _ Store = (*SQLiteStore)(nil)
