// Package state provides the run history store with database migrations.
package state

import "time"

// RunStatus is the lifecycle status of an analysis run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Run records one load-and-analyze execution.
type Run struct {
	ID          string     `json:"id"`
	Environment string     `json:"environment"`
	Year        int        `json:"year"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	OnboardingRows  int64 `json:"onboarding_rows"`
	TransactionRows int64 `json:"transaction_rows"`
	DepositRows     int64 `json:"deposit_rows"`
}

// MetricValue is a single persisted metric from a run snapshot.
type MetricValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RowCounts carries dataset sizes recorded on run completion.
type RowCounts struct {
	Onboarding   int64
	Transactions int64
	Deposits     int64
}

// Store is the persistence interface for run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(env string, year int) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string, counts RowCounts) error
	GetRun(id string) (*Run, error)
	GetLatestRun(env string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	SaveMetrics(runID string, metrics []MetricValue) error
	GetMetrics(runID string) ([]MetricValue, error)
}
