// Package config loads CLI configuration from file, environment, and
// flags with koanf.
package config

// Config is the resolved CLI configuration.
type Config struct {
	// ProjectRoot anchors relative path resolution.
	ProjectRoot string `koanf:"-"`

	DataDir          string `koanf:"data_dir"`
	OnboardingPath   string `koanf:"onboarding"`
	TransactionsPath string `koanf:"transactions"`

	// DatabasePath is the DuckDB file path; empty means in-memory.
	DatabasePath string `koanf:"database"`
	// StatePath is the SQLite run-history database path.
	StatePath string `koanf:"state_path"`

	Year            int      `koanf:"year"`
	MinDeposits     int      `koanf:"min_deposits"`
	DepositKeywords []string `koanf:"deposit_keywords"`

	Environment  string `koanf:"environment"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	Port int `koanf:"port"`
}
