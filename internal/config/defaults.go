// Package config holds project-level defaults shared between the CLI
// and the server.
package config

// Default file locations, relative to the project root.
const (
	DefaultDataDir          = "data"
	DefaultOnboardingFile   = "data/Onboarding_sample.csv"
	DefaultTransactionsFile = "data/Transaction_sample.csv"
	DefaultStateFile        = ".agentperf/state.db"
	DefaultExportDir        = "exports"
)

// Default analysis parameters.
const (
	DefaultMinDeposits = 20
	DefaultTopN        = 10
	DefaultEnv         = "dev"
	DefaultPort        = 8765
)
