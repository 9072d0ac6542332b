// Package commands implements the agentperf subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/cli/config"
	"github.com/aps-wallet/agentperf/internal/cli/output"
	intconfig "github.com/aps-wallet/agentperf/internal/config"
	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/state"
	"github.com/aps-wallet/agentperf/internal/warehouse"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the shared command dependencies.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.ParseMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, falling back to
// environment defaults when LoadConfig has not run.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		DataDir:          getEnvOrDefault("AGENTPERF_DATA_DIR", intconfig.DefaultDataDir),
		OnboardingPath:   getEnvOrDefault("AGENTPERF_ONBOARDING", intconfig.DefaultOnboardingFile),
		TransactionsPath: getEnvOrDefault("AGENTPERF_TRANSACTIONS", intconfig.DefaultTransactionsFile),
		DatabasePath:     os.Getenv("AGENTPERF_DATABASE"),
		StatePath:        getEnvOrDefault("AGENTPERF_STATE_PATH", intconfig.DefaultStateFile),
		MinDeposits:      intconfig.DefaultMinDeposits,
		Environment:      getEnvOrDefault("AGENTPERF_ENVIRONMENT", intconfig.DefaultEnv),
		OutputFormat:     os.Getenv("AGENTPERF_OUTPUT"),
		Port:             intconfig.DefaultPort,
	}
}

func formatInt(n int64) string {
	return fmt.Sprintf("%d", n)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openWarehouse connects to DuckDB per the configuration.
func openWarehouse(ctx context.Context, cfg *config.Config) (*warehouse.Warehouse, error) {
	wh, err := warehouse.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}
	return wh, nil
}

// openStateStore opens (and migrates) the run-history database.
func openStateStore(cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}
	return store, nil
}

func ingestOptions(cfg *config.Config) ingest.Options {
	return ingest.Options{
		OnboardingPath:   cfg.OnboardingPath,
		TransactionsPath: cfg.TransactionsPath,
		DepositKeywords:  cfg.DepositKeywords,
	}
}

func analysisParams(cfg *config.Config) analytics.Params {
	return analytics.Params{
		Year:                 cfg.Year,
		MinDepositsForActive: cfg.MinDeposits,
		TopN:                 intconfig.DefaultTopN,
	}
}

// loadAndAnalyze performs the common load + compute sequence and
// returns the metrics alongside the still-open warehouse. The caller
// owns closing the warehouse.
func loadAndAnalyze(ctx context.Context, cc *CommandContext) (*warehouse.Warehouse, *ingest.Counts, *analytics.Metrics, error) {
	wh, err := openWarehouse(ctx, cc.Cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	counts, err := ingest.Load(ctx, wh, ingestOptions(cc.Cfg), cc.Logger)
	if err != nil {
		_ = wh.Close()
		return nil, nil, nil, err
	}

	analyzer := analytics.New(wh, analysisParams(cc.Cfg), cc.Logger)
	metrics, err := analyzer.Compute(ctx)
	if err != nil {
		_ = wh.Close()
		return nil, nil, nil, err
	}

	return wh, counts, metrics, nil
}
