package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/report"
	"github.com/aps-wallet/agentperf/internal/state"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Load data, compute metrics, and record the run",
		Long: `Load the datasets, compute the full metric set for the report year,
persist the run and its metric snapshot to the run-history store, and
print the performance summary.`,
		Example: `  # Analyze with defaults
  agentperf analyze

  # Analyze a specific year with a lower activity threshold
  agentperf analyze --year 2024 --min-deposits 10

  # Emit the summary as JSON
  agentperf analyze --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd)
		},
	}
	return cmd
}

func runAnalyze(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	store, err := openStateStore(cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	params := analysisParams(cc.Cfg)
	run, err := store.CreateRun(cc.Cfg.Environment, params.Year)
	if err != nil {
		return err
	}

	wh, counts, metrics, err := loadAndAnalyze(ctx, cc)
	if err != nil {
		_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error(), state.RowCounts{})
		return err
	}
	defer func() { _ = wh.Close() }()

	rowCounts := state.RowCounts{
		Onboarding:   counts.OnboardingRows,
		Transactions: counts.TransactionRows,
		Deposits:     counts.DepositRows,
	}
	if err := store.CompleteRun(run.ID, state.RunStatusSuccess, "", rowCounts); err != nil {
		return err
	}
	if err := store.SaveMetrics(run.ID, snapshotMetrics(metrics)); err != nil {
		return err
	}

	cc.Logger.Info("analysis complete",
		"run_id", run.ID,
		"year", metrics.Year,
		"transactions", metrics.TotalTransactions)

	return cc.Renderer.Table(report.Summary(metrics))
}

// snapshotMetrics flattens the headline metrics into name/value pairs
// for the run-history store.
func snapshotMetrics(m *analytics.Metrics) []state.MetricValue {
	summary := report.Summary(m)
	out := make([]state.MetricValue, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		out = append(out, state.MetricValue{Name: row[0], Value: row[1]})
	}
	return out
}
