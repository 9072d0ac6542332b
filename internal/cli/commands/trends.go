package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/report"
)

// NewTrendsCommand creates the trends command.
func NewTrendsCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show monthly trends, or daily volume with --days",
		Long: `Render the month-by-month activity table for the report year. With
--days, render the trailing daily transaction volume instead.`,
		Example: `  # Monthly trends for the report year
  agentperf trends

  # Daily volume over the last 30 days of data
  agentperf trends --days 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrends(cmd, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "show daily volume for the trailing N days")
	return cmd
}

func runTrends(cmd *cobra.Command, days int) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	if days <= 0 {
		wh, _, metrics, err := loadAndAnalyze(ctx, cc)
		if err != nil {
			return err
		}
		defer func() { _ = wh.Close() }()

		return cc.Renderer.Table(report.Monthly(metrics))
	}

	wh, err := openWarehouse(ctx, cc.Cfg)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	if _, err := ingest.Load(ctx, wh, ingestOptions(cc.Cfg), cc.Logger); err != nil {
		return err
	}

	analyzer := analytics.New(wh, analysisParams(cc.Cfg), cc.Logger)
	volume, err := analyzer.DailyVolume(ctx, days)
	if err != nil {
		return err
	}
	return cc.Renderer.Table(report.DailyVolume(volume))
}
