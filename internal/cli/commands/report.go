package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/report"
)

// NewReportCommand creates the report command and its subcommands.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a dashboard report",
		Long: `Load the datasets, compute the metrics, and render one of the
dashboard reports: the key-figure summary, the monthly trend table,
the top-performer ranking, the per-service volumes, or the onboarding
status distribution.`,
	}

	cmd.AddCommand(newReportSubcommand("summary", "Key performance figures", report.Summary))
	cmd.AddCommand(newReportSubcommand("monthly", "Month-by-month activity and volume", report.Monthly))
	cmd.AddCommand(newReportSubcommand("top", "Top performing agents by deposit volume", report.TopPerformers))
	cmd.AddCommand(newReportSubcommand("services", "Transaction volume by service", report.Services))
	cmd.AddCommand(newReportSubcommand("status", "Onboarding status distribution", report.StatusBreakdown))

	return cmd
}

func newReportSubcommand(use, short string, build func(*analytics.Metrics) report.Table) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			wh, _, metrics, err := loadAndAnalyze(cmd.Context(), cc)
			if err != nil {
				return err
			}
			defer func() { _ = wh.Close() }()

			return cc.Renderer.Table(build(metrics))
		},
	}
}
