package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/report"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the CSV datasets into the warehouse",
		Long: `Load the onboarding and transaction CSV files into DuckDB and build
the normalized views. With an in-memory database this is mainly a dry
run that validates the files; point --database at a file to keep the
loaded data around for repeated queries.`,
		Example: `  # Validate the default data files
  agentperf load

  # Load into a persistent warehouse
  agentperf load --database .agentperf/warehouse.db

  # Load specific files
  agentperf load --onboarding data/Onboarding.csv --transactions data/Transaction.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd)
		},
	}
	return cmd
}

func runLoad(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	wh, err := openWarehouse(ctx, cc.Cfg)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	counts, err := ingest.Load(ctx, wh, ingestOptions(cc.Cfg), cc.Logger)
	if err != nil {
		return err
	}

	return cc.Renderer.Table(report.Table{
		Title:   "Loaded Datasets",
		Columns: []string{"Dataset", "Rows"},
		Rows: [][]string{
			{ingest.OnboardingView, formatInt(counts.OnboardingRows)},
			{ingest.TransactionView, formatInt(counts.TransactionRows)},
			{ingest.DepositView, formatInt(counts.DepositRows)},
		},
	})
}
