package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/report"
	"github.com/aps-wallet/agentperf/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded analysis runs",
		Long: `List the analysis runs recorded in the run-history store, newest
first, with their status and row counts.`,
		Example: `  # Show the last 20 runs
  agentperf runs

  # Show the last 5
  agentperf runs --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cc := NewCommandContext(cmd)

	store, err := openStateStore(cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	return cc.Renderer.Table(runsTable(runs))
}

func runsTable(runs []*state.Run) report.Table {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		completed := ""
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			r.ID,
			r.Environment,
			formatInt(int64(r.Year)),
			string(r.Status),
			r.StartedAt.Format(time.RFC3339),
			completed,
			formatInt(r.OnboardingRows),
			formatInt(r.TransactionRows),
			formatInt(r.DepositRows),
		})
	}
	return report.Table{
		Title:   "Analysis Runs",
		Columns: []string{"Run ID", "Environment", "Year", "Status", "Started", "Completed", "Onboarding Rows", "Transaction Rows", "Deposit Rows"},
		Rows:    rows,
	}
}
