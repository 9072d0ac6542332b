package commands

import (
	"github.com/spf13/cobra"

	intconfig "github.com/aps-wallet/agentperf/internal/config"
	"github.com/aps-wallet/agentperf/internal/report"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard reports as CSV files",
		Long: `Load the datasets, compute the metrics, and write the summary,
monthly, top-agent, and per-service reports as CSV files into the
output directory.`,
		Example: `  # Export to the default exports/ directory
  agentperf export

  # Export elsewhere
  agentperf export --out /tmp/reports`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", intconfig.DefaultExportDir, "directory to write report files into")
	return cmd
}

func runExport(cmd *cobra.Command, outDir string) error {
	cc := NewCommandContext(cmd)

	wh, _, metrics, err := loadAndAnalyze(cmd.Context(), cc)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	files, err := report.ExportAll(outDir, metrics)
	if err != nil {
		return err
	}

	cc.Logger.Info("reports exported", "dir", outDir, "files", len(files))
	for _, f := range files {
		cc.Renderer.Println(f)
	}
	return nil
}
