package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard metrics over HTTP",
		Long: `Compute the metrics and serve them as a JSON API. With --watch, the
server re-ingests and recomputes whenever a source CSV changes.`,
		Example: `  # Serve on the default port
  agentperf serve

  # Serve on port 9000 and refresh on file changes
  agentperf serve --port 9000 --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, port, watch)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "refresh metrics when the source files change")
	return cmd
}

func runServe(cmd *cobra.Command, port int, watch bool) error {
	cc := NewCommandContext(cmd)

	if port == 0 {
		port = cc.Cfg.Port
	}

	store, err := openStateStore(cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srv := server.New(server.Config{
		Port:         port,
		Watch:        watch,
		DatabasePath: cc.Cfg.DatabasePath,
		Ingest:       ingestOptions(cc.Cfg),
		Params:       analysisParams(cc.Cfg),
		Store:        store,
		Logger:       cc.Logger,
	})
	return srv.Serve(cmd.Context())
}
