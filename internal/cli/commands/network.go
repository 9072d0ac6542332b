package commands

import (
	"github.com/spf13/cobra"

	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/network"
	"github.com/aps-wallet/agentperf/internal/report"
)

// NewNetworkCommand creates the network command.
func NewNetworkCommand() *cobra.Command {
	var hubs int

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Analyze the agent-teller network",
		Long: `Build the agent-teller network from deposit transactions and report
its structure: node and edge counts, density, average degree, connected
components, and the agents connected to the most tellers.`,
		Example: `  # Network summary plus the ten biggest hubs
  agentperf network

  # Show more hubs
  agentperf network --hubs 25`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNetwork(cmd, hubs)
		},
	}

	cmd.Flags().IntVar(&hubs, "hubs", 10, "number of hub agents to list")
	return cmd
}

func runNetwork(cmd *cobra.Command, hubs int) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	wh, err := openWarehouse(ctx, cc.Cfg)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	if _, err := ingest.Load(ctx, wh, ingestOptions(cc.Cfg), cc.Logger); err != nil {
		return err
	}

	graph, err := network.Build(ctx, wh)
	if err != nil {
		return err
	}

	stats := graph.Stats()
	cc.Logger.Info("network built", "nodes", stats.Nodes, "edges", stats.Edges)

	if err := cc.Renderer.Table(report.NetworkStats(stats)); err != nil {
		return err
	}
	return cc.Renderer.Table(report.TopHubs(graph.TopHubs(hubs)))
}
