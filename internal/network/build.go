package network

import (
	"context"
	"fmt"

	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/warehouse"
)

// Build assembles the agent-teller graph from deposit rows that carry a
// parent identifier. Edge weight is the number of deposits the pair
// shares.
func Build(ctx context.Context, wh *warehouse.Warehouse) (*Graph, error) {
	query := fmt.Sprintf(`
		SELECT parent_user_id, user_id, count(*)
		FROM %s
		WHERE parent_user_id IS NOT NULL
		  AND user_id IS NOT NULL
		  AND parent_user_id <> user_id
		GROUP BY parent_user_id, user_id`, ingest.DepositView)

	rows, err := wh.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying network edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	g := NewGraph()
	for rows.Next() {
		var parent, child string
		var weight int64
		if err := rows.Scan(&parent, &child, &weight); err != nil {
			return nil, fmt.Errorf("scanning network edge: %w", err)
		}
		g.AddEdge(parent, child, weight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating network edges: %w", err)
	}
	return g, nil
}
