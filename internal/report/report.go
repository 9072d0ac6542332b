// Package report turns computed metrics into the tabular reports the
// dashboard exposes: summary, monthly trends, top performers, service
// and status breakdowns.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/network"
)

// Table is a rendered report: an ordered header plus string rows.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func count(n int64) string {
	return fmt.Sprintf("%d", n)
}

// Summary builds the key-figure summary table.
func Summary(m *analytics.Metrics) Table {
	rows := [][]string{
		{"Total Active Agents", count(m.TotalActiveAgents)},
		{"Total Active Tellers", count(m.TotalActiveTellers)},
		{"Agents with Tellers", count(m.AgentsWithTellers)},
		{"Agents without Tellers", count(m.AgentsWithoutTellers)},
		{"Total Onboarded", count(m.OnboardedTotal)},
		{"Agents Onboarded", count(m.OnboardedAgents)},
		{"Tellers Onboarded", count(m.OnboardedTellers)},
		{"Active Users", count(m.ActiveUsers)},
		{"Inactive Users", count(m.InactiveUsers)},
		{"Total Transactions", count(m.TotalTransactions)},
		{"Transaction Volume", money(m.TransactionVolume)},
		{"Successful Transactions", count(m.SuccessfulTransactions)},
		{"Failed Transactions", count(m.FailedTransactions)},
		{"Success Rate", fmt.Sprintf("%.1f%%", m.SuccessRate())},
		{"Peak Monthly Active Users", count(m.PeakActiveUsers())},
	}
	return Table{
		Title:   fmt.Sprintf("Performance Summary %d", m.Year),
		Columns: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

// Monthly builds the twelve-row trend table.
func Monthly(m *analytics.Metrics) Table {
	rows := make([][]string, 0, len(m.MonthlyTrends))
	for _, ms := range m.MonthlyTrends {
		rows = append(rows, []string{
			ms.Month,
			fmt.Sprintf("%d", ms.MonthNumber),
			count(ms.ActiveUsers),
			count(ms.DepositCount),
			count(ms.TransactionCount),
			money(ms.Volume),
		})
	}
	return Table{
		Title:   fmt.Sprintf("Monthly Trends %d", m.Year),
		Columns: []string{"Month", "Month Number", "Active Users", "Deposit Count", "Transaction Count", "Transaction Volume"},
		Rows:    rows,
	}
}

// TopPerformers builds the agent ranking table.
func TopPerformers(m *analytics.Metrics) Table {
	rows := make([][]string, 0, len(m.TopPerformers))
	for i, p := range m.TopPerformers {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.UserID,
			money(p.TotalAmount),
			count(p.TransactionCount),
		})
	}
	return Table{
		Title:   fmt.Sprintf("Top Performing Agents %d", m.Year),
		Columns: []string{"Rank", "User Identifier", "Total Amount", "Transaction Count"},
		Rows:    rows,
	}
}

// Services builds the per-service volume table.
func Services(m *analytics.Metrics) Table {
	rows := make([][]string, 0, len(m.Services))
	for _, s := range m.Services {
		rows = append(rows, []string{
			s.ServiceName,
			money(s.TotalAmount),
			count(s.TransactionCount),
		})
	}
	return Table{
		Title:   fmt.Sprintf("Volume by Service %d", m.Year),
		Columns: []string{"Service Name", "Total Amount", "Transaction Count"},
		Rows:    rows,
	}
}

// StatusBreakdown builds the onboarding status distribution table.
func StatusBreakdown(m *analytics.Metrics) Table {
	rows := make([][]string, 0, len(m.StatusBreakdown))
	for _, s := range m.StatusBreakdown {
		rows = append(rows, []string{s.Status, count(s.Count)})
	}
	return Table{
		Title:   "Onboarding Status Distribution",
		Columns: []string{"Status", "Count"},
		Rows:    rows,
	}
}

// NetworkStats builds the network summary table.
func NetworkStats(s network.Stats) Table {
	rows := [][]string{
		{"Agents", fmt.Sprintf("%d", s.Agents)},
		{"Tellers", fmt.Sprintf("%d", s.Tellers)},
		{"Total Nodes", fmt.Sprintf("%d", s.Nodes)},
		{"Connections", fmt.Sprintf("%d", s.Edges)},
		{"Network Density", fmt.Sprintf("%.4f", s.Density)},
		{"Average Degree", fmt.Sprintf("%.2f", s.AverageDegree)},
		{"Connected Components", fmt.Sprintf("%d", s.Components)},
		{"Largest Component", fmt.Sprintf("%d", s.LargestComponent)},
	}
	return Table{
		Title:   "Agent Network",
		Columns: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

// TopHubs builds the hub-agent ranking table.
func TopHubs(hubs []network.Hub) Table {
	rows := make([][]string, 0, len(hubs))
	for i, h := range hubs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			h.UserID,
			fmt.Sprintf("%d", h.Tellers),
			fmt.Sprintf("%d", h.Weight),
		})
	}
	return Table{
		Title:   "Top Network Hubs",
		Columns: []string{"Rank", "Agent", "Tellers", "Deposit Count"},
		Rows:    rows,
	}
}

// DailyVolume builds the trailing daily volume table.
func DailyVolume(days []analytics.DayVolume) Table {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Date, money(d.Volume)})
	}
	return Table{
		Title:   "Daily Transaction Volume",
		Columns: []string{"Date", "Volume"},
		Rows:    rows,
	}
}
