package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/network"
)

func sampleMetrics() *analytics.Metrics {
	m := &analytics.Metrics{
		Year:                   2025,
		TotalActiveAgents:      10,
		TotalActiveTellers:     25,
		AgentsWithTellers:      7,
		AgentsWithoutTellers:   3,
		OnboardedTotal:         12,
		OnboardedAgents:        5,
		OnboardedTellers:       7,
		ActiveUsers:            8,
		InactiveUsers:          27,
		TotalTransactions:      1000,
		TransactionVolume:      decimal.RequireFromString("54321.99"),
		SuccessfulTransactions: 900,
		FailedTransactions:     50,
		TopPerformers: []analytics.Performer{
			{UserID: "AG001", TotalAmount: decimal.RequireFromString("1500.5"), TransactionCount: 30},
		},
		Services: []analytics.ServiceStat{
			{ServiceName: "CASH DEPOSIT", TotalAmount: decimal.RequireFromString("40000"), TransactionCount: 800},
		},
		StatusBreakdown: []analytics.StatusCount{
			{Status: "ACTIVE", Count: 30},
			{Status: "TERMINATED", Count: 5},
		},
	}
	m.MonthlyActiveUsers[0] = 8
	for mo := 1; mo <= 12; mo++ {
		m.MonthlyTrends = append(m.MonthlyTrends, analytics.MonthStat{
			Month:       "January",
			MonthNumber: mo,
			Volume:      decimal.Zero,
		})
	}
	return m
}

func TestSummary(t *testing.T) {
	tbl := Summary(sampleMetrics())

	assert.Equal(t, "Performance Summary 2025", tbl.Title)
	assert.Equal(t, []string{"Metric", "Value"}, tbl.Columns)

	values := map[string]string{}
	for _, row := range tbl.Rows {
		values[row[0]] = row[1]
	}
	assert.Equal(t, "10", values["Total Active Agents"])
	assert.Equal(t, "54321.99", values["Transaction Volume"])
	assert.Equal(t, "94.7%", values["Success Rate"])
	assert.Equal(t, "8", values["Peak Monthly Active Users"])
}

func TestMonthly(t *testing.T) {
	tbl := Monthly(sampleMetrics())
	assert.Equal(t, "Monthly Trends 2025", tbl.Title)
	require.Len(t, tbl.Rows, 12)
	assert.Equal(t, "0.00", tbl.Rows[0][5])
}

func TestTopPerformers(t *testing.T) {
	tbl := TopPerformers(sampleMetrics())
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"1", "AG001", "1500.50", "30"}, tbl.Rows[0])
}

func TestServices(t *testing.T) {
	tbl := Services(sampleMetrics())
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"CASH DEPOSIT", "40000.00", "800"}, tbl.Rows[0])
}

func TestStatusBreakdown(t *testing.T) {
	tbl := StatusBreakdown(sampleMetrics())
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"ACTIVE", "30"}, tbl.Rows[0])
}

func TestNetworkStats(t *testing.T) {
	tbl := NetworkStats(network.Stats{
		Agents: 3, Tellers: 9, Nodes: 12, Edges: 9,
		Density: 0.1364, AverageDegree: 1.5,
		Components: 3, LargestComponent: 5,
	})
	values := map[string]string{}
	for _, row := range tbl.Rows {
		values[row[0]] = row[1]
	}
	assert.Equal(t, "3", values["Agents"])
	assert.Equal(t, "0.1364", values["Network Density"])
	assert.Equal(t, "1.50", values["Average Degree"])
}

func TestTopHubs(t *testing.T) {
	tbl := TopHubs([]network.Hub{
		{UserID: "AG001", Tellers: 4, Weight: 120},
	})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"1", "AG001", "4", "120"}, tbl.Rows[0])
}

func TestDailyVolume(t *testing.T) {
	tbl := DailyVolume([]analytics.DayVolume{
		{Date: "2025-08-01", Volume: decimal.RequireFromString("10.5")},
	})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"2025-08-01", "10.50"}, tbl.Rows[0])
}
