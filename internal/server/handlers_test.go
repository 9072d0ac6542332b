package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/network"
	"github.com/aps-wallet/agentperf/internal/report"
	"github.com/aps-wallet/agentperf/internal/state"
)

func testSnapshot() *snapshot {
	m := &analytics.Metrics{
		Year:                   2025,
		TotalActiveAgents:      3,
		TotalTransactions:      100,
		TransactionVolume:      decimal.RequireFromString("5000.25"),
		SuccessfulTransactions: 90,
		FailedTransactions:     5,
		TopPerformers: []analytics.Performer{
			{UserID: "AG001", TotalAmount: decimal.RequireFromString("900"), TransactionCount: 12},
			{UserID: "AG002", TotalAmount: decimal.RequireFromString("800"), TransactionCount: 10},
			{UserID: "AG003", TotalAmount: decimal.RequireFromString("700"), TransactionCount: 9},
		},
	}
	for mo := 1; mo <= 12; mo++ {
		m.MonthlyTrends = append(m.MonthlyTrends, analytics.MonthStat{
			Month: time.Month(mo).String(), MonthNumber: mo, Volume: decimal.Zero,
		})
	}
	return &snapshot{
		Metrics: m,
		Counts:  &ingest.Counts{OnboardingRows: 10, TransactionRows: 100, DepositRows: 40},
		Network: network.Stats{Agents: 3, Tellers: 6, Nodes: 9, Edges: 6},
		Hubs: []network.Hub{
			{UserID: "AG001", Tellers: 3, Weight: 30},
			{UserID: "AG002", Tellers: 2, Weight: 20},
		},
		DailyVolume: []analytics.DayVolume{
			{Date: "2025-08-27", Volume: decimal.RequireFromString("10")},
			{Date: "2025-08-28", Volume: decimal.RequireFromString("20")},
			{Date: "2025-08-29", Volume: decimal.RequireFromString("30")},
		},
		ComputedAt: time.Now().UTC(),
	}
}

func newTestServer(t *testing.T, snap *snapshot) *httptest.Server {
	t.Helper()
	s := New(Config{Logger: slog.New(slog.DiscardHandler)})
	if snap != nil {
		s.current.Store(snap)
	}
	r := chi.NewMux()
	s.routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var body map[string]string
	code := getJSON(t, ts, "/healthz", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["computed_at"])
}

func TestSummary_BeforeFirstRefresh(t *testing.T) {
	ts := newTestServer(t, nil)

	var body map[string]string
	code := getJSON(t, ts, "/api/summary", &body)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body["error"], "not yet computed")
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var tbl report.Table
	code := getJSON(t, ts, "/api/summary", &tbl)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Performance Summary 2025", tbl.Title)
	assert.NotEmpty(t, tbl.Rows)
}

func TestMonthly(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var tbl report.Table
	code := getJSON(t, ts, "/api/monthly", &tbl)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, tbl.Rows, 12)
}

func TestTopAgents_Limit(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var tbl report.Table
	code := getJSON(t, ts, "/api/top-agents?limit=2", &tbl)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "AG001", tbl.Rows[0][1])

	// Bogus limits fall back to the full list.
	code = getJSON(t, ts, "/api/top-agents?limit=abc", &tbl)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, tbl.Rows, 3)
}

func TestNetwork(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var body struct {
		Stats network.Stats `json:"stats"`
		Hubs  []network.Hub `json:"hubs"`
	}
	code := getJSON(t, ts, "/api/network?limit=1", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 9, body.Stats.Nodes)
	require.Len(t, body.Hubs, 1)
	assert.Equal(t, "AG001", body.Hubs[0].UserID)
}

func TestDailyVolume_Window(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var tbl report.Table
	code := getJSON(t, ts, "/api/daily-volume?days=2", &tbl)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, tbl.Rows, 2)
	// Trailing window keeps the most recent days.
	assert.Equal(t, "2025-08-28", tbl.Rows[0][0])
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var body struct {
		Metrics analytics.Metrics `json:"metrics"`
		Counts  ingest.Counts     `json:"counts"`
	}
	code := getJSON(t, ts, "/api/metrics", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2025, body.Metrics.Year)
	assert.Equal(t, int64(40), body.Counts.DepositRows)
}

func TestRuns_NotConfigured(t *testing.T) {
	ts := newTestServer(t, testSnapshot())

	var body map[string]string
	code := getJSON(t, ts, "/api/runs", &body)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRuns(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())

	run, err := store.CreateRun("dev", 2025)
	require.NoError(t, err)
	require.NoError(t, store.CompleteRun(run.ID, state.RunStatusSuccess, "", state.RowCounts{}))

	s := New(Config{Store: store, Logger: slog.New(slog.DiscardHandler)})
	s.current.Store(testSnapshot())
	r := chi.NewMux()
	s.routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	var runs []state.Run
	code := getJSON(t, ts, "/api/runs?limit=5", &runs)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusSuccess, runs[0].Status)
}
