// Package analytics computes agent performance metrics from the
// normalized warehouse views. Every aggregation runs as SQL inside
// DuckDB; Go only assembles the results.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/warehouse"
)

// Analyzer runs metric queries against a loaded warehouse.
type Analyzer struct {
	wh     *warehouse.Warehouse
	params Params
	logger *slog.Logger
}

// New creates an analyzer for the given warehouse and parameters.
func New(wh *warehouse.Warehouse, params Params, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if params.Year == 0 {
		params.Year = DefaultParams().Year
	}
	if params.MinDepositsForActive <= 0 {
		params.MinDepositsForActive = DefaultParams().MinDepositsForActive
	}
	if params.TopN <= 0 {
		params.TopN = DefaultParams().TopN
	}
	return &Analyzer{wh: wh, params: params, logger: logger}
}

// Params returns the analyzer's effective parameters.
func (a *Analyzer) Params() Params {
	return a.params
}

// Compute calculates the full metric set for the report year.
func (a *Analyzer) Compute(ctx context.Context) (*Metrics, error) {
	start := time.Now()
	m := &Metrics{Year: a.params.Year, TransactionVolume: decimal.Zero}

	steps := []struct {
		name string
		fn   func(context.Context, *Metrics) error
	}{
		{"agent counts", a.agentCounts},
		{"onboarding counts", a.onboardingCounts},
		{"transaction totals", a.transactionTotals},
		{"teller coverage", a.tellerCoverage},
		{"user activity", a.userActivity},
		{"monthly breakdown", a.monthlyBreakdown},
		{"top performers", a.topPerformers},
		{"service breakdown", a.serviceBreakdown},
		{"status breakdown", a.statusBreakdown},
	}
	for _, step := range steps {
		if err := step.fn(ctx, m); err != nil {
			return nil, fmt.Errorf("computing %s: %w", step.name, err)
		}
	}

	a.logger.Debug("metrics computed",
		"year", a.params.Year,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return m, nil
}

func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}

func (a *Analyzer) agentCounts(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT
			count(*) FILTER (WHERE entity = '%s'),
			count(*) FILTER (WHERE entity = '%s')
		FROM %s
		WHERE status NOT IN (%s)`,
		EntityAgent, EntityTeller, ingest.OnboardingView, inList(TerminatedStatuses))

	return a.wh.QueryRow(ctx, query).Scan(&m.TotalActiveAgents, &m.TotalActiveTellers)
}

func (a *Analyzer) onboardingCounts(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT
			count(*),
			count(*) FILTER (WHERE entity = '%s'),
			count(*) FILTER (WHERE entity = '%s')
		FROM %s
		WHERE status NOT IN (%s) AND year(registered_at) = ?`,
		EntityAgent, EntityTeller, ingest.OnboardingView, inList(TerminatedStatuses))

	return a.wh.QueryRow(ctx, query, a.params.Year).
		Scan(&m.OnboardedTotal, &m.OnboardedAgents, &m.OnboardedTellers)
}

func (a *Analyzer) transactionTotals(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT
			count(*),
			coalesce(CAST(sum(amount) AS VARCHAR), '0'),
			count(*) FILTER (WHERE status IN (%s)),
			count(*) FILTER (WHERE status IN (%s))
		FROM %s
		WHERE txn_year = ?`,
		inList(SuccessStatuses), inList(FailureStatuses), ingest.TransactionView)

	var volume string
	if err := a.wh.QueryRow(ctx, query, a.params.Year).
		Scan(&m.TotalTransactions, &volume, &m.SuccessfulTransactions, &m.FailedTransactions); err != nil {
		return err
	}
	return setDecimal(&m.TransactionVolume, volume)
}

func (a *Analyzer) tellerCoverage(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(
		"SELECT count(DISTINCT parent_user_id) FROM %s WHERE parent_user_id IS NOT NULL",
		ingest.DepositView)

	if err := a.wh.QueryRow(ctx, query).Scan(&m.AgentsWithTellers); err != nil {
		return err
	}
	m.AgentsWithoutTellers = m.TotalActiveAgents - m.AgentsWithTellers
	if m.AgentsWithoutTellers < 0 {
		m.AgentsWithoutTellers = 0
	}
	return nil
}

func (a *Analyzer) userActivity(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		WITH per_user AS (
			SELECT user_id, count(*) AS n
			FROM %s
			WHERE txn_year = ?
			GROUP BY user_id
		)
		SELECT
			count(*) FILTER (WHERE n >= ?),
			count(*) FILTER (WHERE n < ?)
		FROM per_user`, ingest.DepositView)

	t := a.params.MinDepositsForActive
	return a.wh.QueryRow(ctx, query, a.params.Year, t, t).
		Scan(&m.ActiveUsers, &m.InactiveUsers)
}

func (a *Analyzer) monthlyBreakdown(ctx context.Context, m *Metrics) error {
	// Deposit counts and threshold-active users per month.
	query := fmt.Sprintf(`
		WITH per_user AS (
			SELECT txn_month AS mo, user_id, count(*) AS n
			FROM %s
			WHERE txn_year = ?
			GROUP BY txn_month, user_id
		)
		SELECT mo, sum(n), count(*) FILTER (WHERE n >= ?)
		FROM per_user
		GROUP BY mo`, ingest.DepositView)

	rows, err := a.wh.Query(ctx, query, a.params.Year, a.params.MinDepositsForActive)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mo int
		var deposits, active int64
		if err := rows.Scan(&mo, &deposits, &active); err != nil {
			return err
		}
		if mo >= 1 && mo <= 12 {
			m.MonthlyDeposits[mo-1] = deposits
			m.MonthlyActiveUsers[mo-1] = active
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Transaction count, distinct users, and volume per month.
	trendQuery := fmt.Sprintf(`
		SELECT
			txn_month,
			count(*),
			count(DISTINCT user_id),
			coalesce(CAST(sum(amount) AS VARCHAR), '0')
		FROM %s
		WHERE txn_year = ?
		GROUP BY txn_month`, ingest.TransactionView)

	trendRows, err := a.wh.Query(ctx, trendQuery, a.params.Year)
	if err != nil {
		return err
	}
	defer func() { _ = trendRows.Close() }()

	type monthAgg struct {
		count  int64
		users  int64
		volume decimal.Decimal
	}
	byMonth := make(map[int]monthAgg)
	for trendRows.Next() {
		var mo int
		var agg monthAgg
		var volume string
		if err := trendRows.Scan(&mo, &agg.count, &agg.users, &volume); err != nil {
			return err
		}
		if err := setDecimal(&agg.volume, volume); err != nil {
			return err
		}
		byMonth[mo] = agg
	}
	if err := trendRows.Err(); err != nil {
		return err
	}

	m.MonthlyTrends = make([]MonthStat, 0, 12)
	for mo := 1; mo <= 12; mo++ {
		agg := byMonth[mo]
		m.MonthlyTrends = append(m.MonthlyTrends, MonthStat{
			Month:            time.Month(mo).String(),
			MonthNumber:      mo,
			ActiveUsers:      m.MonthlyActiveUsers[mo-1],
			DepositCount:     m.MonthlyDeposits[mo-1],
			TransactionCount: agg.count,
			Volume:           agg.volume,
		})
	}
	return nil
}

func (a *Analyzer) topPerformers(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT
			user_id,
			coalesce(CAST(sum(amount) AS VARCHAR), '0'),
			count(*)
		FROM %s
		WHERE txn_year = ? AND user_id IS NOT NULL
		GROUP BY user_id
		ORDER BY sum(amount) DESC NULLS LAST
		LIMIT ?`, ingest.DepositView)

	rows, err := a.wh.Query(ctx, query, a.params.Year, a.params.TopN)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p Performer
		var amount string
		if err := rows.Scan(&p.UserID, &amount, &p.TransactionCount); err != nil {
			return err
		}
		if err := setDecimal(&p.TotalAmount, amount); err != nil {
			return err
		}
		m.TopPerformers = append(m.TopPerformers, p)
	}
	return rows.Err()
}

func (a *Analyzer) serviceBreakdown(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT
			service_name,
			coalesce(CAST(sum(amount) AS VARCHAR), '0'),
			count(*)
		FROM %s
		WHERE txn_year = ? AND service_name IS NOT NULL
		GROUP BY service_name
		ORDER BY sum(amount) DESC NULLS LAST`, ingest.TransactionView)

	rows, err := a.wh.Query(ctx, query, a.params.Year)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var s ServiceStat
		var amount string
		if err := rows.Scan(&s.ServiceName, &amount, &s.TransactionCount); err != nil {
			return err
		}
		if err := setDecimal(&s.TotalAmount, amount); err != nil {
			return err
		}
		m.Services = append(m.Services, s)
	}
	return rows.Err()
}

func (a *Analyzer) statusBreakdown(ctx context.Context, m *Metrics) error {
	query := fmt.Sprintf(`
		SELECT status, count(*)
		FROM %s
		WHERE status IS NOT NULL
		GROUP BY status
		ORDER BY count(*) DESC, status`, ingest.OnboardingView)

	rows, err := a.wh.Query(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return err
		}
		m.StatusBreakdown = append(m.StatusBreakdown, s)
	}
	return rows.Err()
}

// DailyVolume returns summed transaction volume per day over the
// trailing window.
func (a *Analyzer) DailyVolume(ctx context.Context, days int) ([]DayVolume, error) {
	if days <= 0 {
		days = 30
	}
	query := fmt.Sprintf(`
		SELECT
			CAST(CAST(created_at AS DATE) AS VARCHAR),
			coalesce(CAST(sum(amount) AS VARCHAR), '0')
		FROM %s
		WHERE created_at >= now() - INTERVAL %d DAY
		GROUP BY CAST(created_at AS DATE)
		ORDER BY 1`, ingest.TransactionView, days)

	rows, err := a.wh.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("computing daily volume: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DayVolume
	for rows.Next() {
		var d DayVolume
		var volume string
		if err := rows.Scan(&d.Date, &volume); err != nil {
			return nil, err
		}
		if err := setDecimal(&d.Volume, volume); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// setDecimal parses a SQL-rendered numeric string. Amounts travel as
// strings so money never passes through a float.
func setDecimal(dst *decimal.Decimal, s string) error {
	if s == "" {
		*dst = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*dst = d
	return nil
}
