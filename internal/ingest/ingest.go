// Package ingest loads the onboarding and transaction CSV datasets into
// the warehouse and builds the normalized views the analytics queries
// run against.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aps-wallet/agentperf/internal/warehouse"
)

// Raw table names.
const (
	OnboardingRawTable  = "onboarding_raw"
	TransactionRawTable = "transactions_raw"
)

// Normalized view names.
const (
	OnboardingView  = "onboarding"
	TransactionView = "transactions"
	DepositView     = "deposits"
)

// Required CSV columns, matched after trimming whitespace.
var (
	onboardingColumns = []string{
		"Account ID", "Entity", "Status", "Registration Date",
	}
	transactionColumns = []string{
		"User Identifier", "Parent User Identifier", "Entity Name",
		"Service Name", "Transaction Type", "Product Name",
		"Created At", "Transaction Amount", "Transaction Status",
	}
)

// DefaultDepositKeywords classify a transaction as a deposit when any of
// them appears in the service, type, or product name.
var DefaultDepositKeywords = []string{"DEPOSIT", "FUNDING", "LOAD", "CREDIT"}

// Options configures a dataset load.
type Options struct {
	OnboardingPath   string
	TransactionsPath string
	DepositKeywords  []string
}

// Counts reports row counts after a successful load.
type Counts struct {
	OnboardingRows  int64 `json:"onboarding_rows"`
	TransactionRows int64 `json:"transaction_rows"`
	DepositRows     int64 `json:"deposit_rows"`
}

// Load reads both CSV files into raw tables and rebuilds the normalized
// views. The two files are loaded concurrently.
func Load(ctx context.Context, wh *warehouse.Warehouse, opts Options, logger *slog.Logger) (*Counts, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keywords := opts.DepositKeywords
	if len(keywords) == 0 {
		keywords = DefaultDepositKeywords
	}

	logger.Debug("loading datasets",
		"onboarding", opts.OnboardingPath,
		"transactions", opts.TransactionsPath)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return wh.LoadCSV(egctx, OnboardingRawTable, opts.OnboardingPath)
	})
	eg.Go(func() error {
		return wh.LoadCSV(egctx, TransactionRawTable, opts.TransactionsPath)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := buildOnboardingView(ctx, wh); err != nil {
		return nil, err
	}
	if err := buildTransactionViews(ctx, wh, keywords); err != nil {
		return nil, err
	}

	counts := &Counts{}
	var err error
	if counts.OnboardingRows, err = wh.RowCount(ctx, OnboardingView); err != nil {
		return nil, err
	}
	if counts.TransactionRows, err = wh.RowCount(ctx, TransactionView); err != nil {
		return nil, err
	}
	if counts.DepositRows, err = wh.RowCount(ctx, DepositView); err != nil {
		return nil, err
	}

	logger.Debug("datasets loaded",
		"onboarding_rows", counts.OnboardingRows,
		"transaction_rows", counts.TransactionRows,
		"deposit_rows", counts.DepositRows)

	return counts, nil
}

// columnMap maps trimmed column names to the actual (possibly padded)
// names found in the raw table header.
func columnMap(ctx context.Context, wh *warehouse.Warehouse, table string) (map[string]string, error) {
	meta, err := wh.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(meta.Columns))
	for _, col := range meta.Columns {
		m[strings.TrimSpace(col.Name)] = col.Name
	}
	return m, nil
}

// resolveColumns validates that every required column is present and
// returns the required-name -> actual-name mapping.
func resolveColumns(ctx context.Context, wh *warehouse.Warehouse, table string, required []string) (map[string]string, error) {
	m, err := columnMap(ctx, wh, table)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]string, len(required))
	for _, name := range required {
		actual, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("%s: missing column %q", table, name)
		}
		resolved[name] = actual
	}
	return resolved, nil
}

// col returns the quoted actual column name for a required column.
func col(resolved map[string]string, name string) string {
	return warehouse.QuoteIdentifier(resolved[name])
}

func buildOnboardingView(ctx context.Context, wh *warehouse.Warehouse) error {
	resolved, err := resolveColumns(ctx, wh, OnboardingRawTable, onboardingColumns)
	if err != nil {
		return err
	}

	// Registration dates arrive as dd/mm/yyyy HH:MM; anything else is
	// tried as an ISO timestamp and otherwise becomes NULL.
	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW %s AS
		SELECT
			trim(%s) AS account_id,
			upper(trim(%s)) AS entity,
			upper(trim(%s)) AS status,
			coalesce(
				try_strptime(trim(%s), '%%d/%%m/%%Y %%H:%%M'),
				TRY_CAST(trim(%s) AS TIMESTAMP)
			) AS registered_at
		FROM %s`,
		OnboardingView,
		col(resolved, "Account ID"),
		col(resolved, "Entity"),
		col(resolved, "Status"),
		col(resolved, "Registration Date"),
		col(resolved, "Registration Date"),
		OnboardingRawTable,
	)

	if err := wh.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to build onboarding view: %w", err)
	}
	return nil
}

func buildTransactionViews(ctx context.Context, wh *warehouse.Warehouse, keywords []string) error {
	resolved, err := resolveColumns(ctx, wh, TransactionRawTable, transactionColumns)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW %s AS
		SELECT
			*,
			year(created_at) AS txn_year,
			month(created_at) AS txn_month,
			day(created_at) AS txn_day,
			hour(created_at) AS txn_hour
		FROM (
			SELECT
				trim(%s) AS user_id,
				nullif(trim(%s), '') AS parent_user_id,
				upper(trim(%s)) AS entity_name,
				upper(trim(%s)) AS service_name,
				upper(trim(%s)) AS transaction_type,
				upper(trim(%s)) AS product_name,
				coalesce(
					try_strptime(trim(%s), '%%d/%%m/%%Y %%H:%%M'),
					TRY_CAST(trim(%s) AS TIMESTAMP)
				) AS created_at,
				TRY_CAST(trim(%s) AS DECIMAL(18,2)) AS amount,
				upper(trim(%s)) AS status
			FROM %s
		)`,
		TransactionView,
		col(resolved, "User Identifier"),
		col(resolved, "Parent User Identifier"),
		col(resolved, "Entity Name"),
		col(resolved, "Service Name"),
		col(resolved, "Transaction Type"),
		col(resolved, "Product Name"),
		col(resolved, "Created At"),
		col(resolved, "Created At"),
		col(resolved, "Transaction Amount"),
		col(resolved, "Transaction Status"),
		TransactionRawTable,
	)

	if err := wh.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to build transactions view: %w", err)
	}

	depositQuery := fmt.Sprintf(
		"CREATE OR REPLACE VIEW %s AS SELECT * FROM %s WHERE %s",
		DepositView, TransactionView, depositPredicate(keywords),
	)
	if err := wh.Exec(ctx, depositQuery); err != nil {
		return fmt.Errorf("failed to build deposits view: %w", err)
	}
	return nil
}

// depositPredicate builds the keyword match across service, type, and
// product columns. Keywords and columns are upper-cased already, so a
// plain LIKE suffices.
func depositPredicate(keywords []string) string {
	cols := []string{"service_name", "transaction_type", "product_name"}
	var terms []string
	for _, kw := range keywords {
		escaped := strings.ToUpper(strings.ReplaceAll(kw, "'", "''"))
		for _, c := range cols {
			terms = append(terms, fmt.Sprintf("%s LIKE '%%%s%%'", c, escaped))
		}
	}
	if len(terms) == 0 {
		return "FALSE"
	}
	return strings.Join(terms, " OR ")
}
