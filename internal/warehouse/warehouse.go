// Package warehouse provides access to the embedded DuckDB analytical
// database that holds the loaded CSV datasets.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Warehouse wraps a DuckDB connection used for dataset storage and
// metric queries.
type Warehouse struct {
	db   *sql.DB
	path string
}

// Column describes a single column of a warehouse table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// TableMetadata describes a warehouse table.
type TableMetadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// Open connects to DuckDB at the given path.
// Use ":memory:" or an empty path for an in-memory database.
func Open(ctx context.Context, path string) (*Warehouse, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	return &Warehouse{db: db, path: path}, nil
}

// Close closes the DuckDB connection.
func (w *Warehouse) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (w *Warehouse) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if w.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if _, err := w.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
// rows.Err() must be checked by the caller after iteration completes.
func (w *Warehouse) Query(ctx context.Context, sqlStr string, args ...any) (*sql.Rows, error) {
	if w.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := w.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// QueryRow executes a SQL statement expected to return at most one row.
func (w *Warehouse) QueryRow(ctx context.Context, sqlStr string, args ...any) *sql.Row {
	return w.db.QueryRowContext(ctx, sqlStr, args...)
}

// LoadCSV loads a CSV file into a table, replacing any previous contents.
// Every column is read as VARCHAR; normalization happens downstream so
// that malformed cells become NULL instead of load failures.
func (w *Warehouse) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if w.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true, all_varchar=true)",
		QuoteIdentifier(tableName),
		strings.ReplaceAll(absPath, "'", "''"),
	)

	if err := w.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV %s: %w", filePath, err)
	}
	return nil
}

// GetTableMetadata retrieves metadata for a table or view.
func (w *Warehouse) GetTableMetadata(ctx context.Context, table string) (*TableMetadata, error) {
	if w.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema := "main"
	tableName := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schema = parts[0]
		tableName = parts[1]
	}

	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := w.db.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", QuoteIdentifier(schema), QuoteIdentifier(tableName)) //nolint:gosec // table names come from information_schema
	var rowCount int64
	if err := w.db.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		// Non-fatal, just set to 0
		rowCount = 0
	}

	return &TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

// RowCount returns the number of rows in a table or view.
func (w *Warehouse) RowCount(ctx context.Context, table string) (int64, error) {
	if w.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdentifier(table)) //nolint:gosec // identifiers are quoted
	if err := w.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

// QuoteIdentifier quotes a SQL identifier for safe interpolation.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
