package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aps-wallet/agentperf/internal/analytics"
)

// WriteCSV writes a table as CSV, header first.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes a table as indented JSON.
func WriteJSON(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// ExportAll writes the standard export file set into dir and returns the
// paths written.
func ExportAll(dir string, m *analytics.Metrics) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	exports := []struct {
		name  string
		table Table
	}{
		{fmt.Sprintf("agentperf_summary_%d.csv", m.Year), Summary(m)},
		{fmt.Sprintf("agentperf_monthly_%d.csv", m.Year), Monthly(m)},
		{fmt.Sprintf("agentperf_top_agents_%d.csv", m.Year), TopPerformers(m)},
		{fmt.Sprintf("agentperf_services_%d.csv", m.Year), Services(m)},
	}

	var paths []string
	for _, e := range exports {
		path := filepath.Join(dir, e.name)
		if err := writeCSVFile(path, e.table); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteCSV(f, t); err != nil {
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	return f.Close()
}
