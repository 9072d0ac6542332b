// Package output renders report tables for the terminal in table, JSON,
// CSV, or markdown form.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aps-wallet/agentperf/internal/report"
)

// Mode selects the rendering format.
type Mode string

const (
	ModeTable    Mode = "table"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeMarkdown Mode = "markdown"
)

// ParseMode normalizes a format string, defaulting to table.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeJSON, ModeCSV, ModeMarkdown:
		return Mode(s)
	case "md":
		return ModeMarkdown
	default:
		return ModeTable
	}
}

// Renderer writes reports to the command's output streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
}

// NewRenderer creates a renderer for the given streams and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return &Renderer{out: out, errOut: errOut, mode: mode}
}

// Mode returns the renderer's format.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Table renders a report table in the configured format.
func (r *Renderer) Table(t report.Table) error {
	switch r.mode {
	case ModeJSON:
		return r.JSON(t)
	case ModeCSV:
		return report.WriteCSV(r.out, t)
	case ModeMarkdown:
		return r.renderPretty(t, true)
	default:
		return r.renderPretty(t, false)
	}
}

func (r *Renderer) renderPretty(t report.Table, markdown bool) error {
	if t.Title != "" && !markdown {
		if _, err := fmt.Fprintln(r.out, t.Title); err != nil {
			return err
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		tw.AppendRow(tr)
	}

	if markdown {
		tw.RenderMarkdown()
	} else {
		tw.Render()
		_, _ = fmt.Fprintf(r.out, "(%d rows)\n", len(t.Rows))
	}
	return nil
}

// JSON renders any value as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Println writes a line to the output stream.
func (r *Renderer) Println(args ...any) {
	_, _ = fmt.Fprintln(r.out, args...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Errorf writes formatted text to the error stream.
func (r *Renderer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOut, format, args...)
}
