package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aps-wallet/agentperf/internal/report"
)

func sampleTable() report.Table {
	return report.Table{
		Title:   "Sample",
		Columns: []string{"Metric", "Value"},
		Rows:    [][]string{{"Total", "10"}, {"Rate", "94.7%"}},
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeTable, ParseMode(""))
	assert.Equal(t, ModeTable, ParseMode("table"))
	assert.Equal(t, ModeTable, ParseMode("bogus"))
	assert.Equal(t, ModeJSON, ParseMode("json"))
	assert.Equal(t, ModeCSV, ParseMode("csv"))
	assert.Equal(t, ModeMarkdown, ParseMode("markdown"))
	assert.Equal(t, ModeMarkdown, ParseMode("md"))
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeTable)

	require.NoError(t, r.Table(sampleTable()))

	s := out.String()
	assert.Contains(t, s, "Sample")
	assert.Contains(t, s, "Metric")
	assert.Contains(t, s, "94.7%")
	assert.Contains(t, s, "(2 rows)")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeJSON)

	require.NoError(t, r.Table(sampleTable()))

	var decoded report.Table
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Sample", decoded.Title)
	require.Len(t, decoded.Rows, 2)
}

func TestRenderer_CSV(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeCSV)

	require.NoError(t, r.Table(sampleTable()))

	s := out.String()
	assert.Contains(t, s, "Metric,Value")
	assert.Contains(t, s, "Total,10")
	// CSV output carries no title or decoration.
	assert.NotContains(t, s, "Sample")
}

func TestRenderer_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeMarkdown)

	require.NoError(t, r.Table(sampleTable()))

	s := out.String()
	assert.Contains(t, s, "| Metric | Value |")
	assert.NotContains(t, s, "(2 rows)")
}

func TestRenderer_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeTable)

	r.Println("hello")
	r.Printf("%d items\n", 3)
	r.Errorf("oops: %s\n", "bad")

	assert.Equal(t, "hello\n3 items\n", out.String())
	assert.Equal(t, "oops: bad\n", errOut.String())
}
