package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-dev/caca/internal/nist"
	"github.com/whispr-dev/caca/internal/report"
)

func sampleResults() []nist.Result {
	return []nist.Result{
		{Name: "frequency", PValues: map[string]float64{"pValue": 0.5}, Passed: true},
		{Name: "runs", PValues: map[string]float64{"pValue": 0.001}, Passed: false},
	}
}

func TestNewRecordPreservesOrderAndStampsRunID(t *testing.T) {
	rec := report.NewRecord(sampleResults())
	require.Len(t, rec.Rows, 2)
	assert.Equal(t, "frequency", rec.Rows[0].TestName)
	assert.Equal(t, "runs", rec.Rows[1].TestName)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, rec.RunID, rec.Rows[0].RunID)
}

func TestWriteJSONLOneObjectPerLine(t *testing.T) {
	rec := report.NewRecord(sampleResults())
	var buf bytes.Buffer
	require.NoError(t, report.WriteJSONL(&buf, rec))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestWriteYAMLIsOneDocument(t *testing.T) {
	rec := report.NewRecord(sampleResults())
	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf, rec))
	assert.Contains(t, buf.String(), "runId")
}

func TestRenderTableIncludesTestNames(t *testing.T) {
	rec := report.NewRecord(sampleResults())
	var buf bytes.Buffer
	report.RenderTable(&buf, rec)
	out := buf.String()
	assert.Contains(t, out, "frequency")
	assert.Contains(t, out, "runs")
}

func TestWriteUnknownFormat(t *testing.T) {
	rec := report.NewRecord(sampleResults())
	var buf bytes.Buffer
	err := report.Write(&buf, rec, "xml")
	assert.Error(t, err)
}
