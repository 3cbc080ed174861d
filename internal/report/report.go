// Package report renders a NIST suite run as a human-readable console
// table and a structured, machine-readable record, per spec.md §6
// "Output report" and SPEC_FULL.md §5/§8. Grounded on teacher's
// stats.go:buildReportTable/statusFromP (stable row order, one row per
// test, a Status string derived from a p-value threshold) generalized
// from the teacher's hardcoded six-test table to the full selection.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/whispr-dev/caca/internal/nist"
)

// Row is one test's line in the report, the structured form of
// nist.Result plus the run-level metadata SPEC_FULL.md §5 adds.
type Row struct {
	RunID       string             `json:"runId" yaml:"runId"`
	GeneratedAt string             `json:"generatedAt" yaml:"generatedAt"`
	TestName    string             `json:"testName" yaml:"testName"`
	PValues     map[string]float64 `json:"pValues,omitempty" yaml:"pValues,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Passed      bool               `json:"passed" yaml:"passed"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Record is one run's full report: a run ID (google/uuid) and timestamp
// stamped once, plus one Row per test in selection order.
type Record struct {
	RunID       string
	GeneratedAt string
	Rows        []Row
}

// NewRecord stamps a fresh run ID and timestamp and converts results
// into Rows, preserving the order TestRunner.Run returned them in.
func NewRecord(results []nist.Result) Record {
	runID := uuid.NewString()
	generatedAt := time.Now().UTC().Format(time.RFC3339)
	rows := make([]Row, len(results))
	for i, r := range results {
		row := Row{
			RunID:       runID,
			GeneratedAt: generatedAt,
			TestName:    r.Name,
			PValues:     r.PValues,
			Metrics:     r.Metrics,
			Passed:      r.Passed,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows[i] = row
	}
	return Record{RunID: runID, GeneratedAt: generatedAt, Rows: rows}
}

// WriteJSONL writes one JSON object per row, the default structured
// format (SPEC_FULL.md §8 --report-format jsonl).
func WriteJSONL(w io.Writer, rec Record) error {
	enc := json.NewEncoder(w)
	for _, row := range rec.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("report: encode row %q: %w", row.TestName, err)
		}
	}
	return nil
}

// WriteYAML writes the whole record as a single YAML document
// (SPEC_FULL.md §8 --report-format yaml).
func WriteYAML(w io.Writer, rec Record) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return nil
}

// Write dispatches to WriteJSONL or WriteYAML by format name.
func Write(w io.Writer, rec Record, format string) error {
	switch format {
	case "yaml":
		return WriteYAML(w, rec)
	case "jsonl", "":
		return WriteJSONL(w, rec)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

// pValueColumn picks the p-value shown in the console table: the single
// "pValue" key if present, otherwise the minimum across whatever
// variants the test produced (Serial, Cumulative Sums, the excursion
// tests all report more than one).
func pValueColumn(pvalues map[string]float64) float64 {
	if v, ok := pvalues["pValue"]; ok {
		return v
	}
	keys := make([]string, 0, len(pvalues))
	for k := range pvalues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	min := 1.0
	for _, k := range keys {
		if pvalues[k] < min {
			min = pvalues[k]
		}
	}
	return min
}

// RenderTable writes the human-readable console table that is always
// printed regardless of --report-format, grounded on teacher's
// buildReportTable's fixed-column shape.
func RenderTable(w io.Writer, rec Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "p-value", "Status"})
	for _, row := range rec.Rows {
		var status, pv string
		switch {
		case row.Error != "":
			status, pv = "Error", row.Error
		case row.Passed:
			status, pv = "Passed", fmt.Sprintf("%.6f", pValueColumn(row.PValues))
		default:
			status, pv = "Failed", fmt.Sprintf("%.6f", pValueColumn(row.PValues))
		}
		table.Append([]string{row.TestName, pv, status})
	}
	table.Render()
}
