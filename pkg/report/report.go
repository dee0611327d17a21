package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/menta2k/object-detector/pkg/types"
)

// csv column order, one row per detection
var header = []string{"image_filename", "label_id", "x", "y", "w", "h", "confidence"}

// Report accumulates detection records across a batch run
type Report struct {
	records []types.Record
}

// New creates an empty report
func New() *Report {
	return &Report{}
}

// Add appends one record per detection for the given image. Records are only
// ever appended; earlier images are never rewritten.
func (r *Report) Add(filename string, dets []types.Detection) {
	for _, d := range dets {
		r.records = append(r.records, types.NewRecord(filename, d))
	}
}

// Records returns the accumulated records in insertion order
func (r *Report) Records() []types.Record {
	return r.records
}

// Len returns the number of accumulated records
func (r *Report) Len() int {
	return len(r.records)
}

// WriteCSV writes all records as delimited rows with a header line
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range r.records {
		row := []string{
			rec.Filename,
			strconv.Itoa(rec.LabelID),
			strconv.Itoa(rec.X),
			strconv.Itoa(rec.Y),
			strconv.Itoa(rec.W),
			strconv.Itoa(rec.H),
			strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report to a file at path
func (r *Report) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	return r.WriteCSV(f)
}

// RenderTable writes the accumulated records as a readable summary table
func (r *Report) RenderTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Image", "Label ID", "X", "Y", "W", "H", "Confidence"})
	for _, rec := range r.records {
		t.AppendRow(table.Row{
			rec.Filename, rec.LabelID, rec.X, rec.Y, rec.W, rec.H,
			fmt.Sprintf("%.2f", rec.Confidence),
		})
	}
	t.Render()
}
