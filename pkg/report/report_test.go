package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/menta2k/object-detector/pkg/types"
)

func TestAddAppendsOneRowPerDetection(t *testing.T) {
	r := New()
	r.Add("a.jpg", []types.Detection{
		{ID: 0, Score: 0.9, BBox: types.BBox{Xmin: 10, Ymin: 20, Xmax: 110, Ymax: 100}},
		{ID: 1, Score: 0.5, BBox: types.BBox{Xmin: 0, Ymin: 0, Xmax: 50, Ymax: 50}},
	})
	r.Add("b.jpg", []types.Detection{
		{ID: 2, Score: 0.7, BBox: types.BBox{Xmin: 5, Ymin: 5, Xmax: 25, Ymax: 45}},
	})

	if r.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", r.Len())
	}

	recs := r.Records()
	if recs[0].Filename != "a.jpg" || recs[1].Filename != "a.jpg" || recs[2].Filename != "b.jpg" {
		t.Errorf("Records carry wrong filenames: %+v", recs)
	}
	if recs[2].W != 20 || recs[2].H != 40 {
		t.Errorf("Expected w=20 h=40, got w=%d h=%d", recs[2].W, recs[2].H)
	}
}

func TestAddNoDetectionsAddsNoRows(t *testing.T) {
	r := New()
	r.Add("empty.jpg", nil)
	if r.Len() != 0 {
		t.Errorf("Expected 0 records, got %d", r.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	r := New()
	r.Add("img.jpg", []types.Detection{
		{ID: 3, Score: 0.9, BBox: types.BBox{Xmin: 10, Ymin: 20, Xmax: 60, Ymax: 90}},
	})

	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse written csv: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d rows", len(rows))
	}
	wantHeader := []string{"image_filename", "label_id", "x", "y", "w", "h", "confidence"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("Expected header column %q, got %q", col, rows[0][i])
		}
	}
	want := []string{"img.jpg", "3", "10", "20", "50", "70", "0.9"}
	for i, col := range want {
		if rows[1][i] != col {
			t.Errorf("Expected column %q, got %q", col, rows[1][i])
		}
	}
}

func TestSaveCSV(t *testing.T) {
	r := New()
	r.Add("img.jpg", []types.Detection{
		{ID: 0, Score: 0.6, BBox: types.BBox{Xmin: 1, Ymin: 2, Xmax: 3, Ymax: 4}},
	})

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := r.SaveCSV(path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read csv file: %v", err)
	}
	if !strings.Contains(string(data), "img.jpg,0,1,2,2,2,0.6") {
		t.Errorf("Unexpected csv contents:\n%s", data)
	}
}

func TestRenderTable(t *testing.T) {
	r := New()
	r.Add("img.jpg", []types.Detection{
		{ID: 1, Score: 0.75, BBox: types.BBox{Xmin: 0, Ymin: 0, Xmax: 10, Ymax: 10}},
	})

	var buf bytes.Buffer
	r.RenderTable(&buf)

	out := buf.String()
	if !strings.Contains(out, "img.jpg") || !strings.Contains(out, "0.75") {
		t.Errorf("Table output missing expected fields:\n%s", out)
	}
}
