package labels

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseIndexed(t *testing.T) {
	input := "0 person\n1 bicycle\n3 motorcycle\n"

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Labels{0: "person", 1: "bicycle", 3: "motorcycle"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d labels, got %d", len(want), len(got))
	}
	for id, label := range want {
		if got[id] != label {
			t.Errorf("Expected label %q for id %d, got %q", label, id, got[id])
		}
	}
}

func TestParseSequential(t *testing.T) {
	input := "person\nbicycle\ncar\n"

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Labels{0: "person", 1: "bicycle", 2: "car"}
	for id, label := range want {
		if got[id] != label {
			t.Errorf("Expected label %q for id %d, got %q", label, id, got[id])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty mapping, got %d entries", len(got))
	}
}

func TestParseMultiWordLabels(t *testing.T) {
	input := "0 traffic light\n1 fire hydrant\n"

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got[0] != "traffic light" {
		t.Errorf("Expected %q, got %q", "traffic light", got[0])
	}
	if got[1] != "fire hydrant" {
		t.Errorf("Expected %q, got %q", "fire hydrant", got[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	want := Labels{0: "person", 1: "bicycle", 2: "car", 3: "traffic light"}
	path := filepath.Join(t.TempDir(), "labels.txt")

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d labels after round trip, got %d", len(want), len(got))
	}
	for id, label := range want {
		if got[id] != label {
			t.Errorf("Expected label %q for id %d, got %q", label, id, got[id])
		}
	}
}

func TestGetFallback(t *testing.T) {
	l := Labels{0: "person"}

	if got := l.Get(0); got != "person" {
		t.Errorf("Expected %q, got %q", "person", got)
	}
	if got := l.Get(42); got != "42" {
		t.Errorf("Expected numeric fallback %q, got %q", "42", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("10 dog\n11 cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got[10] != "dog" || got[11] != "cat" {
		t.Errorf("Unexpected mapping: %v", got)
	}
}
