package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Detector.Threshold != 0.4 {
		t.Errorf("Expected default threshold 0.4, got %f", cfg.Detector.Threshold)
	}
	if cfg.Detector.Count != 5 {
		t.Errorf("Expected default count 5, got %d", cfg.Detector.Count)
	}
	if cfg.Input.Source != "test_images/*.jpg" {
		t.Errorf("Unexpected default input source %q", cfg.Input.Source)
	}
	if cfg.Output.Dir != "" {
		t.Errorf("Annotation should be disabled by default, got dir %q", cfg.Output.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Detector.Backend = "pytorch" }},
		{"negative threshold", func(c *Config) { c.Detector.Threshold = -0.1 }},
		{"threshold above one", func(c *Config) { c.Detector.Threshold = 1.5 }},
		{"zero count", func(c *Config) { c.Detector.Count = 0 }},
		{"bad quality", func(c *Config) { c.Output.Quality = 0 }},
		{"empty csv name", func(c *Config) { c.Output.CSVFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Detector.Threshold = 0.6
	cfg.Detector.Backend = "onnx"
	cfg.Output.CSVFile = "detections.csv"

	path := filepath.Join(t.TempDir(), "config.json")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Detector.Threshold != 0.6 {
		t.Errorf("Expected threshold 0.6, got %f", loaded.Detector.Threshold)
	}
	if loaded.Detector.Backend != "onnx" {
		t.Errorf("Expected backend onnx, got %q", loaded.Detector.Backend)
	}
	if loaded.Output.CSVFile != "detections.csv" {
		t.Errorf("Expected csv file detections.csv, got %q", loaded.Output.CSVFile)
	}
	// Fields absent from the file keep their defaults
	if loaded.Detector.Count != 5 {
		t.Errorf("Expected count to default to 5, got %d", loaded.Detector.Count)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
