package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Detector DetectorConfig `json:"detector"`
	Input    InputConfig    `json:"input"`
	Output   OutputConfig   `json:"output"`
}

// DetectorConfig holds configuration for the inference run
type DetectorConfig struct {
	Backend    string  `json:"backend"`
	Threshold  float64 `json:"threshold"`
	Count      int     `json:"count"`
	NumThreads int     `json:"num_threads"`
}

// InputConfig holds configuration for locating the image set
type InputConfig struct {
	Source string `json:"source"`
}

// OutputConfig holds configuration for annotated images and the result table.
// An empty Dir disables annotated output.
type OutputConfig struct {
	Dir     string `json:"dir"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
	Suffix  string `json:"suffix"`
	CSVFile string `json:"csv_file"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Backend:    "tflite",
			Threshold:  0.4,
			Count:      5,
			NumThreads: 4,
		},
		Input: InputConfig{
			Source: "test_images/*.jpg",
		},
		Output: OutputConfig{
			Dir:     "",
			Format:  "jpg",
			Quality: 90,
			Suffix:  "_annotated",
			CSVFile: "results.csv",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Detector.Backend != "tflite" && c.Detector.Backend != "onnx" {
		return fmt.Errorf("detector.backend must be tflite or onnx")
	}

	if c.Detector.Threshold < 0 || c.Detector.Threshold > 1 {
		return fmt.Errorf("detector.threshold must be between 0 and 1")
	}

	if c.Detector.Count < 1 {
		return fmt.Errorf("detector.count must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.CSVFile == "" {
		return fmt.Errorf("output.csv_file cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "object-detector", "config.json")
}
