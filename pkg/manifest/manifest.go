// Package manifest records where a vendored loader came from.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes one completed fetch.
type Manifest struct {
	Source    string    `yaml:"source"`
	Generator string    `yaml:"generator"`
	Request   string    `yaml:"request"`
	FetchedAt time.Time `yaml:"fetched_at"`
	Dir       string    `yaml:"dir"`
	Bytes     int64     `yaml:"bytes"`
	Files     []string  `yaml:"files"`
}

// Write stores m as YAML at path, creating parent directories.
func Write(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}

	return nil
}

// Read loads a manifest previously written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", path, err)
	}

	return &m, nil
}
