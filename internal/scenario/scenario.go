// Package scenario loads and saves episode starting configurations.
// Files are JSON or YAML, selected by extension.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gridcombat/engine/internal/sim"
)

// Load reads a scenario file and validates it.
func Load(path string) (*sim.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s sim.Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}

	applyDefaults(&s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes a scenario file, formatted per the path's extension.
func Save(path string, s *sim.Scenario) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(s, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		return fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}
	return nil
}

// applyDefaults fills rule thresholds a file may omit.
func applyDefaults(s *sim.Scenario) {
	if s.MaxStalemateTurns == 0 {
		s.MaxStalemateTurns = sim.DefaultMaxStalemateTurns
	}
	if s.MaxNoMoveTurns == 0 {
		s.MaxNoMoveTurns = sim.DefaultMaxNoMoveTurns
	}
}
