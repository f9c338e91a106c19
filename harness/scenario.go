// Package harness replays declarative expansion scenarios: a YAML file
// names a CUE network definition and the expected run summary, and the
// harness runs the expansion deterministically (single worker) so its
// final network can be compared against a golden snapshot.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one replayable expansion.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is the path to the CUE network definition.
	// Relative paths resolve against the scenario file location.
	Definition string `yaml:"definition"`

	// Expect holds the run summary to validate after the expansion.
	Expect Expect `yaml:"expect"`
}

// Expect is the expected run summary. Zero-valued fields are not
// checked, so scenarios only assert what they care about.
type Expect struct {
	Molecules  int    `yaml:"molecules,omitempty"`
	Reactions  int    `yaml:"reactions,omitempty"`
	Rounds     int    `yaml:"rounds,omitempty"`
	Committed  int    `yaml:"committed,omitempty"`
	Rejected   int    `yaml:"rejected,omitempty"`
	StopReason string `yaml:"stop_reason,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Definition) && scenario.Definition != "" {
		scenario.Definition = filepath.Join(filepath.Dir(path), scenario.Definition)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Definition == "" {
		return fmt.Errorf("definition is required")
	}
	if _, err := os.Stat(s.Definition); os.IsNotExist(err) {
		return fmt.Errorf("definition file not found: %s", s.Definition)
	}
	return nil
}
