package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/qpeep/qpeep/internal/program"
)

// Scenario defines one conformance scenario: a program pushed through a
// freshly constructed optimizer, followed by assertions on the forwarded
// stream and the residual buffer state.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Window overrides the window size m. Zero defers to the ruleset (or
	// the default).
	Window int `yaml:"window,omitempty"`

	// Rules is an optional path to a CUE ruleset file, relative to the
	// scenario file.
	Rules string `yaml:"rules,omitempty"`

	// Program is the instruction stream, in the program op format.
	Program []program.Op `yaml:"program"`

	// Assertions validate the forwarded stream. The stream includes the
	// terminal marker when the program flushes.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a scenario run.
type Assertion struct {
	// Type is one of the Assert* constants below.
	Type string `yaml:"type"`

	// Instructions is the full expected forwarded stream, as instruction
	// labels (used by forwarded_order).
	Instructions []string `yaml:"instructions,omitempty"`

	// Instruction is one expected label (used by forwarded_contains).
	Instruction string `yaml:"instruction,omitempty"`

	// Count is the expected stream length (used by forwarded_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertForwardedOrder    = "forwarded_order"
	AssertForwardedCount    = "forwarded_count"
	AssertForwardedContains = "forwarded_contains"
	AssertBufferedEmpty     = "buffered_empty"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected to catch typos. A relative Rules path is resolved against the
// scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
		scenario.Rules = filepath.Join(filepath.Dir(path), scenario.Rules)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Window < 0 {
		return fmt.Errorf("window must not be negative")
	}
	if len(s.Program) == 0 {
		return fmt.Errorf("program list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); err != nil {
			return fmt.Errorf("rules file not found: %s", s.Rules)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertForwardedOrder:
		if len(a.Instructions) == 0 {
			return fmt.Errorf("assertions[%d]: instructions list is required for forwarded_order", index)
		}
	case AssertForwardedContains:
		if a.Instruction == "" {
			return fmt.Errorf("assertions[%d]: instruction is required for forwarded_contains", index)
		}
	case AssertForwardedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for forwarded_count", index)
		}
	case AssertBufferedEmpty:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
