package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pgcheck/internal/ir"
)

// Scenario groups conformance cases under one name.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`
}

// Case is one clause on one column with its expected outcome.
type Case struct {
	// Name labels the case in error messages. Defaults to cases[i].
	Name string `yaml:"name,omitempty"`

	// Column is the column the clause constrains.
	Column string `yaml:"column"`

	// Check is the clause as SQL text. Requires a parser.
	Check string `yaml:"check,omitempty"`

	// Expr is the clause as a raw pg_query tree.
	Expr map[string]any `yaml:"expr,omitempty"`

	// Expect is the expected outcome.
	Expect Expect `yaml:"expect"`
}

// Expect names exactly one outcome.
type Expect struct {
	// Constraints is the exact record the clause reduces to.
	Constraints *ir.Constraints `yaml:"constraints,omitempty"`

	// Unreduced expects no declarative equivalent.
	Unreduced bool `yaml:"unreduced,omitempty"`

	// Structural expects the canonicalizer to reject the tree.
	Structural bool `yaml:"structural,omitempty"`
}

// label returns the case name used in messages.
func (c Case) label(index int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("cases[%d]", index)
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
// A non-empty filter is a glob matched against the file name without
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// validateScenario checks required fields.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case is required")
	}
	for i, c := range s.Cases {
		if err := validateCase(c, i); err != nil {
			return err
		}
	}
	return nil
}

func validateCase(c Case, index int) error {
	label := c.label(index)

	if c.Column == "" {
		return fmt.Errorf("%s: column is required", label)
	}
	if (c.Check == "") == (c.Expr == nil) {
		return fmt.Errorf("%s: exactly one of check or expr is required", label)
	}

	outcomes := 0
	if c.Expect.Constraints != nil {
		outcomes++
	}
	if c.Expect.Unreduced {
		outcomes++
	}
	if c.Expect.Structural {
		outcomes++
	}
	if outcomes != 1 {
		return fmt.Errorf("%s: expect must name exactly one of constraints, unreduced or structural", label)
	}

	return nil
}
