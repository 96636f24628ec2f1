package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tmotif/internal/compiler"
)

// Scenario defines one search and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Delta is the time window. Required; 0 is a valid window.
	Delta *int64 `yaml:"delta"`

	// Graph is the searched graph in the persisted text format.
	Graph string `yaml:"graph"`

	// Motif lists the motif edges in search order.
	Motif []compiler.EdgeDef `yaml:"motif"`

	// Options tune the search.
	Options Options `yaml:"options,omitempty"`

	// Expect holds the expected outcome.
	Expect Expect `yaml:"expect"`

	// RunID is an optional fixed run id.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Options mirror the engine's search options.
type Options struct {
	Limit    int  `yaml:"limit,omitempty"`
	MaxSteps int  `yaml:"max_steps,omitempty"`
	Strict   bool `yaml:"strict,omitempty"`
}

// Expect describes the expected search outcome.
type Expect struct {
	// Count is the expected number of matches.
	Count *int `yaml:"count,omitempty"`

	// Matches lists the expected matches in discovery order, each as its
	// edge names in motif-edge order.
	Matches [][]string `yaml:"matches,omitempty"`

	// Error is a substring of the expected search error. When set the
	// search must fail.
	Error string `yaml:"error,omitempty"`
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

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:".
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

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
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

	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Delta == nil {
		return fmt.Errorf("delta is required")
	}
	if *s.Delta < 0 {
		return fmt.Errorf("delta must be non-negative, got %d", *s.Delta)
	}

	if strings.TrimSpace(s.Graph) == "" {
		return fmt.Errorf("graph is required")
	}

	if len(s.Motif) == 0 {
		return fmt.Errorf("motif list is required and must be non-empty")
	}
	for i, e := range s.Motif {
		if e.Tail == "" || e.Head == "" {
			return fmt.Errorf("motif[%d]: tail and head are required", i)
		}
	}

	if s.Expect.Count == nil && s.Expect.Matches == nil && s.Expect.Error == "" {
		return fmt.Errorf("expect needs at least one of count, matches or error")
	}
	if s.Expect.Count != nil && s.Expect.Matches != nil && *s.Expect.Count != len(s.Expect.Matches) {
		return fmt.Errorf("expect.count is %d but %d matches are listed", *s.Expect.Count, len(s.Expect.Matches))
	}

	return nil
}
