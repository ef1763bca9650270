package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/datastore/internal/dberr"
	"github.com/roach88/datastore/internal/ir"
)

// Step operations.
const (
	OpSet    = "set"
	OpGet    = "get"
	OpPush   = "push"
	OpDelete = "delete"
	OpFetch  = "fetch"
	OpReopen = "reopen"
	OpRaw    = "raw"
)

// DefaultOwnerID is used when a scenario does not name an owner.
const DefaultOwnerID = "harness"

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	OwnerID string `yaml:"owner_id,omitempty"`

	// ShardCount defaults to 1 when omitted; an explicit 0 is kept.
	ShardCount *int `yaml:"shard_count,omitempty"`

	// Seed is written verbatim to the backing file before the store opens.
	Seed string `yaml:"seed,omitempty"`

	Steps []Step `yaml:"steps"`

	// Final is the expected document in the backing file after all steps.
	// Unchecked when omitted.
	Final yaml.Node `yaml:"final,omitempty"`
}

// Step is one store operation.
type Step struct {
	Op  string `yaml:"op"`
	Key string `yaml:"key,omitempty"`

	// Value is the set/push input. An explicit null stores null.
	Value yaml.Node `yaml:"value,omitempty"`

	// Raw is the file body written by the raw op.
	Raw string `yaml:"raw,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Value is the expected get result. null expects a stored null.
	Value yaml.Node `yaml:"value,omitempty"`

	// Absent expects get to find nothing at the key.
	Absent bool `yaml:"absent,omitempty"`

	// Deleted is the expected delete result.
	Deleted *bool `yaml:"deleted,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

var knownCodes = map[string]bool{
	string(dberr.CodeEmptyKey):        true,
	string(dberr.CodeKeyPathNotFound): true,
	string(dberr.CodeNotAnArray):      true,
	string(dberr.CodeStorageRead):     true,
	string(dberr.CodeStorageWrite):    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

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

// LoadScenarios loads every .yaml/.yml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and per-op step shape.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.ShardCount != nil && *s.ShardCount < 0 {
		return fmt.Errorf("shard_count must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step *Step) error {
	hasValue := step.Value.Kind != 0

	switch step.Op {
	case OpSet, OpPush:
		if !hasValue {
			return fmt.Errorf("steps[%d]: value is required for %s (use null to store null)", i, step.Op)
		}
	case OpGet, OpDelete:
		if hasValue {
			return fmt.Errorf("steps[%d]: value is not allowed for %s", i, step.Op)
		}
	case OpFetch, OpReopen:
		if step.Key != "" || hasValue {
			return fmt.Errorf("steps[%d]: %s takes no key or value", i, step.Op)
		}
	case OpRaw:
		if step.Key != "" || hasValue {
			return fmt.Errorf("steps[%d]: raw takes only raw", i)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	if step.Raw != "" && step.Op != OpRaw {
		return fmt.Errorf("steps[%d]: raw is only allowed for the raw op", i)
	}

	e := step.Expect
	if e == nil {
		return nil
	}
	if e.Error != "" && !knownCodes[e.Error] {
		return fmt.Errorf("steps[%d].expect: unknown error code %q", i, e.Error)
	}
	if (e.Value.Kind != 0 || e.Absent) && step.Op != OpGet {
		return fmt.Errorf("steps[%d].expect: value/absent only apply to get", i)
	}
	if e.Value.Kind != 0 && e.Absent {
		return fmt.Errorf("steps[%d].expect: value and absent are exclusive", i)
	}
	if e.Deleted != nil && step.Op != OpDelete {
		return fmt.Errorf("steps[%d].expect: deleted only applies to delete", i)
	}
	return nil
}

// nodeValue converts a decoded YAML node into an IRValue.
func nodeValue(n *yaml.Node) (ir.IRValue, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return ir.FromGo(raw)
}
