package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/engine"
	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// DefaultPassToken is used when a scenario names no pass token.
const DefaultPassToken = "scenario-pass"

// Scenario defines a propagation scenario: a project, a list of changes
// applied in order, and assertions on what the changes produced.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Project is the project file imported before the changes run.
	// Relative paths are resolved against the scenario file.
	Project string `yaml:"project"`

	// PassToken is stamped on every pass of the scenario.
	PassToken string `yaml:"pass_token,omitempty"`

	// Changes are applied through the engine one after another.
	Changes []ChangeStep `yaml:"changes"`

	// Assertions validate the final trace and store.
	Assertions []Assertion `yaml:"assertions"`
}

// ChangeStep is one entity mutation.
type ChangeStep struct {
	Source model.Kind      `yaml:"source"`
	Op     model.Operation `yaml:"op"`

	// ID names the entity. Optional when Data carries it.
	ID string `yaml:"id,omitempty"`

	// Data is the complete entity after an add or update.
	Data yaml.Node `yaml:"data,omitempty"`

	// ExpectError makes the step pass only when Apply fails.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Change decodes the step into an engine change.
func (c ChangeStep) Change() (engine.Change, error) {
	ch := engine.Change{Source: c.Source, Op: c.Op, ID: c.ID}
	if c.Data.Kind == 0 {
		return ch, nil
	}
	var err error
	switch c.Source {
	case model.KindMaterial:
		ch.Data, err = decodeData[model.Material](&c.Data)
	case model.KindStream:
		ch.Data, err = decodeData[model.Stream](&c.Data)
	case model.KindUnit:
		ch.Data, err = decodeData[model.ProcessUnit](&c.Data)
	case model.KindEquipment:
		ch.Data, err = decodeData[model.Equipment](&c.Data)
	default:
		err = fmt.Errorf("unknown source %q", c.Source)
	}
	return ch, err
}

func decodeData[T any](n *yaml.Node) (T, error) {
	var v T
	if err := n.Decode(&v); err != nil {
		return v, fmt.Errorf("decode data: %w", err)
	}
	return v, nil
}

// Assertion validates the trace or the store after the changes ran.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Line is the exact trace line (used by trace_contains).
	Line string `yaml:"line,omitempty"`

	// Lines is the expected line order (used by trace_order).
	Lines []string `yaml:"lines,omitempty"`

	// Prefix selects trace lines (used by trace_count).
	Prefix string `yaml:"prefix,omitempty"`

	// Count is the expected number of lines or rows (used by trace_count
	// and changes_recorded).
	Count int `yaml:"count,omitempty"`

	// Calc, Unit and Status select and check a stored balance (used by
	// balance_status).
	Calc   balance.CalcType `yaml:"calc,omitempty"`
	Unit   string           `yaml:"unit,omitempty"`
	Status model.Status     `yaml:"status,omitempty"`

	// Source restricts changes_recorded to one entity kind.
	Source model.Kind `yaml:"source,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains   = "trace_contains"
	AssertTraceOrder      = "trace_order"
	AssertTraceCount      = "trace_count"
	AssertBalanceStatus   = "balance_status"
	AssertChangesRecorded = "changes_recorded"
)

// LoadScenario reads and parses a scenario YAML file, resolving the
// project path against the scenario's directory. Unknown fields and
// missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" for "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Project != "" && !filepath.IsAbs(scenario.Project) {
		scenario.Project = filepath.Join(filepath.Dir(path), scenario.Project)
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

	if s.Project == "" {
		return fmt.Errorf("project is required")
	}
	if _, err := os.Stat(s.Project); os.IsNotExist(err) {
		return fmt.Errorf("project file not found: %s", s.Project)
	}

	if len(s.Changes) == 0 {
		return fmt.Errorf("changes list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Changes {
		if _, err := model.ParseKind(string(step.Source)); err != nil {
			return fmt.Errorf("changes[%d]: %w", i, err)
		}
		if _, err := model.ParseOperation(string(step.Op)); err != nil {
			return fmt.Errorf("changes[%d]: %w", i, err)
		}
		if step.Op == model.OpDelete && step.ID == "" {
			return fmt.Errorf("changes[%d]: id is required for delete", i)
		}
		if step.Op != model.OpDelete && step.Data.Kind == 0 {
			return fmt.Errorf("changes[%d]: data is required for %s", i, step.Op)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Line == "" {
			return fmt.Errorf("assertions[%d]: line is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Prefix == "" {
			return fmt.Errorf("assertions[%d]: prefix is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertBalanceStatus:
		if a.Calc != balance.CalcMass && a.Calc != balance.CalcHeat {
			return fmt.Errorf("assertions[%d]: calc must be %s or %s for balance_status", index, balance.CalcMass, balance.CalcHeat)
		}
		if a.Unit == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: unit and status are required for balance_status", index)
		}
	case AssertChangesRecorded:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for changes_recorded", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
