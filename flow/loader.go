package flow

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/flowkit/flowkit/dag"
)

// Plan is a YAML-defined instantiation plan: an ordered list of targets
// to instantiate against a Registry, each optionally pinning some of its
// inputs to names already produced earlier in the plan (or to a literal
// alias set up by the caller before loading).
type Plan struct {
	Name  string     `yaml:"name"`
	Steps []PlanStep `yaml:"steps"`
}

// PlanStep instantiates one template (or plugin) name, optionally
// overriding one or more of its declared inputs' sources.
type PlanStep struct {
	Target    string            `yaml:"target"`
	As        string            `yaml:"as,omitempty"`
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// LoadPlan reads and parses a Plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flow: reading plan %s: %w", path, err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("flow: parsing plan %s: %w", path, err)
	}
	return &p, nil
}

// Run instantiates every step of p against d and reg in order, feeding
// each step's overrides into the shared aliases map before resolving it,
// so later steps can refer to earlier steps' "as" names. Returns the
// concrete node name each step resolved to, in step order.
func Run(d *dag.Dag, reg *Registry, p *Plan, aliases map[string]string) ([]string, error) {
	if aliases == nil {
		aliases = make(map[string]string)
	}
	results := make([]string, 0, len(p.Steps))

	for _, step := range p.Steps {
		for k, v := range step.Overrides {
			aliases[k] = v
		}
		name, err := InstantiateWithDeps(d, reg, step.Target, aliases)
		if err != nil {
			return nil, fmt.Errorf("flow: instantiating step %q: %w", step.Target, err)
		}
		if step.As != "" {
			aliases[step.As] = name
		}
		results = append(results, name)
	}
	return results, nil
}
