// Package scenario provides the request templates exercised against the
// evaluation service and the random selection over them.
package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Scenario is an immutable parameter template used to build one trial's
// request body.
type Scenario struct {
	Episodes int    `json:"episodes" yaml:"episodes"`
	TaskType string `json:"task_type" yaml:"task_type"`
}

// DefaultPool returns the built-in scenario set.
func DefaultPool() []Scenario {
	return []Scenario{
		{Episodes: 1, TaskType: "app_navigation"},
		{Episodes: 2, TaskType: "text_input"},
		{Episodes: 3, TaskType: "button_click"},
		{Episodes: 1, TaskType: "swipe_gesture"},
		{Episodes: 4, TaskType: "form_filling"},
	}
}

// poolSchema validates scenario pool files before a run starts.
const poolSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["scenarios"],
  "properties": {
    "scenarios": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["episodes", "task_type"],
        "properties": {
          "episodes": {"type": "integer", "minimum": 1},
          "task_type": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

type poolFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadPool reads a YAML scenario pool file and validates it against the
// pool schema. The returned pool is ready for NewSelector.
func LoadPool(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if err := validatePool(data); err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}

	var pf poolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	return pf.Scenarios, nil
}

// validatePool checks the raw YAML document against poolSchema. The
// document is round-tripped through JSON so the schema library sees
// canonical JSON types.
func validatePool(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("not valid YAML: %w", err)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("not representable as JSON: %w", err)
	}

	var jsonDoc interface{}
	if err := json.Unmarshal(jsonData, &jsonDoc); err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("pool.json", strings.NewReader(poolSchema)); err != nil {
		return err
	}
	schema, err := compiler.Compile("pool.json")
	if err != nil {
		return err
	}

	if err := schema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// Selector samples scenarios uniformly, with replacement, from a fixed
// pool. Selection order carries no meaning.
type Selector struct {
	pool []Scenario

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector over pool. The random source is
// injectable so runs can be made deterministic in tests; a nil rng uses a
// time-seeded source.
func NewSelector(pool []Scenario, rng *rand.Rand) (*Selector, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("scenario pool must not be empty")
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	// Copy so later mutation of the caller's slice cannot change the pool.
	owned := make([]Scenario, len(pool))
	copy(owned, pool)

	return &Selector{pool: owned, rng: rng}, nil
}

// Select returns one scenario chosen uniformly at random. Safe for
// concurrent use.
func (s *Selector) Select() Scenario {
	s.mu.Lock()
	idx := s.rng.Intn(len(s.pool))
	s.mu.Unlock()

	return s.pool[idx]
}

// Pool returns the scenarios this selector draws from.
func (s *Selector) Pool() []Scenario {
	out := make([]Scenario, len(s.pool))
	copy(out, s.pool)
	return out
}
