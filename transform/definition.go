package transform

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/annoset/dataset"
)

// Step is one recorded transform: its registered name and parameters.
type Step struct {
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// Definition is an ordered list of steps. Together with an import it is
// enough to rebuild a dataset.
type Definition struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// ParseDefinition decodes a YAML or JSON definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && err != io.EOF {
		return nil, dataset.Invalid("definition", "%v", err)
	}
	for i, s := range def.Steps {
		if s.Name == "" {
			return nil, dataset.Invalid(fmt.Sprintf("steps[%d].name", i), "missing transform name")
		}
	}
	return &def, nil
}

// LoadDefinition reads a definition from r.
func LoadDefinition(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return ParseDefinition(data)
}

// Save writes the definition as YAML.
func (d *Definition) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode definition: %w", err)
	}
	return enc.Close()
}

// decodeParams converts loosely typed params into a typed struct with
// yaml tags. Unknown keys are rejected.
func decodeParams(name string, params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return dataset.Invalid("params", "%s: %v", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return dataset.Invalid("params", "%s: %v", name, err)
	}
	return nil
}
