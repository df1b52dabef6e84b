// Package mdl parses MDL manifests: the JSON semantic-layer description
// of a project's models and columns that gets indexed for retrieval.
package mdl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrParse marks a malformed or schema-violating manifest. Callers match
// it with errors.Is to classify the failure.
var ErrParse = errors.New("mdl parse error")

// Manifest is the deployed semantic-layer description of one project.
type Manifest struct {
	Catalog string  `json:"catalog"`
	Schema  string  `json:"schema"`
	Models  []Model `json:"models"`
}

// Model is one logical table with its columns.
type Model struct {
	Name       string            `json:"name"`
	RefSQL     string            `json:"refSql,omitempty"`
	Columns    []Column          `json:"columns"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Column is one field of a model.
type Column struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Description returns the human-authored description, if any.
func (m Model) Description() string  { return m.Properties["description"] }
func (c Column) Description() string { return c.Properties["description"] }

// Parse decodes and validates a raw manifest. Any malformation — invalid
// JSON or a schema violation — comes back wrapped in ErrParse.
func Parse(raw []byte) (*Manifest, error) {
	if err := validateManifest(raw); err != nil {
		return nil, err
	}
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &m, nil
}
