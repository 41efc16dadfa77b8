// Package tool holds the fixed catalog of remote repository tools and the
// registry that checks planned invocations against it before dispatch.
package tool

import (
	"encoding/json"
	"errors"
)

// ErrUnknownTool is returned for invocations naming a tool outside the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// Spec describes one remote tool to the planner.
type Spec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// Invocation is one planned tool call.
type Invocation struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// MarshalYAML renders Parameters as a nested document instead of bytes.
func (s Spec) MarshalYAML() (any, error) {
	var params any
	if len(s.Parameters) > 0 {
		if err := json.Unmarshal(s.Parameters, &params); err != nil {
			return nil, err
		}
	}
	return struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Parameters  any    `yaml:"parameters,omitempty"`
	}{s.Name, s.Description, params}, nil
}
