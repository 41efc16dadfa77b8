package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type entry struct {
	spec   Spec
	schema *jsonschema.Schema
}

// Registry holds the known tools and their compiled argument schemas.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]entry),
	}
}

// DefaultRegistry returns a registry loaded with Catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range Catalog() {
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("tool catalog: %v", err))
		}
	}
	return r
}

// Register adds a tool, compiling its parameter schema. A Spec without
// Parameters accepts any arguments object.
func (r *Registry) Register(s Spec) error {
	if s.Name == "" {
		return fmt.Errorf("tool name is required")
	}

	var schema *jsonschema.Schema
	if len(s.Parameters) > 0 {
		var err error
		schema, err = jsonschema.CompileString(s.Name+".json", string(s.Parameters))
		if err != nil {
			return fmt.Errorf("compile schema for %s: %w", s.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[s.Name]; !ok {
		r.order = append(r.order, s.Name)
	}
	r.tools[s.Name] = entry{spec: s, schema: schema}
	return nil
}

// Get returns a tool spec by name.
func (r *Registry) Get(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return e.spec, nil
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name].spec)
	}
	return result
}

// Validate checks that inv names a registered tool and that its arguments
// satisfy the tool's schema.
func (r *Registry) Validate(inv Invocation) error {
	r.mu.RLock()
	e, ok := r.tools[inv.Tool]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, inv.Tool)
	}
	if e.schema == nil {
		return nil
	}

	args := inv.Arguments
	if args == nil {
		args = map[string]any{}
	}
	// Round-trip through json.Number so integer constraints see exact values.
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", inv.Tool, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", inv.Tool, err)
	}

	if err := e.schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", inv.Tool, err)
	}
	return nil
}
