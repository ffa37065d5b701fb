// Package schema manages JSON schemas for capability provider settings.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/spindle-dev/spindle-host-sdk/capability"
)

// Registry stores one settings schema per capability name.
// Schemas are either supplied raw or generated from a Go model struct.
type Registry struct {
	schemas   map[string]string
	mu        sync.RWMutex
	reflector *jsonschema.Reflector
}

// Option configures the Registry.
type Option func(*Registry)

// WithReflector replaces the schema reflector used for model structs.
func WithReflector(r *jsonschema.Reflector) Option {
	return func(reg *Registry) {
		reg.reflector = r
	}
}

// NewRegistry creates an empty schema registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		schemas:   make(map[string]string),
		reflector: &jsonschema.Reflector{ExpandedStruct: true},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterInterface registers the settings schema for a capability interface,
// derived from its ConfigModel. Interfaces without a config model get no
// schema and their provider settings are not validated.
func (r *Registry) RegisterInterface(iface capability.Interface) error {
	if iface.ConfigModel == nil {
		return nil
	}
	return r.Register(iface.Name, iface.ConfigModel)
}

// Register adds a schema for a capability name.
// model can be a Go struct (the schema is generated), a JSON schema string,
// raw schema bytes, or a schema map.
func (r *Registry) Register(name string, model any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[name]; exists {
		return fmt.Errorf("capability already registered: %s", name)
	}

	schemaStr, err := r.render(model)
	if err != nil {
		return err
	}

	r.schemas[name] = schemaStr
	return nil
}

func (r *Registry) render(model any) (string, error) {
	switch v := model.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal schema map: %w", err)
		}
		return string(b), nil
	default:
		s := r.reflector.Reflect(model)
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal generated schema: %w", err)
		}
		return string(b), nil
	}
}

// GetSchema returns the JSON schema for a capability name.
func (r *Registry) GetSchema(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// List returns all registered capability names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}
