// Package validation checks provider settings against registered capability
// schemas before a provider is constructed.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator implements SettingsValidator using compiled JSON schemas.
// Compiled schemas are cached per capability. Safe for concurrent use.
type SchemaValidator struct {
	lookup   SchemaLookup
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a validator backed by the given schema lookup.
func NewSchemaValidator(lookup SchemaLookup) *SchemaValidator {
	return &SchemaValidator{
		lookup:   lookup,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks settings for the named capability. A capability with no
// registered schema validates trivially: absence of a schema is not an error.
func (v *SchemaValidator) Validate(capabilityName string, settings map[string]any) (*Result, error) {
	sch, err := v.schemaFor(capabilityName)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return &Result{Valid: true}, nil
	}

	// The schema library expects decoded JSON values; settings maps from
	// YAML or JSON manifests already have that shape.
	if settings == nil {
		settings = map[string]any{}
	}

	if err := sch.Validate(normalize(settings)); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &Result{Valid: false, Errors: flatten(verr)}, nil
		}
		return nil, fmt.Errorf("validating settings for %q: %w", capabilityName, err)
	}

	return &Result{Valid: true}, nil
}

func (v *SchemaValidator) schemaFor(capabilityName string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[capabilityName]; ok {
		return sch, nil
	}

	raw, ok := v.lookup.GetSchema(capabilityName)
	if !ok {
		return nil, nil
	}

	compiler := jsonschema.NewCompiler()
	resource := capabilityName + ".schema.json"
	if err := compiler.AddResource(resource, strings.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("invalid schema for %q: %w", capabilityName, err)
	}
	sch, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %q: %w", capabilityName, err)
	}

	v.compiled[capabilityName] = sch
	return sch, nil
}

// normalize converts map[string]any trees that may contain non-JSON scalar
// types (e.g. ints from YAML decoding) into the shapes the validator expects.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

func flatten(err *jsonschema.ValidationError) []string {
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)
	return msgs
}
