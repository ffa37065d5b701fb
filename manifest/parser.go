package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parser parses raw manifest bytes into a Manifest.
type Parser interface {
	// Parse unmarshals manifest bytes.
	Parse(data []byte) (*Manifest, error)
}

// YAMLParser implements Parser for YAML.
type YAMLParser struct{}

// NewYAMLParser creates a new YAMLParser.
func NewYAMLParser() Parser {
	return &YAMLParser{}
}

// Parse unmarshals YAML bytes into a Manifest.
func (p *YAMLParser) Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest YAML: %w", err)
	}
	return &m, nil
}

// JSONParser implements Parser for JSON.
type JSONParser struct{}

// NewJSONParser creates a new JSONParser.
func NewJSONParser() Parser {
	return &JSONParser{}
}

// Parse unmarshals JSON bytes into a Manifest.
func (p *JSONParser) Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest JSON: %w", err)
	}
	return &m, nil
}
