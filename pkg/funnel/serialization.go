package funnel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a JSON wire-format funnel.
// On success the returned funnel round-trips through Encode unchanged.
func Parse(data []byte) (*Funnel, error) {
	var f Funnel
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Field: "", Reason: fmt.Sprintf("invalid JSON: %v", err)},
		}}
	}
	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode serializes a funnel to its JSON wire format.
func Encode(f *Funnel) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// ParseFile loads a funnel definition from disk. JSON is the canonical
// format; YAML is accepted for hand-authored files and decoded through
// the same field names as the JSON wire shape.
func ParseFile(path string) (*Funnel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read funnel file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Parse(data)
	}
}

func parseYAML(data []byte) (*Funnel, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Field: "", Reason: fmt.Sprintf("invalid YAML: %v", err)},
		}}
	}

	// Reuse the JSON field names so YAML authors write the same shape
	// the wire format defines.
	var f Funnel
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &f,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Field: "", Reason: fmt.Sprintf("invalid funnel shape: %v", err)},
		}}
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
