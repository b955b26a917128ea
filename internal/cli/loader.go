package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

// ContextFile is the on-disk form of an evaluation context. JSON files are
// accepted too, since JSON is valid YAML.
//
//	values:
//	  required_age: 21
//	types:
//	  age: float
//	  tags: array<string>
type ContextFile struct {
	Values map[string]any    `yaml:"values"`
	Types  map[string]string `yaml:"types"`
}

// Options converts the file into context options.
func (f *ContextFile) Options() ([]evaluator.ContextOption, error) {
	var opts []evaluator.ContextOption
	for name, raw := range f.Values {
		v, ok := types.ValueOf(raw)
		if !ok {
			return nil, fmt.Errorf("value %q: %T is not a scalar", name, raw)
		}
		opts = append(opts, evaluator.WithValue(name, v))
	}
	for name, decl := range f.Types {
		t, err := types.ParseDataType(decl)
		if err != nil {
			return nil, fmt.Errorf("type of %q: %w", name, err)
		}
		opts = append(opts, evaluator.WithDeclaredType(name, t))
	}
	return opts, nil
}

// LoadContextFile reads and decodes a context file.
func LoadContextFile(path string) (*ContextFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ContextFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// BuildContext assembles a Context from an optional context file and
// name=value assignments, which win over file values.
func BuildContext(path string, assignments []string) (*evaluator.Context, error) {
	var opts []evaluator.ContextOption
	if path != "" {
		f, err := LoadContextFile(path)
		if err != nil {
			return nil, err
		}
		if opts, err = f.Options(); err != nil {
			return nil, err
		}
	}
	for _, a := range assignments {
		name, v, err := ParseAssignment(a)
		if err != nil {
			return nil, err
		}
		opts = append(opts, evaluator.WithValue(name, v))
	}
	return evaluator.NewContext(opts...), nil
}

// ParseAssignment parses name=value. The value is read as a YAML scalar,
// so 21 is an Integer, 2.5 a Float, true a Boolean and anything else a
// String.
func ParseAssignment(s string) (string, types.Value, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid assignment %q: want name=value", s)
	}
	var x any
	if err := yaml.Unmarshal([]byte(raw), &x); err != nil {
		return "", nil, fmt.Errorf("invalid assignment %q: %w", s, err)
	}
	if x == nil {
		x = raw
	}
	v, ok := types.ValueOf(x)
	if !ok {
		return "", nil, fmt.Errorf("invalid assignment %q: %T is not a scalar", s, x)
	}
	return name, v, nil
}

// LoadRecords decodes every record in r. A JSON document may be one object
// or an array of objects; a YAML stream may hold several documents, each a
// mapping or a sequence of mappings.
func LoadRecords(r io.Reader, format string) ([]map[string]any, error) {
	switch format {
	case "json":
		return loadJSONRecords(r)
	case "yaml":
		return loadYAMLRecords(r)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

func loadJSONRecords(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return collectRecords(doc)
}

func loadYAMLRecords(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var records []map[string]any
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
		recs, err := collectRecords(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
}

func collectRecords(doc any) ([]map[string]any, error) {
	switch d := doc.(type) {
	case map[string]any:
		return []map[string]any{d}, nil
	case []any:
		records := make([]map[string]any, 0, len(d))
		for i, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d: expected an object, got %T", i, item)
			}
			records = append(records, m)
		}
		return records, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("expected an object or a list of objects, got %T", doc)
}
