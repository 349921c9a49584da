package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a dataset from a .toml, .yaml/.yml or .json file and
// validates it. Unknown keys are rejected so typos surface at startup.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("portfolio: read %s: %w", path, err)
	}
	d, err := Decode(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("portfolio: %s: %w", path, err)
	}
	return d, nil
}

// Decode parses raw according to ext (".toml", ".yaml", ".yml", ".json")
// and validates the result.
func Decode(raw []byte, ext string) (*Data, error) {
	var d Data
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidData, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	default:
		return nil, fmt.Errorf("unsupported data format %q (want .toml, .yaml or .json)", ext)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Resolve returns the dataset at path, or the built-in dataset when path is
// empty.
func Resolve(path string) (*Data, error) {
	if path == "" {
		d := Default()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return d, nil
	}
	return LoadFile(path)
}
