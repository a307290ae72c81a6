package target

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// setFile is the on-disk shape of a target set.
type setFile struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// FromFile loads a target set from a JSON or YAML file, keyed by
// extension. Every entry is validated; one bad entry fails the whole load.
func FromFile(path string) (*Set, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified target file
	if err != nil {
		return nil, fmt.Errorf("read target file: %w", err)
	}

	var f setFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse JSON targets: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse YAML targets: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported target file format: %s", filepath.Ext(path))
	}

	set := NewSet()
	for i, t := range f.Targets {
		if err := set.Add(t); err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
	}
	return set, nil
}

// Save writes the set to path in the format its extension names. YAML is
// the default for extensionless paths.
func (s *Set) Save(path string) error {
	data, err := s.marshal(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //#nosec G306 -- target files are not secrets
		return fmt.Errorf("write target file: %w", err)
	}
	return nil
}

func (s *Set) marshal(ext string) ([]byte, error) {
	f := setFile{Targets: s.List()}
	switch strings.ToLower(ext) {
	case ".json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("encode targets: %w", err)
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml", "":
		data, err := yaml.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("encode targets: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported target file format: %s", ext)
	}
}
