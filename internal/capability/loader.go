package capability

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// modelExtensions lists the file extensions LoadDir picks up.
// JSON is accepted because it is a subset of YAML.
var modelExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// IsModelFile reports whether path has a model file extension.
func IsModelFile(path string) bool {
	return modelExtensions[strings.ToLower(filepath.Ext(path))]
}

// Parse decodes a model from YAML (or JSON) bytes and validates it.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and validates a single model file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadDir loads every model file in dir (non-recursive), sorted by file
// name. A missing directory yields no models and no error.
func LoadDir(dir string) ([]*Model, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsModelFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	models := make([]*Model, 0, len(names))
	for _, name := range names {
		m, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// Marshal encodes a model as YAML.
func Marshal(m *Model) ([]byte, error) {
	return yaml.Marshal(m)
}
