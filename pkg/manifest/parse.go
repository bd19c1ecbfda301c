package manifest

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// DefaultFileName is the manifest filename read from a checkout root when no
// other name is configured.
const DefaultFileName = "package.json"

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses manifest content. YAML is a superset of JSON, so both
// package.json documents and YAML equivalents are accepted.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
